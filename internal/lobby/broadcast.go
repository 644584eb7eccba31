package lobby

import (
	"context"
	"encoding/json"

	"github.com/wuwadraft/backend/internal/protocol"
)

// broadcast re-reads the lobby with a strongly-consistent read and fans the
// full snapshot out to every current participant. Delivery is best-effort per
// recipient; the committed record is the source of truth regardless.
func (m *Machine) broadcast(ctx context.Context, lobbyID, exclude string) {
	lb, err := m.lobbies.Get(ctx, lobbyID, true)
	if err != nil {
		m.log.WithError(err).WithField("lobby", lobbyID).Error("broadcast read failed")
		return
	}

	payload, err := json.Marshal(Snapshot(lb))
	if err != nil {
		m.log.WithError(err).WithField("lobby", lobbyID).Error("broadcast marshal failed")
		return
	}

	for _, connID := range lb.Participants(exclude) {
		if err := m.push.Push(ctx, connID, payload); err != nil {
			m.log.WithError(err).WithFields(map[string]any{
				"lobby": lobbyID,
				"conn":  connID,
			}).Warn("broadcast push failed")
		}
	}
}

// Snapshot assembles the full client-facing state update from a record.
func Snapshot(lb *Lobby) protocol.LobbyStateUpdate {
	snap := protocol.LobbyStateUpdate{
		Type:                       "lobbyStateUpdate",
		LobbyID:                    lb.LobbyID,
		HostName:                   lb.HostName,
		Player1Name:                lb.Player1Name,
		Player2Name:                lb.Player2Name,
		LobbyState:                 string(lb.State),
		Player1Ready:               lb.Player1Ready,
		Player2Ready:               lb.Player2Ready,
		CurrentPhase:               string(lb.CurrentPhase),
		CurrentTurn:                string(lb.CurrentTurn),
		Bans:                       emptyIfNil(lb.Bans),
		Player1Picks:               emptyIfNil(lb.Player1Picks),
		Player2Picks:               emptyIfNil(lb.Player2Picks),
		AvailableResonators:        emptyIfNil(lb.AvailableResonators),
		EquilibrationEnabled:       lb.EquilibrationEnabled,
		Player1ScoreSubmitted:      lb.Player1ScoreSubmitted,
		Player2ScoreSubmitted:      lb.Player2ScoreSubmitted,
		Player1WeightedBoxScore:    lb.Player1WeightedBoxScore,
		Player2WeightedBoxScore:    lb.Player2WeightedBoxScore,
		Player1Sequences:           lb.Player1Sequences,
		Player2Sequences:           lb.Player2Sequences,
		EffectiveDraftOrder:        lb.EffectiveDraftOrder,
		EquilibrationBansAllowed:   lb.EquilibrationBansAllowed,
		EquilibrationBansMade:      lb.EquilibrationBansMade,
		CurrentEquilibrationBanner: string(lb.CurrentEquilibrationBanner),
		LastAction:                 lb.LastAction,
	}
	if lb.TurnExpiresAt != nil {
		snap.TurnExpiresAt = lb.TurnExpiresAt.UnixMilli()
	}
	return snap
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
