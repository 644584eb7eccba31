package lobby

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wuwadraft/backend/internal/draft"
	"github.com/wuwadraft/backend/internal/protocol"
)

const (
	slotRaceAttempts = 3
	slotRaceBackoff  = 50 * time.Millisecond
)

// handleCreateLobby allocates a fresh 8-character code and writes the initial
// WAITING record. Only the creator is notified; there is nobody else yet.
func (m *Machine) handleCreateLobby(ctx context.Context, connID string, a protocol.CreateLobby) error {
	var lobbyID string
	for i := 0; i < 5; i++ {
		candidate := m.newID()
		_, err := m.lobbies.Get(ctx, candidate, false)
		if errors.Is(err, ErrNotFound) {
			lobbyID = candidate
			break
		}
		if err != nil {
			m.log.WithError(err).Error("create lobby: code probe failed")
			return errors.New("failed to create lobby")
		}
		m.log.WithField("lobby", candidate).Warn("lobby code collision, regenerating")
	}
	if lobbyID == "" {
		return errors.New("failed to allocate a lobby code")
	}

	lb := &Lobby{
		LobbyID:              lobbyID,
		HostConnectionID:     connID,
		HostName:             a.Name,
		CreatedAt:            m.now().UTC(),
		State:                StateWaiting,
		EquilibrationEnabled: a.EnableEquilibration,
		CurrentStepIndex:     -1,
		LastAction:           fmt.Sprintf("%s created the lobby", a.Name),
	}
	if err := m.lobbies.Put(ctx, lb); err != nil {
		m.log.WithError(err).WithField("lobby", lobbyID).Error("create lobby: put failed")
		return errors.New("failed to create lobby")
	}
	if err := m.conns.Put(ctx, &Connection{ID: connID, LobbyID: lobbyID, PlayerName: a.Name}); err != nil {
		m.log.WithError(err).WithField("conn", connID).Error("create lobby: connection update failed")
	}

	m.log.WithFields(map[string]any{"lobby": lobbyID, "host": a.Name}).Info("lobby created")
	m.send(ctx, connID, protocol.LobbyCreated{
		Type:                 "lobbyCreated",
		LobbyID:              lobbyID,
		IsHost:               true,
		EquilibrationEnabled: a.EnableEquilibration,
	})
	return nil
}

// handleJoinLobby seats the caller at the first empty seat, P1 before P2.
func (m *Machine) handleJoinLobby(ctx context.Context, connID string, a protocol.JoinLobby) error {
	lb, err := m.lobbies.Get(ctx, a.LobbyID, true)
	if err != nil {
		return errors.New("lobby not found")
	}
	if _, seated := lb.SeatOf(connID); seated {
		return errors.New("you already occupy a seat in this lobby")
	}
	if _, ok := lb.FirstEmptySeat(); !ok {
		return errLobbyFull
	}

	var assigned draft.Seat
	updated, err := m.lobbies.Update(ctx, a.LobbyID,
		func(cur *Lobby) bool {
			_, ok := cur.FirstEmptySeat()
			return ok
		},
		func(cur *Lobby) {
			assigned, _ = cur.FirstEmptySeat()
			if assigned == draft.SeatP1 {
				cur.Player1ConnectionID = connID
				cur.Player1Name = a.Name
			} else {
				cur.Player2ConnectionID = connID
				cur.Player2Name = a.Name
			}
			cur.LastAction = fmt.Sprintf("%s joined as %s", a.Name, assigned)
		})
	if errors.Is(err, ErrConflict) {
		return errLobbyFull
	}
	if err != nil {
		return err
	}

	if err := m.conns.Put(ctx, &Connection{ID: connID, LobbyID: a.LobbyID, PlayerName: a.Name}); err != nil {
		m.log.WithError(err).WithField("conn", connID).Error("join lobby: connection update failed")
	}

	m.send(ctx, connID, protocol.LobbyJoined{
		Type:         "lobbyJoined",
		LobbyID:      a.LobbyID,
		AssignedSlot: string(assigned),
		IsHost:       connID == updated.HostConnectionID,
	})
	m.broadcast(ctx, updated.LobbyID, "")
	return nil
}

// handleLeaveLobby removes the caller. A leaving host terminates the whole
// lobby, same as deleting it.
func (m *Machine) handleLeaveLobby(ctx context.Context, connID string, a protocol.LeaveLobby) error {
	lb, err := m.lobbies.Get(ctx, a.LobbyID, true)
	if err != nil {
		return errors.New("lobby not found")
	}

	if lb.HostConnectionID == connID {
		m.terminateLobby(ctx, lb, connID, protocol.RedirectDeleted, "The host closed the lobby.")
		return nil
	}

	seat, ok := lb.SeatOf(connID)
	if !ok {
		m.clearConnLobby(ctx, connID)
		return nil
	}
	m.removeSeatedPlayer(ctx, lb.LobbyID, connID, seat, fmt.Sprintf("%s left the lobby", lb.NameFor(seat)))
	m.clearConnLobby(ctx, connID)
	return nil
}

// handleDeleteLobby is the host's explicit teardown.
func (m *Machine) handleDeleteLobby(ctx context.Context, connID string, a protocol.DeleteLobby) error {
	lb, err := m.lobbies.Get(ctx, a.LobbyID, true)
	if err != nil {
		return errors.New("lobby not found")
	}
	if lb.HostConnectionID != connID {
		return errNotHost
	}
	m.terminateLobby(ctx, lb, connID, protocol.RedirectDeleted, "The lobby was deleted by the host.")
	return nil
}

// handleKickPlayer removes the named seat's occupant and tells them to leave.
func (m *Machine) handleKickPlayer(ctx context.Context, connID string, a protocol.KickPlayer) error {
	lb, err := m.lobbies.Get(ctx, a.LobbyID, true)
	if err != nil {
		return errors.New("lobby not found")
	}
	if lb.HostConnectionID != connID {
		return errNotHost
	}

	seat := draft.Seat(a.PlayerSlot)
	target := lb.ConnFor(seat)
	if target == "" {
		return errors.New("that seat is empty")
	}
	if target == connID {
		return errors.New("use hostLeaveSlot to vacate your own seat")
	}

	m.removeSeatedPlayer(ctx, lb.LobbyID, target, seat, fmt.Sprintf("%s was kicked by the host", lb.NameFor(seat)))
	m.send(ctx, target, protocol.ForceRedirect{
		Type:    "forceRedirect",
		Reason:  protocol.RedirectKicked,
		Message: "You were kicked from the lobby.",
	})
	m.clearConnLobby(ctx, target)
	return nil
}

// handleHostJoinSlot seats the host. Unlike joinLobby this retries a few
// times: the host and a genuine second player can race for the same empty
// seat, and the host losing once should not surface as an error.
func (m *Machine) handleHostJoinSlot(ctx context.Context, connID string, a protocol.HostJoinSlot) error {
	lb, err := m.lobbies.Get(ctx, a.LobbyID, true)
	if err != nil {
		return errors.New("lobby not found")
	}
	if lb.HostConnectionID != connID {
		return errNotHost
	}
	if _, seated := lb.SeatOf(connID); seated {
		return errors.New("you already occupy a seat")
	}

	var assigned draft.Seat
	for attempt := 0; attempt < slotRaceAttempts; attempt++ {
		updated, uerr := m.lobbies.Update(ctx, a.LobbyID,
			func(cur *Lobby) bool {
				if cur.HostConnectionID != connID {
					return false
				}
				if _, seated := cur.SeatOf(connID); seated {
					return false
				}
				_, ok := cur.FirstEmptySeat()
				return ok
			},
			func(cur *Lobby) {
				assigned, _ = cur.FirstEmptySeat()
				if assigned == draft.SeatP1 {
					cur.Player1ConnectionID = connID
					cur.Player1Name = cur.HostName
				} else {
					cur.Player2ConnectionID = connID
					cur.Player2Name = cur.HostName
				}
				cur.LastAction = fmt.Sprintf("Host %s took seat %s", cur.HostName, assigned)
			})
		if errors.Is(uerr, ErrConflict) {
			cur, gerr := m.lobbies.Get(ctx, a.LobbyID, true)
			if gerr != nil {
				return errors.New("lobby not found")
			}
			if _, ok := cur.FirstEmptySeat(); !ok {
				return errLobbyFull
			}
			time.Sleep(slotRaceBackoff)
			continue
		}
		if uerr != nil {
			return uerr
		}

		m.send(ctx, connID, protocol.LobbyJoined{
			Type:         "lobbyJoined",
			LobbyID:      a.LobbyID,
			AssignedSlot: string(assigned),
			IsHost:       true,
		})
		m.broadcast(ctx, updated.LobbyID, "")
		return nil
	}
	return ErrConflict
}

// handleHostLeaveSlot vacates the host's seat while keeping them in the lobby
// as host.
func (m *Machine) handleHostLeaveSlot(ctx context.Context, connID string, a protocol.HostLeaveSlot) error {
	lb, err := m.lobbies.Get(ctx, a.LobbyID, true)
	if err != nil {
		return errors.New("lobby not found")
	}
	if lb.HostConnectionID != connID {
		return errNotHost
	}
	seat, ok := lb.SeatOf(connID)
	if !ok {
		return errors.New("you do not occupy a seat")
	}

	updated, err := m.lobbies.Update(ctx, lb.LobbyID,
		func(cur *Lobby) bool { return cur.ConnFor(seat) == connID },
		func(cur *Lobby) {
			inDraft := cur.InDraft()
			cur.ClearSeat(seat)
			cur.LastAction = fmt.Sprintf("Host %s left seat %s", cur.HostName, seat)
			if inDraft {
				cur.ResetDraft()
				cur.LastAction += "; draft reset"
			}
		})
	if err != nil {
		return err
	}

	m.broadcast(ctx, updated.LobbyID, "")
	return nil
}

// removeSeatedPlayer clears one seat and, when the lobby is mid-draft, resets
// the draft sub-state entirely. The removed connection is excluded from the
// resulting broadcast; disruptive removals get their own terminal message.
func (m *Machine) removeSeatedPlayer(ctx context.Context, lobbyID, connID string, seat draft.Seat, describe string) {
	updated, err := m.lobbies.Update(ctx, lobbyID,
		func(cur *Lobby) bool { return cur.ConnFor(seat) == connID },
		func(cur *Lobby) {
			inDraft := cur.InDraft()
			cur.ClearSeat(seat)
			cur.LastAction = describe
			if inDraft {
				cur.ResetDraft()
				cur.LastAction = describe + "; draft reset"
			}
		})
	if errors.Is(err, ErrConflict) || errors.Is(err, ErrNotFound) {
		// Seat already changed hands or the lobby is gone; nothing to undo.
		return
	}
	if err != nil {
		m.log.WithError(err).WithField("lobby", lobbyID).Error("remove player failed")
		return
	}

	m.broadcast(ctx, updated.LobbyID, connID)
}

// terminateLobby deletes the record and redirects every other participant
// out of the draft view.
func (m *Machine) terminateLobby(ctx context.Context, lb *Lobby, causeConnID, reason, message string) {
	for _, id := range lb.Participants(causeConnID) {
		m.send(ctx, id, protocol.ForceRedirect{Type: "forceRedirect", Reason: reason, Message: message})
		m.clearConnLobby(ctx, id)
	}
	m.clearConnLobby(ctx, causeConnID)

	if err := m.lobbies.Delete(ctx, lb.LobbyID); err != nil {
		m.log.WithError(err).WithField("lobby", lb.LobbyID).Error("lobby delete failed")
		return
	}
	m.log.WithFields(map[string]any{"lobby": lb.LobbyID, "reason": reason}).Info("lobby terminated")
}

// clearConnLobby drops a connection's lobby membership without touching the
// connection record itself.
func (m *Machine) clearConnLobby(ctx context.Context, connID string) {
	conn, err := m.conns.Get(ctx, connID)
	if err != nil {
		return
	}
	conn.LobbyID = ""
	if err := m.conns.Put(ctx, conn); err != nil {
		m.log.WithError(err).WithField("conn", connID).Warn("connection update failed")
	}
}
