package lobby

import (
	"encoding/json"
	"time"

	"github.com/wuwadraft/backend/internal/draft"
)

// State is a lobby's lifecycle state.
type State string

const (
	StateWaiting       State = "WAITING"
	StatePreDraftReady State = "PRE_DRAFT_READY"
	StateDrafting      State = "DRAFTING"
	StateComplete      State = "DRAFT_COMPLETE"
)

// Lobby is the single shared mutable record for one draft lobby, keyed by its
// 8-character code. It is only ever mutated through conditioned store writes.
type Lobby struct {
	LobbyID          string    `json:"lobbyId"`
	HostConnectionID string    `json:"hostConnectionId"`
	HostName         string    `json:"hostName"`
	CreatedAt        time.Time `json:"createdAt"`

	Player1ConnectionID string `json:"player1ConnectionId,omitempty"`
	Player1Name         string `json:"player1Name,omitempty"`
	Player2ConnectionID string `json:"player2ConnectionId,omitempty"`
	Player2Name         string `json:"player2Name,omitempty"`
	Player1Ready        bool   `json:"player1Ready"`
	Player2Ready        bool   `json:"player2Ready"`

	State State `json:"lobbyState"`

	EquilibrationEnabled    bool           `json:"equilibrationEnabled"`
	Player1Sequences        map[string]int `json:"player1Sequences,omitempty"`
	Player2Sequences        map[string]int `json:"player2Sequences,omitempty"`
	Player1WeightedBoxScore int            `json:"player1WeightedBoxScore"`
	Player2WeightedBoxScore int            `json:"player2WeightedBoxScore"`
	Player1ScoreSubmitted   bool           `json:"player1ScoreSubmitted"`
	Player2ScoreSubmitted   bool           `json:"player2ScoreSubmitted"`

	EffectiveDraftOrder        []draft.Step         `json:"effectiveDraftOrder,omitempty"`
	PlayerRoles                draft.RoleAssignment `json:"playerRoles,omitempty"`
	EquilibrationBansAllowed   int                  `json:"equilibrationBansAllowed"`
	EquilibrationBansMade      int                  `json:"equilibrationBansMade"`
	CurrentEquilibrationBanner draft.Seat           `json:"currentEquilibrationBanner,omitempty"`

	CurrentPhase     draft.Phase `json:"currentPhase,omitempty"`
	CurrentTurn      draft.Seat  `json:"currentTurn,omitempty"`
	CurrentStepIndex int         `json:"currentStepIndex"` // -1 when not drafting
	TurnExpiresAt    *time.Time  `json:"turnExpiresAt,omitempty"`

	Bans                []string `json:"bans"`
	Player1Picks        []string `json:"player1Picks"`
	Player2Picks        []string `json:"player2Picks"`
	AvailableResonators []string `json:"availableResonators"`

	LastAction string `json:"lastAction,omitempty"`
}

// SeatOf returns the seat occupied by connID, if any. The host may occupy a
// seat, in which case its connection resolves to that seat.
func (l *Lobby) SeatOf(connID string) (draft.Seat, bool) {
	switch {
	case connID != "" && connID == l.Player1ConnectionID:
		return draft.SeatP1, true
	case connID != "" && connID == l.Player2ConnectionID:
		return draft.SeatP2, true
	}
	return "", false
}

// ConnFor returns the connection ID seated at seat, or "".
func (l *Lobby) ConnFor(seat draft.Seat) string {
	if seat == draft.SeatP1 {
		return l.Player1ConnectionID
	}
	return l.Player2ConnectionID
}

// NameFor returns the display name seated at seat.
func (l *Lobby) NameFor(seat draft.Seat) string {
	if seat == draft.SeatP1 {
		return l.Player1Name
	}
	return l.Player2Name
}

// FirstEmptySeat returns the lowest-numbered empty seat, P1 before P2.
func (l *Lobby) FirstEmptySeat() (draft.Seat, bool) {
	if l.Player1ConnectionID == "" {
		return draft.SeatP1, true
	}
	if l.Player2ConnectionID == "" {
		return draft.SeatP2, true
	}
	return "", false
}

// ScoresSubmitted reports whether both seats have a submitted box score.
func (l *Lobby) ScoresSubmitted() bool {
	return l.Player1ScoreSubmitted && l.Player2ScoreSubmitted
}

// PicksFor returns a pointer to seat's pick list so move application can
// append in place.
func (l *Lobby) PicksFor(seat draft.Seat) *[]string {
	if seat == draft.SeatP1 {
		return &l.Player1Picks
	}
	return &l.Player2Picks
}

// RemoveAvailable takes name out of the available pool. Returns false if the
// item was not available.
func (l *Lobby) RemoveAvailable(name string) bool {
	for i, n := range l.AvailableResonators {
		if n == name {
			l.AvailableResonators = append(l.AvailableResonators[:i], l.AvailableResonators[i+1:]...)
			return true
		}
	}
	return false
}

// InDraft reports whether removing a seated player now is disruptive: the
// lobby is past WAITING and not yet complete.
func (l *Lobby) InDraft() bool {
	return l.State == StatePreDraftReady || l.State == StateDrafting
}

// ClearSeat empties one seat: connection, name, readiness and that seat's
// submitted score. The other seat is untouched.
func (l *Lobby) ClearSeat(seat draft.Seat) {
	if seat == draft.SeatP1 {
		l.Player1ConnectionID = ""
		l.Player1Name = ""
		l.Player1Ready = false
		l.Player1Sequences = nil
		l.Player1WeightedBoxScore = 0
		l.Player1ScoreSubmitted = false
	} else {
		l.Player2ConnectionID = ""
		l.Player2Name = ""
		l.Player2Ready = false
		l.Player2Sequences = nil
		l.Player2WeightedBoxScore = 0
		l.Player2ScoreSubmitted = false
	}
}

// ResetDraft returns the lobby to WAITING and clears every draft-only field.
// Membership and submitted scores survive; readiness does not.
func (l *Lobby) ResetDraft() {
	l.State = StateWaiting
	l.Player1Ready = false
	l.Player2Ready = false
	l.EffectiveDraftOrder = nil
	l.PlayerRoles = draft.RoleAssignment{}
	l.EquilibrationBansAllowed = 0
	l.EquilibrationBansMade = 0
	l.CurrentEquilibrationBanner = ""
	l.CurrentPhase = ""
	l.CurrentTurn = ""
	l.CurrentStepIndex = -1
	l.TurnExpiresAt = nil
	l.Bans = nil
	l.Player1Picks = nil
	l.Player2Picks = nil
	l.AvailableResonators = nil
}

// Participants returns the distinct connection IDs of host, P1 and P2,
// skipping empty seats and the optional excluded connection.
func (l *Lobby) Participants(exclude string) []string {
	var out []string
	seen := map[string]bool{}
	for _, id := range []string{l.HostConnectionID, l.Player1ConnectionID, l.Player2ConnectionID} {
		if id == "" || id == exclude || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// Clone deep-copies the record via its JSON form. Store implementations hand
// out clones so no caller aliases the stored value.
func (l *Lobby) Clone() *Lobby {
	raw, err := json.Marshal(l)
	if err != nil {
		// The record is plain data; Marshal cannot fail on it.
		panic(err)
	}
	var out Lobby
	if err := json.Unmarshal(raw, &out); err != nil {
		panic(err)
	}
	return &out
}
