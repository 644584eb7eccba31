package protocol

import "github.com/wuwadraft/backend/internal/draft"

// LobbyStateUpdate is the full snapshot broadcast to every participant after
// each successful mutation. Always the whole record, never a diff, so clients
// resync from any single message.
type LobbyStateUpdate struct {
	Type                     string             `json:"type"` // "lobbyStateUpdate"
	LobbyID                  string             `json:"lobbyId"`
	HostName                 string             `json:"hostName"`
	Player1Name              string             `json:"player1Name,omitempty"`
	Player2Name              string             `json:"player2Name,omitempty"`
	LobbyState               string             `json:"lobbyState"`
	Player1Ready             bool               `json:"player1Ready"`
	Player2Ready             bool               `json:"player2Ready"`
	CurrentPhase             string             `json:"currentPhase,omitempty"`
	CurrentTurn              string             `json:"currentTurn,omitempty"`
	Bans                     []string           `json:"bans"`
	Player1Picks             []string           `json:"player1Picks"`
	Player2Picks             []string           `json:"player2Picks"`
	AvailableResonators      []string           `json:"availableResonators"`
	TurnExpiresAt            int64              `json:"turnExpiresAt,omitempty"` // unix millis
	EquilibrationEnabled     bool               `json:"equilibrationEnabled"`
	Player1ScoreSubmitted    bool               `json:"player1ScoreSubmitted"`
	Player2ScoreSubmitted    bool               `json:"player2ScoreSubmitted"`
	Player1WeightedBoxScore  int                `json:"player1WeightedBoxScore"`
	Player2WeightedBoxScore  int                `json:"player2WeightedBoxScore"`
	Player1Sequences         map[string]int     `json:"player1Sequences,omitempty"`
	Player2Sequences         map[string]int     `json:"player2Sequences,omitempty"`
	EffectiveDraftOrder      []draft.Step       `json:"effectiveDraftOrder,omitempty"`
	EquilibrationBansAllowed int                `json:"equilibrationBansAllowed"`
	EquilibrationBansMade    int                `json:"equilibrationBansMade"`
	CurrentEquilibrationBanner string           `json:"currentEquilibrationBanner,omitempty"`
	LastAction               string             `json:"lastAction,omitempty"`
}

// LobbyCreated is sent only to the creator.
type LobbyCreated struct {
	Type                 string `json:"type"` // "lobbyCreated"
	LobbyID              string `json:"lobbyId"`
	IsHost               bool   `json:"isHost"`
	EquilibrationEnabled bool   `json:"equilibrationEnabled"`
}

// LobbyJoined is sent only to the joiner.
type LobbyJoined struct {
	Type         string `json:"type"` // "lobbyJoined"
	LobbyID      string `json:"lobbyId"`
	AssignedSlot string `json:"assignedSlot"` // "P1" | "P2"
	IsHost       bool   `json:"isHost"`
}

// ErrorReply is directed only at the triggering connection; other
// participants never see a requester's local error.
type ErrorReply struct {
	Type    string `json:"type"` // "error"
	Message string `json:"message"`
}

// BoxScoreSubmitted acknowledges a roster submission.
type BoxScoreSubmitted struct {
	Type string `json:"type"` // "boxScoreSubmitted"
}

// Pong answers a keep-alive ping.
type Pong struct {
	Type string `json:"type"` // "pong"
}

// Redirect reasons for ForceRedirect.
const (
	RedirectKicked           = "kicked"
	RedirectDeleted          = "deleted"
	RedirectHostDisconnected = "host_disconnected"
)

// ForceRedirect tells a client its lobby is over and it must leave the draft
// view.
type ForceRedirect struct {
	Type    string `json:"type"` // "forceRedirect"
	Reason  string `json:"reason"`
	Message string `json:"message"`
}
