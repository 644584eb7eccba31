// Package protocol defines the JSON wire format: the inbound action envelope
// decoded once at the boundary into a closed sum, and every outbound message.
package protocol

import (
	"encoding/json"
	"fmt"
)

// Action is the closed set of inbound client actions. Handlers receive a
// fully-decoded, field-checked value and never touch raw JSON.
type Action interface{ action() }

type CreateLobby struct {
	Name                string `json:"name"`
	EnableEquilibration bool   `json:"enableEquilibration"`
}

type JoinLobby struct {
	LobbyID string `json:"lobbyId"`
	Name    string `json:"name"`
}

type PlayerReady struct{}

type HostStartsDraft struct {
	LobbyID string `json:"lobbyId"`
}

type MakeBan struct {
	ResonatorName string `json:"resonatorName"`
}

type MakePick struct {
	ResonatorName string `json:"resonatorName"`
}

type TurnTimeout struct {
	ExpectedPhase string `json:"expectedPhase"`
	ExpectedTurn  string `json:"expectedTurn"`
}

type SubmitBoxScore struct {
	LobbyID   string         `json:"lobbyId"`
	Sequences map[string]int `json:"sequences"`
}

type LeaveLobby struct {
	LobbyID string `json:"lobbyId"`
}

type DeleteLobby struct {
	LobbyID string `json:"lobbyId"`
}

type KickPlayer struct {
	LobbyID    string `json:"lobbyId"`
	PlayerSlot string `json:"playerSlot"`
}

type HostJoinSlot struct {
	LobbyID string `json:"lobbyId"`
}

type HostLeaveSlot struct {
	LobbyID string `json:"lobbyId"`
}

type ResetDraft struct {
	LobbyID string `json:"lobbyId"`
}

type Ping struct{}

func (CreateLobby) action()     {}
func (JoinLobby) action()       {}
func (PlayerReady) action()     {}
func (HostStartsDraft) action() {}
func (MakeBan) action()         {}
func (MakePick) action()        {}
func (TurnTimeout) action()     {}
func (SubmitBoxScore) action()  {}
func (LeaveLobby) action()      {}
func (DeleteLobby) action()     {}
func (KickPlayer) action()      {}
func (HostJoinSlot) action()    {}
func (HostLeaveSlot) action()   {}
func (ResetDraft) action()      {}
func (Ping) action()            {}

type envelope struct {
	Action string `json:"action"`

	Name                string         `json:"name"`
	EnableEquilibration bool           `json:"enableEquilibration"`
	LobbyID             string         `json:"lobbyId"`
	ResonatorName       string         `json:"resonatorName"`
	ExpectedPhase       string         `json:"expectedPhase"`
	ExpectedTurn        string         `json:"expectedTurn"`
	Sequences           map[string]int `json:"sequences"`
	PlayerSlot          string         `json:"playerSlot"`
}

// Decode parses one inbound message. It returns an error for malformed JSON,
// an unknown action name, or a missing required field; callers reply the error
// to the sender and change nothing.
func Decode(data []byte) (Action, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("invalid message format, body must be JSON: %w", err)
	}

	switch env.Action {
	case "createLobby":
		if env.Name == "" {
			return nil, missing("createLobby", "name")
		}
		return CreateLobby{Name: env.Name, EnableEquilibration: env.EnableEquilibration}, nil
	case "joinLobby":
		if env.LobbyID == "" {
			return nil, missing("joinLobby", "lobbyId")
		}
		if env.Name == "" {
			return nil, missing("joinLobby", "name")
		}
		return JoinLobby{LobbyID: env.LobbyID, Name: env.Name}, nil
	case "playerReady":
		return PlayerReady{}, nil
	case "hostStartsDraft":
		if env.LobbyID == "" {
			return nil, missing("hostStartsDraft", "lobbyId")
		}
		return HostStartsDraft{LobbyID: env.LobbyID}, nil
	case "makeBan":
		if env.ResonatorName == "" {
			return nil, missing("makeBan", "resonatorName")
		}
		return MakeBan{ResonatorName: env.ResonatorName}, nil
	case "makePick":
		if env.ResonatorName == "" {
			return nil, missing("makePick", "resonatorName")
		}
		return MakePick{ResonatorName: env.ResonatorName}, nil
	case "turnTimeout":
		if env.ExpectedPhase == "" {
			return nil, missing("turnTimeout", "expectedPhase")
		}
		if env.ExpectedTurn == "" {
			return nil, missing("turnTimeout", "expectedTurn")
		}
		return TurnTimeout{ExpectedPhase: env.ExpectedPhase, ExpectedTurn: env.ExpectedTurn}, nil
	case "submitBoxScore":
		if env.LobbyID == "" {
			return nil, missing("submitBoxScore", "lobbyId")
		}
		if env.Sequences == nil {
			return nil, missing("submitBoxScore", "sequences")
		}
		return SubmitBoxScore{LobbyID: env.LobbyID, Sequences: env.Sequences}, nil
	case "leaveLobby":
		if env.LobbyID == "" {
			return nil, missing("leaveLobby", "lobbyId")
		}
		return LeaveLobby{LobbyID: env.LobbyID}, nil
	case "deleteLobby":
		if env.LobbyID == "" {
			return nil, missing("deleteLobby", "lobbyId")
		}
		return DeleteLobby{LobbyID: env.LobbyID}, nil
	case "kickPlayer":
		if env.LobbyID == "" {
			return nil, missing("kickPlayer", "lobbyId")
		}
		if env.PlayerSlot != "P1" && env.PlayerSlot != "P2" {
			return nil, fmt.Errorf("kickPlayer: playerSlot must be P1 or P2")
		}
		return KickPlayer{LobbyID: env.LobbyID, PlayerSlot: env.PlayerSlot}, nil
	case "hostJoinSlot":
		if env.LobbyID == "" {
			return nil, missing("hostJoinSlot", "lobbyId")
		}
		return HostJoinSlot{LobbyID: env.LobbyID}, nil
	case "hostLeaveSlot":
		if env.LobbyID == "" {
			return nil, missing("hostLeaveSlot", "lobbyId")
		}
		return HostLeaveSlot{LobbyID: env.LobbyID}, nil
	case "resetDraft":
		if env.LobbyID == "" {
			return nil, missing("resetDraft", "lobbyId")
		}
		return ResetDraft{LobbyID: env.LobbyID}, nil
	case "ping":
		return Ping{}, nil
	case "":
		return nil, fmt.Errorf("message has no action")
	default:
		return nil, fmt.Errorf("unknown action %q", env.Action)
	}
}

func missing(action, field string) error {
	return fmt.Errorf("%s: missing required field %q", action, field)
}
