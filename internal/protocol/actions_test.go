package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	cases := []struct {
		name    string
		in      string
		want    Action
		wantErr bool
	}{
		{
			name: "createLobby",
			in:   `{"action":"createLobby","name":"Host","enableEquilibration":true}`,
			want: CreateLobby{Name: "Host", EnableEquilibration: true},
		},
		{
			name:    "createLobby without name",
			in:      `{"action":"createLobby"}`,
			wantErr: true,
		},
		{
			name: "joinLobby",
			in:   `{"action":"joinLobby","lobbyId":"AB12CD34","name":"Aki"}`,
			want: JoinLobby{LobbyID: "AB12CD34", Name: "Aki"},
		},
		{
			name:    "joinLobby without lobbyId",
			in:      `{"action":"joinLobby","name":"Aki"}`,
			wantErr: true,
		},
		{
			name: "playerReady ignores extras",
			in:   `{"action":"playerReady","whatever":1}`,
			want: PlayerReady{},
		},
		{
			name: "makeBan",
			in:   `{"action":"makeBan","resonatorName":"Jiyan"}`,
			want: MakeBan{ResonatorName: "Jiyan"},
		},
		{
			name: "makePick",
			in:   `{"action":"makePick","resonatorName":"Verina"}`,
			want: MakePick{ResonatorName: "Verina"},
		},
		{
			name:    "makePick without resonator",
			in:      `{"action":"makePick"}`,
			wantErr: true,
		},
		{
			name: "turnTimeout",
			in:   `{"action":"turnTimeout","expectedPhase":"BAN1","expectedTurn":"P2"}`,
			want: TurnTimeout{ExpectedPhase: "BAN1", ExpectedTurn: "P2"},
		},
		{
			name:    "turnTimeout without turn",
			in:      `{"action":"turnTimeout","expectedPhase":"BAN1"}`,
			wantErr: true,
		},
		{
			name: "submitBoxScore",
			in:   `{"action":"submitBoxScore","lobbyId":"AB12CD34","sequences":{"Jiyan":2}}`,
			want: SubmitBoxScore{LobbyID: "AB12CD34", Sequences: map[string]int{"Jiyan": 2}},
		},
		{
			name:    "submitBoxScore without sequences",
			in:      `{"action":"submitBoxScore","lobbyId":"AB12CD34"}`,
			wantErr: true,
		},
		{
			name: "kickPlayer",
			in:   `{"action":"kickPlayer","lobbyId":"AB12CD34","playerSlot":"P2"}`,
			want: KickPlayer{LobbyID: "AB12CD34", PlayerSlot: "P2"},
		},
		{
			name:    "kickPlayer bad slot",
			in:      `{"action":"kickPlayer","lobbyId":"AB12CD34","playerSlot":"P3"}`,
			wantErr: true,
		},
		{
			name: "hostStartsDraft",
			in:   `{"action":"hostStartsDraft","lobbyId":"AB12CD34"}`,
			want: HostStartsDraft{LobbyID: "AB12CD34"},
		},
		{
			name: "hostJoinSlot",
			in:   `{"action":"hostJoinSlot","lobbyId":"AB12CD34"}`,
			want: HostJoinSlot{LobbyID: "AB12CD34"},
		},
		{
			name: "hostLeaveSlot",
			in:   `{"action":"hostLeaveSlot","lobbyId":"AB12CD34"}`,
			want: HostLeaveSlot{LobbyID: "AB12CD34"},
		},
		{
			name: "resetDraft",
			in:   `{"action":"resetDraft","lobbyId":"AB12CD34"}`,
			want: ResetDraft{LobbyID: "AB12CD34"},
		},
		{
			name: "leaveLobby",
			in:   `{"action":"leaveLobby","lobbyId":"AB12CD34"}`,
			want: LeaveLobby{LobbyID: "AB12CD34"},
		},
		{
			name: "deleteLobby",
			in:   `{"action":"deleteLobby","lobbyId":"AB12CD34"}`,
			want: DeleteLobby{LobbyID: "AB12CD34"},
		},
		{
			name: "ping",
			in:   `{"action":"ping"}`,
			want: Ping{},
		},
		{
			name:    "unknown action",
			in:      `{"action":"castUltimate"}`,
			wantErr: true,
		},
		{
			name:    "no action",
			in:      `{"name":"Aki"}`,
			wantErr: true,
		},
		{
			name:    "not json",
			in:      `hello`,
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Decode([]byte(tc.in))
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
