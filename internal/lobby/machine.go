// Package lobby implements the authoritative draft/lobby state machine. Each
// inbound action is handled by an independent stateless invocation against
// the shared lobby record; every mutation goes through a conditioned store
// write, and condition failure is an expected race outcome.
package lobby

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/wuwadraft/backend/internal/protocol"
)

// Validation/authorization sentinels shared by several handlers.
var (
	errLobbyFull      = errors.New("lobby is full")
	errNotHost        = errors.New("only the host can do that")
	errNotSeated      = errors.New("you are not seated in this lobby")
	errNotYourTurn    = errors.New("not your turn")
	errNotAvailable   = errors.New("resonator is not available")
	errScoresRequired = errors.New("both players must submit their box scores before the draft can be prepared")
)

// Machine wires the state machine to its collaborators. It holds no lobby
// state of its own; the record store is the single source of truth.
type Machine struct {
	lobbies LobbyStore
	conns   ConnStore
	push    Pusher
	log     *logrus.Logger

	now   func() time.Time
	newID func() string

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewMachine builds a Machine over the given collaborators.
func NewMachine(lobbies LobbyStore, conns ConnStore, push Pusher, log *logrus.Logger) *Machine {
	return &Machine{
		lobbies: lobbies,
		conns:   conns,
		push:    push,
		log:     log,
		now:     time.Now,
		newID:   newLobbyID,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// newLobbyID is the original scheme: first 8 characters of a UUID4,
// uppercased.
func newLobbyID() string {
	return strings.ToUpper(uuid.NewString()[:8])
}

func (m *Machine) randIntn(n int) int {
	m.rngMu.Lock()
	defer m.rngMu.Unlock()
	return m.rng.Intn(n)
}

// Handle decodes one inbound message from connID and dispatches it. Every
// failure is reported only to the triggering connection.
func (m *Machine) Handle(ctx context.Context, connID string, raw []byte) {
	action, err := protocol.Decode(raw)
	if err != nil {
		m.replyError(ctx, connID, err)
		return
	}

	switch a := action.(type) {
	case protocol.CreateLobby:
		err = m.handleCreateLobby(ctx, connID, a)
	case protocol.JoinLobby:
		err = m.handleJoinLobby(ctx, connID, a)
	case protocol.PlayerReady:
		err = m.handlePlayerReady(ctx, connID)
	case protocol.SubmitBoxScore:
		err = m.handleSubmitBoxScore(ctx, connID, a)
	case protocol.HostStartsDraft:
		err = m.handleHostStartsDraft(ctx, connID, a)
	case protocol.MakeBan:
		err = m.handleDraftMove(ctx, connID, a.ResonatorName, true)
	case protocol.MakePick:
		err = m.handleDraftMove(ctx, connID, a.ResonatorName, false)
	case protocol.TurnTimeout:
		err = m.handleTurnTimeout(ctx, connID, a)
	case protocol.LeaveLobby:
		err = m.handleLeaveLobby(ctx, connID, a)
	case protocol.DeleteLobby:
		err = m.handleDeleteLobby(ctx, connID, a)
	case protocol.KickPlayer:
		err = m.handleKickPlayer(ctx, connID, a)
	case protocol.HostJoinSlot:
		err = m.handleHostJoinSlot(ctx, connID, a)
	case protocol.HostLeaveSlot:
		err = m.handleHostLeaveSlot(ctx, connID, a)
	case protocol.ResetDraft:
		err = m.handleResetDraft(ctx, connID, a)
	case protocol.Ping:
		m.send(ctx, connID, protocol.Pong{Type: "pong"})
	}

	if err != nil {
		m.replyError(ctx, connID, err)
	}
}

// HandleDisconnect cleans up after a dropped connection: the transport calls
// this once the socket is gone. A host disconnect terminates the lobby; a
// seated player's disconnect frees the seat and, mid-draft, resets it.
func (m *Machine) HandleDisconnect(ctx context.Context, connID string) {
	conn, err := m.conns.Get(ctx, connID)
	if errors.Is(err, ErrNotFound) {
		return
	}
	if err != nil {
		m.log.WithError(err).WithField("conn", connID).Error("disconnect: connection lookup failed")
		return
	}

	if err := m.conns.Delete(ctx, connID); err != nil {
		m.log.WithError(err).WithField("conn", connID).Warn("disconnect: connection cleanup failed")
	}

	if conn.LobbyID == "" {
		return
	}

	lb, err := m.lobbies.Get(ctx, conn.LobbyID, true)
	if errors.Is(err, ErrNotFound) {
		return
	}
	if err != nil {
		m.log.WithError(err).WithField("lobby", conn.LobbyID).Error("disconnect: lobby read failed")
		return
	}

	if lb.HostConnectionID == connID {
		m.terminateLobby(ctx, lb, connID, protocol.RedirectHostDisconnected, "The host disconnected.")
		return
	}

	seat, ok := lb.SeatOf(connID)
	if !ok {
		return
	}
	m.removeSeatedPlayer(ctx, lb.LobbyID, connID, seat, lb.NameFor(seat)+" disconnected")
}

// send marshals and pushes one point-to-point message. Push failures are
// logged; the peer being gone must never fail the action that triggered the
// message.
func (m *Machine) send(ctx context.Context, connID string, msg any) {
	payload, err := json.Marshal(msg)
	if err != nil {
		m.log.WithError(err).Error("marshal reply")
		return
	}
	if err := m.push.Push(ctx, connID, payload); err != nil {
		m.log.WithError(err).WithField("conn", connID).Warn("push failed")
	}
}

func (m *Machine) replyError(ctx context.Context, connID string, err error) {
	msg := err.Error()
	if errors.Is(err, ErrConflict) {
		msg = "another action was applied first; waiting for the next state update"
	}
	m.send(ctx, connID, protocol.ErrorReply{Type: "error", Message: msg})
}

// lobbyFor resolves the caller's lobby through its connection record.
func (m *Machine) lobbyFor(ctx context.Context, connID string) (*Lobby, error) {
	conn, err := m.conns.Get(ctx, connID)
	if err != nil {
		return nil, errors.New("you are not in a lobby")
	}
	if conn.LobbyID == "" {
		return nil, errors.New("you are not in a lobby")
	}
	lb, err := m.lobbies.Get(ctx, conn.LobbyID, true)
	if err != nil {
		return nil, errors.New("lobby not found")
	}
	return lb, nil
}
