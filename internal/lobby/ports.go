package lobby

import (
	"context"
	"errors"
)

// ErrNotFound is returned by stores when no record exists for the key.
var ErrNotFound = errors.New("record not found")

// ErrConflict is returned by LobbyStore.Update when the condition no longer
// holds. It is an expected race outcome, not a failure: the caller replies a
// conflict to the requester and lets the winning invocation's broadcast
// resync everyone.
var ErrConflict = errors.New("conditional update failed")

// ErrGone is returned by Pusher when the peer connection no longer exists.
var ErrGone = errors.New("connection gone")

// LobbyStore is the shared record store. Implementations must guarantee
// compare-and-swap semantics per key: Update atomically reads the current
// record, evaluates cond against it, and applies mutate only if cond holds.
type LobbyStore interface {
	// Get reads a lobby. consistent requests a strongly-consistent read.
	Get(ctx context.Context, id string, consistent bool) (*Lobby, error)
	// Put stores a full record, replacing any existing one.
	Put(ctx context.Context, lb *Lobby) error
	// Update applies mutate under cond and returns the updated record, or
	// ErrConflict if cond failed, or ErrNotFound.
	Update(ctx context.Context, id string, cond func(*Lobby) bool, mutate func(*Lobby)) (*Lobby, error)
	// Delete removes a lobby. Deleting a missing lobby is not an error.
	Delete(ctx context.Context, id string) error
}

// Connection is the transport-level bookkeeping record mapping an opaque
// connection identifier to a lobby membership.
type Connection struct {
	ID         string `json:"connectionId"`
	LobbyID    string `json:"currentLobbyId,omitempty"`
	PlayerName string `json:"playerName,omitempty"`
}

// ConnStore tracks live connections.
type ConnStore interface {
	Get(ctx context.Context, id string) (*Connection, error)
	Put(ctx context.Context, c *Connection) error
	Delete(ctx context.Context, id string) error
}

// Pusher delivers one payload to one connection. Push failures never roll
// back the state mutation that triggered them.
type Pusher interface {
	Push(ctx context.Context, connID string, payload []byte) error
}
