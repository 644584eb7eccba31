package gateway

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wuwadraft/backend/internal/lobby"
)

const writeTimeout = 10 * time.Second

// Registry tracks live sockets by connection ID and implements the
// push-to-connection primitive the state machine broadcasts through.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]*client
}

type client struct {
	conn *websocket.Conn
	// Serializes writes; gorilla connections allow one concurrent writer.
	mu sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]*client)}
}

func (r *Registry) register(id string, conn *websocket.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[id] = &client{conn: conn}
}

func (r *Registry) deregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, id)
}

// Push sends one payload to one connection. A missing or dead peer returns
// lobby.ErrGone; callers treat that as a log-and-continue outcome.
func (r *Registry) Push(_ context.Context, connID string, payload []byte) error {
	r.mu.RLock()
	c, ok := r.clients[connID]
	r.mu.RUnlock()
	if !ok {
		return lobby.ErrGone
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		// A failed write marks the peer dead: drop it now so later
		// broadcasts fail fast instead of eating the write deadline, and
		// close the socket so the read loop runs its teardown.
		r.deregister(connID)
		_ = c.conn.Close()
		return fmt.Errorf("%w: %v", lobby.ErrGone, err)
	}
	return nil
}
