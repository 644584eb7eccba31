// Package store provides the lobby and connection record stores: an
// in-memory implementation used by tests and dev mode, and a SQLite-backed
// one for real deployments. Both guarantee per-key compare-and-swap
// semantics for lobby updates.
package store

import (
	"context"
	"sync"

	"github.com/wuwadraft/backend/internal/lobby"
)

// MemoryLobbyStore keeps lobby records in a map under one mutex, handing out
// deep copies so callers never alias stored state.
type MemoryLobbyStore struct {
	mu      sync.Mutex
	lobbies map[string]*lobby.Lobby
}

func NewMemoryLobbyStore() *MemoryLobbyStore {
	return &MemoryLobbyStore{lobbies: make(map[string]*lobby.Lobby)}
}

func (s *MemoryLobbyStore) Get(_ context.Context, id string, _ bool) (*lobby.Lobby, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lb, ok := s.lobbies[id]
	if !ok {
		return nil, lobby.ErrNotFound
	}
	return lb.Clone(), nil
}

func (s *MemoryLobbyStore) Put(_ context.Context, lb *lobby.Lobby) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lobbies[lb.LobbyID] = lb.Clone()
	return nil
}

func (s *MemoryLobbyStore) Update(_ context.Context, id string, cond func(*lobby.Lobby) bool, mutate func(*lobby.Lobby)) (*lobby.Lobby, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.lobbies[id]
	if !ok {
		return nil, lobby.ErrNotFound
	}
	if !cond(cur.Clone()) {
		return nil, lobby.ErrConflict
	}
	next := cur.Clone()
	mutate(next)
	s.lobbies[id] = next
	return next.Clone(), nil
}

func (s *MemoryLobbyStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.lobbies, id)
	return nil
}

// MemoryConnStore is the in-memory connection bookkeeping table.
type MemoryConnStore struct {
	mu    sync.Mutex
	conns map[string]lobby.Connection
}

func NewMemoryConnStore() *MemoryConnStore {
	return &MemoryConnStore{conns: make(map[string]lobby.Connection)}
}

func (s *MemoryConnStore) Get(_ context.Context, id string) (*lobby.Connection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.conns[id]
	if !ok {
		return nil, lobby.ErrNotFound
	}
	out := c
	return &out, nil
}

func (s *MemoryConnStore) Put(_ context.Context, c *lobby.Connection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conns[c.ID] = *c
	return nil
}

func (s *MemoryConnStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, id)
	return nil
}
