package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wuwadraft/backend/internal/lobby"
)

func TestMemoryLobbyStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryLobbyStore()

	_, err := s.Get(ctx, "NOPE1234", true)
	assert.ErrorIs(t, err, lobby.ErrNotFound)

	lb := &lobby.Lobby{LobbyID: "AB12CD34", HostName: "Host", State: lobby.StateWaiting, CurrentStepIndex: -1}
	require.NoError(t, s.Put(ctx, lb))

	got, err := s.Get(ctx, "AB12CD34", true)
	require.NoError(t, err)
	assert.Equal(t, "Host", got.HostName)

	// The store must hand out copies, not aliases.
	got.HostName = "Impostor"
	again, err := s.Get(ctx, "AB12CD34", false)
	require.NoError(t, err)
	assert.Equal(t, "Host", again.HostName)

	require.NoError(t, s.Delete(ctx, "AB12CD34"))
	_, err = s.Get(ctx, "AB12CD34", true)
	assert.ErrorIs(t, err, lobby.ErrNotFound)
}

func TestMemoryLobbyStoreConditionalUpdate(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryLobbyStore()
	require.NoError(t, s.Put(ctx, &lobby.Lobby{LobbyID: "AB12CD34", State: lobby.StateWaiting, CurrentStepIndex: -1}))

	updated, err := s.Update(ctx, "AB12CD34",
		func(cur *lobby.Lobby) bool { return cur.State == lobby.StateWaiting },
		func(cur *lobby.Lobby) { cur.State = lobby.StatePreDraftReady })
	require.NoError(t, err)
	assert.Equal(t, lobby.StatePreDraftReady, updated.State)

	// Same condition again: the discriminator moved, so this must conflict
	// and leave the record untouched no matter how often it is replayed.
	for i := 0; i < 3; i++ {
		_, err = s.Update(ctx, "AB12CD34",
			func(cur *lobby.Lobby) bool { return cur.State == lobby.StateWaiting },
			func(cur *lobby.Lobby) { cur.State = lobby.StateDrafting })
		assert.ErrorIs(t, err, lobby.ErrConflict)
	}

	got, err := s.Get(ctx, "AB12CD34", true)
	require.NoError(t, err)
	assert.Equal(t, lobby.StatePreDraftReady, got.State)

	_, err = s.Update(ctx, "MISSING1",
		func(*lobby.Lobby) bool { return true },
		func(*lobby.Lobby) {})
	assert.ErrorIs(t, err, lobby.ErrNotFound)
}

// Concurrent conditional increments must never lose a write.
func TestMemoryLobbyStoreUpdateIsAtomic(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryLobbyStore()
	require.NoError(t, s.Put(ctx, &lobby.Lobby{LobbyID: "AB12CD34", CurrentStepIndex: 0}))

	const writers = 20
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Update(ctx, "AB12CD34",
				func(*lobby.Lobby) bool { return true },
				func(cur *lobby.Lobby) { cur.CurrentStepIndex++ })
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := s.Get(ctx, "AB12CD34", true)
	require.NoError(t, err)
	assert.Equal(t, writers, got.CurrentStepIndex)
}

func TestMemoryConnStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryConnStore()

	_, err := s.Get(ctx, "conn-1")
	assert.ErrorIs(t, err, lobby.ErrNotFound)

	require.NoError(t, s.Put(ctx, &lobby.Connection{ID: "conn-1", LobbyID: "AB12CD34", PlayerName: "Aki"}))
	got, err := s.Get(ctx, "conn-1")
	require.NoError(t, err)
	assert.Equal(t, "AB12CD34", got.LobbyID)

	got.LobbyID = ""
	require.NoError(t, s.Put(ctx, got))
	again, err := s.Get(ctx, "conn-1")
	require.NoError(t, err)
	assert.Empty(t, again.LobbyID)

	require.NoError(t, s.Delete(ctx, "conn-1"))
	_, err = s.Get(ctx, "conn-1")
	assert.ErrorIs(t, err, lobby.ErrNotFound)
}
