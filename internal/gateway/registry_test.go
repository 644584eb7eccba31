package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wuwadraft/backend/internal/lobby"
)

// dialPair upgrades one real websocket connection and returns both ends.
func dialPair(t *testing.T) (server, client *websocket.Conn) {
	t.Helper()
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	accepted := make(chan *websocket.Conn, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			accepted <- nil
			return
		}
		accepted <- c
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	server = <-accepted
	require.NotNil(t, server)
	return server, client
}

func (r *Registry) has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.clients[id]
	return ok
}

func TestPushToUnknownConnection(t *testing.T) {
	reg := NewRegistry()
	err := reg.Push(context.Background(), "nobody", []byte(`{}`))
	assert.ErrorIs(t, err, lobby.ErrGone)
}

func TestPushDelivers(t *testing.T) {
	reg := NewRegistry()
	server, client := dialPair(t)
	reg.register("conn-1", server)

	require.NoError(t, reg.Push(context.Background(), "conn-1", []byte(`{"type":"pong"}`)))

	kind, data, err := client.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.TextMessage, kind)
	assert.JSONEq(t, `{"type":"pong"}`, string(data))
}

// A dead peer must be dropped on the first failed write so later broadcasts
// fail fast instead of waiting out the write deadline against a closed socket.
func TestPushDeregistersDeadPeer(t *testing.T) {
	reg := NewRegistry()
	server, _ := dialPair(t)
	reg.register("conn-1", server)
	require.True(t, reg.has("conn-1"))

	require.NoError(t, server.Close())

	err := reg.Push(context.Background(), "conn-1", []byte(`{}`))
	assert.ErrorIs(t, err, lobby.ErrGone)
	assert.False(t, reg.has("conn-1"), "failed write must remove the client")

	err = reg.Push(context.Background(), "conn-1", []byte(`{}`))
	assert.ErrorIs(t, err, lobby.ErrGone)
}
