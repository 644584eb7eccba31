// Package gateway is the websocket transport: it upgrades connections,
// assigns opaque connection identifiers, and feeds inbound messages to the
// lobby state machine one at a time per connection.
package gateway

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/wuwadraft/backend/internal/lobby"
)

const (
	maxMessageSize = 32 * 1024
	readTimeout    = 10 * time.Minute
)

// Gateway owns the HTTP surface and the socket lifecycle.
type Gateway struct {
	registry *Registry
	machine  *lobby.Machine
	conns    lobby.ConnStore
	log      *logrus.Logger
	upgrader websocket.Upgrader
}

func New(registry *Registry, machine *lobby.Machine, conns lobby.ConnStore, log *logrus.Logger) *Gateway {
	return &Gateway{
		registry: registry,
		machine:  machine,
		conns:    conns,
		log:      log,
		upgrader: websocket.Upgrader{
			// The lobby code is the only admission control; origins are
			// not restricted.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Router builds the HTTP handler.
func (g *Gateway) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Get("/ws", g.handleWS)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return r
}

func (g *Gateway) handleWS(w http.ResponseWriter, r *http.Request) {
	sock, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	connID := uuid.NewString()
	ctx := r.Context()

	g.registry.register(connID, sock)
	if err := g.conns.Put(ctx, &lobby.Connection{ID: connID}); err != nil {
		g.log.WithError(err).WithField("conn", connID).Error("connection record create failed")
	}
	g.log.WithField("conn", connID).Info("connected")

	defer func() {
		g.registry.deregister(connID)
		g.machine.HandleDisconnect(ctx, connID)
		g.log.WithField("conn", connID).Info("disconnected")
		_ = sock.Close()
	}()

	sock.SetReadLimit(maxMessageSize)

	for {
		_ = sock.SetReadDeadline(time.Now().Add(readTimeout))
		_, data, err := sock.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				g.log.WithError(err).WithField("conn", connID).Debug("read failed")
			}
			return
		}
		// Messages from one connection are handled in order; concurrency
		// exists only across connections, which the conditional writes in
		// the state machine arbitrate.
		g.machine.Handle(ctx, connID, data)
	}
}
