package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sirupsen/logrus"

	"github.com/wuwadraft/backend/internal/gateway"
	"github.com/wuwadraft/backend/internal/lobby"
	"github.com/wuwadraft/backend/internal/store"
)

type config struct {
	Port         string `env:"PORT" envDefault:"8080"`
	DatabasePath string `env:"DATABASE_PATH" envDefault:"./data/wuwadraft.db"`
	// MemoryStore runs without SQLite; lobbies vanish on restart.
	MemoryStore bool   `env:"MEMORY_STORE" envDefault:"false"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
}

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		log.WithError(err).Fatal("failed to parse configuration")
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.WithField("level", cfg.LogLevel).Warn("invalid LOG_LEVEL, using info")
	}

	var lobbies lobby.LobbyStore
	var conns lobby.ConnStore
	if cfg.MemoryStore {
		log.Info("using in-memory store")
		lobbies = store.NewMemoryLobbyStore()
		conns = store.NewMemoryConnStore()
	} else {
		db, err := store.OpenSQLite(cfg.DatabasePath)
		if err != nil {
			log.WithError(err).Fatal("failed to initialize database")
		}
		defer db.Close()
		lobbies = db.Lobbies()
		conns = db.Conns()
	}

	registry := gateway.NewRegistry()
	machine := lobby.NewMachine(lobbies, conns, registry, log)
	gw := gateway.New(registry, machine, conns, log)

	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: gw.Router(),
	}

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop

		log.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("HTTP server shutdown error")
		}
	}()

	log.WithField("port", cfg.Port).Info("server running")
	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		log.WithError(err).Fatal("HTTP server error")
	}
	log.Info("server stopped")
}
