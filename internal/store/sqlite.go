package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/wuwadraft/backend/internal/lobby"
)

// SQLite backs both record stores with one database file. Lobby records are
// stored as a JSON document plus a revision counter; conditional updates are
// compare-and-swap on the revision, so a concurrent writer always surfaces as
// lobby.ErrConflict instead of a lost update.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database and runs migrations.
// The parent directory is created too, so a configured path may point
// anywhere.
func OpenSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			return nil, fmt.Errorf("pragma failed: %w", err)
		}
	}

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return s, nil
}

func (s *SQLite) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS lobbies (
			lobby_id TEXT PRIMARY KEY,
			record TEXT NOT NULL,
			revision INTEGER NOT NULL DEFAULT 1,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS connections (
			connection_id TEXT PRIMARY KEY,
			lobby_id TEXT,
			player_name TEXT,
			connected_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	}
	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Lobbies returns the lobby record store.
func (s *SQLite) Lobbies() lobby.LobbyStore {
	return &sqliteLobbies{db: s.db}
}

// Conns returns the connection bookkeeping store.
func (s *SQLite) Conns() lobby.ConnStore {
	return &sqliteConns{db: s.db}
}

type sqliteLobbies struct {
	db *sql.DB
}

// Get reads one lobby record. SQLite on a single node has no stale-replica
// mode, so the consistent flag changes nothing here.
func (s *sqliteLobbies) Get(ctx context.Context, id string, _ bool) (*lobby.Lobby, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT record FROM lobbies WHERE lobby_id = ?`, id).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, lobby.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var lb lobby.Lobby
	if err := json.Unmarshal([]byte(raw), &lb); err != nil {
		return nil, fmt.Errorf("decode lobby %s: %w", id, err)
	}
	return &lb, nil
}

func (s *sqliteLobbies) Put(ctx context.Context, lb *lobby.Lobby) error {
	raw, err := json.Marshal(lb)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO lobbies (lobby_id, record, revision, updated_at)
		 VALUES (?, ?, 1, ?)
		 ON CONFLICT(lobby_id) DO UPDATE SET
			record = excluded.record,
			revision = lobbies.revision + 1,
			updated_at = excluded.updated_at`,
		lb.LobbyID, string(raw), time.Now().UTC())
	return err
}

func (s *sqliteLobbies) Update(ctx context.Context, id string, cond func(*lobby.Lobby) bool, mutate func(*lobby.Lobby)) (*lobby.Lobby, error) {
	var raw string
	var revision int64
	err := s.db.QueryRowContext(ctx,
		`SELECT record, revision FROM lobbies WHERE lobby_id = ?`, id).Scan(&raw, &revision)
	if err == sql.ErrNoRows {
		return nil, lobby.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var lb lobby.Lobby
	if err := json.Unmarshal([]byte(raw), &lb); err != nil {
		return nil, fmt.Errorf("decode lobby %s: %w", id, err)
	}
	if !cond(&lb) {
		return nil, lobby.ErrConflict
	}
	mutate(&lb)

	next, err := json.Marshal(&lb)
	if err != nil {
		return nil, err
	}

	// Revision guard: if any writer committed since the read above, zero
	// rows match and the update is reported as a conflict, never applied.
	res, err := s.db.ExecContext(ctx,
		`UPDATE lobbies SET record = ?, revision = revision + 1, updated_at = ?
		 WHERE lobby_id = ? AND revision = ?`,
		string(next), time.Now().UTC(), id, revision)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, lobby.ErrConflict
	}
	return &lb, nil
}

func (s *sqliteLobbies) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM lobbies WHERE lobby_id = ?`, id)
	return err
}

type sqliteConns struct {
	db *sql.DB
}

func (s *sqliteConns) Get(ctx context.Context, id string) (*lobby.Connection, error) {
	var c lobby.Connection
	var lobbyID, name sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT connection_id, lobby_id, player_name FROM connections WHERE connection_id = ?`, id).
		Scan(&c.ID, &lobbyID, &name)
	if err == sql.ErrNoRows {
		return nil, lobby.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	c.LobbyID = lobbyID.String
	c.PlayerName = name.String
	return &c, nil
}

func (s *sqliteConns) Put(ctx context.Context, c *lobby.Connection) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO connections (connection_id, lobby_id, player_name)
		 VALUES (?, ?, ?)
		 ON CONFLICT(connection_id) DO UPDATE SET
			lobby_id = excluded.lobby_id,
			player_name = excluded.player_name`,
		c.ID, c.LobbyID, c.PlayerName)
	return err
}

func (s *sqliteConns) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM connections WHERE connection_id = ?`, id)
	return err
}
