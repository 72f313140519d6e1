package session

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"sync"
	"time"

	// use the sqlite db driver.
	_ "github.com/mattn/go-sqlite3"
)

//go:embed base.sql
var baseSQL string

// TokenSlot is the fixed storage slot holding the bearer token.
const TokenSlot = "token"

// ErrNotAuthenticated is returned when an operation needs a credential and none is stored.
var ErrNotAuthenticated = errors.New("not authenticated")

// Store persists the bearer credential in a sqlite file so it survives restarts.
// The token is cached in memory; writes go through to the db.
type Store struct {
	conn  *sql.DB
	mu    sync.RWMutex
	token string
}

// Open connects to the sqlite database at the given filename, initializes the structure
// if not present, and loads any stored credential.
func Open(ctx context.Context, filename string) (*Store, error) {
	conn, err := sql.Open("sqlite3", filename)
	if err != nil {
		return nil, fmt.Errorf("error connecting to sqlite db at %s: %w", filename, err)
	}

	store := &Store{conn: conn}

	if _, err := conn.ExecContext(ctx, baseSQL); err != nil {
		conn.Close()

		return nil, fmt.Errorf("error running base sql: %w", err)
	}

	if err := store.load(ctx); err != nil {
		conn.Close()

		return nil, err
	}

	return store, nil
}

func (s *Store) load(ctx context.Context) error {
	var token string

	err := s.conn.QueryRowContext(ctx, `SELECT token FROM credential WHERE slot = $1`, TokenSlot).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("error loading credential: %w", err)
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Token returns the stored bearer token, if any.
func (s *Store) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.token, s.token != ""
}

// Authenticated reports whether protected pages may be shown.
func (s *Store) Authenticated() bool {
	_, ok := s.Token()

	return ok
}

// SetToken stores the token, replacing whatever was there.
func (s *Store) SetToken(ctx context.Context, token string) error {
	if token == "" {
		return s.Clear(ctx)
	}

	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO credential (slot, token, updated_datetime) VALUES ($1, $2, $3)
		     ON CONFLICT(slot) DO UPDATE SET token = excluded.token, updated_datetime = excluded.updated_datetime`,
		TokenSlot, token, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("error saving credential: %w", err)
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	return nil
}

// Clear removes the stored token.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.conn.ExecContext(ctx, `DELETE FROM credential WHERE slot = $1`, TokenSlot); err != nil {
		return fmt.Errorf("error clearing credential: %w", err)
	}

	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()

	return nil
}
