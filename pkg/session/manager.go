package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// ErrCredentialsRequired is returned when a login or register form is submitted with empty fields.
var ErrCredentialsRequired = errors.New("all fields are required")

// Authenticator is the part of the API used to obtain a credential.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (string, error)
	Register(ctx context.Context, name, email, password string) error
}

// Manager runs the login, register and logout flows against a Store.
type Manager struct {
	store *Store
	auth  Authenticator
}

// NewManager creates a Manager.
func NewManager(store *Store, auth Authenticator) *Manager {
	return &Manager{store: store, auth: auth}
}

// Store returns the underlying credential store.
func (m *Manager) Store() *Store {
	return m.store
}

// Login exchanges email and password for a token and persists it.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return ErrCredentialsRequired
	}

	token, err := m.auth.Login(ctx, email, password)
	if err != nil {
		return fmt.Errorf("error logging in as %s: %w", email, err)
	}

	if token == "" {
		return fmt.Errorf("error logging in as %s: %w", email, ErrNotAuthenticated)
	}

	if err := m.store.SetToken(ctx, token); err != nil {
		return err
	}

	log.Info().Str("email", email).Msg("logged in")

	return nil
}

// Register creates an account. It does not log in.
func (m *Manager) Register(ctx context.Context, name, email, password string) error {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	if name == "" || email == "" || password == "" {
		return ErrCredentialsRequired
	}

	if err := m.auth.Register(ctx, name, email, password); err != nil {
		return fmt.Errorf("error registering %s: %w", email, err)
	}

	log.Info().Str("email", email).Msg("registered")

	return nil
}

// Logout forgets the stored credential.
func (m *Manager) Logout(ctx context.Context) error {
	log.Info().Msg("logging out")

	return m.store.Clear(ctx)
}
