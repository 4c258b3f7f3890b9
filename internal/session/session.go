// Package session holds the per-browser credential state: the backend bearer
// token and the user profile returned at login.
package session

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/thesis-review-portal/internal/models"
)

// Store persists credentials per browser session id. Absent values are not
// errors: GetToken returns "" and GetUser returns nil.
type Store interface {
	GetToken(ctx context.Context, sid string) (string, error)
	SetToken(ctx context.Context, sid, token string) error
	RemoveToken(ctx context.Context, sid string) error

	GetUser(ctx context.Context, sid string) (*models.User, error)
	SetUser(ctx context.Context, sid string, user *models.User) error
	RemoveUser(ctx context.Context, sid string) error
}

// Session is the credential state of one browser, passed explicitly to every
// gateway call. A non-empty Token means the browser is authenticated.
type Session struct {
	ID    string
	Token string
	User  *models.User
}

func (s *Session) Authenticated() bool {
	return s != nil && s.Token != ""
}

// Manager is the only component that reads or writes the Store.
type Manager struct {
	store Store
}

func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

// Load restores the session for sid. A browser without stored credentials gets
// an anonymous session.
func (m *Manager) Load(ctx context.Context, sid string) (*Session, error) {
	token, err := m.store.GetToken(ctx, sid)
	if err != nil {
		return nil, fmt.Errorf("load token: %w", err)
	}
	user, err := m.store.GetUser(ctx, sid)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return &Session{ID: sid, Token: token, User: user}, nil
}

// Save writes the token and profile of s. An empty token clears the stored
// credentials instead.
func (m *Manager) Save(ctx context.Context, s *Session) error {
	if s.Token == "" {
		return m.Clear(ctx, s)
	}
	if err := m.store.SetToken(ctx, s.ID, s.Token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	if s.User == nil {
		if err := m.store.RemoveUser(ctx, s.ID); err != nil {
			return fmt.Errorf("remove user: %w", err)
		}
		return nil
	}
	if err := m.store.SetUser(ctx, s.ID, s.User); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

// Clear removes the stored credentials and resets s to anonymous.
func (m *Manager) Clear(ctx context.Context, s *Session) error {
	s.Token = ""
	s.User = nil
	if err := m.store.RemoveToken(ctx, s.ID); err != nil {
		return fmt.Errorf("remove token: %w", err)
	}
	if err := m.store.RemoveUser(ctx, s.ID); err != nil {
		return fmt.Errorf("remove user: %w", err)
	}
	return nil
}
