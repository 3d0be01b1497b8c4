package session

import (
	"context"
	"errors"
	"sync"
)

// Manager owns one session per signed-in account.
type Manager struct {
	loader *Loader

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates a session manager.
func NewManager(loader *Loader) *Manager {
	return &Manager{loader: loader, sessions: map[string]*Session{}}
}

// GetOrLoad returns the account's session, bootstrapping one on first use.
// A returned ErrLoadTimeout still carries a usable partial session.
func (m *Manager) GetOrLoad(ctx context.Context, userID string) (*Session, error) {
	m.mu.Lock()
	if s, ok := m.sessions[userID]; ok {
		m.mu.Unlock()
		return s, nil
	}
	m.mu.Unlock()

	s, err := m.loader.Load(ctx, userID)
	if err != nil && !errors.Is(err, ErrLoadTimeout) {
		return nil, err
	}
	m.mu.Lock()
	// Another request may have loaded concurrently; keep the first one.
	if existing, ok := m.sessions[userID]; ok {
		m.mu.Unlock()
		return existing, nil
	}
	m.sessions[userID] = s
	m.mu.Unlock()
	return s, err
}

// Peek returns the account's session only if one is already loaded.
func (m *Manager) Peek(userID string) (*Session, bool) {
	m.mu.Lock()
	s, ok := m.sessions[userID]
	m.mu.Unlock()
	return s, ok
}

// Refresh re-fetches an existing session, keeping last-known-good on
// failure. Without an existing session it behaves like GetOrLoad.
func (m *Manager) Refresh(ctx context.Context, userID string) (*Session, error) {
	m.mu.Lock()
	s, ok := m.sessions[userID]
	m.mu.Unlock()
	if !ok {
		return m.GetOrLoad(ctx, userID)
	}
	if err := m.loader.Refresh(ctx, s); err != nil {
		return s, err
	}
	return s, nil
}

// End discards the account's session.
func (m *Manager) End(userID string) {
	m.mu.Lock()
	delete(m.sessions, userID)
	m.mu.Unlock()
}
