package session

import (
	"sync"

	"github.com/flamematch/backend/internal/chat"
)

// Manager hands out one Session per authenticated user id, created
// lazily on first use and dropped on logout.
type Manager struct {
	hub *chat.Hub

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a session manager whose sessions subscribe through
// the given chat hub.
func NewManager(hub *chat.Hub) *Manager {
	return &Manager{
		hub:      hub,
		sessions: make(map[string]*Session),
	}
}

// Get returns the session for a user, creating it if needed.
func (m *Manager) Get(userID string) *Session {
	m.mu.RLock()
	s, ok := m.sessions[userID]
	m.mu.RUnlock()
	if ok {
		return s
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[userID]; ok {
		return s
	}
	s = newSession(userID, m.hub)
	m.sessions[userID] = s
	return s
}

// Drop releases a user's session and its live subscription. Called on
// logout; a later request simply gets a fresh session.
func (m *Manager) Drop(userID string) {
	m.mu.Lock()
	s, ok := m.sessions[userID]
	delete(m.sessions, userID)
	m.mu.Unlock()

	if ok {
		s.close()
	}
}
