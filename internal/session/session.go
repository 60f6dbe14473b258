// Package session models the per-user server-side session context:
// the discovery queue, the cached match list, the latest-error slot and
// the single live conversation channel. Each field has one writer (the
// flow that owns it); the mutex only guards against the owning flows
// running on different request goroutines.
package session

import (
	"sync"

	"github.com/flamematch/backend/internal/chat"
	"github.com/flamematch/backend/internal/db"
	"github.com/flamematch/backend/internal/discovery"
)

// Session is the explicit context object for one authenticated user.
type Session struct {
	UserID string

	mu      sync.Mutex
	queue   *discovery.Queue
	matches []db.Match
	lastErr error
	channel *chat.Channel
}

func newSession(userID string, hub *chat.Hub) *Session {
	return &Session{
		UserID:  userID,
		queue:   discovery.NewQueue(),
		channel: chat.NewChannel(hub),
	}
}

// Queue returns the session's discovery queue. Callers must use it from
// a single request at a time; the discovery and swipe flows do.
func (s *Session) Queue() *discovery.Queue {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue
}

// Channel returns the session's conversation channel.
func (s *Session) Channel() *chat.Channel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.channel
}

// Matches returns the cached match list (may be stale; the registry
// flow refreshes it on every successful load).
func (s *Session) Matches() []db.Match {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.matches
}

// SetMatches replaces the cached match list.
func (s *Session) SetMatches(m []db.Match) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches = m
}

// AddMatch pushes a freshly created match to the front of the cache.
func (s *Session) AddMatch(m db.Match) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches = append([]db.Match{m}, s.matches...)
}

// SetError records the latest error. A new error overwrites the
// previous one; this is a slot, not a queue.
func (s *Session) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err
}

// TakeError returns and clears the latest error.
func (s *Session) TakeError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.lastErr
	s.lastErr = nil
	return err
}

// close releases session-held resources, most importantly the live
// conversation subscription.
func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channel.Close()
}
