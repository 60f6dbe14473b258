// Package chat implements the live conversation feed: a per-match
// fan-out hub that redelivers the full, timestamp-ordered message list
// on every change, and a per-session channel handle with explicit
// open/close semantics.
package chat

import (
	"sync"

	"github.com/flamematch/backend/internal/db"
)

// Snapshot is one full, ordered message list for a match. The feed is
// not a diff stream: every delivery carries the whole thread.
type Snapshot []db.Message

// Hub fans out message snapshots to subscribers keyed by match id.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Snapshot]bool
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subscribers: make(map[string]map[chan Snapshot]bool)}
}

// Subscribe registers a listener for a match and returns its channel
// plus a cleanup func. The channel is buffered so a slow reader only
// misses intermediate snapshots, never blocks a sender; a later
// snapshot always supersedes an earlier one.
func (h *Hub) Subscribe(matchID string) (<-chan Snapshot, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Snapshot, 8)
	if h.subscribers[matchID] == nil {
		h.subscribers[matchID] = make(map[chan Snapshot]bool)
	}
	h.subscribers[matchID][ch] = true

	cleanup := func() {
		h.unsubscribe(matchID, ch)
	}
	return ch, cleanup
}

func (h *Hub) unsubscribe(matchID string, ch chan Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.subscribers[matchID]
	if !ok || !subs[ch] {
		return
	}
	delete(subs, ch)
	if len(subs) == 0 {
		delete(h.subscribers, matchID)
	}
	close(ch)
}

// Broadcast delivers a snapshot to every subscriber of the match.
// Subscribers whose buffer is full are skipped; they will catch up on
// the next broadcast.
func (h *Hub) Broadcast(matchID string, snap Snapshot) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subscribers[matchID] {
		select {
		case ch <- snap:
		default:
		}
	}
}

// SubscriberCount reports active listeners for a match.
func (h *Hub) SubscriberCount(matchID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[matchID])
}
