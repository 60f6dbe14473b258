// Package discovery holds the session-local candidate queue for swipe
// decisions. The queue is a disposable in-memory projection of the
// profile store: it is filled once per discovery session and never
// survives a restart.
package discovery

import (
	"context"

	"github.com/flamematch/backend/internal/db"
	"github.com/flamematch/backend/internal/repository"
)

// PageSize caps a single discovery load.
const PageSize = 20

// Queue is an ordered set of candidate profiles pending a decision.
// It is owned by exactly one session and is not safe for concurrent
// use; the owning session serializes access to it.
//
// Invariants:
//   - a user id appears at most once;
//   - a candidate removed by a decision never re-enters this instance.
type Queue struct {
	items []db.User
	seen  map[string]bool // ids ever enqueued, including already-consumed ones
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{seen: make(map[string]bool)}
}

// Load fetches one page of candidates, replacing the current contents.
// A failed fetch leaves the queue empty and returns the error; the
// caller may simply invoke Load again.
func (q *Queue) Load(ctx context.Context, users *repository.UserRepository, excludeID string) error {
	q.items = nil
	q.seen = make(map[string]bool)

	candidates, err := users.FindDiscoverable(ctx, excludeID, PageSize)
	if err != nil {
		return err
	}
	for _, u := range candidates {
		if u.ID == excludeID || q.seen[u.ID] {
			continue
		}
		q.seen[u.ID] = true
		q.items = append(q.items, u)
	}
	return nil
}

// DequeueFront pops the head candidate. ok is false on an empty queue.
func (q *Queue) DequeueFront() (db.User, bool) {
	if len(q.items) == 0 {
		return db.User{}, false
	}
	head := q.items[0]
	q.items = q.items[1:]
	return head, true
}

// Peek returns the head without consuming it.
func (q *Queue) Peek() (db.User, bool) {
	if len(q.items) == 0 {
		return db.User{}, false
	}
	return q.items[0], true
}

// Remove drops the entry with the given id, keeping the order of the
// remainder. Used after a decision resolves. No-op if absent.
func (q *Queue) Remove(userID string) {
	for i, u := range q.items {
		if u.ID == userID {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return
		}
	}
}

// Get returns the queued snapshot for a user id, if still pending.
func (q *Queue) Get(userID string) (db.User, bool) {
	for _, u := range q.items {
		if u.ID == userID {
			return u, true
		}
	}
	return db.User{}, false
}

// Len reports how many candidates are pending.
func (q *Queue) Len() int { return len(q.items) }

// Items returns the pending candidates in order.
func (q *Queue) Items() []db.User { return q.items }
