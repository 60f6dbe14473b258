package chat

import "sync"

// Channel is a session's handle on the live feed. Its lifecycle is
// Idle -> Subscribed(matchID) -> Idle; opening a subscription for any
// match first cancels the previous one, so a session never has two
// listeners, and Close is safe on every exit path.
type Channel struct {
	hub *Hub

	mu      sync.Mutex
	matchID string
	feed    <-chan Snapshot
	cancel  func()
}

// NewChannel creates an idle channel bound to a hub.
func NewChannel(hub *Hub) *Channel {
	return &Channel{hub: hub}
}

// Open subscribes to a match's feed, replacing any previous
// subscription held by this channel.
func (c *Channel) Open(matchID string) <-chan Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}
	feed, cancel := c.hub.Subscribe(matchID)
	c.matchID = matchID
	c.feed = feed
	c.cancel = cancel
	return feed
}

// Close releases the active subscription, returning the channel to
// idle. Idempotent.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
		c.feed = nil
		c.matchID = ""
	}
}

// Release closes the subscription only if feed is still the active one.
// A listener that was replaced by a newer Open must not tear down its
// successor; it calls Release with the feed it was handed.
func (c *Channel) Release(feed <-chan Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel == nil || c.feed != feed {
		return
	}
	c.cancel()
	c.cancel = nil
	c.feed = nil
	c.matchID = ""
}

// Active returns the subscribed match id, or "" when idle.
func (c *Channel) Active() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.matchID
}
