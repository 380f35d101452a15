// Package poll keeps locally cached counters fresh: push events nudge
// them optimistically, a periodic poll overwrites them with the
// server's answer.
package poll

import (
	"sync"

	"github.com/fleetyard/gate-ops/internal/domain/model"
)

// UnreadCounter tracks the unread notification badge. Realtime events
// apply optimistic deltas between polls; each authoritative refresh
// replaces the value wholesale, absorbing any drift from missed events.
type UnreadCounter struct {
	mu    sync.Mutex
	count int
}

// Count returns the current badge value.
func (c *UnreadCounter) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// ApplyDelta adjusts the count optimistically. The result never goes
// below zero.
func (c *UnreadCounter) ApplyDelta(delta int) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.count += delta
	if c.count < 0 {
		c.count = 0
	}
	return c.count
}

// SetAuthoritative overwrites the count with a server-provided value.
func (c *UnreadCounter) SetAuthoritative(count int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if count < 0 {
		count = 0
	}
	c.count = count
}

// Deliver implements realtime.Sink. Every activity event counts as one
// new unread notification until the next authoritative refresh.
func (c *UnreadCounter) Deliver(model.ActivityEvent) {
	c.ApplyDelta(1)
}
