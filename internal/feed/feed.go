// Package feed provides the bounded, most-recent-first activity log
// shown in the notification panel and on the dashboard.
package feed

import (
	"sync"

	"github.com/fleetyard/gate-ops/internal/domain/model"
)

// Feed is a fixed-capacity event log ordered newest-first. New events
// are prepended; once the capacity is exceeded the oldest (tail)
// entries are evicted for good. There is no replay.
//
// Each consuming view holds its own Feed instance with its own
// capacity, so the notification panel and the dashboard evict
// independently.
type Feed struct {
	mu       sync.Mutex
	capacity int
	events   []model.ActivityEvent
}

// New creates a feed with the given capacity. Capacities below one are
// clamped to one.
func New(capacity int) *Feed {
	if capacity < 1 {
		capacity = 1
	}
	return &Feed{capacity: capacity}
}

// Deliver implements realtime.Sink: prepend the event, then truncate to
// capacity.
func (f *Feed) Deliver(ev model.ActivityEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.events = append([]model.ActivityEvent{ev}, f.events...)
	if len(f.events) > f.capacity {
		f.events = f.events[:f.capacity]
	}
}

// Snapshot returns a copy of the feed contents, newest first.
func (f *Feed) Snapshot() []model.ActivityEvent {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]model.ActivityEvent, len(f.events))
	copy(out, f.events)
	return out
}

// Len reports the current number of events.
func (f *Feed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

// Capacity reports the feed's fixed capacity.
func (f *Feed) Capacity() int { return f.capacity }
