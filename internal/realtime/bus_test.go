package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetyard/gate-ops/internal/domain/model"
)

// fakeStream feeds raw messages through an in-memory channel.
type fakeStream struct {
	ch     chan Raw
	closed chan struct{}
	once   sync.Once
}

func (s *fakeStream) Messages() <-chan Raw { return s.ch }
func (s *fakeStream) Close() error {
	s.once.Do(func() { close(s.closed) })
	return nil
}

// fakeSource hands out streams and records how many were opened.
type fakeSource struct {
	mu      sync.Mutex
	streams []*fakeStream
}

func (s *fakeSource) Open(ctx context.Context, channels ...string) (Stream, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stream := &fakeStream{ch: make(chan Raw, 64), closed: make(chan struct{})}
	s.streams = append(s.streams, stream)
	return stream, nil
}

func (s *fakeSource) last() *fakeStream {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.streams[len(s.streams)-1]
}

func (s *fakeSource) opened() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.streams)
}

// awaitOpen blocks until the pump has opened the n-th stream. Subscribe
// starts the pump asynchronously, so tests must not touch the stream
// before Open has run.
func (s *fakeSource) awaitOpen(t *testing.T, n int) *fakeStream {
	t.Helper()
	waitFor(t, func() bool { return s.opened() >= n })
	return s.last()
}

// collector records delivered events.
type collector struct {
	mu     sync.Mutex
	events []model.ActivityEvent
}

func (c *collector) Deliver(ev model.ActivityEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

func (c *collector) snapshot() []model.ActivityEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.ActivityEvent, len(c.events))
	copy(out, c.events)
	return out
}

func rawCheckIn(plate string) Raw {
	payload := fmt.Sprintf(
		`{"event":"vehicle.checked-in","data":{"vehicle":{"plate":%q},"driver":"Ada","checked_in_at":"2026-02-01T08:00:00Z"},"published_at":"2026-02-01T08:00:00Z"}`,
		plate)
	return Raw{Channel: model.ChannelVehicleTracking, Payload: []byte(payload)}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition never satisfied")
}

func TestBus_FansOutToAllSinksInOrder(t *testing.T) {
	source := &fakeSource{}
	bus := NewBus(Options{Source: source})

	first, second := &collector{}, &collector{}
	unsub1 := bus.Subscribe(first)
	unsub2 := bus.Subscribe(second)
	defer unsub1()
	defer unsub2()

	stream := source.awaitOpen(t, 1)
	stream.ch <- rawCheckIn("AAA-1")
	stream.ch <- rawCheckIn("AAA-2")
	stream.ch <- rawCheckIn("AAA-3")

	waitFor(t, func() bool { return len(first.snapshot()) == 3 && len(second.snapshot()) == 3 })

	for _, c := range []*collector{first, second} {
		events := c.snapshot()
		plates := make([]string, 0, len(events))
		for _, ev := range events {
			var data model.CheckedInData
			require.NoError(t, json.Unmarshal(ev.Payload, &data))
			plates = append(plates, data.Vehicle.Plate)
			assert.Equal(t, model.EventCheckedIn, ev.Kind)
			assert.NotEmpty(t, ev.ID)
		}
		// Strict arrival order, no reordering.
		assert.Equal(t, []string{"AAA-1", "AAA-2", "AAA-3"}, plates)
	}
}

func TestBus_DropsMalformedMessages(t *testing.T) {
	source := &fakeSource{}
	bus := NewBus(Options{Source: source})

	sink := &collector{}
	unsub := bus.Subscribe(sink)
	defer unsub()

	stream := source.awaitOpen(t, 1)
	stream.ch <- Raw{Channel: model.ChannelVehicleTracking, Payload: []byte(`not json`)}
	stream.ch <- Raw{Channel: model.ChannelVehicleTracking, Payload: []byte(`{"event":"vehicle.exploded","data":{}}`)}
	stream.ch <- rawCheckIn("BBB-1")

	waitFor(t, func() bool { return len(sink.snapshot()) == 1 })
	assert.Equal(t, model.EventCheckedIn, sink.snapshot()[0].Kind)
}

func TestBus_UnsubscribeIsIdempotent(t *testing.T) {
	source := &fakeSource{}
	bus := NewBus(Options{Source: source})

	a := bus.Subscribe(&collector{})
	b := bus.Subscribe(&collector{})
	source.awaitOpen(t, 1)
	assert.Equal(t, 2, bus.SinkCount())

	a()
	a() // double unsubscribe is a no-op
	assert.Equal(t, 1, bus.SinkCount())

	b()
	assert.Equal(t, 0, bus.SinkCount())

	// Last unsubscribe closed the stream.
	select {
	case <-source.last().closed:
	case <-time.After(2 * time.Second):
		t.Fatal("stream not closed after last unsubscribe")
	}
}

func TestBus_RepeatedMountUnmountCycles(t *testing.T) {
	source := &fakeSource{}
	bus := NewBus(Options{Source: source})

	for i := range 3 {
		sink := &collector{}
		unsub := bus.Subscribe(sink)

		stream := source.awaitOpen(t, i+1)
		stream.ch <- rawCheckIn("CYCLE-1")
		waitFor(t, func() bool { return len(sink.snapshot()) == 1 })

		unsub()
		select {
		case <-stream.closed:
		case <-time.After(2 * time.Second):
			t.Fatal("stream not closed on unmount")
		}
	}

	// One stream per mount cycle: no leaked subscriptions, and no
	// duplicate delivery from stale streams.
	assert.Equal(t, 3, source.opened())
}

func TestBus_FilterDropsNonMatching(t *testing.T) {
	filter, err := NewFilter("payload.vehicle.plate == 'KEEP-1'")
	require.NoError(t, err)

	source := &fakeSource{}
	bus := NewBus(Options{Source: source, Filter: filter})

	sink := &collector{}
	unsub := bus.Subscribe(sink)
	defer unsub()

	stream := source.awaitOpen(t, 1)
	stream.ch <- rawCheckIn("DROP-1")
	stream.ch <- rawCheckIn("KEEP-1")
	stream.ch <- rawCheckIn("DROP-2")

	waitFor(t, func() bool { return len(sink.snapshot()) == 1 })
	var data model.CheckedInData
	require.NoError(t, json.Unmarshal(sink.snapshot()[0].Payload, &data))
	assert.Equal(t, "KEEP-1", data.Vehicle.Plate)
}
