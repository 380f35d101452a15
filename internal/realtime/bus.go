// Package realtime subscribes to the pub/sub channels carrying gate
// activity and fans each message out to the registered sinks.
//
// Delivery is at-most-once and non-durable: events arrive in channel
// order, nothing is de-duplicated, and a dropped connection silently
// misses events until the transport reconnects. The periodic poller is
// the authoritative correction for anything missed.
package realtime

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fleetyard/gate-ops/internal/domain/model"
)

// Raw is one message as read off a channel before decoding.
type Raw struct {
	Channel string
	Payload []byte
}

// Stream is an open subscription to a set of channels.
type Stream interface {
	Messages() <-chan Raw
	Close() error
}

// Source opens streams against the pub/sub transport.
type Source interface {
	Open(ctx context.Context, channels ...string) (Stream, error)
}

// Sink consumes decoded activity events. Sinks are called sequentially
// from a single pump goroutine, so delivery order matches arrival order.
type Sink interface {
	Deliver(ev model.ActivityEvent)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ev model.ActivityEvent)

// Deliver implements the Sink interface.
func (f SinkFunc) Deliver(ev model.ActivityEvent) {
	if f != nil {
		f(ev)
	}
}

// Options groups dependencies for NewBus.
type Options struct {
	Source Source
	// Filter, when non-nil, drops events it does not match before fan-out.
	Filter *Filter
	Logger *slog.Logger
	// Channels overrides the subscribed channels; defaults to the
	// vehicle-tracking and maintenance-updates channels.
	Channels []string
}

type sinkEntry struct {
	sink Sink
}

// Bus manages the channel subscription and sink fan-out. The underlying
// stream is opened when the first sink subscribes and closed when the
// last one unsubscribes, so repeated mount/unmount cycles leak nothing.
type Bus struct {
	source   Source
	filter   *Filter
	logger   *slog.Logger
	channels []string

	mu     sync.Mutex
	sinks  []*sinkEntry
	cancel context.CancelFunc
	done   chan struct{}
}

// NewBus constructs a Bus.
func NewBus(opts Options) *Bus {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	channels := opts.Channels
	if len(channels) == 0 {
		channels = []string{model.ChannelVehicleTracking, model.ChannelMaintenanceUpdates}
	}
	return &Bus{
		source:   opts.Source,
		filter:   opts.Filter,
		logger:   logger,
		channels: channels,
	}
}

// Subscribe registers a sink and returns its unsubscribe function. The
// unsubscribe function is idempotent: calling it more than once, or
// after the bus has shut down, is a no-op.
func (b *Bus) Subscribe(sink Sink) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	entry := &sinkEntry{sink: sink}
	b.sinks = append(b.sinks, entry)

	if b.cancel == nil {
		ctx, cancel := context.WithCancel(context.Background())
		b.cancel = cancel
		b.done = make(chan struct{})
		go b.pump(ctx, b.done)
	}

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(entry) })
	}
}

// SinkCount reports the number of active sinks.
func (b *Bus) SinkCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.sinks)
}

func (b *Bus) remove(entry *sinkEntry) {
	b.mu.Lock()
	for i, e := range b.sinks {
		if e == entry {
			b.sinks = append(b.sinks[:i], b.sinks[i+1:]...)
			break
		}
	}
	var stop context.CancelFunc
	var done chan struct{}
	if len(b.sinks) == 0 && b.cancel != nil {
		stop = b.cancel
		done = b.done
		b.cancel = nil
		b.done = nil
	}
	b.mu.Unlock()

	if stop != nil {
		stop()
		<-done
	}
}

// pump reads raw messages, decodes them, and fans them out in arrival
// order. It runs while at least one sink is subscribed.
func (b *Bus) pump(ctx context.Context, done chan struct{}) {
	defer close(done)

	stream, err := b.source.Open(ctx, b.channels...)
	if err != nil {
		b.logger.Error("open realtime stream failed", "error", err)
		return
	}
	defer func() {
		if cerr := stream.Close(); cerr != nil {
			b.logger.Warn("close realtime stream failed", "error", cerr)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-stream.Messages():
			if !ok {
				b.logger.Warn("realtime stream closed")
				return
			}
			b.dispatch(raw)
		}
	}
}

func (b *Bus) dispatch(raw Raw) {
	env, err := model.DecodeEnvelope(raw.Payload)
	if err != nil {
		// Malformed messages are dropped, not fatal.
		b.logger.Warn("drop undecodable realtime message",
			slog.String("channel", raw.Channel), "error", err)
		return
	}

	ev := model.ActivityEvent{
		ID:        uuid.NewString(),
		Kind:      model.EventKind(env.Event),
		Payload:   env.Data,
		Timestamp: env.PublishedAt,
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}

	if b.filter != nil && !b.filter.Match(ev) {
		return
	}

	b.mu.Lock()
	targets := make([]Sink, len(b.sinks))
	for i, e := range b.sinks {
		targets[i] = e.sink
	}
	b.mu.Unlock()

	for _, sink := range targets {
		sink.Deliver(ev)
	}
}
