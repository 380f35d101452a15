// Package redisbus carries gate activity over Redis pub/sub. The server
// publishes envelopes; the console subscribes through the realtime bus.
package redisbus

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/fleetyard/gate-ops/internal/realtime"
)

// Source opens Redis pub/sub subscriptions as realtime streams.
type Source struct {
	client redis.UniversalClient
}

// NewSource creates a Source over the given Redis client.
func NewSource(client redis.UniversalClient) *Source {
	return &Source{client: client}
}

// Open implements realtime.Source.
func (s *Source) Open(ctx context.Context, channels ...string) (realtime.Stream, error) {
	sub := s.client.Subscribe(ctx, channels...)

	// Force the SUBSCRIBE round trip so a dead broker fails here rather
	// than on first read.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribe %v: %w", channels, err)
	}

	st := &stream{sub: sub, out: make(chan realtime.Raw)}
	go st.pump(sub.Channel())
	return st, nil
}

type stream struct {
	sub *redis.PubSub
	out chan realtime.Raw
}

func (s *stream) pump(in <-chan *redis.Message) {
	defer close(s.out)
	for msg := range in {
		s.out <- realtime.Raw{Channel: msg.Channel, Payload: []byte(msg.Payload)}
	}
}

// Messages implements realtime.Stream.
func (s *stream) Messages() <-chan realtime.Raw {
	return s.out
}

// Close implements realtime.Stream. Closing the subscription ends the
// pump, which closes the message channel.
func (s *stream) Close() error {
	return s.sub.Close()
}
