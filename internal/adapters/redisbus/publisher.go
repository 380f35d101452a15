package redisbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fleetyard/gate-ops/internal/domain/model"
)

// Publisher emits activity envelopes on the pub/sub channels. Publishing
// is fire-and-forget: subscribers that are offline miss the event.
type Publisher struct {
	client redis.UniversalClient
}

// NewPublisher creates a Publisher over the given Redis client.
func NewPublisher(client redis.UniversalClient) *Publisher {
	return &Publisher{client: client}
}

// Publish wraps the payload in an envelope and sends it on the channel.
func (p *Publisher) Publish(ctx context.Context, channel string, kind model.EventKind, payload any) error {
	if !kind.Valid() {
		return fmt.Errorf("invalid event kind %q", kind)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}

	env := model.Envelope{
		Event:       string(kind),
		Data:        data,
		PublishedAt: time.Now().UTC(),
	}
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	if err := p.client.Publish(ctx, channel, body).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", channel, err)
	}
	return nil
}
