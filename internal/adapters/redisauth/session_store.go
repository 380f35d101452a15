// Package redisauth stores server-side sessions in Redis, keyed by
// bearer token with TTL matching the session expiry.
package redisauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fleetyard/gate-ops/internal/domain/auth"
)

// ErrNotFound is returned when no session exists for a token.
var ErrNotFound = errors.New("session not found")

// SessionStore persists sessions in Redis.
type SessionStore struct {
	client redis.UniversalClient
	prefix string
}

// NewSessionStore creates a SessionStore with the default key prefix.
func NewSessionStore(client redis.UniversalClient) *SessionStore {
	return &SessionStore{client: client, prefix: "session:"}
}

// NewSessionStoreWithPrefix creates a SessionStore with a custom key prefix.
func NewSessionStoreWithPrefix(client redis.UniversalClient, prefix string) *SessionStore {
	return &SessionStore{client: client, prefix: prefix}
}

// Save writes the session under its token. The Redis TTL tracks
// ExpiresAt, so expired sessions vanish without a sweeper.
func (s *SessionStore) Save(ctx context.Context, sess auth.Session) error {
	if sess.Token == "" {
		return errors.New("session token cannot be empty")
	}

	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return errors.New("session is expired")
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return s.client.Set(ctx, s.prefix+sess.Token, data, ttl).Err()
}

// Get returns the session for a token, or ErrNotFound.
func (s *SessionStore) Get(ctx context.Context, token string) (auth.Session, error) {
	if token == "" {
		return auth.Session{}, ErrNotFound
	}

	data, err := s.client.Get(ctx, s.prefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return auth.Session{}, ErrNotFound
		}
		return auth.Session{}, fmt.Errorf("redis get: %w", err)
	}

	var sess auth.Session
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return auth.Session{}, fmt.Errorf("unmarshal session: %w", err)
	}

	// Redis TTL normally handles expiry; re-check in case of clock skew.
	if time.Now().After(sess.ExpiresAt) {
		if err := s.Delete(ctx, token); err != nil {
			return auth.Session{}, fmt.Errorf("cleanup expired session: %w", err)
		}
		return auth.Session{}, ErrNotFound
	}
	return sess, nil
}

// Delete removes the session for a token. Deleting a missing session is
// not an error.
func (s *SessionStore) Delete(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.client.Del(ctx, s.prefix+token).Err()
}
