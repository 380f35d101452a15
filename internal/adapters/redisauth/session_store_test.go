package redisauth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetyard/gate-ops/internal/adapters/redisauth"
	"github.com/fleetyard/gate-ops/internal/domain/auth"
	"github.com/fleetyard/gate-ops/internal/testutil"
)

func TestSessionStore_RoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	client := testutil.SetupTestRedis(t)
	store := redisauth.NewSessionStore(client)
	ctx := context.Background()

	sess := auth.Session{
		Token:     "tok-123",
		UserID:    "u-1",
		Name:      "Ada",
		Email:     "ada@example.com",
		Roles:     []auth.Role{auth.RoleGateSecurity},
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, store.Save(ctx, sess))

	got, err := store.Get(ctx, "tok-123")
	require.NoError(t, err)
	assert.Equal(t, sess.UserID, got.UserID)
	assert.Equal(t, sess.Roles, got.Roles)

	ttl := client.TTL(ctx, "session:tok-123").Val()
	assert.True(t, ttl > 0 && ttl <= time.Hour)

	require.NoError(t, store.Delete(ctx, "tok-123"))
	_, err = store.Get(ctx, "tok-123")
	assert.ErrorIs(t, err, redisauth.ErrNotFound)
}

func TestSessionStore_Validation(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	client := testutil.SetupTestRedis(t)
	store := redisauth.NewSessionStore(client)
	ctx := context.Background()

	t.Run("empty token", func(t *testing.T) {
		err := store.Save(ctx, auth.Session{ExpiresAt: time.Now().Add(time.Hour)})
		assert.Error(t, err)

		_, err = store.Get(ctx, "")
		assert.ErrorIs(t, err, redisauth.ErrNotFound)

		assert.NoError(t, store.Delete(ctx, ""))
	})

	t.Run("already expired", func(t *testing.T) {
		err := store.Save(ctx, auth.Session{Token: "tok-old", ExpiresAt: time.Now().Add(-time.Minute)})
		assert.Error(t, err)
	})

	t.Run("unknown token", func(t *testing.T) {
		_, err := store.Get(ctx, "tok-none")
		assert.ErrorIs(t, err, redisauth.ErrNotFound)
	})
}
