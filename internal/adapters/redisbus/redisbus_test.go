package redisbus_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetyard/gate-ops/internal/adapters/redisbus"
	"github.com/fleetyard/gate-ops/internal/domain/model"
	"github.com/fleetyard/gate-ops/internal/testutil"
)

func TestPublishSubscribeRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	client := testutil.SetupTestRedis(t)
	ctx := context.Background()

	source := redisbus.NewSource(client)
	stream, err := source.Open(ctx, model.ChannelVehicleTracking)
	require.NoError(t, err)
	defer stream.Close()

	pub := redisbus.NewPublisher(client)
	payload := model.CheckedInData{
		Vehicle:     model.Vehicle{ID: "v-1", Plate: "ABC-1234"},
		Driver:      "Ada",
		CheckedInAt: time.Now().UTC(),
	}
	require.NoError(t, pub.Publish(ctx, model.ChannelVehicleTracking, model.EventCheckedIn, payload))

	select {
	case raw := <-stream.Messages():
		assert.Equal(t, model.ChannelVehicleTracking, raw.Channel)
		env, err := model.DecodeEnvelope(raw.Payload)
		require.NoError(t, err)
		assert.Equal(t, string(model.EventCheckedIn), env.Event)
		assert.False(t, env.PublishedAt.IsZero())
	case <-time.After(3 * time.Second):
		t.Fatal("no message received")
	}
}

func TestStreamCloseEndsMessages(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	client := testutil.SetupTestRedis(t)

	source := redisbus.NewSource(client)
	stream, err := source.Open(context.Background(), model.ChannelMaintenanceUpdates)
	require.NoError(t, err)

	require.NoError(t, stream.Close())

	select {
	case _, ok := <-stream.Messages():
		assert.False(t, ok, "messages channel should be closed")
	case <-time.After(3 * time.Second):
		t.Fatal("messages channel did not close")
	}
}

func TestPublishRejectsUnknownKind(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	client := testutil.SetupTestRedis(t)

	pub := redisbus.NewPublisher(client)
	err := pub.Publish(context.Background(), model.ChannelVehicleTracking, model.EventKind("bogus"), nil)
	assert.Error(t, err)
}
