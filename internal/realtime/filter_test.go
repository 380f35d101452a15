package realtime

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetyard/gate-ops/internal/domain/model"
)

func event(kind model.EventKind, payload string) model.ActivityEvent {
	return model.ActivityEvent{
		ID:        "ev1",
		Kind:      kind,
		Payload:   json.RawMessage(payload),
		Timestamp: time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC),
	}
}

func TestNewFilter_RejectsEmptyAndInvalid(t *testing.T) {
	_, err := NewFilter("")
	assert.Error(t, err)

	_, err = NewFilter("payload.[")
	assert.Error(t, err)
}

func TestFilter_MatchByKind(t *testing.T) {
	f, err := NewFilter("kind == 'vehicle.checked-in'")
	require.NoError(t, err)

	assert.True(t, f.Match(event(model.EventCheckedIn, `{}`)))
	assert.False(t, f.Match(event(model.EventCheckedOut, `{}`)))
}

func TestFilter_MatchByPayloadField(t *testing.T) {
	f, err := NewFilter("payload.vehicle_plate == 'FLT-77'")
	require.NoError(t, err)

	hit := event(model.EventMaintenanceStatus, `{"vehicle_plate":"FLT-77","status":"in_service"}`)
	miss := event(model.EventMaintenanceStatus, `{"vehicle_plate":"FLT-01","status":"in_service"}`)

	assert.True(t, f.Match(hit))
	assert.False(t, f.Match(miss))
}

func TestFilter_NonBooleanResultsUseTruthiness(t *testing.T) {
	f, err := NewFilter("payload.status")
	require.NoError(t, err)

	assert.True(t, f.Match(event(model.EventMaintenanceStatus, `{"status":"done"}`)))
	assert.False(t, f.Match(event(model.EventMaintenanceStatus, `{"status":""}`)))
	assert.False(t, f.Match(event(model.EventMaintenanceStatus, `{}`)))
}
