package notify

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetyard/gate-ops/internal/domain/model"
)

func deliver(t *testing.T, kind model.EventKind, payload string) Toast {
	t.Helper()
	var got []Toast
	n := NewNotifier(SinkFunc(func(toast Toast) { got = append(got, toast) }))

	n.Deliver(model.ActivityEvent{Kind: kind, Payload: json.RawMessage(payload)})
	require.Len(t, got, 1)
	return got[0]
}

func TestNotifier_CheckInIsSuccess(t *testing.T) {
	toast := deliver(t, model.EventCheckedIn,
		`{"vehicle":{"plate":"ABC-1234"},"driver":"Ada","checked_in_at":"2026-02-01T08:00:00Z"}`)

	assert.Equal(t, LevelSuccess, toast.Level)
	assert.Equal(t, "Vehicle checked in", toast.Title)
	assert.Equal(t, "ABC-1234 driven by Ada", toast.Body)
}

func TestNotifier_CheckOutIsInfo(t *testing.T) {
	toast := deliver(t, model.EventCheckedOut,
		`{"vehicle":{"plate":"ABC-1234"},"checked_out_at":"2026-02-01T11:00:00Z"}`)

	assert.Equal(t, LevelInfo, toast.Level)
	assert.Equal(t, "Vehicle checked out", toast.Title)
	assert.Equal(t, "ABC-1234", toast.Body)
}

func TestNotifier_MaintenanceIsInfo(t *testing.T) {
	toast := deliver(t, model.EventMaintenanceStatus,
		`{"vehicle_plate":"FLT-77","status":"in_service"}`)

	assert.Equal(t, LevelInfo, toast.Level)
	assert.Equal(t, "FLT-77 is now in_service", toast.Body)
}

func TestNotifier_NilSinkIsSafe(t *testing.T) {
	n := NewNotifier(nil)
	assert.NotPanics(t, func() {
		n.Deliver(model.ActivityEvent{Kind: model.EventCheckedIn})
	})
}
