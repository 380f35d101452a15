// Package notify turns realtime activity into ephemeral operator
// notifications (toasts).
package notify

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/fleetyard/gate-ops/internal/domain/model"
)

// Level is the visual severity of a toast.
type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
)

// Toast is one ephemeral notification. It carries no state beyond what
// is displayed and is discarded after rendering.
type Toast struct {
	Level Level
	Title string
	Body  string
	At    time.Time
}

// Sink renders toasts. Implementations decide presentation and
// auto-dismiss behavior; the notifier is purely a producer.
type Sink interface {
	Show(t Toast)
}

// SinkFunc adapts a function to the Sink interface (useful for tests).
type SinkFunc func(t Toast)

// Show implements the Sink interface.
func (f SinkFunc) Show(t Toast) {
	if f != nil {
		f(t)
	}
}

// Notifier maps activity events to toasts and forwards them to a sink.
// Check-ins render as success; check-outs and maintenance updates as
// informational.
type Notifier struct {
	sink Sink
}

// NewNotifier constructs a Notifier over the given sink.
func NewNotifier(sink Sink) *Notifier {
	return &Notifier{sink: sink}
}

// Deliver implements realtime.Sink.
func (n *Notifier) Deliver(ev model.ActivityEvent) {
	if n.sink == nil {
		return
	}
	n.sink.Show(toastFor(ev))
}

func toastFor(ev model.ActivityEvent) Toast {
	toast := Toast{Level: LevelInfo, At: ev.Timestamp}

	switch ev.Kind {
	case model.EventCheckedIn:
		toast.Level = LevelSuccess
		toast.Title = "Vehicle checked in"
		var data model.CheckedInData
		if err := json.Unmarshal(ev.Payload, &data); err == nil {
			toast.Body = fmt.Sprintf("%s driven by %s", data.Vehicle.Plate, data.Driver)
		}
	case model.EventCheckedOut:
		toast.Title = "Vehicle checked out"
		var data model.CheckedOutData
		if err := json.Unmarshal(ev.Payload, &data); err == nil {
			toast.Body = data.Vehicle.Plate
		}
	case model.EventMaintenanceStatus:
		toast.Title = "Maintenance status updated"
		var data model.MaintenanceStatusData
		if err := json.Unmarshal(ev.Payload, &data); err == nil {
			toast.Body = fmt.Sprintf("%s is now %s", data.VehiclePlate, data.Status)
		}
	default:
		toast.Title = string(ev.Kind)
	}

	return toast
}
