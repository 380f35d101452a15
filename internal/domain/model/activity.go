package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Pub/sub channel names. These are part of the external contract shared
// with the backend publisher.
const (
	ChannelVehicleTracking    = "vehicle-tracking"
	ChannelMaintenanceUpdates = "maintenance-updates"
)

// EventKind names a realtime message type. The values are the wire-level
// event names published on the channels above.
type EventKind string

const (
	EventCheckedIn         EventKind = "vehicle.checked-in"
	EventCheckedOut        EventKind = "vehicle.checked-out"
	EventMaintenanceStatus EventKind = "maintenance.status-updated"
)

// Valid reports whether the kind is one of the known event names.
func (k EventKind) Valid() bool {
	switch k {
	case EventCheckedIn, EventCheckedOut, EventMaintenanceStatus:
		return true
	}
	return false
}

// Envelope is the wire format published on the realtime channels.
type Envelope struct {
	Event       string          `json:"event"`
	Data        json.RawMessage `json:"data"`
	PublishedAt time.Time       `json:"published_at"`
}

// CheckedInData is the payload of a vehicle.checked-in message.
type CheckedInData struct {
	Vehicle     Vehicle   `json:"vehicle"`
	Driver      string    `json:"driver"`
	CheckedInAt time.Time `json:"checked_in_at"`
}

// CheckedOutData is the payload of a vehicle.checked-out message.
type CheckedOutData struct {
	Vehicle      Vehicle   `json:"vehicle"`
	CheckedOutAt time.Time `json:"checked_out_at"`
}

// MaintenanceStatusData is the payload of a maintenance.status-updated message.
type MaintenanceStatusData struct {
	VehiclePlate string `json:"vehicle_plate"`
	Status       string `json:"status"`
}

// ActivityEvent is a received realtime message as held by feeds and
// notifiers. Events are created on receipt and carry no durability:
// once evicted from a bounded feed they are gone.
type ActivityEvent struct {
	ID        string          `json:"id"`
	Kind      EventKind       `json:"kind"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

// DecodeEnvelope parses a raw channel message into an envelope and
// validates the event name.
func DecodeEnvelope(raw []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode realtime envelope: %w", err)
	}
	if !EventKind(env.Event).Valid() {
		return Envelope{}, fmt.Errorf("unknown realtime event %q", env.Event)
	}
	return env, nil
}
