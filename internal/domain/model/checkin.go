package model

import (
	"fmt"
	"time"
)

// Presence is the derived state of a vehicle relative to the premises.
type Presence string

const (
	// PresenceInside means the most recent check-in record is still open.
	PresenceInside Presence = "inside"
	// PresenceOutside means there is no open check-in record.
	PresenceOutside Presence = "outside"
)

// UserRef is a lightweight reference to the user who performed a
// check-in or check-out.
type UserRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CheckInRecord tracks one stay of a vehicle on the premises.
// A record is created open (CheckedOutAt nil) and mutated exactly once
// when the vehicle checks out. The server guarantees at most one open
// record per vehicle at any time.
type CheckInRecord struct {
	ID           string     `json:"id"`
	VehicleID    string     `json:"vehicle_id"`
	CheckedInAt  time.Time  `json:"checked_in_at"`
	CheckedInBy  UserRef    `json:"checked_in_by"`
	CheckedOutAt *time.Time `json:"checked_out_at"`
	CheckedOutBy *UserRef   `json:"checked_out_by"`
}

// Open reports whether the record has not been closed yet.
func (r CheckInRecord) Open() bool {
	return r.CheckedOutAt == nil
}

// Duration returns the length of the stay. For an open record the stay
// is measured up to now.
func (r CheckInRecord) Duration(now time.Time) time.Duration {
	end := now
	if r.CheckedOutAt != nil {
		end = *r.CheckedOutAt
	}
	d := end.Sub(r.CheckedInAt)
	if d < 0 {
		return 0
	}
	return d
}

// PresenceOf derives a vehicle's presence from its most recent check-in
// record. A nil record means the vehicle has never checked in.
func PresenceOf(latest *CheckInRecord) Presence {
	if latest != nil && latest.Open() {
		return PresenceInside
	}
	return PresenceOutside
}

// FormatDuration renders a duration as hours and minutes, e.g. "3h 05m".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	minutes := int(d.Minutes())
	return fmt.Sprintf("%dh %02dm", minutes/60, minutes%60)
}
