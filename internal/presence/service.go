// Package presence is the console-side mirror of the vehicle
// check-in/check-out state machine. The server is authoritative; this
// layer derives state, offers only the legal transition, and re-queries
// instead of retrying when the server rejects a request.
package presence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fleetyard/gate-ops/internal/api"
	"github.com/fleetyard/gate-ops/internal/domain/model"
)

// Transition names the single legal next action for a vehicle.
type Transition string

const (
	TransitionCheckIn  Transition = "check_in"
	TransitionCheckOut Transition = "check_out"
)

// Backend is the slice of the API client the service needs.
type Backend interface {
	SearchVehicles(ctx context.Context, plate string) ([]model.Vehicle, error)
	LatestCheckIn(ctx context.Context, vehicleID string) (*model.CheckInRecord, error)
	CreateCheckIn(ctx context.Context, vehicleID string) (*model.CheckInRecord, error)
	Checkout(ctx context.Context, recordID string) (*model.CheckInRecord, error)
}

// Snapshot is a point-in-time view of a vehicle's presence.
type Snapshot struct {
	Vehicle model.Vehicle
	State   model.Presence
	// Latest is the most recent record, open or closed; nil when the
	// vehicle has never checked in.
	Latest *model.CheckInRecord
}

// Transition returns the only action the snapshot permits. A vehicle
// that is inside can only check out; one that is outside can only check
// in. Offering nothing else makes illegal transitions unrepresentable
// in the console.
func (s Snapshot) Transition() Transition {
	if s.State == model.PresenceInside {
		return TransitionCheckOut
	}
	return TransitionCheckIn
}

// StaleStateError reports that the server rejected a transition because
// the console's view of the vehicle was out of date. It carries the
// re-derived snapshot so the caller can render current state instead of
// retrying.
type StaleStateError struct {
	Current Snapshot
	cause   error
}

func (e *StaleStateError) Error() string {
	return fmt.Sprintf("vehicle %s is %s: %v", e.Current.Vehicle.Plate, e.Current.State, e.cause)
}

func (e *StaleStateError) Unwrap() error { return e.cause }

// ErrNotInside is returned when a check-out is requested for a vehicle
// with no open record.
var ErrNotInside = errors.New("vehicle has no open check-in record")

// Service drives presence transitions through the backend.
type Service struct {
	backend Backend
	logger  *slog.Logger
	now     func() time.Time
}

// Options groups dependencies for NewService.
type Options struct {
	Backend Backend
	Logger  *slog.Logger
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// NewService constructs a presence Service.
func NewService(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Service{backend: opts.Backend, logger: logger, now: now}
}

// Current queries the latest check-in record for a vehicle and derives
// its presence.
func (s *Service) Current(ctx context.Context, vehicle model.Vehicle) (Snapshot, error) {
	latest, err := s.backend.LatestCheckIn(ctx, vehicle.ID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("query presence for %s: %w", vehicle.Plate, err)
	}
	return Snapshot{Vehicle: vehicle, State: model.PresenceOf(latest), Latest: latest}, nil
}

// CheckIn requests a new open record for the vehicle. If the server
// rejects the transition (the vehicle is already inside, possibly
// checked in from another gate), the current state is re-derived and
// returned inside a StaleStateError rather than retried.
func (s *Service) CheckIn(ctx context.Context, vehicle model.Vehicle) (*model.CheckInRecord, error) {
	record, err := s.backend.CreateCheckIn(ctx, vehicle.ID)
	if err != nil {
		return nil, s.resolveRejection(ctx, vehicle, err)
	}
	s.logger.Info("vehicle checked in",
		slog.String("vehicle_id", vehicle.ID),
		slog.String("plate", vehicle.Plate))
	return record, nil
}

// CheckOut closes the vehicle's open record. The open record is looked
// up first; requesting a check-out with no open record fails locally
// with ErrNotInside before any request is issued.
func (s *Service) CheckOut(ctx context.Context, vehicle model.Vehicle) (*model.CheckInRecord, error) {
	snap, err := s.Current(ctx, vehicle)
	if err != nil {
		return nil, err
	}
	if snap.State != model.PresenceInside || snap.Latest == nil {
		return nil, ErrNotInside
	}

	record, err := s.backend.Checkout(ctx, snap.Latest.ID)
	if err != nil {
		return nil, s.resolveRejection(ctx, vehicle, err)
	}
	s.logger.Info("vehicle checked out",
		slog.String("vehicle_id", vehicle.ID),
		slog.String("plate", vehicle.Plate),
		slog.String("stay", model.FormatDuration(record.Duration(s.now()))))
	return record, nil
}

// StayDuration reports how long the stay in the record lasted, or has
// lasted so far for an open record.
func (s *Service) StayDuration(record model.CheckInRecord) time.Duration {
	return record.Duration(s.now())
}

// resolveRejection handles a failed transition. Permission errors are
// authoritative statements that the console's state was stale: current
// state is re-queried and surfaced. Anything else passes through.
func (s *Service) resolveRejection(ctx context.Context, vehicle model.Vehicle, cause error) error {
	if !api.IsPermission(cause) {
		return cause
	}

	s.logger.Info("transition rejected, re-deriving state",
		slog.String("vehicle_id", vehicle.ID),
		slog.String("plate", vehicle.Plate))

	snap, err := s.Current(ctx, vehicle)
	if err != nil {
		// Re-sync failed too; surface the original rejection.
		return cause
	}
	return &StaleStateError{Current: snap, cause: cause}
}
