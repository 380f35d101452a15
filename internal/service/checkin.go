package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fleetyard/gate-ops/internal/core"
	"github.com/fleetyard/gate-ops/internal/data"
	"github.com/fleetyard/gate-ops/internal/domain/auth"
	"github.com/fleetyard/gate-ops/internal/domain/model"
)

// CheckInServiceOptions groups dependencies for CheckInService.
type CheckInServiceOptions struct {
	CheckIns      core.CheckInRepository
	Vehicles      core.VehicleRepository
	Notifications core.NotificationRepository
	Publisher     core.EventPublisher
	Logger        *slog.Logger
}

// CheckInService orchestrates presence transitions: the database write
// is authoritative, then the event publish and owner notification follow
// best-effort.
type CheckInService struct {
	checkins      core.CheckInRepository
	vehicles      core.VehicleRepository
	notifications core.NotificationRepository
	publisher     core.EventPublisher
	logger        *slog.Logger
}

// NewCheckInService validates opts and constructs a CheckInService.
func NewCheckInService(opts CheckInServiceOptions) (*CheckInService, error) {
	if opts.CheckIns == nil {
		return nil, errors.New("check-in repository is required")
	}
	if opts.Vehicles == nil {
		return nil, errors.New("vehicle repository is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &CheckInService{
		checkins:      opts.CheckIns,
		vehicles:      opts.Vehicles,
		notifications: opts.Notifications,
		publisher:     opts.Publisher,
		logger:        logger,
	}, nil
}

// Latest returns the most recent check-in record for a vehicle, nil when
// it has never checked in. An unknown vehicle is an error, not an empty
// result: never-checked-in only applies to vehicles that exist.
func (s *CheckInService) Latest(ctx context.Context, vehicleID string) (*model.CheckInRecord, error) {
	rec, err := s.checkins.Latest(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		if _, err := s.vehicles.GetByID(ctx, vehicleID); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

// CheckIn opens a check-in record for a vehicle. The store rejects the
// write with data.ErrAlreadyInside when an open record exists.
func (s *CheckInService) CheckIn(ctx context.Context, vehicleID string, actor auth.User) (*model.CheckInRecord, error) {
	vehicle, err := s.vehicles.GetByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}

	rec, err := s.checkins.Create(ctx, data.CreateCheckInParams{
		VehicleID: vehicleID,
		ActorID:   actor.ID,
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "vehicle checked in",
		"vehicle_id", vehicle.ID, "plate", vehicle.Plate, "actor_id", actor.ID)

	s.announce(ctx, vehicle, model.EventCheckedIn, model.CheckedInData{
		Vehicle:     vehicle,
		Driver:      actor.Name,
		CheckedInAt: rec.CheckedInAt,
	}, fmt.Sprintf("%s checked in", vehicle.Plate))

	return rec, nil
}

// CheckOut closes an open check-in record.
func (s *CheckInService) CheckOut(ctx context.Context, recordID string, actor auth.User) (*model.CheckInRecord, error) {
	rec, err := s.checkins.Close(ctx, data.CloseParams{ID: recordID, ActorID: actor.ID})
	if err != nil {
		return nil, err
	}

	vehicle, err := s.vehicles.GetByID(ctx, rec.VehicleID)
	if err != nil {
		// The record closed; surface it even if the vehicle lookup failed.
		s.logger.WarnContext(ctx, "vehicle lookup after checkout failed",
			"vehicle_id", rec.VehicleID, "error", err)
		return rec, nil
	}

	s.logger.InfoContext(ctx, "vehicle checked out",
		"vehicle_id", vehicle.ID, "plate", vehicle.Plate, "actor_id", actor.ID)

	s.announce(ctx, vehicle, model.EventCheckedOut, model.CheckedOutData{
		Vehicle:      vehicle,
		CheckedOutAt: *rec.CheckedOutAt,
	}, fmt.Sprintf("%s checked out", vehicle.Plate))

	return rec, nil
}

// announce publishes the realtime event and records an owner
// notification. Both are best-effort; failures are logged and never
// roll back the presence transition.
func (s *CheckInService) announce(ctx context.Context, vehicle model.Vehicle, kind model.EventKind, payload any, body string) {
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, model.ChannelVehicleTracking, kind, payload); err != nil {
			s.logger.WarnContext(ctx, "publish activity event failed",
				"event", string(kind), "error", err)
		}
	}

	if s.notifications != nil && vehicle.OwnerID != "" {
		if err := s.notifications.Create(ctx, data.CreateNotificationParams{
			UserID: vehicle.OwnerID,
			Kind:   string(kind),
			Body:   body,
		}); err != nil {
			s.logger.WarnContext(ctx, "create owner notification failed",
				"owner_id", vehicle.OwnerID, "error", err)
		}
	}
}
