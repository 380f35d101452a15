package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetyard/gate-ops/internal/data"
	"github.com/fleetyard/gate-ops/internal/domain/auth"
	"github.com/fleetyard/gate-ops/internal/domain/model"
)

type stubCheckInRepo struct {
	latest func(ctx context.Context, vehicleID string) (*model.CheckInRecord, error)
	create func(ctx context.Context, p data.CreateCheckInParams) (*model.CheckInRecord, error)
	close  func(ctx context.Context, p data.CloseParams) (*model.CheckInRecord, error)
}

func (s *stubCheckInRepo) Latest(ctx context.Context, vehicleID string) (*model.CheckInRecord, error) {
	return s.latest(ctx, vehicleID)
}

func (s *stubCheckInRepo) Create(ctx context.Context, p data.CreateCheckInParams) (*model.CheckInRecord, error) {
	return s.create(ctx, p)
}

func (s *stubCheckInRepo) Close(ctx context.Context, p data.CloseParams) (*model.CheckInRecord, error) {
	return s.close(ctx, p)
}

type stubVehicleRepo struct {
	vehicles map[string]model.Vehicle
}

func (s *stubVehicleRepo) SearchByPlate(_ context.Context, plate string) ([]model.Vehicle, error) {
	var out []model.Vehicle
	for _, v := range s.vehicles {
		if v.Plate == plate {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *stubVehicleRepo) GetByID(_ context.Context, id string) (model.Vehicle, error) {
	v, ok := s.vehicles[id]
	if !ok {
		return model.Vehicle{}, data.ErrVehicleNotFound
	}
	return v, nil
}

type recordedEvent struct {
	channel string
	kind    model.EventKind
	payload any
}

type stubPublisher struct {
	events []recordedEvent
	err    error
}

func (s *stubPublisher) Publish(_ context.Context, channel string, kind model.EventKind, payload any) error {
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, recordedEvent{channel: channel, kind: kind, payload: payload})
	return nil
}

type stubNotificationRepo struct {
	created []data.CreateNotificationParams
}

func (s *stubNotificationRepo) Create(_ context.Context, p data.CreateNotificationParams) error {
	s.created = append(s.created, p)
	return nil
}

func (s *stubNotificationRepo) CountUnread(context.Context, string) (int, error) { return 0, nil }

func (s *stubNotificationRepo) MarkAllRead(context.Context, string) (int, error) { return 0, nil }

func TestCheckInService_CheckIn(t *testing.T) {
	actor := auth.User{ID: "u-1", Name: "Ada", Roles: []auth.Role{auth.RoleGateSecurity}}
	vehicle := model.Vehicle{ID: "v-1", Plate: "ABC-1234", OwnerID: "u-owner"}
	now := time.Now().UTC()

	newService := func(checkins *stubCheckInRepo, pub *stubPublisher, notes *stubNotificationRepo) *CheckInService {
		svc, err := NewCheckInService(CheckInServiceOptions{
			CheckIns:      checkins,
			Vehicles:      &stubVehicleRepo{vehicles: map[string]model.Vehicle{vehicle.ID: vehicle}},
			Notifications: notes,
			Publisher:     pub,
		})
		require.NoError(t, err)
		return svc
	}

	t.Run("opens record, publishes, notifies owner", func(t *testing.T) {
		pub := &stubPublisher{}
		notes := &stubNotificationRepo{}
		checkins := &stubCheckInRepo{
			create: func(_ context.Context, p data.CreateCheckInParams) (*model.CheckInRecord, error) {
				return &model.CheckInRecord{
					ID:          "c-1",
					VehicleID:   p.VehicleID,
					CheckedInAt: now,
					CheckedInBy: model.UserRef{ID: p.ActorID, Name: actor.Name},
				}, nil
			},
		}
		svc := newService(checkins, pub, notes)

		rec, err := svc.CheckIn(context.Background(), vehicle.ID, actor)
		require.NoError(t, err)
		assert.True(t, rec.Open())

		require.Len(t, pub.events, 1)
		assert.Equal(t, model.ChannelVehicleTracking, pub.events[0].channel)
		assert.Equal(t, model.EventCheckedIn, pub.events[0].kind)
		payload, ok := pub.events[0].payload.(model.CheckedInData)
		require.True(t, ok)
		assert.Equal(t, "Ada", payload.Driver)

		require.Len(t, notes.created, 1)
		assert.Equal(t, "u-owner", notes.created[0].UserID)
	})

	t.Run("already inside surfaces the store rejection", func(t *testing.T) {
		pub := &stubPublisher{}
		checkins := &stubCheckInRepo{
			create: func(context.Context, data.CreateCheckInParams) (*model.CheckInRecord, error) {
				return nil, data.ErrAlreadyInside
			},
		}
		svc := newService(checkins, pub, &stubNotificationRepo{})

		_, err := svc.CheckIn(context.Background(), vehicle.ID, actor)
		assert.ErrorIs(t, err, data.ErrAlreadyInside)
		assert.Empty(t, pub.events)
	})

	t.Run("unknown vehicle fails before the store", func(t *testing.T) {
		svc := newService(&stubCheckInRepo{}, &stubPublisher{}, &stubNotificationRepo{})
		_, err := svc.CheckIn(context.Background(), "v-missing", actor)
		assert.ErrorIs(t, err, data.ErrVehicleNotFound)
	})

	t.Run("publish failure does not fail the transition", func(t *testing.T) {
		pub := &stubPublisher{err: assert.AnError}
		checkins := &stubCheckInRepo{
			create: func(_ context.Context, p data.CreateCheckInParams) (*model.CheckInRecord, error) {
				return &model.CheckInRecord{ID: "c-2", VehicleID: p.VehicleID, CheckedInAt: now}, nil
			},
		}
		svc := newService(checkins, pub, &stubNotificationRepo{})

		_, err := svc.CheckIn(context.Background(), vehicle.ID, actor)
		assert.NoError(t, err)
	})
}

func TestCheckInService_Latest(t *testing.T) {
	vehicle := model.Vehicle{ID: "v-1", Plate: "ABC-1234"}
	checkins := &stubCheckInRepo{
		latest: func(context.Context, string) (*model.CheckInRecord, error) {
			return nil, nil
		},
	}
	svc, err := NewCheckInService(CheckInServiceOptions{
		CheckIns: checkins,
		Vehicles: &stubVehicleRepo{vehicles: map[string]model.Vehicle{vehicle.ID: vehicle}},
	})
	require.NoError(t, err)

	t.Run("never checked in is a nil record", func(t *testing.T) {
		rec, err := svc.Latest(context.Background(), vehicle.ID)
		require.NoError(t, err)
		assert.Nil(t, rec)
	})

	t.Run("unknown vehicle is an error, not an empty result", func(t *testing.T) {
		_, err := svc.Latest(context.Background(), "v-missing")
		assert.ErrorIs(t, err, data.ErrVehicleNotFound)
	})
}

func TestCheckInService_CheckOut(t *testing.T) {
	actor := auth.User{ID: "u-2", Name: "Grace", Roles: []auth.Role{auth.RoleManager}}
	vehicle := model.Vehicle{ID: "v-1", Plate: "ABC-1234", OwnerID: "u-owner"}
	in := time.Now().UTC().Add(-2 * time.Hour)
	out := time.Now().UTC()

	pub := &stubPublisher{}
	notes := &stubNotificationRepo{}
	checkins := &stubCheckInRepo{
		close: func(_ context.Context, p data.CloseParams) (*model.CheckInRecord, error) {
			if p.ID != "c-1" {
				return nil, data.ErrCheckInNotFound
			}
			return &model.CheckInRecord{
				ID:           "c-1",
				VehicleID:    vehicle.ID,
				CheckedInAt:  in,
				CheckedOutAt: &out,
				CheckedOutBy: &model.UserRef{ID: p.ActorID, Name: actor.Name},
			}, nil
		},
	}
	svc, err := NewCheckInService(CheckInServiceOptions{
		CheckIns:      checkins,
		Vehicles:      &stubVehicleRepo{vehicles: map[string]model.Vehicle{vehicle.ID: vehicle}},
		Notifications: notes,
		Publisher:     pub,
	})
	require.NoError(t, err)

	rec, err := svc.CheckOut(context.Background(), "c-1", actor)
	require.NoError(t, err)
	assert.False(t, rec.Open())

	require.Len(t, pub.events, 1)
	assert.Equal(t, model.EventCheckedOut, pub.events[0].kind)
	require.Len(t, notes.created, 1)
	assert.Equal(t, "u-owner", notes.created[0].UserID)

	_, err = svc.CheckOut(context.Background(), "c-ghost", actor)
	assert.ErrorIs(t, err, data.ErrCheckInNotFound)
}
