// Package core defines the repository and adapter interfaces the
// service layer depends on. Implementations live in internal/data and
// internal/adapters.
package core

import (
	"context"

	"github.com/fleetyard/gate-ops/internal/data"
	"github.com/fleetyard/gate-ops/internal/domain/auth"
	"github.com/fleetyard/gate-ops/internal/domain/model"
)

// UserRepository provides user account lookups and credential checks.
type UserRepository interface {
	// Authenticate verifies an email/password pair. Unknown email and
	// wrong password both return data.ErrInvalidCredentials.
	Authenticate(ctx context.Context, email, password string) (auth.User, error)
	GetByID(ctx context.Context, id string) (auth.User, error)
}

// VehicleRepository provides vehicle lookups.
type VehicleRepository interface {
	SearchByPlate(ctx context.Context, plate string) ([]model.Vehicle, error)
	GetByID(ctx context.Context, id string) (model.Vehicle, error)
}

// CheckInRepository provides check-in record operations. The store
// enforces at most one open record per vehicle.
type CheckInRepository interface {
	Latest(ctx context.Context, vehicleID string) (*model.CheckInRecord, error)
	Create(ctx context.Context, p data.CreateCheckInParams) (*model.CheckInRecord, error)
	Close(ctx context.Context, p data.CloseParams) (*model.CheckInRecord, error)
}

// NotificationRepository provides per-user notification operations.
type NotificationRepository interface {
	Create(ctx context.Context, p data.CreateNotificationParams) error
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkAllRead(ctx context.Context, userID string) (int, error)
}

// SessionStore persists server-side sessions keyed by bearer token.
type SessionStore interface {
	Save(ctx context.Context, sess auth.Session) error
	Get(ctx context.Context, token string) (auth.Session, error)
	Delete(ctx context.Context, token string) error
}

// EventPublisher emits activity events to realtime subscribers.
// Publishing is fire-and-forget.
type EventPublisher interface {
	Publish(ctx context.Context, channel string, kind model.EventKind, payload any) error
}
