package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/fleetyard/gate-ops/internal/data"
	"github.com/fleetyard/gate-ops/internal/domain/auth"
	"github.com/fleetyard/gate-ops/internal/domain/model"
)

// CreateTestUser inserts a user with the given roles and a fixed
// password of "secret".
func CreateTestUser(t testing.TB, db *sql.DB, roles ...auth.Role) auth.User {
	t.Helper()

	suffix := uuid.NewString()[:8]
	user, err := data.NewUserRepo(db).Create(context.Background(), data.CreateUserParams{
		Name:     "Test User " + suffix,
		Email:    fmt.Sprintf("user-%s@example.com", suffix),
		Password: "secret",
		Roles:    roles,
	})
	if err != nil {
		t.Fatalf("create test user: %v", err)
	}
	return user
}

// CreateTestVehicle inserts a vehicle with a unique plate.
func CreateTestVehicle(t testing.TB, db *sql.DB, ownerID string) model.Vehicle {
	t.Helper()

	suffix := uuid.NewString()[:8]
	vehicle, err := data.NewVehicleRepo(db).Create(context.Background(), model.Vehicle{
		Plate:   "TST-" + suffix,
		Label:   "Test Vehicle " + suffix,
		OwnerID: ownerID,
	})
	if err != nil {
		t.Fatalf("create test vehicle: %v", err)
	}
	return vehicle
}
