// Package devseed populates a development database with a usable set of
// accounts and vehicles. Seeding is idempotent: rows that already exist
// are left alone, and individual failures are logged rather than
// aborting the rest of the run.
package devseed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fleetyard/gate-ops/internal/data"
	"github.com/fleetyard/gate-ops/internal/domain/auth"
	"github.com/fleetyard/gate-ops/internal/domain/model"
)

// DefaultPassword is the password every seeded account gets.
const DefaultPassword = "gateops-dev"

// Run seeds development users and vehicles through the regular repos so
// password hashing and plate normalization apply.
func Run(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	users := data.NewUserRepo(db)
	vehicles := data.NewVehicleRepo(db)

	failures := 0
	owners := map[string]string{}

	for _, seed := range defaultUsers() {
		user, created, err := seedUser(ctx, users, seed)
		if err != nil {
			logger.ErrorContext(ctx, "seed user failed", "email", seed.Email, "error", err)
			failures++
			continue
		}
		if created {
			logger.InfoContext(ctx, "created user", "email", seed.Email)
			owners[seed.Email] = user.ID
		} else {
			logger.InfoContext(ctx, "user already exists", "email", seed.Email)
		}
	}

	for _, seed := range defaultVehicles() {
		created, err := seedVehicle(ctx, vehicles, seed, owners)
		if err != nil {
			logger.ErrorContext(ctx, "seed vehicle failed", "plate", seed.Plate, "error", err)
			failures++
			continue
		}
		msg := "vehicle already exists"
		if created {
			msg = "created vehicle"
		}
		logger.InfoContext(ctx, msg, "plate", seed.Plate)
	}

	if failures > 0 {
		return fmt.Errorf("%d seed errors; check logs", failures)
	}
	return nil
}

func defaultUsers() []data.CreateUserParams {
	return []data.CreateUserParams{
		{
			Name:     "Ada Admin",
			Email:    "admin@gateops.local",
			Password: DefaultPassword,
			Roles:    []auth.Role{auth.RoleAdmin},
		},
		{
			Name:     "Mara Manager",
			Email:    "manager@gateops.local",
			Password: DefaultPassword,
			Roles:    []auth.Role{auth.RoleManager},
		},
		{
			Name:     "Gus Guard",
			Email:    "guard@gateops.local",
			Password: DefaultPassword,
			Roles:    []auth.Role{auth.RoleGateSecurity},
		},
		{
			Name:     "Dina Driver",
			Email:    "driver@gateops.local",
			Password: DefaultPassword,
			Roles:    []auth.Role{auth.RoleDriver},
		},
		{
			Name:     "Omar Owner",
			Email:    "owner@gateops.local",
			Password: DefaultPassword,
			Roles:    []auth.Role{auth.RoleVehicleOwner, auth.RoleDriver},
		},
	}
}

type vehicleSeed struct {
	Plate      string
	Label      string
	OwnerEmail string
}

func defaultVehicles() []vehicleSeed {
	return []vehicleSeed{
		{Plate: "FLT-0001", Label: "Delivery van 1", OwnerEmail: "owner@gateops.local"},
		{Plate: "FLT-0002", Label: "Delivery van 2", OwnerEmail: "owner@gateops.local"},
		{Plate: "FLT-0100", Label: "Maintenance truck"},
		{Plate: "VIS-2200", Label: "Visitor pool car"},
	}
}

func seedUser(ctx context.Context, repo *data.UserRepo, p data.CreateUserParams) (auth.User, bool, error) {
	user, err := repo.Create(ctx, p)
	if err != nil {
		if isDuplicate(err) {
			return auth.User{}, false, nil
		}
		return auth.User{}, false, err
	}
	return user, true, nil
}

func seedVehicle(ctx context.Context, repo *data.VehicleRepo, seed vehicleSeed, owners map[string]string) (bool, error) {
	v := model.Vehicle{Plate: seed.Plate, Label: seed.Label}
	if seed.OwnerEmail != "" {
		v.OwnerID = owners[seed.OwnerEmail]
	}

	if _, err := repo.Create(ctx, v); err != nil {
		if isDuplicate(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// isDuplicate reports whether err is a unique-constraint violation,
// which on re-seed means the row is already in place.
func isDuplicate(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
