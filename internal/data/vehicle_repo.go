package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/fleetyard/gate-ops/internal/data/pgxutil"
	"github.com/fleetyard/gate-ops/internal/domain/model"
)

// searchLimit caps plate searches; the console disambiguates small
// candidate sets, not pages of them.
const searchLimit = 25

// VehicleRepo provides database operations for vehicles.
type VehicleRepo struct {
	DB *sql.DB
}

// NewVehicleRepo creates a new VehicleRepo.
func NewVehicleRepo(db *sql.DB) *VehicleRepo {
	return &VehicleRepo{DB: db}
}

type vehicleRow struct {
	ID      string  `db:"id"`
	Plate   string  `db:"plate"`
	Label   string  `db:"label"`
	OwnerID *string `db:"owner_id"`
}

func (row vehicleRow) toDomain() model.Vehicle {
	v := model.Vehicle{ID: row.ID, Plate: row.Plate, Label: row.Label}
	if row.OwnerID != nil {
		v.OwnerID = *row.OwnerID
	}
	return v
}

const vehicleColumns = `id, plate, label, owner_id`

// SearchByPlate returns vehicles whose plate contains the query,
// case-insensitively, ordered by plate. A blank query lists the first
// page of vehicles.
func (r *VehicleRepo) SearchByPlate(ctx context.Context, plate string) ([]model.Vehicle, error) {
	plate = strings.TrimSpace(plate)

	var rowsOut []vehicleRow
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT `+vehicleColumns+`
			FROM vehicles
			WHERE $1 = '' OR plate ILIKE '%' || $1 || '%'
			ORDER BY plate
			LIMIT $2`,
			plate, searchLimit,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[vehicleRow])
		return err
	}); err != nil {
		return nil, fmt.Errorf("search vehicles: %w", err)
	}

	out := make([]model.Vehicle, 0, len(rowsOut))
	for _, row := range rowsOut {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// GetByID retrieves a vehicle by ID.
func (r *VehicleRepo) GetByID(ctx context.Context, id string) (model.Vehicle, error) {
	var row vehicleRow
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE id = $1`, id)
		if err != nil {
			return err
		}
		defer rows.Close()
		row, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[vehicleRow])
		return err
	}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Vehicle{}, ErrVehicleNotFound
		}
		return model.Vehicle{}, fmt.Errorf("get vehicle: %w", err)
	}
	return row.toDomain(), nil
}

// Create inserts a vehicle and returns it.
func (r *VehicleRepo) Create(ctx context.Context, v model.Vehicle) (model.Vehicle, error) {
	var ownerID *string
	if v.OwnerID != "" {
		ownerID = &v.OwnerID
	}

	var row vehicleRow
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO vehicles (plate, label, owner_id)
			VALUES ($1, $2, $3)
			RETURNING `+vehicleColumns,
			strings.TrimSpace(v.Plate), v.Label, ownerID,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		row, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[vehicleRow])
		return err
	}); err != nil {
		return model.Vehicle{}, fmt.Errorf("create vehicle: %w", err)
	}
	return row.toDomain(), nil
}
