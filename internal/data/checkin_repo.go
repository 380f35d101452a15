package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fleetyard/gate-ops/internal/data/pgxutil"
	"github.com/fleetyard/gate-ops/internal/domain/model"
)

// CheckInRepo provides database operations for check-in records.
//
// The schema enforces at most one open record per vehicle with a partial
// unique index on (vehicle_id) WHERE checked_out_at IS NULL, so a
// concurrent double check-in loses the race inside Postgres rather than
// in application code.
type CheckInRepo struct {
	DB *sql.DB
}

// NewCheckInRepo creates a new CheckInRepo.
func NewCheckInRepo(db *sql.DB) *CheckInRepo {
	return &CheckInRepo{DB: db}
}

type checkInRow struct {
	ID             string     `db:"id"`
	VehicleID      string     `db:"vehicle_id"`
	CheckedInAt    time.Time  `db:"checked_in_at"`
	CheckedInByID  string     `db:"checked_in_by_id"`
	CheckedInBy    string     `db:"checked_in_by_name"`
	CheckedOutAt   *time.Time `db:"checked_out_at"`
	CheckedOutByID *string    `db:"checked_out_by_id"`
	CheckedOutBy   *string    `db:"checked_out_by_name"`
}

func (row checkInRow) toDomain() model.CheckInRecord {
	rec := model.CheckInRecord{
		ID:           row.ID,
		VehicleID:    row.VehicleID,
		CheckedInAt:  row.CheckedInAt,
		CheckedInBy:  model.UserRef{ID: row.CheckedInByID, Name: row.CheckedInBy},
		CheckedOutAt: row.CheckedOutAt,
	}
	if row.CheckedOutByID != nil {
		name := ""
		if row.CheckedOutBy != nil {
			name = *row.CheckedOutBy
		}
		rec.CheckedOutBy = &model.UserRef{ID: *row.CheckedOutByID, Name: name}
	}
	return rec
}

const checkInSelect = `
	SELECT c.id, c.vehicle_id, c.checked_in_at,
	       c.checked_in_by AS checked_in_by_id, ui.name AS checked_in_by_name,
	       c.checked_out_at,
	       c.checked_out_by AS checked_out_by_id, uo.name AS checked_out_by_name
	FROM check_ins c
	JOIN users ui ON ui.id = c.checked_in_by
	LEFT JOIN users uo ON uo.id = c.checked_out_by`

// Latest returns the most recent check-in record for a vehicle, or nil
// when the vehicle has never checked in. A missing record is a normal
// state, not an error.
func (r *CheckInRepo) Latest(ctx context.Context, vehicleID string) (*model.CheckInRecord, error) {
	var row checkInRow
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, checkInSelect+`
			WHERE c.vehicle_id = $1
			ORDER BY c.checked_in_at DESC
			LIMIT 1`,
			vehicleID,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		row, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[checkInRow])
		return err
	}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get latest check-in: %w", err)
	}
	rec := row.toDomain()
	return &rec, nil
}

// CreateCheckInParams groups the inputs for CheckInRepo.Create.
type CreateCheckInParams struct {
	VehicleID string
	ActorID   string
}

// Create opens a new check-in record. Returns ErrAlreadyInside when the
// vehicle already has an open record.
func (r *CheckInRepo) Create(ctx context.Context, p CreateCheckInParams) (*model.CheckInRecord, error) {
	var id string
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		return conn.QueryRow(ctx, `
			INSERT INTO check_ins (vehicle_id, checked_in_by)
			VALUES ($1, $2)
			RETURNING id`,
			p.VehicleID, p.ActorID,
		).Scan(&id)
	}); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgerrcode.UniqueViolation:
				return nil, ErrAlreadyInside
			case pgerrcode.ForeignKeyViolation:
				return nil, ErrVehicleNotFound
			}
		}
		return nil, fmt.Errorf("create check-in: %w", err)
	}
	return r.getByID(ctx, id)
}

// CloseParams groups the inputs for CheckInRepo.Close.
type CloseParams struct {
	ID      string
	ActorID string
}

// Close stamps checked_out_at on an open record. Returns
// ErrAlreadyClosed when the record exists but is closed, and
// ErrCheckInNotFound when it does not exist.
func (r *CheckInRepo) Close(ctx context.Context, p CloseParams) (*model.CheckInRecord, error) {
	var closed bool
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		tag, err := conn.Exec(ctx, `
			UPDATE check_ins
			SET checked_out_at = now(), checked_out_by = $2
			WHERE id = $1 AND checked_out_at IS NULL`,
			p.ID, p.ActorID,
		)
		if err != nil {
			return err
		}
		closed = tag.RowsAffected() > 0
		return nil
	}); err != nil {
		return nil, fmt.Errorf("close check-in: %w", err)
	}

	if !closed {
		// Distinguish "already closed" from "no such record".
		if _, err := r.getByID(ctx, p.ID); err != nil {
			return nil, err
		}
		return nil, ErrAlreadyClosed
	}
	return r.getByID(ctx, p.ID)
}

func (r *CheckInRepo) getByID(ctx context.Context, id string) (*model.CheckInRecord, error) {
	var row checkInRow
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, checkInSelect+` WHERE c.id = $1`, id)
		if err != nil {
			return err
		}
		defer rows.Close()
		row, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[checkInRow])
		return err
	}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCheckInNotFound
		}
		return nil, fmt.Errorf("get check-in: %w", err)
	}
	rec := row.toDomain()
	return &rec, nil
}
