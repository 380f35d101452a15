package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/fleetyard/gate-ops/internal/data/pgxutil"
)

// NotificationRepo provides database operations for per-user
// notifications. Only the unread count crosses the API; the rows exist
// so the count survives restarts and missed realtime events.
type NotificationRepo struct {
	DB *sql.DB
}

// NewNotificationRepo creates a new NotificationRepo.
func NewNotificationRepo(db *sql.DB) *NotificationRepo {
	return &NotificationRepo{DB: db}
}

// CreateNotificationParams groups the inputs for NotificationRepo.Create.
type CreateNotificationParams struct {
	UserID string
	Kind   string
	Body   string
}

// Create inserts an unread notification for a user.
func (r *NotificationRepo) Create(ctx context.Context, p CreateNotificationParams) error {
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		_, err := conn.Exec(ctx, `
			INSERT INTO notifications (user_id, kind, body)
			VALUES ($1, $2, $3)`,
			p.UserID, p.Kind, p.Body,
		)
		return err
	}); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// CountUnread returns the number of unread notifications for a user.
func (r *NotificationRepo) CountUnread(ctx context.Context, userID string) (int, error) {
	var count int
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		return conn.QueryRow(ctx, `
			SELECT count(*) FROM notifications
			WHERE user_id = $1 AND read_at IS NULL`,
			userID,
		).Scan(&count)
	}); err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

// MarkAllRead stamps every unread notification for a user and returns
// how many rows were touched.
func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID string) (int, error) {
	var touched int
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		tag, err := conn.Exec(ctx, `
			UPDATE notifications
			SET read_at = now()
			WHERE user_id = $1 AND read_at IS NULL`,
			userID,
		)
		if err != nil {
			return err
		}
		touched = int(tag.RowsAffected())
		return nil
	}); err != nil {
		return 0, fmt.Errorf("mark notifications read: %w", err)
	}
	return touched, nil
}
