// Package data provides PostgreSQL repositories for the gate-ops schema.
package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/fleetyard/gate-ops/internal/data/pgxutil"
	"github.com/fleetyard/gate-ops/internal/domain/auth"
)

// UserRepo provides database operations for user accounts.
type UserRepo struct {
	DB *sql.DB
}

// NewUserRepo creates a new UserRepo.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db}
}

type userRow struct {
	ID           string   `db:"id"`
	Name         string   `db:"name"`
	Email        string   `db:"email"`
	Roles        []string `db:"roles"`
	PasswordHash string   `db:"password_hash"`
}

func (row userRow) toDomain() (auth.User, error) {
	roles, err := auth.ParseRoles(row.Roles)
	if err != nil {
		return auth.User{}, fmt.Errorf("user %s: %w", row.ID, err)
	}
	return auth.User{
		ID:    row.ID,
		Name:  row.Name,
		Email: row.Email,
		Roles: roles,
	}, nil
}

const userColumns = `id, name, email, roles, password_hash`

// Authenticate verifies the email/password pair and returns the matching
// user. Unknown email and wrong password both map to
// ErrInvalidCredentials so callers cannot distinguish them.
func (r *UserRepo) Authenticate(ctx context.Context, email, password string) (auth.User, error) {
	row, err := r.getRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			// Burn a bcrypt comparison anyway to keep timing uniform.
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return auth.User{}, ErrInvalidCredentials
		}
		return auth.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(row.PasswordHash), []byte(password)); err != nil {
		return auth.User{}, ErrInvalidCredentials
	}
	return row.toDomain()
}

// GetByID retrieves a user by ID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (auth.User, error) {
	row, err := r.getRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err != nil {
		return auth.User{}, err
	}
	return row.toDomain()
}

// Create inserts a user with a bcrypt-hashed password and returns it.
func (r *UserRepo) Create(ctx context.Context, p CreateUserParams) (auth.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
	if err != nil {
		return auth.User{}, fmt.Errorf("hash password: %w", err)
	}

	var row userRow
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO users (name, email, roles, password_hash)
			VALUES ($1, $2, $3, $4)
			RETURNING `+userColumns,
			p.Name, p.Email, auth.RoleNames(p.Roles), string(hash),
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		row, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[userRow])
		return err
	}); err != nil {
		return auth.User{}, fmt.Errorf("create user: %w", err)
	}
	return row.toDomain()
}

// CreateUserParams groups the inputs for UserRepo.Create.
type CreateUserParams struct {
	Name     string
	Email    string
	Password string
	Roles    []auth.Role
}

func (r *UserRepo) getRow(ctx context.Context, query string, args ...any) (userRow, error) {
	var row userRow
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		row, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[userRow])
		return err
	}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return userRow{}, ErrUserNotFound
		}
		return userRow{}, fmt.Errorf("get user: %w", err)
	}
	return row, nil
}

// dummyHash is a valid bcrypt hash of an unguessable string, used to
// equalize response time when the email does not exist.
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")
