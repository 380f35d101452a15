// Package testutil provides integration test helpers for Postgres and
// Redis. Tests that need a live backing store skip when it is absent so
// the unit suite stays runnable anywhere.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"os"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"github.com/fleetyard/gate-ops/internal/migrate"
)

const (
	defaultTestDBHost = "localhost"
	defaultTestDBPort = "5432"
	defaultTestDBUser = "gateops"
	defaultTestDBPass = "gateops"
	defaultTestDBName = "gateops_test"

	defaultTestRedisAddr = "localhost:6379"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func testDSN() string {
	hostPort := net.JoinHostPort(envOr("TEST_DB_HOST", defaultTestDBHost), envOr("TEST_DB_PORT", defaultTestDBPort))
	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable",
		envOr("TEST_DB_USER", defaultTestDBUser),
		envOr("TEST_DB_PASSWORD", defaultTestDBPass),
		hostPort,
		envOr("TEST_DB_NAME", defaultTestDBName),
	)
}

// SetupTestDB opens the test database, applies migrations, and wipes all
// rows. The test skips when Postgres is unreachable.
func SetupTestDB(t testing.TB) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", testDSN())
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		t.Skipf("postgres not available for testing: %v", err)
	}

	if err := migrate.Run(ctx, db); err != nil {
		_ = db.Close()
		t.Fatalf("run migrations: %v", err)
	}

	CleanupTestDB(t, db)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// CleanupTestDB removes all rows from the schema's tables.
func CleanupTestDB(t testing.TB, db *sql.DB) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Order respects foreign keys.
	for _, table := range []string{"notifications", "check_ins", "vehicles", "users"} {
		if _, err := db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			t.Fatalf("cleanup %s: %v", table, err)
		}
	}
}

// SetupTestRedis connects to the test Redis instance and flushes it.
// The test skips when Redis is unreachable.
func SetupTestRedis(t testing.TB) *redis.Client {
	t.Helper()

	addr := envOr("TEST_REDIS_ADDR", defaultTestRedisAddr)
	client := redis.NewClient(&redis.Options{Addr: addr, DB: 15})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		t.Skipf("redis not available for testing at %s: %v", addr, err)
	}

	client.FlushDB(ctx)
	t.Cleanup(func() { _ = client.Close() })
	return client
}
