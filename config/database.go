package config

import (
	"fmt"
	"net"
	"strconv"
)

// DBConfig contains PostgreSQL database configuration.
type DBConfig struct {
	Host     string `env:"HOST"     envDefault:"localhost"`
	Port     int    `env:"PORT"     envDefault:"5432"`
	User     string `env:"USER"     envDefault:"gateops"`
	Password string `env:"PASSWORD" envDefault:"gateops"`
	Name     string `env:"NAME"     envDefault:"gateops"`
	SSLMode  string `env:"SSL_MODE" envDefault:"disable"` // Use 'disable' for local dev, 'require' for production
	// RunMigrationsOnStart controls whether the server automatically applies migrations during startup.
	RunMigrationsOnStart bool `env:"RUN_MIGRATIONS_ON_START" envDefault:"true"`
	// SeedDevData populates development accounts and vehicles after startup.
	// Never enable in production.
	SeedDevData bool `env:"SEED_DEV_DATA" envDefault:"false"`
}

// DSN returns the postgres connection string for this configuration.
func (d DBConfig) DSN() string {
	hostPort := net.JoinHostPort(d.Host, strconv.Itoa(d.Port))
	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=%s",
		d.User, d.Password, hostPort, d.Name, d.SSLMode)
}

// RedisConfig contains Redis configuration. Redis backs the realtime
// pub/sub channels, server-side sessions, and the unread-count cache.
type RedisConfig struct {
	Addr     string `env:"ADDR"     envDefault:"localhost:6379"`
	Password string `env:"PASSWORD" envDefault:""`
	DB       int    `env:"DB"       envDefault:"0"`
}
