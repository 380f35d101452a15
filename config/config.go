package config

import (
	"os"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - api.go: backend API client configuration (console)
//   - auth.go: session and token configuration
//   - database.go: database and Redis configuration
//   - http.go: HTTP server configuration (server)
//   - realtime.go: realtime channel and feed configuration
type AppConfig struct {
	// IsDev controls development mode behavior (relaxed defaults, seeding).
	// Set DEV=true for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	// API client configuration (used by the operator console)
	API APIConfig `envPrefix:"API_"`

	// Session and token configuration
	Auth AuthConfig

	// Database configuration
	Postgres DBConfig    `envPrefix:"DB_"`
	Redis    RedisConfig `envPrefix:"REDIS_"`

	// HTTP server configuration
	HTTP HTTPConfig

	// Realtime channel and activity feed configuration
	Realtime RealtimeConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.API.Sanitize()
	c.Auth.Sanitize()
	c.Realtime.Sanitize()
	c.detectDevMode()
}

// detectDevMode checks both DEV and APP_ENV environment variables.
// This is called by Sanitize() to ensure IsDev is set correctly.
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		appEnv := strings.ToLower(os.Getenv("APP_ENV"))
		c.IsDev = appEnv == "development" || appEnv == "dev"
	}
}
