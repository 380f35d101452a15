package config

import (
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://gate.example.com")
	t.Setenv("DB_NAME", "fleet")
	t.Setenv("REDIS_ADDR", "redis-1:6379")
	t.Setenv("NOTIFICATION_FEED_CAPACITY", "5")
	t.Setenv("GATE_TOKEN_PATH", "/tmp/gate-token")

	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	assert.Equal(t, "https://gate.example.com", cfg.API.BaseURL)
	assert.Equal(t, "fleet", cfg.Postgres.Name)
	assert.Equal(t, "redis-1:6379", cfg.Redis.Addr)
	assert.Equal(t, 5, cfg.Realtime.PanelFeedCapacity)
	assert.Equal(t, "/tmp/gate-token", cfg.Auth.TokenPath)
}

func TestSanitizeGuardrails(t *testing.T) {
	cfg := AppConfig{}
	cfg.Realtime.PanelFeedCapacity = -1
	cfg.Realtime.DashboardFeedCapacity = 0
	cfg.Realtime.PollInterval = time.Second
	cfg.API.Timeout = -time.Second
	cfg.Auth.TokenPath = "/tmp/token"

	cfg.Sanitize()

	assert.Equal(t, 10, cfg.Realtime.PanelFeedCapacity)
	assert.Equal(t, 20, cfg.Realtime.DashboardFeedCapacity)
	assert.Equal(t, 30*time.Second, cfg.Realtime.PollInterval)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.Equal(t, 12*time.Hour, cfg.Auth.SessionTTL)
}

func TestSanitizeDefaultsTokenPath(t *testing.T) {
	cfg := AppConfig{}
	cfg.Sanitize()
	assert.NotEmpty(t, cfg.Auth.TokenPath)
}

func TestDBConfigDSN(t *testing.T) {
	d := DBConfig{Host: "db", Port: 5433, User: "u", Password: "p", Name: "fleet", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5433/fleet?sslmode=disable", d.DSN())
}

func TestDetectDevMode(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	cfg := AppConfig{}
	cfg.Sanitize()
	assert.True(t, cfg.IsDev)
}
