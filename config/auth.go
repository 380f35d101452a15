package config

import (
	"os"
	"path/filepath"
	"time"
)

// AuthConfig groups session and token configuration.
type AuthConfig struct {
	// TokenPath is where the console persists its bearer token between
	// runs. Empty selects a per-user default under the home directory.
	TokenPath string `env:"GATE_TOKEN_PATH"`

	// SessionTTL is how long a server-side session stays valid after login.
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"12h"`
}

// Sanitize applies guardrails to auth configuration values.
func (a *AuthConfig) Sanitize() {
	if a.SessionTTL <= 0 {
		a.SessionTTL = 12 * time.Hour
	}
	if a.TokenPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			// Fall back to the working directory when HOME is unset
			// (containerized deployments).
			a.TokenPath = ".gate-token"
			return
		}
		a.TokenPath = filepath.Join(home, ".config", "gatectl", "token")
	}
}
