package config

import "time"

// APIConfig contains configuration for the backend API client used by
// the operator console.
type APIConfig struct {
	// BaseURL is the root of the gate-server REST API.
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	// Timeout is the per-request transport timeout.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

// Sanitize applies guardrails to API client configuration values.
func (a *APIConfig) Sanitize() {
	if a.Timeout <= 0 {
		a.Timeout = 10 * time.Second
	}
}
