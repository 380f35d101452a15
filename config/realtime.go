package config

import "time"

// RealtimeConfig contains realtime subscription and activity feed
// configuration for the operator console.
type RealtimeConfig struct {
	// PanelFeedCapacity bounds the notification panel feed.
	PanelFeedCapacity int `env:"NOTIFICATION_FEED_CAPACITY" envDefault:"10"`

	// DashboardFeedCapacity bounds the dashboard activity feed.
	DashboardFeedCapacity int `env:"DASHBOARD_FEED_CAPACITY" envDefault:"20"`

	// PollInterval is how often the unread-notification count is
	// re-fetched from the server. The poll is the authoritative source;
	// push events only apply optimistic deltas between polls.
	PollInterval time.Duration `env:"UNREAD_POLL_INTERVAL" envDefault:"30s"`
}

// Sanitize applies guardrails to realtime configuration values.
func (r *RealtimeConfig) Sanitize() {
	if r.PanelFeedCapacity < 1 {
		r.PanelFeedCapacity = 10
	}
	if r.DashboardFeedCapacity < 1 {
		r.DashboardFeedCapacity = 20
	}
	if r.PollInterval < 5*time.Second {
		r.PollInterval = 30 * time.Second
	}
}
