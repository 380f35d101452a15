package poll

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// CountFetcher retrieves the authoritative unread count from the server.
type CountFetcher interface {
	UnreadCount(ctx context.Context) (int, error)
}

// CountFetcherFunc adapts a function to the CountFetcher interface.
type CountFetcherFunc func(ctx context.Context) (int, error)

// UnreadCount implements the CountFetcher interface.
func (f CountFetcherFunc) UnreadCount(ctx context.Context) (int, error) {
	return f(ctx)
}

// RefresherOptions holds dependencies for NewRefresher.
type RefresherOptions struct {
	Fetcher  CountFetcher
	Counter  *UnreadCounter
	Interval time.Duration
	Logger   *slog.Logger
}

// Refresher periodically replaces the counter's value with the
// server's. A failed poll leaves the current value in place; the next
// tick tries again.
type Refresher struct {
	fetcher  CountFetcher
	counter  *UnreadCounter
	interval time.Duration
	logger   *slog.Logger
}

// NewRefresher validates opts and constructs a Refresher.
func NewRefresher(opts RefresherOptions) (*Refresher, error) {
	if opts.Fetcher == nil {
		return nil, errors.New("poll: fetcher is required")
	}
	if opts.Counter == nil {
		return nil, errors.New("poll: counter is required")
	}
	if opts.Interval <= 0 {
		return nil, errors.New("poll: interval must be positive")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Refresher{
		fetcher:  opts.Fetcher,
		counter:  opts.Counter,
		interval: opts.Interval,
		logger:   logger,
	}, nil
}

// Run refreshes once immediately, then on every tick until the context
// is cancelled. Returns nil on graceful shutdown.
func (r *Refresher) Run(ctx context.Context) error {
	r.logger.InfoContext(ctx, "starting unread count refresher", "interval", r.interval)

	r.refresh(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

func (r *Refresher) refresh(ctx context.Context) {
	count, err := r.fetcher.UnreadCount(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		r.logger.WarnContext(ctx, "unread count refresh failed", "error", err)
		return
	}
	r.counter.SetAuthoritative(count)
}
