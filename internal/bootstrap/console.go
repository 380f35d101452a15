package bootstrap

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/fleetyard/gate-ops/config"
	"github.com/fleetyard/gate-ops/internal/adapters/redisbus"
	"github.com/fleetyard/gate-ops/internal/adapters/tokenfile"
	"github.com/fleetyard/gate-ops/internal/api"
	"github.com/fleetyard/gate-ops/internal/feed"
	"github.com/fleetyard/gate-ops/internal/notify"
	"github.com/fleetyard/gate-ops/internal/poll"
	"github.com/fleetyard/gate-ops/internal/presence"
	"github.com/fleetyard/gate-ops/internal/realtime"
	"github.com/fleetyard/gate-ops/internal/session"
)

// Console is the assembled operator console: API client, session
// manager, and presence service. The realtime stack attaches separately
// because only the watch mode needs a broker connection.
type Console struct {
	cfg      config.AppConfig
	logger   *slog.Logger
	Client   *api.Client
	Sessions *session.Manager
	Presence *presence.Service
}

// NewConsole wires the console's API-facing components. The session
// manager and HTTP client reference each other (live token on every
// request, teardown on any 401), so construction goes through a
// late-bound indirection.
func NewConsole(cfg config.AppConfig, logger *slog.Logger) *Console {
	var manager *session.Manager

	client := api.NewClient(api.Options{
		BaseURL:    cfg.API.BaseURL,
		HTTPClient: &http.Client{Timeout: cfg.API.Timeout},
		Tokens: api.TokenProviderFunc(func() string {
			if manager == nil {
				return ""
			}
			return manager.Token()
		}),
		OnAuthError: func() {
			if manager != nil {
				manager.HandleAuthFailure()
			}
		},
		Logger: logger,
	})

	manager = session.NewManager(session.Options{
		Backend: client,
		Tokens:  tokenfile.New(cfg.Auth.TokenPath),
		Logger:  logger,
	})

	return &Console{
		cfg:      cfg,
		logger:   logger,
		Client:   client,
		Sessions: manager,
		Presence: presence.NewService(presence.Options{Backend: client, Logger: logger}),
	}
}

// RealtimeStack is the console's live-update machinery: the bus fans
// events out to the bounded feeds, the toast notifier, and the unread
// counter; the refresher periodically overwrites the counter from the
// server.
type RealtimeStack struct {
	Bus           *realtime.Bus
	PanelFeed     *feed.Feed
	DashboardFeed *feed.Feed
	Counter       *poll.UnreadCounter
	Refresher     *poll.Refresher
}

// Realtime connects to the broker and assembles the realtime stack.
// filterExpr, when non-empty, is a JMESPath expression applied to every
// event before fan-out.
func (c *Console) Realtime(filterExpr string) (*RealtimeStack, error) {
	var filter *realtime.Filter
	if filterExpr != "" {
		f, err := realtime.NewFilter(filterExpr)
		if err != nil {
			return nil, fmt.Errorf("parse event filter: %w", err)
		}
		filter = f
	}

	redisClient, err := ConnectRedis(c.cfg.Redis, c.logger)
	if err != nil {
		return nil, err
	}

	bus := realtime.NewBus(realtime.Options{
		Source: redisbus.NewSource(redisClient),
		Filter: filter,
		Logger: c.logger,
	})

	counter := &poll.UnreadCounter{}
	refresher, err := poll.NewRefresher(poll.RefresherOptions{
		Fetcher:  c.Client,
		Counter:  counter,
		Interval: c.cfg.Realtime.PollInterval,
		Logger:   c.logger,
	})
	if err != nil {
		return nil, err
	}

	return &RealtimeStack{
		Bus:           bus,
		PanelFeed:     feed.New(c.cfg.Realtime.PanelFeedCapacity),
		DashboardFeed: feed.New(c.cfg.Realtime.DashboardFeedCapacity),
		Counter:       counter,
		Refresher:     refresher,
	}, nil
}

// Attach subscribes the stack's consumers to the bus and returns an
// unsubscribe function.
func (s *RealtimeStack) Attach(toasts notify.Sink) func() {
	notifier := notify.NewNotifier(toasts)

	var unsubs []func()
	for _, sink := range []realtime.Sink{s.PanelFeed, s.DashboardFeed, notifier, s.Counter} {
		unsubs = append(unsubs, s.Bus.Subscribe(sink))
	}
	return func() {
		for _, unsub := range unsubs {
			unsub()
		}
	}
}
