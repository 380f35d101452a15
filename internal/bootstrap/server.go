package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/fleetyard/gate-ops/config"
	"github.com/fleetyard/gate-ops/internal/adapters/redisauth"
	"github.com/fleetyard/gate-ops/internal/adapters/redisbus"
	"github.com/fleetyard/gate-ops/internal/data"
	"github.com/fleetyard/gate-ops/internal/devseed"
	httpx "github.com/fleetyard/gate-ops/internal/http"
	"github.com/fleetyard/gate-ops/internal/service"
)

// Server is the assembled gate-server: storage, services, and the HTTP
// surface.
type Server struct {
	cfg    config.AppConfig
	logger *slog.Logger
	db     *sql.DB
	redis  *redis.Client
	router http.Handler
}

// NewServer connects the backing stores and wires the service graph.
func NewServer(cfg config.AppConfig, logger *slog.Logger) (*Server, error) {
	db, err := ConnectDB(cfg.Postgres, logger)
	if err != nil {
		return nil, err
	}

	if cfg.Postgres.SeedDevData {
		seedCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := devseed.Run(seedCtx, db, logger); err != nil {
			logger.Warn("dev seed incomplete", "error", err)
		}
		cancel()
	}

	redisClient, err := ConnectRedis(cfg.Redis, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	authSvc, err := service.NewAuthService(service.AuthServiceOptions{
		Users:      data.NewUserRepo(db),
		Sessions:   redisauth.NewSessionStore(redisClient),
		SessionTTL: cfg.Auth.SessionTTL,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build auth service: %w", err)
	}

	vehicleSvc, err := service.NewVehicleService(data.NewVehicleRepo(db))
	if err != nil {
		return nil, fmt.Errorf("build vehicle service: %w", err)
	}

	notificationRepo := data.NewNotificationRepo(db)
	checkInSvc, err := service.NewCheckInService(service.CheckInServiceOptions{
		CheckIns:      data.NewCheckInRepo(db),
		Vehicles:      data.NewVehicleRepo(db),
		Notifications: notificationRepo,
		Publisher:     redisbus.NewPublisher(redisClient),
		Logger:        logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build check-in service: %w", err)
	}

	notificationSvc, err := service.NewNotificationService(notificationRepo)
	if err != nil {
		return nil, fmt.Errorf("build notification service: %w", err)
	}

	router := httpx.NewRouter(httpx.RouterServices{
		Auth:          authSvc,
		Vehicles:      vehicleSvc,
		CheckIns:      checkInSvc,
		Notifications: notificationSvc,
		Logger:        logger,
	})

	return &Server{
		cfg:    cfg,
		logger: logger,
		db:     db,
		redis:  redisClient,
		router: router,
	}, nil
}

// Run serves HTTP until the context is cancelled, then shuts down
// gracefully and closes the backing stores.
func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:         s.cfg.HTTP.Addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		s.logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	err := g.Wait()

	if closeErr := s.db.Close(); closeErr != nil {
		err = errors.Join(err, fmt.Errorf("close database: %w", closeErr))
	}
	if closeErr := s.redis.Close(); closeErr != nil {
		err = errors.Join(err, fmt.Errorf("close redis: %w", closeErr))
	}
	return err
}
