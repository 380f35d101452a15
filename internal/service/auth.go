// Package service contains the server-side business logic for gate
// operations.
package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fleetyard/gate-ops/internal/core"
	"github.com/fleetyard/gate-ops/internal/domain/auth"
)

const sessionTokenBytes = 32

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Users      core.UserRepository
	Sessions   core.SessionStore
	SessionTTL time.Duration
	Logger     *slog.Logger
}

// AuthService handles credential login and bearer-token sessions.
type AuthService struct {
	users    core.UserRepository
	sessions core.SessionStore
	ttl      time.Duration
	logger   *slog.Logger
}

// NewAuthService validates opts and constructs an AuthService.
func NewAuthService(opts AuthServiceOptions) (*AuthService, error) {
	if opts.Users == nil {
		return nil, errors.New("user repository is required")
	}
	if opts.Sessions == nil {
		return nil, errors.New("session store is required")
	}
	if opts.SessionTTL <= 0 {
		return nil, errors.New("session TTL must be positive")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		users:    opts.Users,
		sessions: opts.Sessions,
		ttl:      opts.SessionTTL,
		logger:   logger,
	}, nil
}

// Login verifies credentials and mints a new session.
func (s *AuthService) Login(ctx context.Context, email, password string) (auth.Session, error) {
	user, err := s.users.Authenticate(ctx, email, password)
	if err != nil {
		return auth.Session{}, err
	}

	token, err := newSessionToken()
	if err != nil {
		return auth.Session{}, err
	}

	sess := auth.Session{
		Token:     token,
		UserID:    user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Roles:     user.Roles,
		ExpiresAt: time.Now().Add(s.ttl),
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return auth.Session{}, fmt.Errorf("save session: %w", err)
	}

	s.logger.InfoContext(ctx, "user logged in", "user_id", user.ID)
	return sess, nil
}

// GetSession resolves a bearer token to its session.
func (s *AuthService) GetSession(ctx context.Context, token string) (auth.Session, error) {
	return s.sessions.Get(ctx, token)
}

// Logout invalidates the session for a token. Unknown tokens are a
// no-op so logout is idempotent.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

func newSessionToken() (string, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
