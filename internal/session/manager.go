// Package session owns the console-side session: the persisted bearer
// token and the user profile it currently resolves to.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/fleetyard/gate-ops/internal/api"
	"github.com/fleetyard/gate-ops/internal/domain/auth"
)

// TokenStore persists the bearer token between console runs.
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// Status is the session's lifecycle state. Loading is a real state, not
// a transient flag: authorization decisions must defer while loading
// rather than treating the session as denied or allowed.
type Status int

const (
	// StatusLoading means Initialize has not resolved yet.
	StatusLoading Status = iota
	// StatusAnonymous means there is no accepted token.
	StatusAnonymous
	// StatusAuthenticated means the token currently resolves to a user.
	StatusAuthenticated
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusAnonymous:
		return "anonymous"
	case StatusAuthenticated:
		return "authenticated"
	}
	return "unknown"
}

// Backend is the slice of the API client the manager needs.
type Backend interface {
	Login(ctx context.Context, email, password string) (api.LoginResult, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (auth.User, error)
}

// Options groups dependencies for NewManager.
type Options struct {
	Backend Backend
	Tokens  TokenStore
	// OnTeardown is invoked exactly once per authenticated-to-anonymous
	// transition, whether caused by logout or by a 401 from any request.
	// The console uses it to return to the login prompt; it is never
	// invoked twice for the same session even when several in-flight
	// requests fail simultaneously.
	OnTeardown func()
	Logger     *slog.Logger
}

// Manager owns the token and resolved user profile. It implements
// api.TokenProvider so the HTTP client reads the live token on every
// request instead of mutating a global header.
type Manager struct {
	backend    Backend
	tokens     TokenStore
	onTeardown func()
	logger     *slog.Logger

	mu     sync.Mutex
	status Status
	token  string
	user   *auth.User
}

// NewManager constructs a Manager. The session starts in the loading
// state until Initialize resolves.
func NewManager(opts Options) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		backend:    opts.Backend,
		tokens:     opts.Tokens,
		onTeardown: opts.OnTeardown,
		logger:     logger,
		status:     StatusLoading,
	}
}

// Token implements api.TokenProvider.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// Status returns the current lifecycle state.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// User returns the resolved profile, or nil when not authenticated.
func (m *Manager) User() *auth.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

// HasRole reports whether the authenticated user holds the role.
// Always false while loading or anonymous.
func (m *Manager) HasRole(role auth.Role) bool {
	return m.HasAnyRole(role)
}

// HasAnyRole reports whether the authenticated user holds at least one
// of the roles.
func (m *Manager) HasAnyRole(roles ...auth.Role) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.status != StatusAuthenticated || m.user == nil {
		return false
	}
	return m.user.HasAnyRole(roles...)
}

// Initialize restores a persisted token and resolves it to a profile.
// Any failure is fail-closed: the session ends up anonymous with the
// stored token cleared, and no automatic retry is attempted.
func (m *Manager) Initialize(ctx context.Context) error {
	token, err := m.tokens.Load()
	if err != nil {
		m.logger.Warn("load persisted token failed", "error", err)
		m.settle(StatusAnonymous, "", nil)
		return nil
	}
	if token == "" {
		m.settle(StatusAnonymous, "", nil)
		return nil
	}

	// Install the token before the profile fetch so the request carries it.
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()

	user, err := m.backend.Me(ctx)
	if err != nil {
		// Fail closed. The 401 path has already torn the session down
		// via the auth hook; clearing again is harmless.
		m.logger.Info("stored token rejected, starting unauthenticated",
			"error_kind", string(api.KindOf(err)))
		m.clearLocked(false)
		return nil
	}

	m.settle(StatusAuthenticated, token, &user)
	return nil
}

// Login submits credentials. On success the token is persisted and the
// session becomes authenticated. On failure the classified error is
// returned for inline rendering; the session state is untouched.
func (m *Manager) Login(ctx context.Context, email, password string) (auth.User, error) {
	result, err := m.backend.Login(ctx, email, password)
	if err != nil {
		return auth.User{}, err
	}

	if err := m.tokens.Save(result.Token); err != nil {
		return auth.User{}, fmt.Errorf("persist token: %w", err)
	}
	m.settle(StatusAuthenticated, result.Token, &result.User)
	return result.User, nil
}

// Logout invalidates the session server-side on a best-effort basis and
// unconditionally clears local state and persisted storage. A network
// failure during server-side invalidation never blocks local cleanup.
func (m *Manager) Logout(ctx context.Context) {
	if m.Status() == StatusAuthenticated {
		if err := m.backend.Logout(ctx); err != nil {
			m.logger.Warn("server-side logout failed, clearing locally anyway",
				"error_kind", string(api.KindOf(err)))
		}
	}
	m.clearLocked(true)
}

// HandleAuthFailure is the hook registered with the API client's
// OnAuthError. A 401 from any in-flight request lands here; only the
// first one per session performs the teardown, so simultaneous failures
// cause exactly one redirect.
func (m *Manager) HandleAuthFailure() {
	m.clearLocked(true)
}

// settle moves the session to a resolved state.
func (m *Manager) settle(status Status, token string, user *auth.User) {
	m.mu.Lock()
	m.status = status
	m.token = token
	m.user = user
	m.mu.Unlock()
}

// clearLocked clears token, user, and persisted storage. The teardown
// hook fires only on a transition out of the authenticated state, which
// is what prevents redirect loops: once anonymous, further 401s are
// no-ops.
func (m *Manager) clearLocked(fireHook bool) {
	m.mu.Lock()
	wasAuthenticated := m.status == StatusAuthenticated
	m.status = StatusAnonymous
	m.token = ""
	m.user = nil
	m.mu.Unlock()

	if err := m.tokens.Clear(); err != nil {
		m.logger.Warn("clear persisted token failed", "error", err)
	}

	if fireHook && wasAuthenticated && m.onTeardown != nil {
		m.onTeardown()
	}
}
