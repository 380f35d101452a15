package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/fleetyard/gate-ops/internal/domain/auth"
)

type contextKey string

const sessionContextKey contextKey = "session"

// SessionFromContext returns the authenticated session attached by
// RequireAuth, if any.
func SessionFromContext(ctx context.Context) (auth.Session, bool) {
	sess, ok := ctx.Value(sessionContextKey).(auth.Session)
	return sess, ok
}

func withSession(ctx context.Context, sess auth.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, sess)
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
