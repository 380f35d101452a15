// Package authz contains the pure authorization decision logic that
// gates routes and actions on session state and required roles.
package authz

import (
	"github.com/fleetyard/gate-ops/internal/domain/auth"
	"github.com/fleetyard/gate-ops/internal/session"
)

// Decision is the outcome of evaluating a guard. It is deliberately
// richer than allow/deny: while the session is still resolving, no
// decision exists yet and callers must render a pending state.
type Decision int

const (
	// DecisionPending means the session is still loading; defer.
	DecisionPending Decision = iota
	// DecisionAllow grants access.
	DecisionAllow
	// DecisionDenyAnonymous denies because no user is authenticated;
	// callers redirect to login.
	DecisionDenyAnonymous
	// DecisionDenyForbidden denies because the user's roles don't
	// intersect the requirement; callers redirect to "not authorized".
	DecisionDenyForbidden
)

func (d Decision) String() string {
	switch d {
	case DecisionPending:
		return "pending"
	case DecisionAllow:
		return "allow"
	case DecisionDenyAnonymous:
		return "deny:anonymous"
	case DecisionDenyForbidden:
		return "deny:forbidden"
	}
	return "unknown"
}

// Evaluate applies the decision table for a single requirement, top-down
// and short-circuiting:
//
//  1. session loading        -> pending
//  2. no user                -> deny (login)
//  3. empty requirement      -> allow (any authenticated user)
//  4. roles intersect        -> allow
//  5. otherwise              -> deny (not authorized)
func Evaluate(status session.Status, user *auth.User, required []auth.Role) Decision {
	if status == session.StatusLoading {
		return DecisionPending
	}
	if user == nil || status != session.StatusAuthenticated {
		return DecisionDenyAnonymous
	}
	if len(required) == 0 {
		return DecisionAllow
	}
	if auth.Intersects(user.Roles, required) {
		return DecisionAllow
	}
	return DecisionDenyForbidden
}

// Guard is a requirement attached to a route subtree. Guards compose
// hierarchically: a child guard evaluates its ancestors first, and a
// failure at any level stops evaluation of inner levels.
type Guard struct {
	required []auth.Role
	parent   *Guard
}

// Authenticated returns a guard requiring any authenticated user.
func Authenticated() *Guard {
	return &Guard{}
}

// Require returns a guard requiring at least one of the given roles.
func Require(roles ...auth.Role) *Guard {
	return &Guard{required: roles}
}

// Child derives a nested guard that additionally requires one of the
// given roles. An empty role list adds no further restriction.
func (g *Guard) Child(roles ...auth.Role) *Guard {
	return &Guard{required: roles, parent: g}
}

// Evaluate walks the guard chain from the outermost ancestor inward,
// returning the first non-allow decision.
func (g *Guard) Evaluate(status session.Status, user *auth.User) Decision {
	if g.parent != nil {
		if d := g.parent.Evaluate(status, user); d != DecisionAllow {
			return d
		}
	}
	return Evaluate(status, user, g.required)
}
