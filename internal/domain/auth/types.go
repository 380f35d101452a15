// Package auth contains domain-level types for authentication and sessions.
// It is pure and free of framework/adapter concerns.
package auth

import (
	"fmt"
	"strings"
	"time"
)

// Role represents an application's authorization role.
// Kept in string form for easy persistence and wire transport.
// Valid values are defined as constants below; anything else is rejected
// at the API boundary by ParseRole.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleManager      Role = "manager"
	RoleDriver       Role = "driver"
	RoleGateSecurity Role = "gate_security"
	RoleVehicleOwner Role = "vehicle_owner"
	RoleStaff        Role = "staff"
	RoleVisitor      Role = "visitor"
)

// AllRoles lists every valid role, in precedence order (highest first).
// The order is meaningful: dashboard resolution picks the first role a
// user holds.
var AllRoles = []Role{
	RoleAdmin,
	RoleManager,
	RoleGateSecurity,
	RoleDriver,
	RoleVehicleOwner,
	RoleStaff,
	RoleVisitor,
}

// ParseRole validates a raw role name against the closed role set.
func ParseRole(raw string) (Role, error) {
	candidate := Role(strings.ToLower(strings.TrimSpace(raw)))
	for _, r := range AllRoles {
		if candidate == r {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role %q", raw)
}

// ParseRoles validates a list of raw role names. Duplicates are collapsed.
func ParseRoles(raw []string) ([]Role, error) {
	seen := make(map[Role]struct{}, len(raw))
	roles := make([]Role, 0, len(raw))
	for _, s := range raw {
		r, err := ParseRole(s)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		roles = append(roles, r)
	}
	return roles, nil
}

// RoleNames converts roles back to their wire representation.
func RoleNames(roles []Role) []string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return names
}

// Intersects reports whether any role in have also appears in want.
// This is the single access-check primitive: a user with multiple roles
// is granted access if at least one of them matches (OR semantics).
func Intersects(have, want []Role) bool {
	for _, h := range have {
		for _, w := range want {
			if h == w {
				return true
			}
		}
	}
	return false
}

// User is the authenticated principal as resolved from the backend.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Roles []Role `json:"roles"`
}

// HasRole reports whether the user holds the given role.
func (u User) HasRole(role Role) bool {
	return Intersects(u.Roles, []Role{role})
}

// HasAnyRole reports whether the user holds at least one of the given roles.
func (u User) HasAnyRole(roles ...Role) bool {
	return Intersects(u.Roles, roles)
}

// Session is the server-side record persisted for an authenticated user.
// Token is an opaque bearer token (random, URL-safe).
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Roles     []Role    `json:"roles"`
	ExpiresAt time.Time `json:"expires_at"`
}

// User returns the principal embedded in the session.
func (s Session) User() User {
	return User{ID: s.UserID, Name: s.Name, Email: s.Email, Roles: s.Roles}
}
