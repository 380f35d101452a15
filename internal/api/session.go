package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fleetyard/gate-ops/internal/domain/auth"
)

// wireUser is the user shape on the wire. Roles arrive as raw strings
// and are validated into the closed role enum at this boundary.
type wireUser struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

func (w wireUser) toDomain() (auth.User, error) {
	roles, err := auth.ParseRoles(w.Roles)
	if err != nil {
		return auth.User{}, fmt.Errorf("user %s: %w", w.ID, err)
	}
	return auth.User{ID: w.ID, Name: w.Name, Email: w.Email, Roles: roles}, nil
}

// LoginResult is the outcome of a successful credential login.
type LoginResult struct {
	Token string
	User  auth.User
}

// Login exchanges credentials for a bearer token and the resolved user.
// Validation and auth failures come back as classified errors for the
// caller to render inline.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var out struct {
		Token string   `json:"token"`
		User  wireUser `json:"user"`
	}
	err := c.do(ctx, requestParams{
		Method: http.MethodPost,
		Path:   "/login",
		Body:   map[string]string{"email": email, "password": password},
		Out:    &out,
	})
	if err != nil {
		return LoginResult{}, err
	}
	user, err := out.User.toDomain()
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Token: out.Token, User: user}, nil
}

// Logout invalidates the session server-side. Callers treat failures as
// non-fatal: local cleanup proceeds regardless.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, requestParams{Method: http.MethodPost, Path: "/logout"})
}

// Me fetches the profile the current token resolves to.
func (c *Client) Me(ctx context.Context) (auth.User, error) {
	var out struct {
		User wireUser `json:"user"`
	}
	err := c.do(ctx, requestParams{Method: http.MethodGet, Path: "/me", Out: &out})
	if err != nil {
		return auth.User{}, err
	}
	return out.User.toDomain()
}
