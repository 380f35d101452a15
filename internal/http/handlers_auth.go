package httpx

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/fleetyard/gate-ops/internal/data"
	"github.com/fleetyard/gate-ops/internal/domain/auth"
)

// AuthBackend is the slice of the auth service the handlers need.
type AuthBackend interface {
	Login(ctx context.Context, email, password string) (auth.Session, error)
	GetSession(ctx context.Context, token string) (auth.Session, error)
	Logout(ctx context.Context, token string) error
}

type authHandlers struct {
	auth AuthBackend
}

// userPayload is the wire shape of a user. Roles travel as plain
// strings.
type userPayload struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

func toUserPayload(u auth.User) userPayload {
	return userPayload{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Roles: auth.RoleNames(u.Roles),
	}
}

// Login exchanges credentials for a bearer token. Blank fields come back
// as a 422 with per-field messages; bad credentials as a uniform 401.
func (h *authHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	fields := map[string]string{}
	if strings.TrimSpace(req.Email) == "" {
		fields["email"] = "email is required"
	}
	if req.Password == "" {
		fields["password"] = "password is required"
	}
	if len(fields) > 0 {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnprocessableEntity,
			ErrCode: "validation_failed",
			Err:     errors.New("validation failed"),
			Fields:  fields,
		})
		return
	}

	sess, err := h.auth.Login(r.Context(), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		if errors.Is(err, data.ErrInvalidCredentials) {
			WriteError(w, ErrorParams{
				Code:    http.StatusUnauthorized,
				ErrCode: "invalid_credentials",
				Err:     errors.New("invalid email or password"),
			})
			return
		}
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "internal_error", Err: err})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"token": sess.Token,
		"user":  toUserPayload(sess.User()),
	})
}

// Logout invalidates the caller's session. It always succeeds from the
// client's point of view.
func (h *authHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if token := bearerToken(r); token != "" {
		_ = h.auth.Logout(r.Context(), token)
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the profile of the authenticated session.
func (h *authHandlers) Me(w http.ResponseWriter, r *http.Request) {
	sess, ok := SessionFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"user": toUserPayload(sess.User())})
}
