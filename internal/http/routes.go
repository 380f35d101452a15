package httpx

import (
	"log/slog"
	"net/http"

	"github.com/fleetyard/gate-ops/internal/domain/auth"
)

// gateRoles are the roles allowed to perform presence transitions.
var gateRoles = []auth.Role{auth.RoleAdmin, auth.RoleManager, auth.RoleGateSecurity}

// RouterServices holds the services the router wires handlers to.
type RouterServices struct {
	Auth          AuthBackend
	Vehicles      VehiclesBackend
	CheckIns      CheckInsBackend
	Notifications NotificationsBackend
	Logger        *slog.Logger
}

// NewRouter builds the gate-server mux. Everything except /login and
// /healthz sits behind bearer auth; presence transitions additionally
// require a gate role.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()

	healthHandler := func(w http.ResponseWriter, _ *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
	mux.HandleFunc("GET /healthz", healthHandler)
	mux.HandleFunc("HEAD /healthz", healthHandler)

	authed := RequireAuth(services.Auth)
	gated := func(h http.HandlerFunc) http.Handler {
		return authed(RequireAnyRole(gateRoles...)(h))
	}

	ah := &authHandlers{auth: services.Auth}
	mux.HandleFunc("POST /login", ah.Login)
	mux.HandleFunc("POST /logout", ah.Logout)
	mux.Handle("GET /me", authed(http.HandlerFunc(ah.Me)))

	vh := &vehicleHandlers{vehicles: services.Vehicles}
	mux.Handle("GET /vehicles", authed(http.HandlerFunc(vh.Search)))

	ch := &checkInHandlers{checkins: services.CheckIns}
	mux.Handle("GET /checkins/latest", authed(http.HandlerFunc(ch.Latest)))
	mux.Handle("POST /checkins", gated(ch.Create))
	mux.Handle("POST /checkins/{id}/checkout", gated(ch.Checkout))

	nh := &notificationHandlers{notifications: services.Notifications}
	mux.Handle("GET /notifications/unread-count", authed(http.HandlerFunc(nh.UnreadCount)))
	mux.Handle("POST /notifications/read-all", authed(http.HandlerFunc(nh.ReadAll)))

	var handler http.Handler = mux
	handler = Logging(logger)(handler)
	handler = Recover(logger)(handler)
	return handler
}
