package httpx

import (
	"context"
	"net/http"
)

// NotificationsBackend is the slice of the notification service the
// handlers need.
type NotificationsBackend interface {
	UnreadCount(ctx context.Context, userID string) (int, error)
	MarkAllRead(ctx context.Context, userID string) (int, error)
}

type notificationHandlers struct {
	notifications NotificationsBackend
}

// UnreadCount returns the caller's unread notification count. The
// console polls this as the authoritative badge value.
func (h *notificationHandlers) UnreadCount(w http.ResponseWriter, r *http.Request) {
	sess, ok := SessionFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	count, err := h.notifications.UnreadCount(r.Context(), sess.UserID)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "internal_error", Err: err})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]int{"count": count})
}

// ReadAll marks every unread notification for the caller as read.
func (h *notificationHandlers) ReadAll(w http.ResponseWriter, r *http.Request) {
	sess, ok := SessionFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	touched, err := h.notifications.MarkAllRead(r.Context(), sess.UserID)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "internal_error", Err: err})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]int{"marked_read": touched})
}
