package service

import (
	"context"
	"errors"

	"github.com/fleetyard/gate-ops/internal/core"
)

// NotificationService exposes per-user notification state.
type NotificationService struct {
	notifications core.NotificationRepository
}

// NewNotificationService constructs a NotificationService.
func NewNotificationService(notifications core.NotificationRepository) (*NotificationService, error) {
	if notifications == nil {
		return nil, errors.New("notification repository is required")
	}
	return &NotificationService{notifications: notifications}, nil
}

// UnreadCount returns the number of unread notifications for a user.
func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.notifications.CountUnread(ctx, userID)
}

// MarkAllRead marks every unread notification for a user as read and
// returns how many were touched.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int, error) {
	return s.notifications.MarkAllRead(ctx, userID)
}
