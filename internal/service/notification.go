package service

import (
	"context"
	"log/slog"

	"github.com/glutton-su/DevSpace-sub002/internal/model"
	"github.com/glutton-su/DevSpace-sub002/internal/repository"
)

// NotificationService creates notifications as side effects of other
// operations and lets users read and acknowledge their own.
type NotificationService struct {
	notifications repository.NotificationRepository
	logger        *slog.Logger
}

func NewNotificationService(notifications repository.NotificationRepository, logger *slog.Logger) *NotificationService {
	return &NotificationService{notifications: notifications, logger: logger}
}

// Emit records a notification for userID. Failures are logged and
// swallowed: a notification is a side effect, and the action that caused
// it has already succeeded.
func (s *NotificationService) Emit(ctx context.Context, userID string, typ model.NotificationType, content, relatedID, relatedType string) {
	n := &model.Notification{
		UserID:          userID,
		Type:            typ,
		Content:         content,
		RelatedItemID:   relatedID,
		RelatedItemType: relatedType,
	}
	if err := s.notifications.CreateNotification(ctx, n); err != nil {
		s.logger.Error("failed to create notification",
			slog.String("userID", userID),
			slog.String("type", string(typ)),
			slog.String("error", err.Error()),
		)
	}
}

// List returns the requester's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID string, limit, offset int) ([]model.Notification, error) {
	return s.notifications.ListNotifications(ctx, userID, clamp(limit, offset))
}

// MarkRead flips a single notification to read. The store scopes the
// update by owner, so marking someone else's notification yields NotFound.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID string) error {
	return s.notifications.MarkNotificationRead(ctx, id, userID)
}

// MarkAllRead marks every unread notification of the requester as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	return s.notifications.MarkAllNotificationsRead(ctx, userID)
}
