package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/glutton-su/DevSpace-sub002/internal/model"
	"github.com/glutton-su/DevSpace-sub002/internal/repository"
)

var _ repository.NotificationRepository = (*DB)(nil)

func (db *DB) CreateNotification(ctx context.Context, n *model.Notification) error {
	n.ID = xid.New().String()
	n.CreatedAt = time.Now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO notifications
		 (id, user_id, type, content, is_read, related_item_id, related_item_type, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.UserID, n.Type, n.Content, n.IsRead,
		n.RelatedItemID, n.RelatedItemType, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating notification: %w", err)
	}
	return nil
}

func (db *DB) ListNotifications(ctx context.Context, userID string, opts repository.ListOptions) ([]model.Notification, error) {
	limit, offset := clampListOptions(opts)

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, type, content, is_read, related_item_id, related_item_type, created_at
		 FROM notifications
		 WHERE user_id = ?
		 ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing notifications: %w", err)
	}
	defer rows.Close()

	notifications := make([]model.Notification, 0, limit)
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Content, &n.IsRead,
			&n.RelatedItemID, &n.RelatedItemType, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning notification row: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating notifications: %w", err)
	}
	return notifications, nil
}

// MarkNotificationRead flips is_read, scoped to the owner so one user
// cannot mark another's notifications.
func (db *DB) MarkNotificationRead(ctx context.Context, id, userID string) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE notifications SET is_read = 1 WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("sqlite: marking notification read: %w", err)
	}
	return requireRowsAffected(result, "notification", id)
}

func (db *DB) MarkAllNotificationsRead(ctx context.Context, userID string) error {
	_, err := db.conn.ExecContext(ctx,
		`UPDATE notifications SET is_read = 1 WHERE user_id = ? AND is_read = 0`, userID)
	if err != nil {
		return fmt.Errorf("sqlite: marking all notifications read: %w", err)
	}
	return nil
}
