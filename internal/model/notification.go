package model

import "time"

// NotificationType enumerates the events that produce a notification.
type NotificationType string

const (
	NotifyComment       NotificationType = "comment"
	NotifyStar          NotificationType = "star"
	NotifyFork          NotificationType = "fork"
	NotifyCollaboration NotificationType = "collaboration"
	NotifyMention       NotificationType = "mention"
)

// Notification is created as a side effect of a triggering action and only
// ever mutated by flipping IsRead. RelatedItemID/Type point back at the
// entity that caused it (a snippet, a comment).
type Notification struct {
	ID              string           `json:"id"              db:"id"`
	UserID          string           `json:"userId"          db:"user_id"`
	Type            NotificationType `json:"type"            db:"type"`
	Content         string           `json:"content"         db:"content"`
	IsRead          bool             `json:"isRead"          db:"is_read"`
	RelatedItemID   string           `json:"relatedItemId"   db:"related_item_id"`
	RelatedItemType string           `json:"relatedItemType" db:"related_item_type"`
	CreatedAt       time.Time        `json:"createdAt"       db:"created_at"`
}
