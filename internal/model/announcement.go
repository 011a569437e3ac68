package model

import "time"

// AnnouncementType and AnnouncementPriority classify site-wide notices.
type (
	AnnouncementType     string
	AnnouncementPriority string
)

const (
	AnnounceInfo    AnnouncementType = "info"
	AnnounceWarning AnnouncementType = "warning"
	AnnounceSuccess AnnouncementType = "success"
	AnnounceError   AnnouncementType = "error"

	PriorityLow    AnnouncementPriority = "low"
	PriorityMedium AnnouncementPriority = "medium"
	PriorityHigh   AnnouncementPriority = "high"
	PriorityUrgent AnnouncementPriority = "urgent"
)

func ValidAnnouncementType(t AnnouncementType) bool {
	return t == AnnounceInfo || t == AnnounceWarning || t == AnnounceSuccess || t == AnnounceError
}

func ValidAnnouncementPriority(p AnnouncementPriority) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh || p == PriorityUrgent
}

// Announcement is an admin-authored site notice. It is retired by clearing
// IsActive or by passing ExpiresAt — never required to be deleted.
type Announcement struct {
	ID        string               `json:"id"        db:"id"`
	Title     string               `json:"title"     db:"title"`
	Content   string               `json:"content"   db:"content"`
	Type      AnnouncementType     `json:"type"      db:"type"`
	Priority  AnnouncementPriority `json:"priority"  db:"priority"`
	IsActive  bool                 `json:"isActive"  db:"is_active"`
	ExpiresAt *time.Time           `json:"expiresAt" db:"expires_at"`
	CreatedBy string               `json:"createdBy" db:"created_by"`
	CreatedAt time.Time            `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time            `json:"updatedAt" db:"updated_at"`
}
