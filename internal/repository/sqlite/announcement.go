package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/glutton-su/DevSpace-sub002/internal/apperror"
	"github.com/glutton-su/DevSpace-sub002/internal/model"
	"github.com/glutton-su/DevSpace-sub002/internal/repository"
)

var _ repository.AnnouncementRepository = (*DB)(nil)

const announcementColumns = `id, title, content, type, priority, is_active,
	expires_at, created_by, created_at, updated_at`

func scanAnnouncement(row interface{ Scan(...any) error }) (*model.Announcement, error) {
	var (
		a         model.Announcement
		expiresAt sql.NullTime
	)
	err := row.Scan(&a.ID, &a.Title, &a.Content, &a.Type, &a.Priority,
		&a.IsActive, &expiresAt, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if expiresAt.Valid {
		t := expiresAt.Time
		a.ExpiresAt = &t
	}
	return &a, nil
}

func (db *DB) CreateAnnouncement(ctx context.Context, a *model.Announcement) error {
	a.ID = xid.New().String()
	now := time.Now()
	a.CreatedAt = now
	a.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO announcements (`+announcementColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Title, a.Content, a.Type, a.Priority, a.IsActive,
		a.ExpiresAt, a.CreatedBy, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating announcement: %w", err)
	}
	return nil
}

func (db *DB) GetAnnouncementByID(ctx context.Context, id string) (*model.Announcement, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+announcementColumns+` FROM announcements WHERE id = ?`, id)
	a, err := scanAnnouncement(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("announcement", id)
		}
		return nil, fmt.Errorf("sqlite: getting announcement %s: %w", id, err)
	}
	return a, nil
}

func (db *DB) UpdateAnnouncement(ctx context.Context, a *model.Announcement) error {
	a.UpdatedAt = time.Now()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE announcements
		 SET title = ?, content = ?, type = ?, priority = ?, is_active = ?,
		     expires_at = ?, updated_at = ?
		 WHERE id = ?`,
		a.Title, a.Content, a.Type, a.Priority, a.IsActive,
		a.ExpiresAt, a.UpdatedAt, a.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating announcement %s: %w", a.ID, err)
	}
	return requireRowsAffected(result, "announcement", a.ID)
}

// ListActiveAnnouncements returns active, unexpired announcements ordered
// by priority (urgent first) then recency.
func (db *DB) ListActiveAnnouncements(ctx context.Context, now time.Time) ([]model.Announcement, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+announcementColumns+` FROM announcements
		 WHERE is_active = 1 AND (expires_at IS NULL OR expires_at > ?)
		 ORDER BY CASE priority
		     WHEN 'urgent' THEN 0 WHEN 'high' THEN 1 WHEN 'medium' THEN 2 ELSE 3
		 END, created_at DESC`, now)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing active announcements: %w", err)
	}
	defer rows.Close()
	return collectAnnouncements(rows)
}

func (db *DB) ListAnnouncements(ctx context.Context, opts repository.ListOptions) ([]model.Announcement, error) {
	limit, offset := clampListOptions(opts)

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+announcementColumns+` FROM announcements
		 ORDER BY created_at DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing announcements: %w", err)
	}
	defer rows.Close()
	return collectAnnouncements(rows)
}

func collectAnnouncements(rows *sql.Rows) ([]model.Announcement, error) {
	announcements := []model.Announcement{}
	for rows.Next() {
		a, err := scanAnnouncement(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning announcement row: %w", err)
		}
		announcements = append(announcements, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating announcements: %w", err)
	}
	return announcements, nil
}
