package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glutton-su/DevSpace-sub002/internal/apperror"
	"github.com/glutton-su/DevSpace-sub002/internal/model"
	"github.com/glutton-su/DevSpace-sub002/internal/repository"
)

func TestNotifications_MarkReadScopedByOwner(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	alice := seedUser(t, db)
	bob := seedUser(t, db)

	n := &model.Notification{UserID: alice.ID, Type: model.NotifyStar, Content: "starred"}
	require.NoError(t, db.CreateNotification(ctx, n))

	// Bob cannot mark Alice's notification.
	assert.ErrorIs(t, db.MarkNotificationRead(ctx, n.ID, bob.ID), apperror.ErrNotFound)

	require.NoError(t, db.MarkNotificationRead(ctx, n.ID, alice.ID))
	list, err := db.ListNotifications(ctx, alice.ID, repository.ListOptions{Limit: 10})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].IsRead)
}

func TestNotifications_MarkAllRead(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	u := seedUser(t, db)

	for i := 0; i < 3; i++ {
		require.NoError(t, db.CreateNotification(ctx, &model.Notification{
			UserID: u.ID, Type: model.NotifyComment, Content: "c",
		}))
	}
	require.NoError(t, db.MarkAllNotificationsRead(ctx, u.ID))

	list, err := db.ListNotifications(ctx, u.ID, repository.ListOptions{Limit: 10})
	require.NoError(t, err)
	require.Len(t, list, 3)
	for _, n := range list {
		assert.True(t, n.IsRead)
	}
}

func TestAnnouncements_ActiveFeedOrdering(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	admin := seedUser(t, db)

	mk := func(title string, priority model.AnnouncementPriority, active bool, expires *time.Time) {
		require.NoError(t, db.CreateAnnouncement(ctx, &model.Announcement{
			Title:     title,
			Content:   "c",
			Type:      model.AnnounceInfo,
			Priority:  priority,
			IsActive:  active,
			ExpiresAt: expires,
			CreatedBy: admin.ID,
		}))
	}

	past := time.Now().Add(-time.Hour)
	mk("low", model.PriorityLow, true, nil)
	mk("urgent", model.PriorityUrgent, true, nil)
	mk("inactive", model.PriorityUrgent, false, nil)
	mk("expired", model.PriorityUrgent, true, &past)

	feed, err := db.ListActiveAnnouncements(ctx, time.Now())
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, "urgent", feed[0].Title, "urgent sorts before low")
	assert.Equal(t, "low", feed[1].Title)

	// The dashboard listing shows everything.
	all, err := db.ListAnnouncements(ctx, repository.ListOptions{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, all, 4)
}
