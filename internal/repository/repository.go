// Package repository declares the storage interfaces the service layer
// programs against. The sqlite subpackage is the only implementation;
// services never import it directly, which keeps them testable with
// in-memory mocks and the storage backend swappable.
//
// Method names are entity-qualified (CreateUser, CreateProject, ...)
// because a single storage value implements every interface.
package repository

import (
	"context"
	"time"

	"github.com/glutton-su/DevSpace-sub002/internal/model"
)

// ListOptions carries pagination for listing queries.
type ListOptions struct {
	Limit  int
	Offset int
}

// UserRepository reads and writes user accounts.
//
// CreateUser and UpdateUser surface apperror.ErrConflict when the username
// or email unique constraint fires — uniqueness is enforced by the store,
// not by a read-then-write check, so concurrent identical registrations
// cannot both succeed.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	UpdateUser(ctx context.Context, user *model.User) error
	DeleteUser(ctx context.Context, id string) error
	ListUsers(ctx context.Context, opts ListOptions) ([]model.User, error)

	// UpsertGitHub inserts or refreshes an account keyed on github_id.
	UpsertGitHub(ctx context.Context, user *model.User) error

	SetSuspended(ctx context.Context, id string, suspended bool) error
	SetRole(ctx context.Context, id string, role model.Role) error
}

// ProjectRepository reads and writes projects.
type ProjectRepository interface {
	CreateProject(ctx context.Context, project *model.Project) error
	GetProjectByID(ctx context.Context, id string) (*model.Project, error)
	UpdateProject(ctx context.Context, project *model.Project) error
	DeleteProject(ctx context.Context, id string) error
	ListProjectsByOwner(ctx context.Context, ownerID string, opts ListOptions) ([]model.Project, error)
}

// SnippetRepository reads and writes snippets plus their derived social
// state. Every read takes a viewerID ("" for anonymous) so isStarred and
// isLiked come back resolved relative to the caller in the same query.
type SnippetRepository interface {
	// CreateSnippet inserts the snippet and links its tags
	// (find-or-create, normalized) in one transaction.
	CreateSnippet(ctx context.Context, snippet *model.Snippet, tags []string) error

	// GetSnippetByID returns the snippet with owner, tags, and derived
	// counts. It does NOT apply visibility rules — the service decides those.
	GetSnippetByID(ctx context.Context, id, viewerID string) (*model.Snippet, error)

	// UpdateSnippet rewrites the snippet's own columns; when tags is
	// non-nil it also replaces the tag links, in the same transaction.
	UpdateSnippet(ctx context.Context, snippet *model.Snippet, tags []string) error
	DeleteSnippet(ctx context.Context, id string) error

	// ForkSnippet creates the target project, the fork row, and the copied
	// tag links in a single transaction, so a mid-sequence failure leaves
	// no orphan rows.
	ForkSnippet(ctx context.Context, project *model.Project, fork *model.Snippet, sourceID string) error

	// Listings. All exclude logically expired snippets.
	ListPublicSnippets(ctx context.Context, viewerID string, opts ListOptions) ([]model.Snippet, error)
	ListCollaborativeSnippets(ctx context.Context, viewerID string, opts ListOptions) ([]model.Snippet, error)
	ListSnippetsByOwner(ctx context.Context, ownerID, viewerID string, opts ListOptions) ([]model.Snippet, error)
	ListForkedSnippetsByOwner(ctx context.Context, ownerID, viewerID string, opts ListOptions) ([]model.Snippet, error)
	ListSnippetsByProject(ctx context.Context, projectID, viewerID string) ([]model.Snippet, error)

	// ToggleStar/ToggleLike flip the (user, snippet) row atomically —
	// insert-if-absent else delete, guarded by the composite primary key —
	// and return the resulting state and count.
	ToggleStar(ctx context.Context, userID, snippetID string) (starred bool, count int, err error)
	ToggleLike(ctx context.Context, userID, snippetID string) (liked bool, count int, err error)

	// ListStarredIDs returns the IDs of snippets the user has starred.
	ListStarredIDs(ctx context.Context, userID string) ([]string, error)
}

// TagRepository exposes the global tag namespace.
type TagRepository interface {
	// ListTagNames returns all distinct tag names, alphabetically.
	ListTagNames(ctx context.Context) ([]string, error)
}

// CollaboratorRepository reads and writes per-snippet collaboration
// grants. CreateCollaborator surfaces apperror.ErrConflict when the
// (snippet, user) unique constraint fires.
type CollaboratorRepository interface {
	CreateCollaborator(ctx context.Context, collab *model.Collaborator) error
	GetCollaborator(ctx context.Context, snippetID, userID string) (*model.Collaborator, error)
	ListCollaborators(ctx context.Context, snippetID string) ([]model.Collaborator, error)
	UpdateCollaborator(ctx context.Context, collab *model.Collaborator) error
	DeleteCollaborator(ctx context.Context, snippetID, userID string) error
}

// CommentRepository reads and writes snippet comments.
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *model.Comment) error
	GetCommentByID(ctx context.Context, id string) (*model.Comment, error)
	ListComments(ctx context.Context, snippetID string) ([]model.Comment, error)
	DeleteComment(ctx context.Context, id string) error
}

// NotificationRepository reads and writes notifications.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, n *model.Notification) error
	ListNotifications(ctx context.Context, userID string, opts ListOptions) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, id, userID string) error
	MarkAllNotificationsRead(ctx context.Context, userID string) error
}

// AnnouncementRepository reads and writes site announcements.
type AnnouncementRepository interface {
	CreateAnnouncement(ctx context.Context, a *model.Announcement) error
	GetAnnouncementByID(ctx context.Context, id string) (*model.Announcement, error)
	UpdateAnnouncement(ctx context.Context, a *model.Announcement) error
	ListActiveAnnouncements(ctx context.Context, now time.Time) ([]model.Announcement, error)
	ListAnnouncements(ctx context.Context, opts ListOptions) ([]model.Announcement, error)
}
