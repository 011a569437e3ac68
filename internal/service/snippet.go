package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/glutton-su/DevSpace-sub002/internal/apperror"
	"github.com/glutton-su/DevSpace-sub002/internal/model"
	"github.com/glutton-su/DevSpace-sub002/internal/repository"
)

const (
	MaxTitleLength    = 200
	MaxContentLength  = 100000 // ~100KB of code
	MaxCommentLength  = 2000
	MaxTagsPerSnippet = 10
	DefaultListLimit  = 20
	MaxListLimit      = 100
)

// mentionPattern matches @username references inside comment text.
var mentionPattern = regexp.MustCompile(`@([A-Za-z0-9_-]{3,30})`)

// SnippetService handles snippet CRUD, forking, star/like toggles,
// comments and the listings. Every read/write path funnels through the
// access predicates in access.go.
type SnippetService struct {
	users    repository.UserRepository
	projects repository.ProjectRepository
	snippets repository.SnippetRepository
	tags     repository.TagRepository
	collabs  repository.CollaboratorRepository
	comments repository.CommentRepository
	notify   *NotificationService
	logger   *slog.Logger
}

func NewSnippetService(
	users repository.UserRepository,
	projects repository.ProjectRepository,
	snippets repository.SnippetRepository,
	tags repository.TagRepository,
	collabs repository.CollaboratorRepository,
	comments repository.CommentRepository,
	notify *NotificationService,
	logger *slog.Logger,
) *SnippetService {
	return &SnippetService{
		users:    users,
		projects: projects,
		snippets: snippets,
		tags:     tags,
		collabs:  collabs,
		comments: comments,
		notify:   notify,
		logger:   logger,
	}
}

// CreateSnippetInput carries the fields for snippet creation.
type CreateSnippetInput struct {
	ProjectID          string     `json:"projectId"`
	Title              string     `json:"title"`
	Content            string     `json:"content"`
	Language           string     `json:"language"`
	Tags               []string   `json:"tags"`
	IsPublic           bool       `json:"isPublic"`
	AllowCollaboration bool       `json:"allowCollaboration"`
	ExpiresAt          *time.Time `json:"expiresAt"`
}

// Create validates and saves a new snippet. When ProjectID is empty a
// fresh project named after the snippet is created for the author; when
// given, the requester must own that project.
func (s *SnippetService) Create(ctx context.Context, userID string, in CreateSnippetInput) (*model.Snippet, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperror.ValidationFailed("title", "snippet title is required")
	}
	if len(title) > MaxTitleLength {
		return nil, apperror.ValidationFailed("title",
			fmt.Sprintf("snippet title must be %d characters or less", MaxTitleLength))
	}
	if len(in.Content) > MaxContentLength {
		return nil, apperror.ValidationFailed("content",
			fmt.Sprintf("content must be %d characters or less", MaxContentLength))
	}
	tags, err := normalizeTags(in.Tags)
	if err != nil {
		return nil, err
	}

	projectID := strings.TrimSpace(in.ProjectID)
	if projectID == "" {
		project := &model.Project{
			Name:     title,
			IsPublic: in.IsPublic,
			OwnerID:  userID,
		}
		if err := s.projects.CreateProject(ctx, project); err != nil {
			return nil, fmt.Errorf("creating project for snippet: %w", err)
		}
		projectID = project.ID
	} else {
		project, err := s.projects.GetProjectByID(ctx, projectID)
		if err != nil {
			return nil, err
		}
		if project.OwnerID != userID {
			return nil, apperror.Forbidden("only the project owner can add snippets to it")
		}
	}

	snippet := &model.Snippet{
		ProjectID:          projectID,
		Title:              title,
		Content:            in.Content,
		Language:           strings.TrimSpace(in.Language),
		IsPublic:           in.IsPublic,
		AllowCollaboration: in.AllowCollaboration,
		ExpiresAt:          in.ExpiresAt,
	}
	if err := s.snippets.CreateSnippet(ctx, snippet, tags); err != nil {
		s.logger.Error("failed to create snippet",
			slog.String("title", title),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating snippet: %w", err)
	}
	snippet.OwnerID = userID

	s.logger.Info("snippet created",
		slog.String("id", snippet.ID),
		slog.String("userID", userID),
	)
	return snippet, nil
}

// Get returns a snippet with its project, collaborators and comments,
// respecting CanView. Denied viewers get NotFound — never Forbidden — so
// existence doesn't leak.
func (s *SnippetService) Get(ctx context.Context, id, viewerID string) (*model.Snippet, error) {
	snippet, viewer, collab, err := s.load(ctx, id, viewerID)
	if err != nil {
		return nil, err
	}
	if !CanView(viewer, snippet, collab, time.Now()) {
		return nil, apperror.NotFound("snippet", id)
	}

	project, err := s.projects.GetProjectByID(ctx, snippet.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("loading snippet project: %w", err)
	}
	snippet.Project = project

	collaborators, err := s.collabs.ListCollaborators(ctx, snippet.ID)
	if err != nil {
		return nil, fmt.Errorf("loading snippet collaborators: %w", err)
	}
	snippet.Collaborators = collaborators

	comments, err := s.comments.ListComments(ctx, snippet.ID)
	if err != nil {
		return nil, fmt.Errorf("loading snippet comments: %w", err)
	}
	snippet.Comments = comments

	return snippet, nil
}

// UpdateSnippetInput carries partial snippet updates; nil pointers mean
// "leave unchanged".
type UpdateSnippetInput struct {
	Title              *string    `json:"title"`
	Content            *string    `json:"content"`
	Language           *string    `json:"language"`
	Tags               []string   `json:"tags"`
	IsPublic           *bool      `json:"isPublic"`
	AllowCollaboration *bool      `json:"allowCollaboration"`
	ExpiresAt          *time.Time `json:"expiresAt"`
}

// Update applies a partial update. Requires CanEdit; viewers without even
// view access get NotFound so the 403 doesn't confirm the snippet exists.
func (s *SnippetService) Update(ctx context.Context, id, requesterID string, in UpdateSnippetInput) (*model.Snippet, error) {
	snippet, viewer, collab, err := s.load(ctx, id, requesterID)
	if err != nil {
		return nil, err
	}
	if !CanView(viewer, snippet, collab, time.Now()) {
		return nil, apperror.NotFound("snippet", id)
	}
	if !CanEdit(viewer, snippet, collab) {
		return nil, apperror.Forbidden("you do not have edit access to this snippet")
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, apperror.ValidationFailed("title", "snippet title is required")
		}
		if len(title) > MaxTitleLength {
			return nil, apperror.ValidationFailed("title",
				fmt.Sprintf("snippet title must be %d characters or less", MaxTitleLength))
		}
		snippet.Title = title
	}
	if in.Content != nil {
		if len(*in.Content) > MaxContentLength {
			return nil, apperror.ValidationFailed("content",
				fmt.Sprintf("content must be %d characters or less", MaxContentLength))
		}
		snippet.Content = *in.Content
	}
	if in.Language != nil {
		snippet.Language = strings.TrimSpace(*in.Language)
	}
	if in.IsPublic != nil {
		snippet.IsPublic = *in.IsPublic
	}
	if in.AllowCollaboration != nil {
		snippet.AllowCollaboration = *in.AllowCollaboration
	}
	if in.ExpiresAt != nil {
		snippet.ExpiresAt = in.ExpiresAt
	}

	var tags []string
	if in.Tags != nil {
		tags, err = normalizeTags(in.Tags)
		if err != nil {
			return nil, err
		}
	}

	if err := s.snippets.UpdateSnippet(ctx, snippet, tags); err != nil {
		return nil, fmt.Errorf("updating snippet: %w", err)
	}

	s.logger.Info("snippet updated",
		slog.String("id", snippet.ID),
		slog.String("userID", requesterID),
	)
	return snippet, nil
}

// Delete removes a snippet. Requires CanDelete; the store cascades to
// collaborator/star/like/comment/tag-link rows.
func (s *SnippetService) Delete(ctx context.Context, id, requesterID string) error {
	snippet, viewer, collab, err := s.load(ctx, id, requesterID)
	if err != nil {
		return err
	}
	if !CanView(viewer, snippet, collab, time.Now()) {
		return apperror.NotFound("snippet", id)
	}
	if !CanDelete(viewer, snippet, collab) {
		return apperror.Forbidden("you do not have delete access to this snippet")
	}

	if err := s.snippets.DeleteSnippet(ctx, id); err != nil {
		return err
	}
	s.logger.Info("snippet deleted", slog.String("id", id), slog.String("userID", requesterID))
	return nil
}

// Fork duplicates a visible snippet into a fresh project owned by the
// requester. Content, language and tag links are copied; counters start
// at zero because they are derived from the fork's own (empty) join rows.
// The fork's forked_from_id points at the source, so the fork graph stays
// a forest: the pointer is only ever set at creation time to an existing
// row.
//
// isPublic nil inherits the source's visibility; non-nil is the
// requester's explicit choice.
func (s *SnippetService) Fork(ctx context.Context, sourceID, requesterID string, isPublic *bool) (*model.Snippet, error) {
	source, viewer, collab, err := s.load(ctx, sourceID, requesterID)
	if err != nil {
		return nil, err
	}
	if viewer == nil {
		return nil, apperror.Unauthorized("authentication required to fork")
	}
	if !CanView(viewer, source, collab, time.Now()) {
		// Invisible and missing sources are indistinguishable.
		return nil, apperror.NotFound("snippet", sourceID)
	}

	forkPublic := source.IsPublic
	if isPublic != nil {
		forkPublic = *isPublic
	}

	sourceFromID := source.ID
	project := &model.Project{
		Name:     source.Title,
		IsPublic: forkPublic,
		OwnerID:  requesterID,
	}
	fork := &model.Snippet{
		Title:              source.Title,
		Content:            source.Content,
		Language:           source.Language,
		IsPublic:           forkPublic,
		AllowCollaboration: source.AllowCollaboration,
		ForkedFromID:       &sourceFromID,
	}

	if err := s.snippets.ForkSnippet(ctx, project, fork, source.ID); err != nil {
		return nil, fmt.Errorf("forking snippet %s: %w", sourceID, err)
	}
	fork.OwnerID = requesterID
	fork.Tags = source.Tags

	s.logger.Info("snippet forked",
		slog.String("sourceID", source.ID),
		slog.String("forkID", fork.ID),
		slog.String("userID", requesterID),
	)

	if source.OwnerID != requesterID {
		s.notify.Emit(ctx, source.OwnerID, model.NotifyFork,
			fmt.Sprintf("%s forked your snippet %q", viewer.Username, source.Title),
			source.ID, "snippet")
	}
	return fork, nil
}

// ToggleStar flips the requester's star on a visible snippet and returns
// the new state and count. The toggle itself is atomic in the store.
func (s *SnippetService) ToggleStar(ctx context.Context, snippetID, userID string) (bool, int, error) {
	snippet, viewer, collab, err := s.load(ctx, snippetID, userID)
	if err != nil {
		return false, 0, err
	}
	if !CanView(viewer, snippet, collab, time.Now()) {
		return false, 0, apperror.NotFound("snippet", snippetID)
	}

	starred, count, err := s.snippets.ToggleStar(ctx, userID, snippetID)
	if err != nil {
		return false, 0, fmt.Errorf("toggling star: %w", err)
	}

	if starred && snippet.OwnerID != userID {
		s.notify.Emit(ctx, snippet.OwnerID, model.NotifyStar,
			fmt.Sprintf("%s starred your snippet %q", viewer.Username, snippet.Title),
			snippet.ID, "snippet")
	}
	return starred, count, nil
}

// ToggleLike is the same shape as ToggleStar. Likes don't notify — only
// the event types in the notification enum do.
func (s *SnippetService) ToggleLike(ctx context.Context, snippetID, userID string) (bool, int, error) {
	snippet, viewer, collab, err := s.load(ctx, snippetID, userID)
	if err != nil {
		return false, 0, err
	}
	if !CanView(viewer, snippet, collab, time.Now()) {
		return false, 0, apperror.NotFound("snippet", snippetID)
	}

	liked, count, err := s.snippets.ToggleLike(ctx, userID, snippetID)
	if err != nil {
		return false, 0, fmt.Errorf("toggling like: %w", err)
	}
	return liked, count, nil
}

// Listings. The repository queries apply the same public/not-expired
// predicate the resolver uses, so a snippet in a listing always survives
// the detail fetch and vice versa.

func (s *SnippetService) ListPublic(ctx context.Context, viewerID string, limit, offset int) ([]model.Snippet, error) {
	return s.snippets.ListPublicSnippets(ctx, viewerID, clamp(limit, offset))
}

func (s *SnippetService) ListCollaborative(ctx context.Context, viewerID string, limit, offset int) ([]model.Snippet, error) {
	return s.snippets.ListCollaborativeSnippets(ctx, viewerID, clamp(limit, offset))
}

func (s *SnippetService) ListOwned(ctx context.Context, userID string, limit, offset int) ([]model.Snippet, error) {
	return s.snippets.ListSnippetsByOwner(ctx, userID, userID, clamp(limit, offset))
}

func (s *SnippetService) ListForked(ctx context.Context, userID string, limit, offset int) ([]model.Snippet, error) {
	return s.snippets.ListForkedSnippetsByOwner(ctx, userID, userID, clamp(limit, offset))
}

// ListTags returns all distinct tag names, alphabetically.
func (s *SnippetService) ListTags(ctx context.Context) ([]string, error) {
	return s.tags.ListTagNames(ctx)
}

// AddComment creates a comment on a visible snippet, notifies the snippet
// owner, and turns @username references into mention notifications.
func (s *SnippetService) AddComment(ctx context.Context, snippetID, authorID, content string) (*model.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperror.ValidationFailed("content", "comment content is required")
	}
	if len(content) > MaxCommentLength {
		return nil, apperror.ValidationFailed("content",
			fmt.Sprintf("comment must be %d characters or less", MaxCommentLength))
	}

	snippet, viewer, collab, err := s.load(ctx, snippetID, authorID)
	if err != nil {
		return nil, err
	}
	if viewer == nil {
		return nil, apperror.Unauthorized("authentication required to comment")
	}
	if !CanView(viewer, snippet, collab, time.Now()) {
		return nil, apperror.NotFound("snippet", snippetID)
	}

	comment := &model.Comment{
		SnippetID: snippetID,
		AuthorID:  authorID,
		Content:   content,
	}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("creating comment: %w", err)
	}
	comment.AuthorName = viewer.Username

	if snippet.OwnerID != authorID {
		s.notify.Emit(ctx, snippet.OwnerID, model.NotifyComment,
			fmt.Sprintf("%s commented on your snippet %q", viewer.Username, snippet.Title),
			snippet.ID, "snippet")
	}
	s.notifyMentions(ctx, viewer, snippet, content)

	return comment, nil
}

// DeleteComment removes a comment. Allowed for the author and for
// moderators/admins. The comment must belong to the named snippet; a
// comment ID paired with the wrong snippet reads as missing.
func (s *SnippetService) DeleteComment(ctx context.Context, snippetID, commentID, requesterID string) error {
	comment, err := s.comments.GetCommentByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.SnippetID != snippetID {
		return apperror.NotFound("comment", commentID)
	}

	requester, err := s.users.GetUserByID(ctx, requesterID)
	if err != nil {
		return err
	}
	isModerator := requester.Role == model.RoleModerator || requester.Role == model.RoleAdmin
	if comment.AuthorID != requesterID && !isModerator {
		return apperror.Forbidden("only the author or a moderator can delete this comment")
	}

	return s.comments.DeleteComment(ctx, commentID)
}

// notifyMentions emits a mention notification for every @username in the
// comment that resolves to a real user other than the author. Unresolved
// names are ignored; a bad mention is not an error.
func (s *SnippetService) notifyMentions(ctx context.Context, author *model.User, snippet *model.Snippet, content string) {
	seen := map[string]bool{}
	for _, match := range mentionPattern.FindAllStringSubmatch(content, -1) {
		username := match[1]
		if seen[username] || username == author.Username {
			continue
		}
		seen[username] = true

		mentioned, err := s.users.GetUserByUsername(ctx, username)
		if err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				continue
			}
			s.logger.Warn("mention lookup failed",
				slog.String("username", username),
				slog.String("error", err.Error()),
			)
			continue
		}
		s.notify.Emit(ctx, mentioned.ID, model.NotifyMention,
			fmt.Sprintf("%s mentioned you in a comment on %q", author.Username, snippet.Title),
			snippet.ID, "snippet")
	}
}

// load fetches the snippet, the viewer record (nil for anonymous), and
// the viewer's collaborator row (nil when none) — the inputs every access
// predicate needs.
func (s *SnippetService) load(ctx context.Context, snippetID, viewerID string) (*model.Snippet, *model.User, *model.Collaborator, error) {
	snippet, err := s.snippets.GetSnippetByID(ctx, snippetID, viewerID)
	if err != nil {
		return nil, nil, nil, err
	}

	var viewer *model.User
	var collab *model.Collaborator
	if viewerID != "" {
		viewer, err = s.users.GetUserByID(ctx, viewerID)
		if err != nil {
			if !errors.Is(err, apperror.ErrNotFound) {
				return nil, nil, nil, err
			}
			viewer = nil // stale token for a deleted user: treat as anonymous
		}
		if viewer != nil {
			collab, err = s.collabs.GetCollaborator(ctx, snippetID, viewerID)
			if err != nil {
				if !errors.Is(err, apperror.ErrNotFound) {
					return nil, nil, nil, err
				}
				collab = nil
			}
		}
	}
	return snippet, viewer, collab, nil
}

// normalizeTags lower-kebabs each tag, drops empties and duplicates, and
// caps the count.
func normalizeTags(raw []string) ([]string, error) {
	tags := make([]string, 0, len(raw))
	seen := map[string]bool{}
	for _, t := range raw {
		name := normalizeTag(t)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		tags = append(tags, name)
	}
	if len(tags) > MaxTagsPerSnippet {
		return nil, apperror.ValidationFailed("tags",
			fmt.Sprintf("a snippet can carry at most %d tags", MaxTagsPerSnippet))
	}
	return tags, nil
}

// normalizeTag turns arbitrary input into lower-kebab form:
// "Go Modules" → "go-modules". Characters other than letters, digits and
// hyphens are dropped.
func normalizeTag(raw string) string {
	var b strings.Builder
	lastHyphen := true // suppress leading hyphens
	for _, r := range strings.ToLower(strings.TrimSpace(raw)) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		case r == ' ' || r == '-' || r == '_':
			if !lastHyphen {
				b.WriteRune('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func clamp(limit, offset int) repository.ListOptions {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return repository.ListOptions{Limit: limit, Offset: offset}
}
