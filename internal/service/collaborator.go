package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/glutton-su/DevSpace-sub002/internal/apperror"
	"github.com/glutton-su/DevSpace-sub002/internal/model"
	"github.com/glutton-su/DevSpace-sub002/internal/repository"
)

// CollaboratorService manages per-snippet collaborator grants. The
// permission flags on each grant are what the access predicates consult;
// the role only seeds their defaults.
type CollaboratorService struct {
	users    repository.UserRepository
	snippets repository.SnippetRepository
	collabs  repository.CollaboratorRepository
	notify   *NotificationService
	logger   *slog.Logger
}

func NewCollaboratorService(
	users repository.UserRepository,
	snippets repository.SnippetRepository,
	collabs repository.CollaboratorRepository,
	notify *NotificationService,
	logger *slog.Logger,
) *CollaboratorService {
	return &CollaboratorService{
		users:    users,
		snippets: snippets,
		collabs:  collabs,
		notify:   notify,
		logger:   logger,
	}
}

// AddCollaboratorInput identifies the grantee by username and optionally
// overrides the role's default permission flags.
type AddCollaboratorInput struct {
	Username    string             `json:"username"`
	Role        model.CollabRole   `json:"role"`
	Permissions *model.Permissions `json:"permissions"`
}

// Add grants a user collaborator access to a snippet. Requires
// CanManageCollaborators on the snippet. Duplicate grants conflict.
func (s *CollaboratorService) Add(ctx context.Context, snippetID, requesterID string, in AddCollaboratorInput) (*model.Collaborator, error) {
	snippet, requester, _, err := s.authorize(ctx, snippetID, requesterID)
	if err != nil {
		return nil, err
	}

	if !model.ValidCollabRole(in.Role) {
		return nil, apperror.ValidationFailed("role",
			fmt.Sprintf("unknown collaborator role %q", in.Role))
	}

	grantee, err := s.users.GetUserByUsername(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if grantee.ID == snippet.OwnerID {
		return nil, apperror.ValidationFailed("username", "the snippet owner cannot be added as a collaborator")
	}

	perms := model.DefaultPermissions(in.Role)
	if in.Permissions != nil {
		perms = *in.Permissions
	}

	collab := &model.Collaborator{
		SnippetID:   snippetID,
		UserID:      grantee.ID,
		Role:        in.Role,
		AddedBy:     requesterID,
		Permissions: perms,
	}
	if err := s.collabs.CreateCollaborator(ctx, collab); err != nil {
		return nil, err
	}
	collab.Username = grantee.Username

	s.logger.Info("collaborator added",
		slog.String("snippetID", snippetID),
		slog.String("userID", grantee.ID),
		slog.String("role", string(in.Role)),
	)
	s.notify.Emit(ctx, grantee.ID, model.NotifyCollaboration,
		fmt.Sprintf("%s added you as a collaborator on %q", requester.Username, snippet.Title),
		snippetID, "snippet")

	return collab, nil
}

// UpdateCollaboratorInput carries a role and/or permission change; nil
// means leave unchanged.
type UpdateCollaboratorInput struct {
	Role        *model.CollabRole  `json:"role"`
	Permissions *model.Permissions `json:"permissions"`
}

// Update changes a collaborator's role or flags. Requires
// CanManageCollaborators. A collaborator whose grant lacks the
// manage-collaborators flag cannot escalate their own grant.
func (s *CollaboratorService) Update(ctx context.Context, snippetID, userID, requesterID string, in UpdateCollaboratorInput) (*model.Collaborator, error) {
	_, _, _, err := s.authorize(ctx, snippetID, requesterID)
	if err != nil {
		return nil, err
	}

	collab, err := s.collabs.GetCollaborator(ctx, snippetID, userID)
	if err != nil {
		return nil, err
	}

	if in.Role != nil {
		if !model.ValidCollabRole(*in.Role) {
			return nil, apperror.ValidationFailed("role",
				fmt.Sprintf("unknown collaborator role %q", *in.Role))
		}
		collab.Role = *in.Role
		// A role change re-seeds the flags unless an explicit set comes with it.
		if in.Permissions == nil {
			collab.Permissions = model.DefaultPermissions(*in.Role)
		}
	}
	if in.Permissions != nil {
		collab.Permissions = *in.Permissions
	}

	if err := s.collabs.UpdateCollaborator(ctx, collab); err != nil {
		return nil, err
	}
	return collab, nil
}

// Remove revokes a collaborator grant. The grantee may also remove
// themselves.
func (s *CollaboratorService) Remove(ctx context.Context, snippetID, userID, requesterID string) error {
	if requesterID != userID {
		if _, _, _, err := s.authorize(ctx, snippetID, requesterID); err != nil {
			return err
		}
	} else {
		// Leaving a snippet only needs the grant to exist; visibility was
		// implied by the grant itself.
		if _, err := s.collabs.GetCollaborator(ctx, snippetID, userID); err != nil {
			return err
		}
	}
	return s.collabs.DeleteCollaborator(ctx, snippetID, userID)
}

// List returns the collaborators of a snippet the requester can view.
func (s *CollaboratorService) List(ctx context.Context, snippetID, viewerID string) ([]model.Collaborator, error) {
	snippet, err := s.snippets.GetSnippetByID(ctx, snippetID, viewerID)
	if err != nil {
		return nil, err
	}

	viewer, collab, err := s.viewerState(ctx, snippetID, viewerID)
	if err != nil {
		return nil, err
	}
	if !CanView(viewer, snippet, collab, time.Now()) {
		return nil, apperror.NotFound("snippet", snippetID)
	}
	return s.collabs.ListCollaborators(ctx, snippetID)
}

// authorize loads the snippet and checks CanManageCollaborators for the
// requester, hiding invisible snippets behind NotFound.
func (s *CollaboratorService) authorize(ctx context.Context, snippetID, requesterID string) (*model.Snippet, *model.User, *model.Collaborator, error) {
	snippet, err := s.snippets.GetSnippetByID(ctx, snippetID, requesterID)
	if err != nil {
		return nil, nil, nil, err
	}
	requester, collab, err := s.viewerState(ctx, snippetID, requesterID)
	if err != nil {
		return nil, nil, nil, err
	}
	if !CanView(requester, snippet, collab, time.Now()) {
		return nil, nil, nil, apperror.NotFound("snippet", snippetID)
	}
	if !CanManageCollaborators(requester, snippet, collab) {
		return nil, nil, nil, apperror.Forbidden("you cannot manage collaborators on this snippet")
	}
	return snippet, requester, collab, nil
}

func (s *CollaboratorService) viewerState(ctx context.Context, snippetID, viewerID string) (*model.User, *model.Collaborator, error) {
	if viewerID == "" {
		return nil, nil, nil
	}
	viewer, err := s.users.GetUserByID(ctx, viewerID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, nil, nil
		}
		return nil, nil, err
	}
	collab, err := s.collabs.GetCollaborator(ctx, snippetID, viewerID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return viewer, nil, nil
		}
		return nil, nil, err
	}
	return viewer, collab, nil
}
