// Package service contains the business logic layer: validation,
// authorization, and orchestration between repositories. Services accept
// primitives and models — never HTTP types — and return apperror values
// that the handler layer maps to status codes.
package service

import (
	"time"

	"github.com/glutton-su/DevSpace-sub002/internal/model"
)

// Access predicates. These are pure functions of (viewer, snippet,
// collaborator row) — no hidden state — and every entry point (listing,
// detail fetch, mutation) goes through the same ones, so a snippet can
// never appear in a listing while 404ing on detail fetch or vice versa.
//
// viewer is nil for anonymous requests. collab is the viewer's
// collaborator row on the snippet, nil when none exists. The snippet's
// OwnerID must be populated (the repository joins it in).
//
// The permission FLAGS are authoritative: the collaborator's role label is
// never consulted here. A "viewer" whose CanEdit flag was explicitly set
// passes CanEdit.

// CanView: public (and not logically expired), or owner, or any
// collaborator record, or moderator/admin. An expired public snippet is
// treated as non-public — it has dropped out of the listings, so hiding
// it from detail fetch too keeps the two views consistent.
func CanView(viewer *model.User, s *model.Snippet, collab *model.Collaborator, now time.Time) bool {
	if s.IsPublic && !s.Expired(now) {
		return true
	}
	if viewer == nil {
		return false
	}
	if viewer.ID == s.OwnerID {
		return true
	}
	if viewer.Role == model.RoleModerator || viewer.Role == model.RoleAdmin {
		return true
	}
	return collab != nil
}

// CanEdit: owner, admin, or collaborator with the CanEdit flag.
func CanEdit(viewer *model.User, s *model.Snippet, collab *model.Collaborator) bool {
	if viewer == nil {
		return false
	}
	if viewer.ID == s.OwnerID || viewer.Role == model.RoleAdmin {
		return true
	}
	return collab != nil && collab.Permissions.CanEdit
}

// CanDelete: owner, admin, or collaborator with the CanDelete flag.
func CanDelete(viewer *model.User, s *model.Snippet, collab *model.Collaborator) bool {
	if viewer == nil {
		return false
	}
	if viewer.ID == s.OwnerID || viewer.Role == model.RoleAdmin {
		return true
	}
	return collab != nil && collab.Permissions.CanDelete
}

// CanManageCollaborators: owner, admin, or collaborator with the
// CanAddCollaborators flag.
func CanManageCollaborators(viewer *model.User, s *model.Snippet, collab *model.Collaborator) bool {
	if viewer == nil {
		return false
	}
	if viewer.ID == s.OwnerID || viewer.Role == model.RoleAdmin {
		return true
	}
	return collab != nil && collab.Permissions.CanAddCollaborators
}
