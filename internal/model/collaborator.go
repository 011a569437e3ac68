package model

import "time"

// CollabRole is a collaborator's role label on a snippet. It seeds the
// default permission flags at invite time but is NOT consulted by
// authorization checks afterwards — the flags are authoritative, so a
// "viewer" with CanEdit=true really can edit.
type CollabRole string

const (
	CollabViewer CollabRole = "viewer"
	CollabEditor CollabRole = "editor"
	CollabAdmin  CollabRole = "admin"
)

// ValidCollabRole reports whether r is one of the three enumerated roles.
func ValidCollabRole(r CollabRole) bool {
	return r == CollabViewer || r == CollabEditor || r == CollabAdmin
}

// Permissions are the independently settable capability flags carried by a
// collaborator record.
type Permissions struct {
	CanEdit             bool `json:"canEdit"             db:"can_edit"`
	CanDelete           bool `json:"canDelete"           db:"can_delete"`
	CanShare            bool `json:"canShare"            db:"can_share"`
	CanAddCollaborators bool `json:"canAddCollaborators" db:"can_add_collaborators"`
}

// DefaultPermissions returns the permission flags a role seeds when the
// inviter does not supply explicit ones: viewer → all false, editor →
// CanEdit only, admin → all true.
func DefaultPermissions(role CollabRole) Permissions {
	switch role {
	case CollabEditor:
		return Permissions{CanEdit: true}
	case CollabAdmin:
		return Permissions{CanEdit: true, CanDelete: true, CanShare: true, CanAddCollaborators: true}
	default:
		return Permissions{}
	}
}

// Collaborator grants a user access to a snippet. Unique on
// (SnippetID, UserID) — one record per user per snippet.
type Collaborator struct {
	ID          string      `json:"id"        db:"id"`
	SnippetID   string      `json:"snippetId" db:"snippet_id"`
	UserID      string      `json:"userId"    db:"user_id"`
	Role        CollabRole  `json:"role"      db:"role"`
	AddedBy     string      `json:"addedBy"   db:"added_by"`
	Permissions Permissions `json:"permissions"`
	CreatedAt   time.Time   `json:"createdAt" db:"created_at"`

	// Collaborator's username, joined in for display.
	Username string `json:"username,omitempty"`
}
