package service

import (
	"testing"
	"time"

	"github.com/glutton-su/DevSpace-sub002/internal/model"
)

func TestCanView(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	owner := &model.User{ID: "owner", Role: model.RoleUser}
	stranger := &model.User{ID: "stranger", Role: model.RoleUser}
	mod := &model.User{ID: "mod", Role: model.RoleModerator}
	admin := &model.User{ID: "admin", Role: model.RoleAdmin}
	collab := &model.Collaborator{UserID: "friend", Permissions: model.Permissions{}}

	public := &model.Snippet{OwnerID: "owner", IsPublic: true}
	private := &model.Snippet{OwnerID: "owner", IsPublic: false}
	expiredPublic := &model.Snippet{OwnerID: "owner", IsPublic: true, ExpiresAt: &past}
	liveWithExpiry := &model.Snippet{OwnerID: "owner", IsPublic: true, ExpiresAt: &future}

	tests := []struct {
		name    string
		viewer  *model.User
		snippet *model.Snippet
		collab  *model.Collaborator
		want    bool
	}{
		{"anonymous sees public", nil, public, nil, true},
		{"anonymous blocked from private", nil, private, nil, false},
		{"anonymous blocked from expired public", nil, expiredPublic, nil, false},
		{"anonymous sees public with future expiry", nil, liveWithExpiry, nil, true},
		{"stranger blocked from private", stranger, private, nil, false},
		{"stranger blocked from expired public", stranger, expiredPublic, nil, false},
		{"owner sees own private", owner, private, nil, true},
		{"owner sees own expired snippet", owner, expiredPublic, nil, true},
		{"collaborator sees private", stranger, private, collab, true},
		{"collaborator sees expired", stranger, expiredPublic, collab, true},
		{"moderator sees private", mod, private, nil, true},
		{"admin sees private", admin, private, nil, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanView(tc.viewer, tc.snippet, tc.collab, now); got != tc.want {
				t.Fatalf("CanView = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCanEdit_FlagsAreAuthoritative(t *testing.T) {
	snippet := &model.Snippet{OwnerID: "owner", IsPublic: false}
	owner := &model.User{ID: "owner", Role: model.RoleUser}
	stranger := &model.User{ID: "stranger", Role: model.RoleUser}
	mod := &model.User{ID: "mod", Role: model.RoleModerator}
	admin := &model.User{ID: "admin", Role: model.RoleAdmin}

	if !CanEdit(owner, snippet, nil) {
		t.Fatal("owner must be able to edit")
	}
	if !CanEdit(admin, snippet, nil) {
		t.Fatal("admin must be able to edit")
	}
	if CanEdit(mod, snippet, nil) {
		t.Fatal("moderator without a grant must not edit")
	}
	if CanEdit(stranger, snippet, nil) {
		t.Fatal("stranger must not edit")
	}
	if CanEdit(nil, snippet, nil) {
		t.Fatal("anonymous must not edit")
	}

	// A collaborator whose role label says "viewer" but whose CanEdit flag
	// was explicitly granted passes; the flag wins over the label.
	granted := &model.Collaborator{UserID: "stranger", Role: model.CollabViewer, Permissions: model.Permissions{CanEdit: true}}
	if !CanEdit(stranger, snippet, granted) {
		t.Fatal("explicit CanEdit flag must allow editing regardless of role label")
	}

	// Conversely an "editor" whose flag was revoked does not pass.
	revoked := &model.Collaborator{UserID: "stranger", Role: model.CollabEditor, Permissions: model.Permissions{}}
	if CanEdit(stranger, snippet, revoked) {
		t.Fatal("editor role label without the CanEdit flag must not allow editing")
	}
}

func TestCanDeleteAndManageCollaborators(t *testing.T) {
	snippet := &model.Snippet{OwnerID: "owner", IsPublic: false}
	owner := &model.User{ID: "owner", Role: model.RoleUser}
	stranger := &model.User{ID: "stranger", Role: model.RoleUser}

	editorFlags := &model.Collaborator{UserID: "stranger", Permissions: model.Permissions{CanEdit: true}}
	fullFlags := &model.Collaborator{UserID: "stranger", Permissions: model.Permissions{
		CanEdit: true, CanDelete: true, CanShare: true, CanAddCollaborators: true,
	}}

	if !CanDelete(owner, snippet, nil) {
		t.Fatal("owner must be able to delete")
	}
	if CanDelete(stranger, snippet, editorFlags) {
		t.Fatal("CanEdit alone must not grant delete")
	}
	if !CanDelete(stranger, snippet, fullFlags) {
		t.Fatal("CanDelete flag must grant delete")
	}

	if !CanManageCollaborators(owner, snippet, nil) {
		t.Fatal("owner must be able to manage collaborators")
	}
	if CanManageCollaborators(stranger, snippet, editorFlags) {
		t.Fatal("CanEdit alone must not grant collaborator management")
	}
	if !CanManageCollaborators(stranger, snippet, fullFlags) {
		t.Fatal("CanAddCollaborators flag must grant collaborator management")
	}
}
