package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glutton-su/DevSpace-sub002/internal/apperror"
	"github.com/glutton-su/DevSpace-sub002/internal/model"
)

func TestCollaboratorLifecycle(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := seedUser(t, db)
	grantee := seedUser(t, db)
	snippet := seedSnippet(t, db, owner.ID, false)

	collab := &model.Collaborator{
		SnippetID:   snippet.ID,
		UserID:      grantee.ID,
		Role:        model.CollabEditor,
		AddedBy:     owner.ID,
		Permissions: model.DefaultPermissions(model.CollabEditor),
	}
	require.NoError(t, db.CreateCollaborator(ctx, collab))
	require.NotEmpty(t, collab.ID)

	got, err := db.GetCollaborator(ctx, snippet.ID, grantee.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CollabEditor, got.Role)
	assert.True(t, got.Permissions.CanEdit)
	assert.False(t, got.Permissions.CanDelete)

	// Flags update independently of the role.
	got.Permissions.CanDelete = true
	require.NoError(t, db.UpdateCollaborator(ctx, got))
	got, err = db.GetCollaborator(ctx, snippet.ID, grantee.ID)
	require.NoError(t, err)
	assert.True(t, got.Permissions.CanDelete)
	assert.Equal(t, model.CollabEditor, got.Role)

	list, err := db.ListCollaborators(ctx, snippet.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, grantee.Username, list[0].Username)

	require.NoError(t, db.DeleteCollaborator(ctx, snippet.ID, grantee.ID))
	_, err = db.GetCollaborator(ctx, snippet.ID, grantee.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestCreateCollaborator_Duplicate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := seedUser(t, db)
	grantee := seedUser(t, db)
	snippet := seedSnippet(t, db, owner.ID, false)

	collab := &model.Collaborator{SnippetID: snippet.ID, UserID: grantee.ID, Role: model.CollabViewer}
	require.NoError(t, db.CreateCollaborator(ctx, collab))

	dup := &model.Collaborator{SnippetID: snippet.ID, UserID: grantee.ID, Role: model.CollabAdmin}
	assert.ErrorIs(t, db.CreateCollaborator(ctx, dup), apperror.ErrConflict)
}

func TestComments(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := seedUser(t, db)
	author := seedUser(t, db)
	snippet := seedSnippet(t, db, owner.ID, true)

	comment := &model.Comment{SnippetID: snippet.ID, AuthorID: author.ID, Content: "nice"}
	require.NoError(t, db.CreateComment(ctx, comment))

	list, err := db.ListComments(ctx, snippet.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, author.Username, list[0].AuthorName)

	require.NoError(t, db.DeleteComment(ctx, comment.ID))
	assert.ErrorIs(t, db.DeleteComment(ctx, comment.ID), apperror.ErrNotFound)
}
