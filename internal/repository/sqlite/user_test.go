package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glutton-su/DevSpace-sub002/internal/apperror"
	"github.com/glutton-su/DevSpace-sub002/internal/model"
	"github.com/glutton-su/DevSpace-sub002/internal/repository"
)

func TestCreateUser_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	first := &model.User{Username: "alice", Email: "alice@example.com"}
	require.NoError(t, db.CreateUser(ctx, first))

	dup := &model.User{Username: "alice2", Email: "alice@example.com"}
	err := db.CreateUser(ctx, dup)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.CreateUser(ctx, &model.User{Username: "bob", Email: "bob@example.com"}))

	err := db.CreateUser(ctx, &model.User{Username: "bob", Email: "other@example.com"})
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestGetUserByEmailAndUsername(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	u := seedUser(t, db)

	byEmail, err := db.GetUserByEmail(ctx, u.Email)
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	byName, err := db.GetUserByUsername(ctx, u.Username)
	require.NoError(t, err)
	assert.Equal(t, u.ID, byName.ID)

	_, err = db.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestCreateUser_DefaultsRole(t *testing.T) {
	db := newTestDB(t)
	u := seedUser(t, db)

	got, err := db.GetUserByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, got.Role)
}

func TestSetSuspendedAndRole(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	u := seedUser(t, db)

	require.NoError(t, db.SetSuspended(ctx, u.ID, true))
	got, err := db.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, got.IsSuspended)

	require.NoError(t, db.SetRole(ctx, u.ID, model.RoleModerator))
	got, err = db.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleModerator, got.Role)

	// Unknown IDs surface as NotFound, not silent no-ops.
	assert.ErrorIs(t, db.SetSuspended(ctx, "missing", true), apperror.ErrNotFound)
}

func TestUpsertGitHub(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	u := &model.User{
		Username: "ghuser",
		Email:    "gh@example.com",
		GitHubID: 12345,
	}
	require.NoError(t, db.UpsertGitHub(ctx, u))
	require.NotEmpty(t, u.ID)
	firstID := u.ID

	// Second login with the same GitHub ID refreshes, not duplicates.
	again := &model.User{
		Username:  "ignored",
		Email:     "new-email@example.com",
		AvatarURL: "https://example.com/a.png",
		GitHubID:  12345,
	}
	require.NoError(t, db.UpsertGitHub(ctx, again))
	assert.Equal(t, firstID, again.ID)
	assert.Equal(t, "ghuser", again.Username)
	assert.Equal(t, "new-email@example.com", again.Email)

	users, err := db.ListUsers(ctx, repository.ListOptions{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestUpsertGitHub_UsernameTaken(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	existing := seedUser(t, db) // password account, no GitHub ID

	// The suppressed insert leaves no row under the GitHub ID, which must
	// surface as a conflict, not silently adopt the other account.
	u := &model.User{Username: existing.Username, Email: "gh-conflict@example.com", GitHubID: 777}
	assert.ErrorIs(t, db.UpsertGitHub(ctx, u), apperror.ErrConflict)

	// The caller's retry with a free username succeeds.
	retry := &model.User{Username: existing.Username + "2", Email: "gh-conflict@example.com", GitHubID: 777}
	require.NoError(t, db.UpsertGitHub(ctx, retry))
	assert.NotEqual(t, existing.ID, retry.ID)
}

func TestDeleteUser_Cascades(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	owner := seedUser(t, db)
	snippet := seedSnippet(t, db, owner.ID, true)

	require.NoError(t, db.DeleteUser(ctx, owner.ID))

	_, err := db.GetSnippetByID(ctx, snippet.ID, "")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	_, err = db.GetProjectByID(ctx, snippet.ProjectID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
