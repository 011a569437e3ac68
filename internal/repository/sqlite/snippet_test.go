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

func TestCreateAndGetSnippet(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := seedUser(t, db)

	snippet := seedSnippet(t, db, owner.ID, true, "go", "testing")

	got, err := db.GetSnippetByID(ctx, snippet.ID, "")
	require.NoError(t, err)
	assert.Equal(t, snippet.ID, got.ID)
	assert.Equal(t, owner.ID, got.OwnerID)
	assert.Equal(t, []string{"go", "testing"}, got.Tags)
	assert.Equal(t, 0, got.StarCount)
	assert.False(t, got.IsStarred)
}

func TestToggleStar_Idempotence(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := seedUser(t, db)
	viewer := seedUser(t, db)
	snippet := seedSnippet(t, db, owner.ID, true)

	// First toggle stars.
	starred, count, err := db.ToggleStar(ctx, viewer.ID, snippet.ID)
	require.NoError(t, err)
	assert.True(t, starred)
	assert.Equal(t, 1, count)

	// Second toggle returns to the original state and count.
	starred, count, err = db.ToggleStar(ctx, viewer.ID, snippet.ID)
	require.NoError(t, err)
	assert.False(t, starred)
	assert.Equal(t, 0, count)

	got, err := db.GetSnippetByID(ctx, snippet.ID, viewer.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.StarCount)
	assert.False(t, got.IsStarred)
}

func TestToggleLike_ViewerFlag(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := seedUser(t, db)
	viewer := seedUser(t, db)
	snippet := seedSnippet(t, db, owner.ID, true)

	liked, count, err := db.ToggleLike(ctx, viewer.ID, snippet.ID)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, 1, count)

	// The liker sees isLiked; another viewer does not.
	got, err := db.GetSnippetByID(ctx, snippet.ID, viewer.ID)
	require.NoError(t, err)
	assert.True(t, got.IsLiked)

	got, err = db.GetSnippetByID(ctx, snippet.ID, owner.ID)
	require.NoError(t, err)
	assert.False(t, got.IsLiked)
	assert.Equal(t, 1, got.LikeCount)
}

func TestForkSnippet(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := seedUser(t, db)
	forker := seedUser(t, db)
	source := seedSnippet(t, db, owner.ID, true, "go")

	project := &model.Project{Name: source.Title, IsPublic: true, OwnerID: forker.ID}
	sourceID := source.ID
	fork := &model.Snippet{
		Title:        source.Title,
		Content:      source.Content,
		Language:     source.Language,
		IsPublic:     true,
		ForkedFromID: &sourceID,
	}
	require.NoError(t, db.ForkSnippet(ctx, project, fork, source.ID))

	got, err := db.GetSnippetByID(ctx, fork.ID, "")
	require.NoError(t, err)
	assert.Equal(t, forker.ID, got.OwnerID)
	require.NotNil(t, got.ForkedFromID)
	assert.Equal(t, source.ID, *got.ForkedFromID)
	assert.Equal(t, []string{"go"}, got.Tags, "tag links copy to the fork")
	assert.Equal(t, 0, got.ForkCount)

	// The source's fork count is derived from the fork's pointer.
	src, err := db.GetSnippetByID(ctx, source.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 1, src.ForkCount)
}

func TestForkSnippet_ChainPreservesLineage(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	owner := seedUser(t, db)
	current := seedSnippet(t, db, owner.ID, true)

	const steps = 4
	for i := 0; i < steps; i++ {
		forker := seedUser(t, db)
		project := &model.Project{Name: "fork", IsPublic: true, OwnerID: forker.ID}
		parentID := current.ID
		fork := &model.Snippet{
			Title:        current.Title,
			Content:      current.Content,
			IsPublic:     true,
			ForkedFromID: &parentID,
		}
		require.NoError(t, db.ForkSnippet(ctx, project, fork, current.ID))
		current = fork
	}

	// Walk the chain back to the root.
	depth := 0
	for id := current.ID; ; {
		s, err := db.GetSnippetByID(ctx, id, "")
		require.NoError(t, err)
		if s.ForkedFromID == nil {
			break
		}
		id = *s.ForkedFromID
		depth++
		require.LessOrEqual(t, depth, steps, "fork graph must stay acyclic")
	}
	assert.Equal(t, steps, depth)
}

func TestListPublicSnippets_HidesPrivateAndExpired(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := seedUser(t, db)

	visible := seedSnippet(t, db, owner.ID, true)
	seedSnippet(t, db, owner.ID, false) // private

	expired := seedSnippet(t, db, owner.ID, true)
	past := time.Now().Add(-time.Hour)
	expired.ExpiresAt = &past
	require.NoError(t, db.UpdateSnippet(ctx, expired, nil))

	list, err := db.ListPublicSnippets(ctx, "", repository.ListOptions{Limit: 10})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, visible.ID, list[0].ID)

	// The expired row still exists — only the listing hides it.
	got, err := db.GetSnippetByID(ctx, expired.ID, "")
	require.NoError(t, err)
	assert.True(t, got.Expired(time.Now()))
}

func TestListCollaborativeSnippets(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := seedUser(t, db)

	project := &model.Project{Name: "p", IsPublic: true, OwnerID: owner.ID}
	require.NoError(t, db.CreateProject(ctx, project))

	open := &model.Snippet{ProjectID: project.ID, Title: "open", IsPublic: true, AllowCollaboration: true}
	require.NoError(t, db.CreateSnippet(ctx, open, nil))
	closed := &model.Snippet{ProjectID: project.ID, Title: "closed", IsPublic: true}
	require.NoError(t, db.CreateSnippet(ctx, closed, nil))

	list, err := db.ListCollaborativeSnippets(ctx, "", repository.ListOptions{Limit: 10})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, open.ID, list[0].ID)
}

func TestListForkedSnippetsByOwner(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := seedUser(t, db)
	forker := seedUser(t, db)
	source := seedSnippet(t, db, owner.ID, true)

	project := &model.Project{Name: "fork", IsPublic: false, OwnerID: forker.ID}
	sourceID := source.ID
	fork := &model.Snippet{Title: "fork", ForkedFromID: &sourceID}
	require.NoError(t, db.ForkSnippet(ctx, project, fork, source.ID))

	// Originals don't show up in the forked listing.
	list, err := db.ListForkedSnippetsByOwner(ctx, owner.ID, owner.ID, repository.ListOptions{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, list)

	list, err = db.ListForkedSnippetsByOwner(ctx, forker.ID, forker.ID, repository.ListOptions{Limit: 10})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, fork.ID, list[0].ID)
}

func TestUpdateSnippet_TagHandling(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := seedUser(t, db)
	snippet := seedSnippet(t, db, owner.ID, true, "go")

	// nil tags leaves the links alone.
	snippet.Title = "renamed"
	require.NoError(t, db.UpdateSnippet(ctx, snippet, nil))
	got, err := db.GetSnippetByID(ctx, snippet.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Title)
	assert.Equal(t, []string{"go"}, got.Tags)

	// Non-nil replaces them.
	require.NoError(t, db.UpdateSnippet(ctx, snippet, []string{"rust"}))
	got, err = db.GetSnippetByID(ctx, snippet.ID, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"rust"}, got.Tags)

	// Tag names stay globally deduplicated.
	names, err := db.ListTagNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "rust"}, names)
}

func TestDeleteSnippet_CascadesAndNotFound(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := seedUser(t, db)
	viewer := seedUser(t, db)
	snippet := seedSnippet(t, db, owner.ID, true)

	_, _, err := db.ToggleStar(ctx, viewer.ID, snippet.ID)
	require.NoError(t, err)

	require.NoError(t, db.DeleteSnippet(ctx, snippet.ID))
	assert.ErrorIs(t, db.DeleteSnippet(ctx, snippet.ID), apperror.ErrNotFound)

	starred, err := db.ListStarredIDs(ctx, viewer.ID)
	require.NoError(t, err)
	assert.Empty(t, starred, "stars cascade with the snippet")
}

func TestListSnippetsByProject_ViewerScoped(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	owner := seedUser(t, db)
	collaborator := seedUser(t, db)

	project := &model.Project{Name: "mixed", IsPublic: true, OwnerID: owner.ID}
	require.NoError(t, db.CreateProject(ctx, project))

	public := &model.Snippet{ProjectID: project.ID, Title: "public", Content: "a", IsPublic: true}
	require.NoError(t, db.CreateSnippet(ctx, public, nil))
	private := &model.Snippet{ProjectID: project.ID, Title: "private", Content: "b", IsPublic: false}
	require.NoError(t, db.CreateSnippet(ctx, private, nil))

	past := time.Now().Add(-time.Hour)
	expired := &model.Snippet{ProjectID: project.ID, Title: "expired", Content: "c", IsPublic: true, ExpiresAt: &past}
	require.NoError(t, db.CreateSnippet(ctx, expired, nil))

	require.NoError(t, db.CreateCollaborator(ctx, &model.Collaborator{
		SnippetID: private.ID,
		UserID:    collaborator.ID,
		Role:      model.CollabViewer,
		AddedBy:   owner.ID,
	}))

	ids := func(snips []model.Snippet) []string {
		out := make([]string, len(snips))
		for i, s := range snips {
			out[i] = s.ID
		}
		return out
	}

	// Anonymous viewers get only the live public snippet.
	list, err := db.ListSnippetsByProject(ctx, project.ID, "")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{public.ID}, ids(list))

	// A collaborator grant reveals exactly the granted snippet.
	list, err = db.ListSnippetsByProject(ctx, project.ID, collaborator.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{public.ID, private.ID}, ids(list))

	// The owner sees everything, expired included.
	list, err = db.ListSnippetsByProject(ctx, project.ID, owner.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{public.ID, private.ID, expired.ID}, ids(list))
}
