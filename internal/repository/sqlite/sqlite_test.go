package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/glutton-su/DevSpace-sub002/internal/model"
)

// newTestDB opens a fresh database in a per-test temp dir. A file (not
// ":memory:") because database/sql pools connections and an in-memory
// SQLite database is per-connection.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

var userSeq int

// seedUser creates a user with generated unique username/email.
func seedUser(t *testing.T, db *DB) *model.User {
	t.Helper()
	userSeq++
	u := &model.User{
		Username:     fmt.Sprintf("user%d", userSeq),
		Email:        fmt.Sprintf("user%d@example.com", userSeq),
		PasswordHash: "not-a-real-hash",
	}
	require.NoError(t, db.CreateUser(context.Background(), u))
	return u
}

// seedSnippet creates a project and one snippet in it for ownerID.
func seedSnippet(t *testing.T, db *DB, ownerID string, public bool, tags ...string) *model.Snippet {
	t.Helper()
	ctx := context.Background()

	project := &model.Project{Name: "test project", IsPublic: public, OwnerID: ownerID}
	require.NoError(t, db.CreateProject(ctx, project))

	snippet := &model.Snippet{
		ProjectID: project.ID,
		Title:     "test snippet",
		Content:   "package main",
		Language:  "go",
		IsPublic:  public,
	}
	require.NoError(t, db.CreateSnippet(ctx, snippet, tags))
	snippet.OwnerID = ownerID
	return snippet
}
