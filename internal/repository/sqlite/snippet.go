package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/glutton-su/DevSpace-sub002/internal/apperror"
	"github.com/glutton-su/DevSpace-sub002/internal/model"
	"github.com/glutton-su/DevSpace-sub002/internal/repository"
)

var _ repository.SnippetRepository = (*DB)(nil)

// snippetSelect is the shared SELECT for snippet reads. The derived counts
// are COUNT subqueries — never stored columns — so they can't drift from
// the join tables. is_starred/is_liked resolve against the viewer ID bound
// at positions 1 and 2; binding "" (anonymous) makes both EXISTS false.
const snippetSelect = `
	SELECT s.id, s.project_id, s.title, s.content, s.language, s.is_public,
	       s.allow_collaboration, s.expires_at, s.forked_from_id,
	       s.created_at, s.updated_at, p.owner_id,
	       (SELECT COUNT(*) FROM stars st WHERE st.snippet_id = s.id),
	       (SELECT COUNT(*) FROM likes l WHERE l.snippet_id = s.id),
	       (SELECT COUNT(*) FROM snippets f WHERE f.forked_from_id = s.id),
	       EXISTS(SELECT 1 FROM stars st WHERE st.snippet_id = s.id AND st.user_id = ?),
	       EXISTS(SELECT 1 FROM likes l WHERE l.snippet_id = s.id AND l.user_id = ?)
	FROM snippets s
	JOIN projects p ON p.id = s.project_id`

// notExpired keeps logically expired snippets out of the listings. The
// rows stay in the table; only the listings hide them.
const notExpired = `(s.expires_at IS NULL OR s.expires_at > ?)`

func scanSnippet(row interface{ Scan(...any) error }) (*model.Snippet, error) {
	var (
		s          model.Snippet
		expiresAt  sql.NullTime
		forkedFrom sql.NullString
	)
	err := row.Scan(
		&s.ID, &s.ProjectID, &s.Title, &s.Content, &s.Language, &s.IsPublic,
		&s.AllowCollaboration, &expiresAt, &forkedFrom,
		&s.CreatedAt, &s.UpdatedAt, &s.OwnerID,
		&s.StarCount, &s.LikeCount, &s.ForkCount, &s.IsStarred, &s.IsLiked,
	)
	if err != nil {
		return nil, err
	}
	if expiresAt.Valid {
		t := expiresAt.Time
		s.ExpiresAt = &t
	}
	if forkedFrom.Valid {
		f := forkedFrom.String
		s.ForkedFromID = &f
	}
	s.Tags = []string{}
	return &s, nil
}

// CreateSnippet inserts the snippet and links its tags in one transaction.
func (db *DB) CreateSnippet(ctx context.Context, snippet *model.Snippet, tags []string) error {
	snippet.ID = xid.New().String()
	now := time.Now()
	snippet.CreatedAt = now
	snippet.UpdatedAt = now
	if snippet.Language == "" {
		snippet.Language = "plaintext"
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning snippet insert: %w", err)
	}
	defer tx.Rollback()

	if err := insertSnippetRow(ctx, tx, snippet); err != nil {
		return err
	}
	if err := linkTags(ctx, tx, snippet.ID, tags); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing snippet insert: %w", err)
	}
	snippet.Tags = tags
	return nil
}

func insertSnippetRow(ctx context.Context, tx *sql.Tx, s *model.Snippet) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO snippets (id, project_id, title, content, language, is_public,
		                       allow_collaboration, expires_at, forked_from_id,
		                       created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.ProjectID, s.Title, s.Content, s.Language, s.IsPublic,
		s.AllowCollaboration, s.ExpiresAt, s.ForkedFromID, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting snippet: %w", err)
	}
	return nil
}

// linkTags find-or-creates each tag and links it to the snippet. The
// UNIQUE constraint on tags.name makes the find-or-create race-safe:
// INSERT OR IGNORE either creates the tag or silently keeps the existing
// row, and the follow-up SELECT picks up whichever won.
func linkTags(ctx context.Context, tx *sql.Tx, snippetID string, tags []string) error {
	for _, name := range tags {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO tags (id, name) VALUES (?, ?)`,
			xid.New().String(), name); err != nil {
			return fmt.Errorf("sqlite: upserting tag %q: %w", name, err)
		}

		var tagID string
		if err := tx.QueryRowContext(ctx,
			`SELECT id FROM tags WHERE name = ?`, name).Scan(&tagID); err != nil {
			return fmt.Errorf("sqlite: resolving tag %q: %w", name, err)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO snippet_tags (snippet_id, tag_id) VALUES (?, ?)`,
			snippetID, tagID); err != nil {
			return fmt.Errorf("sqlite: linking tag %q: %w", name, err)
		}
	}
	return nil
}

// GetSnippetByID returns one snippet with derived fields and tags. No
// visibility filtering here — the service's resolver decides what the
// viewer may see and converts denials to NotFound.
func (db *DB) GetSnippetByID(ctx context.Context, id, viewerID string) (*model.Snippet, error) {
	row := db.conn.QueryRowContext(ctx,
		snippetSelect+` WHERE s.id = ?`, viewerID, viewerID, id)
	s, err := scanSnippet(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("snippet", id)
		}
		return nil, fmt.Errorf("sqlite: getting snippet %s: %w", id, err)
	}

	tags, err := db.tagsFor(ctx, []string{s.ID})
	if err != nil {
		return nil, err
	}
	s.Tags = tags[s.ID]
	if s.Tags == nil {
		s.Tags = []string{}
	}
	return s, nil
}

// UpdateSnippet rewrites the snippet's columns and, when tags is non-nil,
// replaces its tag links in the same transaction.
func (db *DB) UpdateSnippet(ctx context.Context, snippet *model.Snippet, tags []string) error {
	snippet.UpdatedAt = time.Now()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning snippet update: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE snippets
		 SET title = ?, content = ?, language = ?, is_public = ?,
		     allow_collaboration = ?, expires_at = ?, updated_at = ?
		 WHERE id = ?`,
		snippet.Title, snippet.Content, snippet.Language, snippet.IsPublic,
		snippet.AllowCollaboration, snippet.ExpiresAt, snippet.UpdatedAt, snippet.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating snippet %s: %w", snippet.ID, err)
	}
	if err := requireRowsAffected(result, "snippet", snippet.ID); err != nil {
		return err
	}

	if tags != nil {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM snippet_tags WHERE snippet_id = ?`, snippet.ID); err != nil {
			return fmt.Errorf("sqlite: clearing tag links: %w", err)
		}
		if err := linkTags(ctx, tx, snippet.ID, tags); err != nil {
			return err
		}
		snippet.Tags = tags
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing snippet update: %w", err)
	}
	return nil
}

// DeleteSnippet removes the snippet; FK cascades clean up tag links,
// stars, likes, comments and collaborator rows.
func (db *DB) DeleteSnippet(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM snippets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting snippet %s: %w", id, err)
	}
	return requireRowsAffected(result, "snippet", id)
}

// ForkSnippet creates the target project, the fork row, and the copied tag
// links in one transaction. Tag links are copied by reference — the fork
// shares the same tag rows as the source, no tag duplication.
func (db *DB) ForkSnippet(ctx context.Context, project *model.Project, fork *model.Snippet, sourceID string) error {
	now := time.Now()
	project.ID = xid.New().String()
	project.CreatedAt = now
	project.UpdatedAt = now
	fork.ID = xid.New().String()
	fork.ProjectID = project.ID
	fork.CreatedAt = now
	fork.UpdatedAt = now

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning fork: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO projects (`+projectColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		project.ID, project.Name, project.Description, project.IsPublic,
		project.OwnerID, project.CreatedAt, project.UpdatedAt); err != nil {
		return fmt.Errorf("sqlite: inserting fork project: %w", err)
	}

	if err := insertSnippetRow(ctx, tx, fork); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO snippet_tags (snippet_id, tag_id)
		 SELECT ?, tag_id FROM snippet_tags WHERE snippet_id = ?`,
		fork.ID, sourceID); err != nil {
		return fmt.Errorf("sqlite: copying tag links: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing fork: %w", err)
	}
	return nil
}

func (db *DB) ListPublicSnippets(ctx context.Context, viewerID string, opts repository.ListOptions) ([]model.Snippet, error) {
	limit, offset := clampListOptions(opts)
	return db.listSnippets(ctx, viewerID,
		` WHERE s.is_public = 1 AND `+notExpired+`
		 ORDER BY s.created_at DESC LIMIT ? OFFSET ?`,
		time.Now(), limit, offset)
}

func (db *DB) ListCollaborativeSnippets(ctx context.Context, viewerID string, opts repository.ListOptions) ([]model.Snippet, error) {
	limit, offset := clampListOptions(opts)
	return db.listSnippets(ctx, viewerID,
		` WHERE s.is_public = 1 AND s.allow_collaboration = 1 AND `+notExpired+`
		 ORDER BY s.created_at DESC LIMIT ? OFFSET ?`,
		time.Now(), limit, offset)
}

func (db *DB) ListSnippetsByOwner(ctx context.Context, ownerID, viewerID string, opts repository.ListOptions) ([]model.Snippet, error) {
	limit, offset := clampListOptions(opts)
	return db.listSnippets(ctx, viewerID,
		` WHERE p.owner_id = ?
		 ORDER BY s.created_at DESC LIMIT ? OFFSET ?`,
		ownerID, limit, offset)
}

func (db *DB) ListForkedSnippetsByOwner(ctx context.Context, ownerID, viewerID string, opts repository.ListOptions) ([]model.Snippet, error) {
	limit, offset := clampListOptions(opts)
	return db.listSnippets(ctx, viewerID,
		` WHERE p.owner_id = ? AND s.forked_from_id IS NOT NULL
		 ORDER BY s.created_at DESC LIMIT ? OFFSET ?`,
		ownerID, limit, offset)
}

// ListSnippetsByProject returns the snippets in a project that the viewer
// may see: public and unexpired, owned by the viewer, or covered by a
// collaborator grant — the same terms the detail fetch applies, so a
// project page never lists a snippet whose link would 404.
func (db *DB) ListSnippetsByProject(ctx context.Context, projectID, viewerID string) ([]model.Snippet, error) {
	return db.listSnippets(ctx, viewerID,
		` WHERE s.project_id = ?
		   AND ((s.is_public = 1 AND `+notExpired+`)
		        OR p.owner_id = ?
		        OR EXISTS(SELECT 1 FROM snippet_collaborators c
		                  WHERE c.snippet_id = s.id AND c.user_id = ?))
		 ORDER BY s.created_at DESC`,
		projectID, time.Now(), viewerID, viewerID)
}

// listSnippets runs snippetSelect with the given tail and loads tags for
// the whole page in one extra query.
func (db *DB) listSnippets(ctx context.Context, viewerID, tail string, args ...any) ([]model.Snippet, error) {
	queryArgs := append([]any{viewerID, viewerID}, args...)
	rows, err := db.conn.QueryContext(ctx, snippetSelect+tail, queryArgs...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing snippets: %w", err)
	}
	defer rows.Close()

	var snippets []model.Snippet
	var ids []string
	for rows.Next() {
		s, err := scanSnippet(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning snippet row: %w", err)
		}
		snippets = append(snippets, *s)
		ids = append(ids, s.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating snippets: %w", err)
	}
	if len(snippets) == 0 {
		return []model.Snippet{}, nil
	}

	tags, err := db.tagsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range snippets {
		if t := tags[snippets[i].ID]; t != nil {
			snippets[i].Tags = t
		}
	}
	return snippets, nil
}

// tagsFor loads tag names for a batch of snippet IDs in one query.
func (db *DB) tagsFor(ctx context.Context, snippetIDs []string) (map[string][]string, error) {
	placeholders := strings.Repeat("?,", len(snippetIDs))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, len(snippetIDs))
	for i, id := range snippetIDs {
		args[i] = id
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT st.snippet_id, t.name
		 FROM snippet_tags st JOIN tags t ON t.id = st.tag_id
		 WHERE st.snippet_id IN (`+placeholders+`)
		 ORDER BY t.name`, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: loading tags: %w", err)
	}
	defer rows.Close()

	result := make(map[string][]string, len(snippetIDs))
	for rows.Next() {
		var snippetID, name string
		if err := rows.Scan(&snippetID, &name); err != nil {
			return nil, fmt.Errorf("sqlite: scanning tag row: %w", err)
		}
		result[snippetID] = append(result[snippetID], name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating tags: %w", err)
	}
	return result, nil
}

// ToggleStar flips the star for (user, snippet). The composite primary key
// makes the flip atomic: INSERT OR IGNORE either claims the row or leaves
// it alone, and RowsAffected tells us which happened. Two concurrent
// identical requests (a double-click) race down to the constraint — one
// inserts, the other deletes — and the net state is the same as two
// sequential toggles, never a duplicate row.
func (db *DB) ToggleStar(ctx context.Context, userID, snippetID string) (bool, int, error) {
	return db.toggle(ctx, "stars",
		`INSERT OR IGNORE INTO stars (user_id, snippet_id) VALUES (?, ?)`,
		[]any{userID, snippetID}, userID, snippetID)
}

// ToggleLike is the same shape as ToggleStar; likes additionally carry a
// timestamp.
func (db *DB) ToggleLike(ctx context.Context, userID, snippetID string) (bool, int, error) {
	return db.toggle(ctx, "likes",
		`INSERT OR IGNORE INTO likes (user_id, snippet_id, created_at) VALUES (?, ?, ?)`,
		[]any{userID, snippetID, time.Now()}, userID, snippetID)
}

func (db *DB) toggle(ctx context.Context, table, insertSQL string, insertArgs []any, userID, snippetID string) (bool, int, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return false, 0, fmt.Errorf("sqlite: beginning %s toggle: %w", table, err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, insertSQL, insertArgs...)
	if err != nil {
		return false, 0, fmt.Errorf("sqlite: inserting %s row: %w", table, err)
	}
	inserted, err := result.RowsAffected()
	if err != nil {
		return false, 0, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}

	active := inserted > 0
	if !active {
		// Row already existed: this toggle removes it.
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM `+table+` WHERE user_id = ? AND snippet_id = ?`,
			userID, snippetID); err != nil {
			return false, 0, fmt.Errorf("sqlite: deleting %s row: %w", table, err)
		}
	}

	var count int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM `+table+` WHERE snippet_id = ?`, snippetID).Scan(&count); err != nil {
		return false, 0, fmt.Errorf("sqlite: counting %s: %w", table, err)
	}

	if err := tx.Commit(); err != nil {
		return false, 0, fmt.Errorf("sqlite: committing %s toggle: %w", table, err)
	}
	return active, count, nil
}

func (db *DB) ListStarredIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT snippet_id FROM stars WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing starred snippets: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("sqlite: scanning starred ID: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating starred IDs: %w", err)
	}
	return ids, nil
}
