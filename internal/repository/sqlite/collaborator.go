package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/glutton-su/DevSpace-sub002/internal/apperror"
	"github.com/glutton-su/DevSpace-sub002/internal/model"
	"github.com/glutton-su/DevSpace-sub002/internal/repository"
)

var _ repository.CollaboratorRepository = (*DB)(nil)

const collabColumns = `c.id, c.snippet_id, c.user_id, c.role, c.added_by,
	c.can_edit, c.can_delete, c.can_share, c.can_add_collaborators, c.created_at`

func scanCollaborator(row interface{ Scan(...any) error }, withUsername bool) (*model.Collaborator, error) {
	var c model.Collaborator
	dest := []any{
		&c.ID, &c.SnippetID, &c.UserID, &c.Role, &c.AddedBy,
		&c.Permissions.CanEdit, &c.Permissions.CanDelete,
		&c.Permissions.CanShare, &c.Permissions.CanAddCollaborators,
		&c.CreatedAt,
	}
	if withUsername {
		dest = append(dest, &c.Username)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateCollaborator inserts a grant. The UNIQUE(snippet_id, user_id)
// constraint turns a duplicate invite into ErrConflict.
func (db *DB) CreateCollaborator(ctx context.Context, collab *model.Collaborator) error {
	collab.ID = xid.New().String()
	collab.CreatedAt = time.Now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO snippet_collaborators
		 (id, snippet_id, user_id, role, added_by,
		  can_edit, can_delete, can_share, can_add_collaborators, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		collab.ID, collab.SnippetID, collab.UserID, collab.Role, collab.AddedBy,
		collab.Permissions.CanEdit, collab.Permissions.CanDelete,
		collab.Permissions.CanShare, collab.Permissions.CanAddCollaborators,
		collab.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("collaborator", "user is already a collaborator on this snippet")
		}
		return fmt.Errorf("sqlite: creating collaborator: %w", err)
	}
	return nil
}

func (db *DB) GetCollaborator(ctx context.Context, snippetID, userID string) (*model.Collaborator, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+collabColumns+` FROM snippet_collaborators c
		 WHERE c.snippet_id = ? AND c.user_id = ?`, snippetID, userID)
	c, err := scanCollaborator(row, false)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("collaborator", userID)
		}
		return nil, fmt.Errorf("sqlite: getting collaborator: %w", err)
	}
	return c, nil
}

func (db *DB) ListCollaborators(ctx context.Context, snippetID string) ([]model.Collaborator, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+collabColumns+`, u.username
		 FROM snippet_collaborators c JOIN users u ON u.id = c.user_id
		 WHERE c.snippet_id = ?
		 ORDER BY c.created_at`, snippetID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing collaborators: %w", err)
	}
	defer rows.Close()

	collabs := []model.Collaborator{}
	for rows.Next() {
		c, err := scanCollaborator(rows, true)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning collaborator row: %w", err)
		}
		collabs = append(collabs, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating collaborators: %w", err)
	}
	return collabs, nil
}

func (db *DB) UpdateCollaborator(ctx context.Context, collab *model.Collaborator) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE snippet_collaborators
		 SET role = ?, can_edit = ?, can_delete = ?, can_share = ?, can_add_collaborators = ?
		 WHERE snippet_id = ? AND user_id = ?`,
		collab.Role, collab.Permissions.CanEdit, collab.Permissions.CanDelete,
		collab.Permissions.CanShare, collab.Permissions.CanAddCollaborators,
		collab.SnippetID, collab.UserID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating collaborator: %w", err)
	}
	return requireRowsAffected(result, "collaborator", collab.UserID)
}

func (db *DB) DeleteCollaborator(ctx context.Context, snippetID, userID string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM snippet_collaborators WHERE snippet_id = ? AND user_id = ?`,
		snippetID, userID)
	if err != nil {
		return fmt.Errorf("sqlite: deleting collaborator: %w", err)
	}
	return requireRowsAffected(result, "collaborator", userID)
}
