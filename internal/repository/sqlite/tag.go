package sqlite

import (
	"context"
	"fmt"

	"github.com/glutton-su/DevSpace-sub002/internal/repository"
)

var _ repository.TagRepository = (*DB)(nil)

// ListTagNames returns every distinct tag name, alphabetically. Orphan
// tags (no snippet links) are included — tags are never garbage-collected.
func (db *DB) ListTagNames(ctx context.Context) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT name FROM tags ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing tags: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("sqlite: scanning tag name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating tag names: %w", err)
	}
	return names, nil
}
