// Package sqlite implements the repository interfaces on SQLite.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo, which needs a C compiler and makes
// cross-compilation painful. modernc.org/sqlite is a pure Go translation
// of the SQLite sources — works everywhere Go works.
//
// The database runs in WAL mode (concurrent reads during a write — a web
// server needs this) with foreign keys ON, so every cascade declared in
// the schema below is enforced by the store itself: deleting a user takes
// out their projects, snippets, stars, likes, comments, collaborator rows
// and notifications in one statement.
//
// Uniqueness (username, email, tag name, one star/like per user+snippet,
// one collaborator row per snippet+user) is likewise enforced here with
// UNIQUE constraints, not with read-then-write checks in the service. Two
// concurrent identical requests race down to the constraint and exactly
// one wins.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	// Blank import: registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and implements the repository
// interfaces. One *DB serves all entity types; each entity's methods live
// in its own file.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database at dbPath, applies pragmas, and runs
// migrations. Tests use a file in t.TempDir(): a literal ":memory:" DB is
// per-connection, which breaks under database/sql's pooling.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Force an immediate connection so a bad path fails here, not on the
	// first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool. Callers defer this next to New.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps it safe to
// run on every start.
func (db *DB) migrate() error {
	stmts := []struct {
		name string
		sql  string
	}{
		{"users", `
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			username      TEXT NOT NULL UNIQUE,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL DEFAULT '',
			role          TEXT NOT NULL DEFAULT 'user',
			is_verified   INTEGER NOT NULL DEFAULT 0,
			is_suspended  INTEGER NOT NULL DEFAULT 0,
			avatar_url    TEXT NOT NULL DEFAULT '',
			avatar_icon   TEXT NOT NULL DEFAULT '',
			bio           TEXT NOT NULL DEFAULT '',
			github_id     INTEGER NOT NULL DEFAULT 0,
			created_at    DATETIME NOT NULL,
			updated_at    DATETIME NOT NULL
		);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_users_github_id
			ON users(github_id) WHERE github_id != 0;`},

		{"projects", `
		CREATE TABLE IF NOT EXISTS projects (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			is_public   INTEGER NOT NULL DEFAULT 0,
			owner_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			created_at  DATETIME NOT NULL,
			updated_at  DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_projects_owner_id ON projects(owner_id);`},

		{"snippets", `
		CREATE TABLE IF NOT EXISTS snippets (
			id                  TEXT PRIMARY KEY,
			project_id          TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
			title               TEXT NOT NULL,
			content             TEXT NOT NULL DEFAULT '',
			language            TEXT NOT NULL DEFAULT 'plaintext',
			is_public           INTEGER NOT NULL DEFAULT 0,
			allow_collaboration INTEGER NOT NULL DEFAULT 0,
			expires_at          DATETIME,
			forked_from_id      TEXT REFERENCES snippets(id) ON DELETE SET NULL,
			created_at          DATETIME NOT NULL,
			updated_at          DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_snippets_project_id ON snippets(project_id);
		CREATE INDEX IF NOT EXISTS idx_snippets_forked_from_id ON snippets(forked_from_id);
		CREATE INDEX IF NOT EXISTS idx_snippets_created_at ON snippets(created_at);`},

		{"tags", `
		CREATE TABLE IF NOT EXISTS tags (
			id   TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE
		);
		CREATE TABLE IF NOT EXISTS snippet_tags (
			snippet_id TEXT NOT NULL REFERENCES snippets(id) ON DELETE CASCADE,
			tag_id     TEXT NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
			PRIMARY KEY (snippet_id, tag_id)
		);`},

		{"stars and likes", `
		CREATE TABLE IF NOT EXISTS stars (
			user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			snippet_id TEXT NOT NULL REFERENCES snippets(id) ON DELETE CASCADE,
			PRIMARY KEY (user_id, snippet_id)
		);
		CREATE TABLE IF NOT EXISTS likes (
			user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			snippet_id TEXT NOT NULL REFERENCES snippets(id) ON DELETE CASCADE,
			created_at DATETIME NOT NULL,
			PRIMARY KEY (user_id, snippet_id)
		);
		CREATE INDEX IF NOT EXISTS idx_stars_snippet_id ON stars(snippet_id);
		CREATE INDEX IF NOT EXISTS idx_likes_snippet_id ON likes(snippet_id);`},

		{"comments", `
		CREATE TABLE IF NOT EXISTS comments (
			id         TEXT PRIMARY KEY,
			snippet_id TEXT NOT NULL REFERENCES snippets(id) ON DELETE CASCADE,
			author_id  TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			content    TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_comments_snippet_id ON comments(snippet_id);`},

		{"collaborators", `
		CREATE TABLE IF NOT EXISTS snippet_collaborators (
			id                    TEXT PRIMARY KEY,
			snippet_id            TEXT NOT NULL REFERENCES snippets(id) ON DELETE CASCADE,
			user_id               TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			role                  TEXT NOT NULL DEFAULT 'viewer',
			added_by              TEXT NOT NULL DEFAULT '',
			can_edit              INTEGER NOT NULL DEFAULT 0,
			can_delete            INTEGER NOT NULL DEFAULT 0,
			can_share             INTEGER NOT NULL DEFAULT 0,
			can_add_collaborators INTEGER NOT NULL DEFAULT 0,
			created_at            DATETIME NOT NULL,
			UNIQUE (snippet_id, user_id)
		);
		CREATE INDEX IF NOT EXISTS idx_collaborators_user_id ON snippet_collaborators(user_id);`},

		{"notifications", `
		CREATE TABLE IF NOT EXISTS notifications (
			id                TEXT PRIMARY KEY,
			user_id           TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			type              TEXT NOT NULL,
			content           TEXT NOT NULL DEFAULT '',
			is_read           INTEGER NOT NULL DEFAULT 0,
			related_item_id   TEXT NOT NULL DEFAULT '',
			related_item_type TEXT NOT NULL DEFAULT '',
			created_at        DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_notifications_user_id ON notifications(user_id);`},

		{"announcements", `
		CREATE TABLE IF NOT EXISTS announcements (
			id         TEXT PRIMARY KEY,
			title      TEXT NOT NULL,
			content    TEXT NOT NULL,
			type       TEXT NOT NULL DEFAULT 'info',
			priority   TEXT NOT NULL DEFAULT 'medium',
			is_active  INTEGER NOT NULL DEFAULT 1,
			expires_at DATETIME,
			created_by TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);`},
	}

	for _, s := range stmts {
		if _, err := db.conn.Exec(s.sql); err != nil {
			return fmt.Errorf("creating %s: %w", s.name, err)
		}
	}
	return nil
}

// isUniqueViolation reports whether err came from a UNIQUE constraint.
// modernc.org/sqlite surfaces constraint failures as plain errors whose
// message carries the SQLite error text, so string matching is the
// available discriminator.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
