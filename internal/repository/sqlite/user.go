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

// Compile-time check that *DB implements the interface.
var _ repository.UserRepository = (*DB)(nil)

const userColumns = `id, username, email, password_hash, role, is_verified,
	is_suspended, avatar_url, avatar_icon, bio, github_id, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.IsVerified,
		&u.IsSuspended, &u.AvatarURL, &u.AvatarIcon, &u.Bio, &u.GitHubID,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a new user. The UNIQUE constraints on username and email
// are the uniqueness check: a duplicate comes back as apperror.ErrConflict
// without any prior SELECT, so concurrent registrations cannot both pass.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	user.ID = xid.New().String()
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Role == "" {
		user.Role = model.RoleUser
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Username, user.Email, user.PasswordHash, user.Role,
		user.IsVerified, user.IsSuspended, user.AvatarURL, user.AvatarIcon,
		user.Bio, user.GitHubID, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user", "username or email already taken")
		}
		return fmt.Errorf("sqlite: creating user: %w", err)
	}
	return nil
}

func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}
	return u, nil
}

func (db *DB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	u, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", email)
		}
		return nil, fmt.Errorf("sqlite: getting user by email: %w", err)
	}
	return u, nil
}

func (db *DB) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	u, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", username)
		}
		return nil, fmt.Errorf("sqlite: getting user by username: %w", err)
	}
	return u, nil
}

// UpdateUser rewrites the mutable columns. Duplicate username/email surfaces
// as ErrConflict, same as Create.
func (db *DB) UpdateUser(ctx context.Context, user *model.User) error {
	user.UpdatedAt = time.Now()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE users
		 SET username = ?, email = ?, password_hash = ?, is_verified = ?,
		     avatar_url = ?, avatar_icon = ?, bio = ?, updated_at = ?
		 WHERE id = ?`,
		user.Username, user.Email, user.PasswordHash, user.IsVerified,
		user.AvatarURL, user.AvatarIcon, user.Bio, user.UpdatedAt, user.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user", "username or email already taken")
		}
		return fmt.Errorf("sqlite: updating user %s: %w", user.ID, err)
	}
	return requireRowsAffected(result, "user", user.ID)
}

// DeleteUser removes the user; FK cascades take out owned projects, snippets,
// stars, likes, comments, collaborator rows and notifications.
func (db *DB) DeleteUser(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting user %s: %w", id, err)
	}
	return requireRowsAffected(result, "user", id)
}

func (db *DB) ListUsers(ctx context.Context, opts repository.ListOptions) ([]model.User, error) {
	limit, offset := clampListOptions(opts)

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users
		 ORDER BY created_at DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing users: %w", err)
	}
	defer rows.Close()

	users := make([]model.User, 0, limit)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning user row: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating users: %w", err)
	}
	return users, nil
}

// UpsertGitHub inserts or refreshes an account keyed on github_id. The
// insert is INSERT OR IGNORE, same as the toggle and tag upserts: two
// concurrent first logins for the same GitHub ID race down to the partial
// unique index, one row wins, and both callers read it back. A suppressed
// insert with no row under the GitHub ID means the username or email
// belongs to someone else. Established accounts get their email/avatar
// refreshed in case they changed on GitHub; ID, username and role stay.
func (db *DB) UpsertGitHub(ctx context.Context, user *model.User) error {
	now := time.Now()
	if user.Role == "" {
		user.Role = model.RoleUser
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO users (`+userColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		xid.New().String(), user.Username, user.Email, user.PasswordHash, user.Role,
		user.IsVerified, user.IsSuspended, user.AvatarURL, user.AvatarIcon,
		user.Bio, user.GitHubID, now, now,
	)
	if err != nil {
		return fmt.Errorf("sqlite: upserting GitHub user: %w", err)
	}

	row := db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE github_id = ?`, user.GitHubID)
	stored, err := scanUser(row)
	if err == sql.ErrNoRows {
		return apperror.Conflict("user", "username or email already taken")
	}
	if err != nil {
		return fmt.Errorf("sqlite: reading back GitHub user: %w", err)
	}

	if stored.Email != user.Email || stored.AvatarURL != user.AvatarURL {
		if _, err := db.conn.ExecContext(ctx,
			`UPDATE users SET email = ?, avatar_url = ?, updated_at = ? WHERE id = ?`,
			user.Email, user.AvatarURL, now, stored.ID); err != nil {
			if isUniqueViolation(err) {
				return apperror.Conflict("user", "email already taken")
			}
			return fmt.Errorf("sqlite: refreshing GitHub user: %w", err)
		}
		stored.Email = user.Email
		stored.AvatarURL = user.AvatarURL
		stored.UpdatedAt = now
	}

	*user = *stored
	return nil
}

func (db *DB) SetSuspended(ctx context.Context, id string, suspended bool) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE users SET is_suspended = ?, updated_at = ? WHERE id = ?`,
		suspended, time.Now(), id)
	if err != nil {
		return fmt.Errorf("sqlite: setting suspension for user %s: %w", id, err)
	}
	return requireRowsAffected(result, "user", id)
}

func (db *DB) SetRole(ctx context.Context, id string, role model.Role) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE users SET role = ?, updated_at = ? WHERE id = ?`,
		role, time.Now(), id)
	if err != nil {
		return fmt.Errorf("sqlite: setting role for user %s: %w", id, err)
	}
	return requireRowsAffected(result, "user", id)
}

// requireRowsAffected maps "0 rows changed" to NotFound — one UPDATE or
// DELETE instead of SELECT-then-write.
func requireRowsAffected(result sql.Result, resource, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound(resource, id)
	}
	return nil
}

// clampListOptions applies the default and maximum page size.
func clampListOptions(opts repository.ListOptions) (limit, offset int) {
	limit = opts.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	offset = opts.Offset
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
