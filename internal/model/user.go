// Package model defines the data structures used throughout the application.
package model

import "time"

// Role is a user's site-wide role. It gates moderation endpoints and feeds
// the visibility resolver (moderators and admins can view any snippet).
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// ValidRole reports whether r is one of the three enumerated roles.
func ValidRole(r Role) bool {
	return r == RoleUser || r == RoleModerator || r == RoleAdmin
}

// User represents a registered account.
//
// PasswordHash is the bcrypt hash of the user's password and is never
// serialized (`json:"-"`). GitHubID is non-zero only for accounts created
// through the OAuth login path; those accounts have no usable password
// until they set one.
type User struct {
	ID           string    `json:"id"           db:"id"`
	Username     string    `json:"username"     db:"username"`
	Email        string    `json:"email"        db:"email"`
	PasswordHash string    `json:"-"            db:"password_hash"`
	Role         Role      `json:"role"         db:"role"`
	IsVerified   bool      `json:"isVerified"   db:"is_verified"`
	IsSuspended  bool      `json:"isSuspended"  db:"is_suspended"`
	AvatarURL    string    `json:"avatarUrl"    db:"avatar_url"`
	AvatarIcon   string    `json:"avatarIcon"   db:"avatar_icon"`
	Bio          string    `json:"bio"          db:"bio"`
	GitHubID     int64     `json:"-"            db:"github_id"`
	CreatedAt    time.Time `json:"createdAt"    db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt"    db:"updated_at"`
}
