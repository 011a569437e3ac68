package model

import "time"

// Snippet is a piece of code shared inside a project.
//
// ForkedFromID is a nullable self-reference: nil for an original snippet,
// otherwise the ID of the snippet this one was forked from. Forks only ever
// point at rows that already exist, so the fork graph is a forest — no
// cycle check is needed anywhere.
//
// ExpiresAt is logical expiry: an expired snippet drops out of the default
// listings but is never auto-deleted, and its owner can still fetch it.
type Snippet struct {
	ID                 string     `json:"id"                 db:"id"`
	ProjectID          string     `json:"projectId"          db:"project_id"`
	Title              string     `json:"title"              db:"title"`
	Content            string     `json:"content"            db:"content"`
	Language           string     `json:"language"           db:"language"`
	IsPublic           bool       `json:"isPublic"           db:"is_public"`
	AllowCollaboration bool       `json:"allowCollaboration" db:"allow_collaboration"`
	ExpiresAt          *time.Time `json:"expiresAt"          db:"expires_at"`
	ForkedFromID       *string    `json:"forkedFromId"       db:"forked_from_id"`
	CreatedAt          time.Time  `json:"createdAt"          db:"created_at"`
	UpdatedAt          time.Time  `json:"updatedAt"          db:"updated_at"`

	// Derived fields, computed from join tables at query time (never stored).
	OwnerID   string   `json:"ownerId,omitempty"`
	Tags      []string `json:"tags"`
	StarCount int      `json:"starCount"`
	LikeCount int      `json:"likeCount"`
	ForkCount int      `json:"forkCount"`
	IsStarred bool     `json:"isStarred"`
	IsLiked   bool     `json:"isLiked"`

	// Populated on detail reads only.
	Project       *Project       `json:"project,omitempty"`
	Collaborators []Collaborator `json:"collaborators,omitempty"`
	Comments      []Comment      `json:"comments,omitempty"`
}

// Expired reports whether the snippet's logical expiry has passed.
func (s *Snippet) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && s.ExpiresAt.Before(now)
}
