package model

import "time"

// Project groups snippets under a single owner. Every snippet belongs to
// exactly one project; a project's visibility is the default visibility of
// the snippets inside it.
type Project struct {
	ID          string    `json:"id"          db:"id"`
	Name        string    `json:"name"        db:"name"`
	Description string    `json:"description" db:"description"`
	IsPublic    bool      `json:"isPublic"    db:"is_public"`
	OwnerID     string    `json:"ownerId"     db:"owner_id"`
	CreatedAt   time.Time `json:"createdAt"   db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt"   db:"updated_at"`

	// Populated on detail reads, omitted elsewhere.
	Snippets []Snippet `json:"snippets,omitempty"`
}
