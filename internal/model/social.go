package model

import "time"

// Star marks (user, snippet) as starred. The pair is the primary key, so a
// user holds at most one star per snippet; toggling inserts or deletes the
// row rather than accumulating duplicates. Like is the same shape plus a
// timestamp.
type Star struct {
	UserID    string `json:"userId"    db:"user_id"`
	SnippetID string `json:"snippetId" db:"snippet_id"`
}

type Like struct {
	UserID    string    `json:"userId"    db:"user_id"`
	SnippetID string    `json:"snippetId" db:"snippet_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Comment is a user's comment on a snippet. Deletable by its author or by a
// moderator/admin.
type Comment struct {
	ID        string    `json:"id"        db:"id"`
	SnippetID string    `json:"snippetId" db:"snippet_id"`
	AuthorID  string    `json:"authorId"  db:"author_id"`
	Content   string    `json:"content"   db:"content"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	// Author's username, joined in for display.
	AuthorName string `json:"authorName,omitempty"`
}
