package model

// Tag is a case-normalized label attached to snippets (many-to-many).
// Tags use find-or-create semantics and are never garbage-collected:
// a tag with zero snippets simply sits unused.
type Tag struct {
	ID   string `json:"id"   db:"id"`
	Name string `json:"name" db:"name"`
}
