package model

import "time"

// Snippet is a stored code snippet owned by exactly one User.
//
// Language and Description are nullable columns; they marshal as JSON null
// when unset.
type Snippet struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Language    *string   `json:"language"`
	Description *string   `json:"description"`
	IsPublic    bool      `json:"isPublic"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewSnippet is the body of POST /api/snippets. IsPublic defaults to true.
type NewSnippet struct {
	ID          *string `json:"id"`
	UserID      *string `json:"userId"`
	Title       *string `json:"title"`
	Content     *string `json:"content"`
	Language    *string `json:"language"`
	Description *string `json:"description"`
	IsPublic    *bool   `json:"isPublic"`
}

// SnippetPatch is the body of PUT /api/snippets/{id}.
//
// Moving a snippet to another owner is allowed; the foreign key still has to
// hold.
type SnippetPatch struct {
	UserID      *string `json:"userId"`
	Title       *string `json:"title"`
	Content     *string `json:"content"`
	Language    *string `json:"language"`
	Description *string `json:"description"`
	IsPublic    *bool   `json:"isPublic"`
}
