package model

// Tag is a globally unique label that can be attached to many snippets.
type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type NewTag struct {
	ID   *string `json:"id"`
	Name *string `json:"name"`
}

type TagPatch struct {
	Name *string `json:"name"`
}

// SnippetTag is one row of the snippet/tag association.
type SnippetTag struct {
	SnippetID string `json:"snippetId"`
	TagID     string `json:"tagId"`
}
