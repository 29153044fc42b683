package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sakif/snippet-api/internal/model"
	"github.com/sakif/snippet-api/internal/repository"
)

var _ repository.SnippetTagRepository = (*SnippetTagDB)(nil)

// SnippetTagDB is the store for the code_snippet_tags join table.
type SnippetTagDB struct {
	conn *sql.DB
}

// Associate links a tag to a snippet. The composite primary key rejects a
// second identical pair, and both foreign keys must resolve.
func (st *SnippetTagDB) Associate(ctx context.Context, snippetID, tagID string) error {
	_, err := st.conn.ExecContext(ctx,
		`INSERT INTO code_snippet_tags (snippet_id, tag_id) VALUES (?, ?)`,
		snippetID, tagID,
	)
	if err != nil {
		return classify(err, "snippet tag", opWrite, "associating")
	}
	return nil
}

// Dissociate removes the pair if present.
func (st *SnippetTagDB) Dissociate(ctx context.Context, snippetID, tagID string) error {
	_, err := st.conn.ExecContext(ctx,
		`DELETE FROM code_snippet_tags WHERE snippet_id = ? AND tag_id = ?`,
		snippetID, tagID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: dissociating tag %s from snippet %s: %w", tagID, snippetID, err)
	}
	return nil
}

// ListTagsForSnippet returns the tags attached to a snippet, by name. An
// unknown snippet id yields an empty list.
func (st *SnippetTagDB) ListTagsForSnippet(ctx context.Context, snippetID string) ([]model.Tag, error) {
	rows, err := st.conn.QueryContext(ctx,
		`SELECT t.id, t.name
		 FROM tags t
		 JOIN code_snippet_tags st ON st.tag_id = t.id
		 WHERE st.snippet_id = ?
		 ORDER BY t.name`,
		snippetID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing tags for snippet %s: %w", snippetID, err)
	}
	defer rows.Close()

	tags := make([]model.Tag, 0)
	for rows.Next() {
		var tag model.Tag
		if err := rows.Scan(&tag.ID, &tag.Name); err != nil {
			return nil, fmt.Errorf("sqlite: scanning tag row: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating tags: %w", err)
	}

	return tags, nil
}
