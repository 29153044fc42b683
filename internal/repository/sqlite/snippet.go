package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sakif/snippet-api/internal/apperror"
	"github.com/sakif/snippet-api/internal/model"
	"github.com/sakif/snippet-api/internal/repository"
)

var _ repository.SnippetRepository = (*SnippetDB)(nil)

// SnippetDB is the store for the code_snippets table.
type SnippetDB struct {
	conn *sql.DB
}

const snippetColumns = `id, user_id, title, content, language, description, is_public, created_at, updated_at`

// Create inserts a snippet.
//
// IsPublic defaults to true. created_at and updated_at get the same instant
// so updatedAt >= createdAt holds from the first write. A userId that does
// not match a user fails the foreign key and comes back as ErrConflict.
func (s *SnippetDB) Create(ctx context.Context, in model.NewSnippet) (*model.Snippet, error) {
	now := time.Now().UTC()
	snippet := &model.Snippet{
		ID:          newID(in.ID),
		Language:    in.Language,
		Description: in.Description,
		IsPublic:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.IsPublic != nil {
		snippet.IsPublic = *in.IsPublic
	}

	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO code_snippets (`+snippetColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snippet.ID,
		nullable(in.UserID),
		nullable(in.Title),
		nullable(in.Content),
		nullable(in.Language),
		nullable(in.Description),
		snippet.IsPublic,
		snippet.CreatedAt,
		snippet.UpdatedAt,
	)
	if err != nil {
		return nil, classify(err, "snippet", opWrite, "creating")
	}

	snippet.UserID = deref(in.UserID)
	snippet.Title = deref(in.Title)
	snippet.Content = deref(in.Content)
	return snippet, nil
}

// GetByID retrieves a single snippet by its ID.
func (s *SnippetDB) GetByID(ctx context.Context, id string) (*model.Snippet, error) {
	snippet, err := scanSnippet(s.conn.QueryRowContext(ctx,
		`SELECT `+snippetColumns+` FROM code_snippets WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("snippet", id)
		}
		return nil, fmt.Errorf("sqlite: getting snippet %s: %w", id, err)
	}
	return snippet, nil
}

// Update applies the supplied fields and always moves updated_at forward,
// even for an empty patch.
func (s *SnippetDB) Update(ctx context.Context, id string, patch model.SnippetPatch) (*model.Snippet, error) {
	var set assignments
	if patch.UserID != nil {
		set.set("user_id", *patch.UserID)
	}
	if patch.Title != nil {
		set.set("title", *patch.Title)
	}
	if patch.Content != nil {
		set.set("content", *patch.Content)
	}
	if patch.Language != nil {
		set.set("language", *patch.Language)
	}
	if patch.Description != nil {
		set.set("description", *patch.Description)
	}
	if patch.IsPublic != nil {
		set.set("is_public", *patch.IsPublic)
	}
	set.set("updated_at", time.Now().UTC())

	result, err := s.conn.ExecContext(ctx,
		`UPDATE code_snippets SET `+set.clause()+` WHERE id = ?`,
		append(set.args, id)...,
	)
	if err != nil {
		return nil, classify(err, "snippet", opWrite, "updating")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, apperror.NotFound("snippet", id)
	}

	return s.GetByID(ctx, id)
}

// Delete removes a snippet. Missing ids are ignored; a snippet that still
// has tag associations cannot be deleted.
func (s *SnippetDB) Delete(ctx context.Context, id string) error {
	if _, err := s.conn.ExecContext(ctx, `DELETE FROM code_snippets WHERE id = ?`, id); err != nil {
		return classify(err, "snippet", opDelete, "deleting")
	}
	return nil
}

func scanSnippet(row rowScanner) (*model.Snippet, error) {
	var snippet model.Snippet
	if err := row.Scan(
		&snippet.ID,
		&snippet.UserID,
		&snippet.Title,
		&snippet.Content,
		&snippet.Language,
		&snippet.Description,
		&snippet.IsPublic,
		&snippet.CreatedAt,
		&snippet.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &snippet, nil
}
