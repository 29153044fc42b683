package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sakif/snippet-api/internal/apperror"
	"github.com/sakif/snippet-api/internal/model"
	"github.com/sakif/snippet-api/internal/repository"
)

var _ repository.TagRepository = (*TagDB)(nil)

// TagDB is the store for the tags table.
type TagDB struct {
	conn *sql.DB
}

func (t *TagDB) Create(ctx context.Context, in model.NewTag) (*model.Tag, error) {
	tag := &model.Tag{ID: newID(in.ID)}

	_, err := t.conn.ExecContext(ctx,
		`INSERT INTO tags (id, name) VALUES (?, ?)`,
		tag.ID,
		nullable(in.Name),
	)
	if err != nil {
		return nil, classify(err, "tag", opWrite, "creating")
	}

	tag.Name = deref(in.Name)
	return tag, nil
}

func (t *TagDB) GetByID(ctx context.Context, id string) (*model.Tag, error) {
	var tag model.Tag
	err := t.conn.QueryRowContext(ctx,
		`SELECT id, name FROM tags WHERE id = ?`, id,
	).Scan(&tag.ID, &tag.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("tag", id)
		}
		return nil, fmt.Errorf("sqlite: getting tag %s: %w", id, err)
	}
	return &tag, nil
}

func (t *TagDB) Update(ctx context.Context, id string, patch model.TagPatch) (*model.Tag, error) {
	if patch.Name == nil {
		return t.GetByID(ctx, id)
	}

	result, err := t.conn.ExecContext(ctx,
		`UPDATE tags SET name = ? WHERE id = ?`, *patch.Name, id)
	if err != nil {
		return nil, classify(err, "tag", opWrite, "updating")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, apperror.NotFound("tag", id)
	}

	return &model.Tag{ID: id, Name: *patch.Name}, nil
}

func (t *TagDB) Delete(ctx context.Context, id string) error {
	if _, err := t.conn.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, id); err != nil {
		return classify(err, "tag", opDelete, "deleting")
	}
	return nil
}
