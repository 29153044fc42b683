// Package repository declares the storage contracts the services depend on.
//
// Every method takes a context so the request deadline reaches the driver.
// Lookups and updates of a missing id return apperror.ErrNotFound; unique or
// reference-integrity failures return apperror.ErrConflict. Deletes are
// idempotent and never report ErrNotFound.
package repository

import (
	"context"

	"github.com/sakif/snippet-api/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, in model.NewUser) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	// List returns every user, unpaginated.
	List(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, id string, patch model.UserPatch) (*model.User, error)
	Delete(ctx context.Context, id string) error
}

type SnippetRepository interface {
	Create(ctx context.Context, in model.NewSnippet) (*model.Snippet, error)
	GetByID(ctx context.Context, id string) (*model.Snippet, error)
	Update(ctx context.Context, id string, patch model.SnippetPatch) (*model.Snippet, error)
	Delete(ctx context.Context, id string) error
}

type TagRepository interface {
	Create(ctx context.Context, in model.NewTag) (*model.Tag, error)
	GetByID(ctx context.Context, id string) (*model.Tag, error)
	Update(ctx context.Context, id string, patch model.TagPatch) (*model.Tag, error)
	Delete(ctx context.Context, id string) error
}

type SnippetTagRepository interface {
	Associate(ctx context.Context, snippetID, tagID string) error
	// Dissociate is a no-op when the pair does not exist.
	Dissociate(ctx context.Context, snippetID, tagID string) error
	ListTagsForSnippet(ctx context.Context, snippetID string) ([]model.Tag, error)
}
