package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/snippet-api/internal/model"
	"github.com/sakif/snippet-api/internal/repository"
)

// SnippetService handles code snippets and their tag associations.
//
// STRUCT FIELDS:
//   - snippets: the code_snippets store
//   - links:    the snippet/tag join store
//   - logger:   structured logging of business events
type SnippetService struct {
	snippets repository.SnippetRepository
	links    repository.SnippetTagRepository
	logger   *slog.Logger
}

func NewSnippetService(
	snippets repository.SnippetRepository,
	links repository.SnippetTagRepository,
	logger *slog.Logger,
) *SnippetService {
	return &SnippetService{
		snippets: snippets,
		links:    links,
		logger:   logger,
	}
}

// Create stores a new snippet. userId must name an existing user.
func (s *SnippetService) Create(ctx context.Context, in model.NewSnippet) (*model.Snippet, error) {
	snippet, err := s.snippets.Create(ctx, in)
	if err != nil {
		logFailure(ctx, s.logger, "failed to create snippet", err)
		return nil, fmt.Errorf("service/snippet: creating snippet: %w", err)
	}

	s.logger.Info("snippet created",
		slog.String("id", snippet.ID),
		slog.String("userId", snippet.UserID),
		slog.String("title", snippet.Title),
	)
	return snippet, nil
}

// Get returns the snippet with the given id or apperror.ErrNotFound.
func (s *SnippetService) Get(ctx context.Context, id string) (*model.Snippet, error) {
	snippet, err := s.snippets.GetByID(ctx, id)
	if err != nil {
		logFailure(ctx, s.logger, "failed to get snippet", err, slog.String("id", id))
		return nil, fmt.Errorf("service/snippet: getting snippet: %w", err)
	}
	return snippet, nil
}

// Update changes the supplied fields and bumps updatedAt.
func (s *SnippetService) Update(ctx context.Context, id string, patch model.SnippetPatch) (*model.Snippet, error) {
	snippet, err := s.snippets.Update(ctx, id, patch)
	if err != nil {
		logFailure(ctx, s.logger, "failed to update snippet", err, slog.String("id", id))
		return nil, fmt.Errorf("service/snippet: updating snippet: %w", err)
	}

	s.logger.Info("snippet updated", slog.String("id", id))
	return snippet, nil
}

// Delete removes a snippet. Tags must be removed from it first.
func (s *SnippetService) Delete(ctx context.Context, id string) error {
	if err := s.snippets.Delete(ctx, id); err != nil {
		logFailure(ctx, s.logger, "failed to delete snippet", err, slog.String("id", id))
		return fmt.Errorf("service/snippet: deleting snippet: %w", err)
	}

	s.logger.Info("snippet deleted", slog.String("id", id))
	return nil
}

// AddTag links a tag to a snippet. Linking the same pair twice, or linking
// a snippet or tag that does not exist, is ErrConflict.
func (s *SnippetService) AddTag(ctx context.Context, snippetID, tagID string) error {
	if err := s.links.Associate(ctx, snippetID, tagID); err != nil {
		logFailure(ctx, s.logger, "failed to tag snippet", err,
			slog.String("snippetId", snippetID),
			slog.String("tagId", tagID),
		)
		return fmt.Errorf("service/snippet: adding tag: %w", err)
	}

	s.logger.Info("tag added to snippet",
		slog.String("snippetId", snippetID),
		slog.String("tagId", tagID),
	)
	return nil
}

// RemoveTag unlinks a tag from a snippet. Removing an absent link succeeds.
func (s *SnippetService) RemoveTag(ctx context.Context, snippetID, tagID string) error {
	if err := s.links.Dissociate(ctx, snippetID, tagID); err != nil {
		logFailure(ctx, s.logger, "failed to untag snippet", err,
			slog.String("snippetId", snippetID),
			slog.String("tagId", tagID),
		)
		return fmt.Errorf("service/snippet: removing tag: %w", err)
	}

	s.logger.Info("tag removed from snippet",
		slog.String("snippetId", snippetID),
		slog.String("tagId", tagID),
	)
	return nil
}

// Tags lists the tags linked to a snippet, by name. An unknown snippet id
// yields an empty list.
func (s *SnippetService) Tags(ctx context.Context, snippetID string) ([]model.Tag, error) {
	tags, err := s.links.ListTagsForSnippet(ctx, snippetID)
	if err != nil {
		logFailure(ctx, s.logger, "failed to list snippet tags", err, slog.String("snippetId", snippetID))
		return nil, fmt.Errorf("service/snippet: listing tags: %w", err)
	}
	return tags, nil
}
