package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/snippet-api/internal/model"
	"github.com/sakif/snippet-api/internal/repository"
)

// TagService handles tags. Names are unique across the store.
type TagService struct {
	repo   repository.TagRepository
	logger *slog.Logger
}

func NewTagService(repo repository.TagRepository, logger *slog.Logger) *TagService {
	return &TagService{repo: repo, logger: logger}
}

func (s *TagService) Create(ctx context.Context, in model.NewTag) (*model.Tag, error) {
	tag, err := s.repo.Create(ctx, in)
	if err != nil {
		logFailure(ctx, s.logger, "failed to create tag", err)
		return nil, fmt.Errorf("service/tag: creating tag: %w", err)
	}

	s.logger.Info("tag created", slog.String("id", tag.ID), slog.String("name", tag.Name))
	return tag, nil
}

func (s *TagService) Get(ctx context.Context, id string) (*model.Tag, error) {
	tag, err := s.repo.GetByID(ctx, id)
	if err != nil {
		logFailure(ctx, s.logger, "failed to get tag", err, slog.String("id", id))
		return nil, fmt.Errorf("service/tag: getting tag: %w", err)
	}
	return tag, nil
}

func (s *TagService) Update(ctx context.Context, id string, patch model.TagPatch) (*model.Tag, error) {
	tag, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		logFailure(ctx, s.logger, "failed to update tag", err, slog.String("id", id))
		return nil, fmt.Errorf("service/tag: updating tag: %w", err)
	}

	s.logger.Info("tag updated", slog.String("id", id), slog.String("name", tag.Name))
	return tag, nil
}

// Delete removes a tag. A tag still linked to a snippet is ErrConflict.
func (s *TagService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		logFailure(ctx, s.logger, "failed to delete tag", err, slog.String("id", id))
		return fmt.Errorf("service/tag: deleting tag: %w", err)
	}

	s.logger.Info("tag deleted", slog.String("id", id))
	return nil
}
