package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/snippet-api/internal/model"
	"github.com/sakif/snippet-api/internal/repository"
)

// UserService handles user accounts.
type UserService struct {
	repo   repository.UserRepository
	logger *slog.Logger
}

func NewUserService(repo repository.UserRepository, logger *slog.Logger) *UserService {
	return &UserService{repo: repo, logger: logger}
}

// List returns every user. There is no paging.
func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		logFailure(ctx, s.logger, "failed to list users", err)
		return nil, fmt.Errorf("service/user: listing users: %w", err)
	}
	return users, nil
}

// Create stores a new user. Duplicate username or email is ErrConflict; a
// missing required field is ErrValidation.
func (s *UserService) Create(ctx context.Context, in model.NewUser) (*model.User, error) {
	user, err := s.repo.Create(ctx, in)
	if err != nil {
		logFailure(ctx, s.logger, "failed to create user", err)
		return nil, fmt.Errorf("service/user: creating user: %w", err)
	}

	s.logger.Info("user created",
		slog.String("id", user.ID),
		slog.String("username", user.Username),
	)
	return user, nil
}

// Get returns the user with the given id or apperror.ErrNotFound.
func (s *UserService) Get(ctx context.Context, id string) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		logFailure(ctx, s.logger, "failed to get user", err, slog.String("id", id))
		return nil, fmt.Errorf("service/user: getting user: %w", err)
	}
	return user, nil
}

// Update changes only the fields set in patch.
func (s *UserService) Update(ctx context.Context, id string, patch model.UserPatch) (*model.User, error) {
	user, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		logFailure(ctx, s.logger, "failed to update user", err, slog.String("id", id))
		return nil, fmt.Errorf("service/user: updating user: %w", err)
	}

	s.logger.Info("user updated", slog.String("id", id))
	return user, nil
}

// Delete removes a user. A missing id succeeds; a user who still owns
// snippets is ErrConflict.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		logFailure(ctx, s.logger, "failed to delete user", err, slog.String("id", id))
		return fmt.Errorf("service/user: deleting user: %w", err)
	}

	s.logger.Info("user deleted", slog.String("id", id))
	return nil
}
