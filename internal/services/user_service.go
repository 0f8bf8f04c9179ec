package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/edupulse/exam-service/internal/models"
	"github.com/edupulse/exam-service/internal/repositories"
	"github.com/edupulse/exam-service/internal/validator"
)

type userService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewUserService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) UserService {
	return &userService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

// Sync mirrors the identity provider's subject into the local user table.
// Called on every authenticated request with fresh claims, so profile drift
// (class changes, deactivation) converges without a manual sync job.
func (s *userService) Sync(ctx context.Context, user *models.User) (*models.User, error) {
	if err := s.validator.Validate(user); err != nil {
		return nil, err
	}

	if err := s.repo.User().Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}

	return user, nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}
