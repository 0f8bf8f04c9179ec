package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/edupulse/exam-service/internal/cache"
	"github.com/edupulse/exam-service/internal/models"
	"github.com/edupulse/exam-service/internal/repositories"
	"github.com/edupulse/exam-service/internal/validator"
)

const (
	questionCachePrefix = "questions:"
	questionCountsKey   = "questions:counts"
	questionCacheTTL    = 5 * time.Minute
)

type questionService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	cache     cache.CacheService
}

func NewQuestionService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, cacheService cache.CacheService) QuestionService {
	return &questionService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		cache:     cacheService,
	}
}

// ===== WRITE OPERATIONS =====

func (s *questionService) Create(ctx context.Context, question *models.Question, actor Actor) (*models.Question, error) {
	if !actor.IsStaff() {
		return nil, NewPermissionError(actor.ID, 0, "question", "create", "requires teacher or admin role")
	}

	if err := s.validator.Validate(question); err != nil {
		return nil, err
	}
	if err := s.validator.Question().ValidateAndNormalize(question); err != nil {
		return nil, err
	}

	question.ID = 0
	question.CreatedBy = actor.ID

	if err := s.repo.Question().Create(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	s.invalidateCache(ctx)

	s.logger.Info("Question created",
		"question_id", question.ID,
		"type", question.Type,
		"subject", question.Subject,
		"created_by", actor.ID)

	return question, nil
}

// Replace swaps the stored document for the submitted one wholesale. There is
// no field-level patching; the new content passes the same validation as a
// create.
func (s *questionService) Replace(ctx context.Context, id uint, question *models.Question, actor Actor) (*models.Question, error) {
	if !actor.IsStaff() {
		return nil, NewPermissionError(actor.ID, id, "question", "replace", "requires teacher or admin role")
	}

	existing, err := s.repo.Question().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	if err := s.validator.Validate(question); err != nil {
		return nil, err
	}
	if err := s.validator.Question().ValidateAndNormalize(question); err != nil {
		return nil, err
	}

	question.ID = existing.ID
	question.CreatedBy = existing.CreatedBy
	question.CreatedAt = existing.CreatedAt

	if err := s.repo.Question().Replace(ctx, question); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to replace question: %w", err)
	}

	s.invalidateCache(ctx)

	s.logger.Info("Question replaced", "question_id", id, "actor", actor.ID)

	return question, nil
}

func (s *questionService) Delete(ctx context.Context, id uint, actor Actor) error {
	if !actor.IsStaff() {
		return NewPermissionError(actor.ID, id, "question", "delete", "requires teacher or admin role")
	}

	if err := s.repo.Question().Delete(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("failed to delete question: %w", err)
	}

	s.invalidateCache(ctx)

	s.logger.Info("Question deleted", "question_id", id, "actor", actor.ID)

	return nil
}

// ===== READ OPERATIONS =====

func (s *questionService) GetByID(ctx context.Context, id uint, actor Actor) (*models.Question, error) {
	if !actor.IsStaff() {
		// Students only ever see questions through an attempt's redacted view
		return nil, NewPermissionError(actor.ID, id, "question", "read", "requires teacher or admin role")
	}

	question, err := s.repo.Question().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	return question, nil
}

func (s *questionService) List(ctx context.Context, filters repositories.QuestionFilters, actor Actor) (*QuestionListResponse, error) {
	if !actor.IsStaff() {
		return nil, NewPermissionError(actor.ID, 0, "question", "list", "requires teacher or admin role")
	}

	questions, total, err := s.repo.Question().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}

	return &QuestionListResponse{Questions: questions, Total: total}, nil
}

func (s *questionService) Counts(ctx context.Context, filters repositories.QuestionFilters, actor Actor) (*repositories.QuestionCounts, error) {
	if !actor.IsStaff() {
		return nil, NewPermissionError(actor.ID, 0, "question", "counts", "requires teacher or admin role")
	}

	// Unfiltered counts are the dashboard hot path; only that shape is cached.
	cacheable := filters == (repositories.QuestionFilters{})
	if cacheable {
		var cached repositories.QuestionCounts
		if err := s.cache.Get(ctx, questionCountsKey, &cached); err == nil {
			return &cached, nil
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("Question counts cache read failed", "error", err)
		}
	}

	counts, err := s.repo.Question().Counts(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to count questions: %w", err)
	}

	if cacheable {
		if err := s.cache.Set(ctx, questionCountsKey, counts, questionCacheTTL); err != nil {
			s.logger.Warn("Question counts cache write failed", "error", err)
		}
	}

	return counts, nil
}

func (s *questionService) invalidateCache(ctx context.Context) {
	if err := s.cache.DeletePattern(ctx, questionCachePrefix+"*"); err != nil {
		s.logger.Warn("Question cache invalidation failed", "error", err)
	}
}
