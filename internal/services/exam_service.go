package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/edupulse/exam-service/internal/events"
	"github.com/edupulse/exam-service/internal/models"
	"github.com/edupulse/exam-service/internal/repositories"
	"github.com/edupulse/exam-service/internal/scoring"
	"github.com/edupulse/exam-service/internal/validator"
)

type examService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
}

func NewExamService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) ExamService {
	return &examService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

// ===== CORE EXAM OPERATIONS =====

// Start samples a random question set for the requested filters, freezes it
// into a new attempt and returns the redacted question views. Students are
// narrowed to their own class and board regardless of what they send.
func (s *examService) Start(ctx context.Context, req *StartExamRequest, actor Actor) (*StartExamResponse, error) {
	s.logger.Info("Starting exam attempt",
		"user_id", actor.ID,
		"subject", req.Subject,
		"topic", req.Topic,
		"limit", req.Limit)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	filters := repositories.SampleFilters{
		Subject: req.Subject,
		Topic:   req.Topic,
		Type:    &req.Type,
		Stage:   req.Stage,
	}
	if actor.Role == models.RoleStudent {
		if actor.Board != "" {
			filters.Board = &actor.Board
		}
		if actor.Class != "" {
			filters.Class = &actor.Class
		}
	}

	questions, err := s.repo.Question().Sample(ctx, filters, req.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to sample questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestionsAvailable
	}

	ids := make([]uint, len(questions))
	views := make([]scoring.RedactedQuestion, len(questions))
	for i, q := range questions {
		view, err := scoring.Redact(q)
		if err != nil {
			return nil, fmt.Errorf("failed to build question view %d: %w", q.ID, err)
		}
		ids[i] = q.ID
		views[i] = view
	}

	idsJSON, err := json.Marshal(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to encode question ids: %w", err)
	}

	attempt := &models.ExamAttempt{
		UserID:      actor.ID,
		Subject:     req.Subject,
		Topic:       req.Topic,
		Type:        string(req.Type),
		Total:       len(questions),
		QuestionIDs: idsJSON,
	}
	if req.Stage != nil {
		attempt.Stage = *req.Stage
	}

	if err := s.repo.Attempt().Create(ctx, attempt); err != nil {
		return nil, fmt.Errorf("failed to create attempt: %w", err)
	}

	s.publish(ctx, events.NewAttemptStartedEvent(
		attempt.ID, actor.ID, req.Subject, req.Topic, attempt.Total, attempt.CreatedAt))

	s.logger.Info("Exam attempt started",
		"attempt_id", attempt.ID,
		"user_id", actor.ID,
		"question_count", attempt.Total)

	return &StartExamResponse{
		AttemptID: attempt.ID,
		Subject:   attempt.Subject,
		Topic:     attempt.Topic,
		Total:     attempt.Total,
		Questions: views,
		StartedAt: attempt.CreatedAt,
	}, nil
}

// Submit grades the submitted answers against the attempt's frozen question
// set and persists the result exactly once. Answers for questions outside the
// frozen set are ignored; questions with no answer are graded as given.
func (s *examService) Submit(ctx context.Context, attemptID uint, req *SubmitExamRequest, actor Actor) (*SubmitExamResponse, error) {
	s.logger.Info("Submitting exam attempt",
		"attempt_id", attemptID,
		"user_id", actor.ID,
		"answers_count", len(req.Answers))

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	attempt, err := s.repo.Attempt().GetByID(ctx, attemptID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}

	if attempt.UserID != actor.ID {
		return nil, NewPermissionError(actor.ID, attemptID, "attempt", "submit", "not owned by user")
	}
	if attempt.Submitted() {
		return nil, ErrAttemptAlreadySubmitted
	}

	graded, totals, err := s.gradeAttempt(ctx, attempt, req.Answers)
	if err != nil {
		return nil, err
	}

	answersJSON, err := json.Marshal(graded)
	if err != nil {
		return nil, fmt.Errorf("failed to encode graded answers: %w", err)
	}

	submittedAt := time.Now()
	update := repositories.SubmitUpdate{
		Answers:       answersJSON,
		Score:         totals.Score,
		Percent:       totals.Percent,
		PendingReview: totals.PendingReview,
		SubmittedAt:   submittedAt,
	}

	if err := s.repo.Attempt().SubmitScored(ctx, attemptID, update); err != nil {
		if err == repositories.ErrNotUpdated {
			// Lost the race against a concurrent submission of the same attempt
			return nil, ErrAttemptAlreadySubmitted
		}
		return nil, fmt.Errorf("failed to submit attempt: %w", err)
	}

	s.publish(ctx, events.NewAttemptSubmittedEvent(
		attemptID, actor.ID, attempt.Subject,
		totals.Score, totals.Total, totals.Percent, totals.PendingReview, submittedAt))

	if totals.PendingReview {
		s.publish(ctx, events.NewReviewPendingEvent(
			attemptID, actor.ID, attempt.Subject, countPendingReview(graded), submittedAt))
	}

	s.logger.Info("Exam attempt submitted",
		"attempt_id", attemptID,
		"user_id", actor.ID,
		"score", totals.Score,
		"total", totals.Total,
		"percent", totals.Percent,
		"pending_review", totals.PendingReview)

	return &SubmitExamResponse{
		AttemptID:     attemptID,
		Score:         totals.Score,
		Total:         totals.Total,
		Percent:       totals.Percent,
		PendingReview: totals.PendingReview,
		SubmittedAt:   submittedAt,
	}, nil
}

// ===== GET OPERATIONS =====

func (s *examService) GetAttempt(ctx context.Context, attemptID uint, actor Actor) (*AttemptResponse, error) {
	attempt, err := s.repo.Attempt().GetByID(ctx, attemptID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}

	if attempt.UserID != actor.ID && !actor.IsStaff() {
		return nil, NewPermissionError(actor.ID, attemptID, "attempt", "read", "not owner or insufficient permissions")
	}

	return s.buildAttemptResponse(ctx, attempt)
}

func (s *examService) AdminGetAttempt(ctx context.Context, attemptID uint, actor Actor) (*AttemptResponse, error) {
	if !actor.IsStaff() {
		return nil, NewPermissionError(actor.ID, attemptID, "attempt", "read", "requires teacher or admin role")
	}
	return s.GetAttempt(ctx, attemptID, actor)
}

// ===== LIST OPERATIONS =====

func (s *examService) ListAttempts(ctx context.Context, filters repositories.AttemptFilters, actor Actor) (*AttemptListResponse, error) {
	// Callers only ever list their own attempts through this path
	filters.UserID = &actor.ID

	attempts, total, err := s.repo.Attempt().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}

	return &AttemptListResponse{Attempts: attempts, Total: total}, nil
}

func (s *examService) AdminListAttempts(ctx context.Context, filters repositories.AttemptFilters, actor Actor) (*AttemptListResponse, error) {
	if !actor.IsStaff() {
		return nil, NewPermissionError(actor.ID, 0, "attempt", "list", "requires teacher or admin role")
	}

	attempts, total, err := s.repo.Attempt().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}

	return &AttemptListResponse{Attempts: attempts, Total: total}, nil
}
