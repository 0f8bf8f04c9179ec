package services

import (
	"context"
	"fmt"

	"github.com/edupulse/exam-service/internal/events"
	"github.com/edupulse/exam-service/internal/models"
	"github.com/edupulse/exam-service/internal/scoring"
)

// gradeAttempt scores the submission against the attempt's frozen, ordered
// question set. The frozen list is authoritative: every frozen question is
// graded exactly once, and submitted answers that reference anything else
// are dropped.
func (s *examService) gradeAttempt(ctx context.Context, attempt *models.ExamAttempt, answers []models.AnswerSubmission) ([]models.GradedAnswer, scoring.Totals, error) {
	ids, err := attempt.QuestionIDList()
	if err != nil {
		return nil, scoring.Totals{}, fmt.Errorf("failed to decode attempt question ids: %w", err)
	}

	questions, err := s.repo.Question().GetByIDs(ctx, ids)
	if err != nil {
		return nil, scoring.Totals{}, fmt.Errorf("failed to load attempt questions: %w", err)
	}

	byID := make(map[uint]*models.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	submitted := make(map[uint]models.AnswerSubmission, len(answers))
	for _, answer := range answers {
		submitted[answer.QuestionID] = answer
	}

	graded := make([]models.GradedAnswer, 0, len(ids))
	for _, id := range ids {
		question, ok := byID[id]
		if !ok {
			return nil, scoring.Totals{}, fmt.Errorf("attempt question %d no longer exists", id)
		}

		// A missing answer grades as an empty submission, which is wrong
		// for every auto-graded type and pending for essays
		sub := submitted[id]
		sub.QuestionID = id

		result, err := scoring.Grade(question, sub)
		if err != nil {
			return nil, scoring.Totals{}, err
		}

		graded = append(graded, models.GradedAnswer{
			QuestionID: id,
			Type:       question.Type,
			Submission: sub,
			Points:     result.Points,
			Verdict:    result.Verdict,
		})
	}

	return graded, scoring.Aggregate(graded, attempt.Total), nil
}

// buildAttemptResponse attaches the per-question review to submitted
// attempts. Unsubmitted attempts come back bare so the answer key never
// leaves the store early.
func (s *examService) buildAttemptResponse(ctx context.Context, attempt *models.ExamAttempt) (*AttemptResponse, error) {
	resp := &AttemptResponse{Attempt: attempt}
	if !attempt.Submitted() {
		return resp, nil
	}

	graded, err := attempt.GradedAnswers()
	if err != nil {
		return nil, fmt.Errorf("failed to decode graded answers: %w", err)
	}

	ids, err := attempt.QuestionIDList()
	if err != nil {
		return nil, fmt.Errorf("failed to decode attempt question ids: %w", err)
	}

	questions, err := s.repo.Question().GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load attempt questions: %w", err)
	}

	byID := make(map[uint]*models.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	review := make([]scoring.ReviewEntry, 0, len(graded))
	for _, answer := range graded {
		question, ok := byID[answer.QuestionID]
		if !ok {
			// Question deleted after submission; the stored verdict stands
			s.logger.Warn("Attempt question missing from store",
				"attempt_id", attempt.ID,
				"question_id", answer.QuestionID)
			continue
		}

		entry, err := scoring.BuildReview(question, answer)
		if err != nil {
			return nil, fmt.Errorf("failed to build review for question %d: %w", answer.QuestionID, err)
		}
		review = append(review, entry)
	}

	resp.Review = review
	return resp, nil
}

// publish sends an event without failing the request. Event delivery is
// best effort; the attempt record is the source of truth.
func (s *examService) publish(ctx context.Context, event *events.ExamEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishExamEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish exam event",
			"event_type", event.Type,
			"error", err)
	}
}

func countPendingReview(graded []models.GradedAnswer) int {
	count := 0
	for _, g := range graded {
		if g.Verdict == models.VerdictPendingReview {
			count++
		}
	}
	return count
}
