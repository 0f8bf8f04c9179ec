package events

import (
	"time"

	"github.com/ThreeDotsLabs/watermill"
)

// EventType represents different types of exam lifecycle events
type EventType string

const (
	// Attempt events
	EventAttemptStarted   EventType = "attempt.started"
	EventAttemptSubmitted EventType = "attempt.submitted"

	// Grading events
	EventReviewPending EventType = "grading.review_pending"

	// Question bank events
	EventQuestionsImported EventType = "questions.imported"
)

// ExamEvent is the base event structure for all exam lifecycle events
type ExamEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Attempt event payloads

type AttemptStartedEvent struct {
	AttemptID     uint      `json:"attempt_id"`
	UserID        string    `json:"user_id"`
	Subject       string    `json:"subject"`
	Topic         string    `json:"topic"`
	QuestionCount int       `json:"question_count"`
	StartedAt     time.Time `json:"started_at"`
}

type AttemptSubmittedEvent struct {
	AttemptID     uint      `json:"attempt_id"`
	UserID        string    `json:"user_id"`
	Subject       string    `json:"subject"`
	Score         int       `json:"score"`
	Total         int       `json:"total"`
	Percent       int       `json:"percent"`
	PendingReview bool      `json:"pending_review"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

// Grading event payloads

type ReviewPendingEvent struct {
	AttemptID   uint      `json:"attempt_id"`
	UserID      string    `json:"user_id"`
	Subject     string    `json:"subject"`
	EssayCount  int       `json:"essay_count"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Question bank event payloads

type QuestionsImportedEvent struct {
	ImportedBy string `json:"imported_by"`
	FileName   string `json:"file_name"`
	Imported   int    `json:"imported"`
	Skipped    int    `json:"skipped"`
}

// Event factory functions

func NewAttemptStartedEvent(attemptID uint, userID, subject, topic string, questionCount int, startedAt time.Time) *ExamEvent {
	return newEvent(EventAttemptStarted, AttemptStartedEvent{
		AttemptID:     attemptID,
		UserID:        userID,
		Subject:       subject,
		Topic:         topic,
		QuestionCount: questionCount,
		StartedAt:     startedAt,
	})
}

func NewAttemptSubmittedEvent(attemptID uint, userID, subject string, score, total, percent int, pendingReview bool, submittedAt time.Time) *ExamEvent {
	return newEvent(EventAttemptSubmitted, AttemptSubmittedEvent{
		AttemptID:     attemptID,
		UserID:        userID,
		Subject:       subject,
		Score:         score,
		Total:         total,
		Percent:       percent,
		PendingReview: pendingReview,
		SubmittedAt:   submittedAt,
	})
}

func NewReviewPendingEvent(attemptID uint, userID, subject string, essayCount int, submittedAt time.Time) *ExamEvent {
	return newEvent(EventReviewPending, ReviewPendingEvent{
		AttemptID:   attemptID,
		UserID:      userID,
		Subject:     subject,
		EssayCount:  essayCount,
		SubmittedAt: submittedAt,
	})
}

func NewQuestionsImportedEvent(importedBy, fileName string, imported, skipped int) *ExamEvent {
	return newEvent(EventQuestionsImported, QuestionsImportedEvent{
		ImportedBy: importedBy,
		FileName:   fileName,
		Imported:   imported,
		Skipped:    skipped,
	})
}

func newEvent(eventType EventType, data interface{}) *ExamEvent {
	return &ExamEvent{
		ID:        watermill.NewUUID(),
		Type:      eventType,
		Timestamp: time.Now(),
		Source:    "exam-service",
		Version:   "1.0",
		Data:      data,
	}
}
