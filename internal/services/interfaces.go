package services

import (
	"context"
	"io"
	"time"

	"github.com/edupulse/exam-service/internal/models"
	"github.com/edupulse/exam-service/internal/repositories"
	"github.com/edupulse/exam-service/internal/scoring"
)

// Actor identifies the authenticated caller. It is populated by the auth
// middleware from the identity provider's claims and passed down to every
// service operation that enforces permissions.
type Actor struct {
	ID    string          `json:"id"`
	Role  models.UserRole `json:"role"`
	Class string          `json:"class"`
	Board string          `json:"board"`
}

// IsStaff reports whether the actor may manage questions and read attempts
// of other users.
func (a Actor) IsStaff() bool {
	return a.Role == models.RoleTeacher || a.Role == models.RoleAdmin
}

// ===== REQUEST / RESPONSE TYPES =====

type StartExamRequest struct {
	Subject string              `json:"subject" validate:"required,min=1,max=100"`
	Topic   string              `json:"topic" validate:"required,min=1,max=100"`
	Type    models.QuestionType `json:"type" validate:"required,question_type"`
	Stage   *int                `json:"stage" validate:"omitempty,exam_stage"`
	Limit   int                 `json:"limit" validate:"required,sample_limit"`
}

type SubmitExamRequest struct {
	Answers []models.AnswerSubmission `json:"answers" validate:"required,min=1,dive"`
}

// StartExamResponse carries the frozen attempt and the redacted question set
// in the order the student will see it.
type StartExamResponse struct {
	AttemptID uint                       `json:"attempt_id"`
	Subject   string                     `json:"subject"`
	Topic     string                     `json:"topic"`
	Total     int                        `json:"total"`
	Questions []scoring.RedactedQuestion `json:"questions"`
	StartedAt time.Time                  `json:"started_at"`
}

type SubmitExamResponse struct {
	AttemptID     uint      `json:"attempt_id"`
	Score         int       `json:"score"`
	Total         int       `json:"total"`
	Percent       int       `json:"percent"`
	PendingReview bool      `json:"pending_review"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

// AttemptResponse is the detail view of an attempt. Review entries are only
// present once the attempt is submitted; before that the answer key stays
// hidden.
type AttemptResponse struct {
	Attempt *models.ExamAttempt   `json:"attempt"`
	Review  []scoring.ReviewEntry `json:"review,omitempty"`
}

type AttemptListResponse struct {
	Attempts []*models.ExamAttempt `json:"attempts"`
	Total    int64                 `json:"total"`
}

type QuestionListResponse struct {
	Questions []*models.Question `json:"questions"`
	Total     int64              `json:"total"`
}

// ImportRowError is one rejected row of an import file.
type ImportRowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

type ImportResult struct {
	TotalRows    int              `json:"total_rows"`
	SuccessCount int              `json:"success_count"`
	ErrorCount   int              `json:"error_count"`
	Errors       []ImportRowError `json:"errors,omitempty"`
}

// ===== SERVICE INTERFACES =====

type QuestionService interface {
	Create(ctx context.Context, question *models.Question, actor Actor) (*models.Question, error)
	GetByID(ctx context.Context, id uint, actor Actor) (*models.Question, error)
	Replace(ctx context.Context, id uint, question *models.Question, actor Actor) (*models.Question, error)
	Delete(ctx context.Context, id uint, actor Actor) error
	List(ctx context.Context, filters repositories.QuestionFilters, actor Actor) (*QuestionListResponse, error)
	Counts(ctx context.Context, filters repositories.QuestionFilters, actor Actor) (*repositories.QuestionCounts, error)
}

type ExamService interface {
	Start(ctx context.Context, req *StartExamRequest, actor Actor) (*StartExamResponse, error)
	Submit(ctx context.Context, attemptID uint, req *SubmitExamRequest, actor Actor) (*SubmitExamResponse, error)
	GetAttempt(ctx context.Context, attemptID uint, actor Actor) (*AttemptResponse, error)
	ListAttempts(ctx context.Context, filters repositories.AttemptFilters, actor Actor) (*AttemptListResponse, error)

	// Staff views over every user's attempts.
	AdminListAttempts(ctx context.Context, filters repositories.AttemptFilters, actor Actor) (*AttemptListResponse, error)
	AdminGetAttempt(ctx context.Context, attemptID uint, actor Actor) (*AttemptResponse, error)
}

type ImportExportService interface {
	ImportQuestions(ctx context.Context, reader io.Reader, filename string, actor Actor) (*ImportResult, error)
	ExportQuestions(ctx context.Context, filters repositories.QuestionFilters, format string, actor Actor) ([]byte, error)
}

type UserService interface {
	Sync(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}
