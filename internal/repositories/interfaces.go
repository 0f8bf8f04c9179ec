package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/edupulse/exam-service/internal/models"
	"gorm.io/gorm"
)

// ErrNotUpdated is returned by conditional updates whose guard did not match
// any row (the attempt was already submitted by a concurrent request).
var ErrNotUpdated = errors.New("conditional update matched no rows")

// IsNotFoundError reports whether err is the store's record-not-found error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// ===== SHARED FILTER STRUCTS =====

type QuestionFilters struct {
	Type       *models.QuestionType    `json:"type"`
	Subject    *string                 `json:"subject"`
	Topic      *string                 `json:"topic"`
	Board      *string                 `json:"board"`
	Class      *string                 `json:"class"`
	Stage      *int                    `json:"stage"`
	Difficulty *models.DifficultyLevel `json:"difficulty"`
	Level      *models.KnowledgeLevel  `json:"level"`
	CreatedBy  *string                 `json:"created_by"`
	Limit      int                     `json:"limit"`
	Offset     int                     `json:"offset"`
	SortBy     string                  `json:"sort_by"`    // "created_at", "subject", "topic"
	SortOrder  string                  `json:"sort_order"` // "asc", "desc"
}

type SampleFilters struct {
	Subject string               `json:"subject"`
	Topic   string               `json:"topic"`
	Type    *models.QuestionType `json:"type"`
	Stage   *int                 `json:"stage"`
	Board   *string              `json:"board"`
	Class   *string              `json:"class"`
}

type AttemptFilters struct {
	UserID    *string    `json:"user_id"`
	Subject   *string    `json:"subject"`
	Topic     *string    `json:"topic"`
	Submitted *bool      `json:"submitted"`
	DateFrom  *time.Time `json:"date_from"`
	DateTo    *time.Time `json:"date_to"`
	Limit     int        `json:"limit"`
	Offset    int        `json:"offset"`
	SortBy    string     `json:"sort_by"`
	SortOrder string     `json:"sort_order"`
}

// ===== SHARED STATISTICS STRUCTS =====

// QuestionCounts is the typed replacement for free-form count aggregation:
// explicit counting functions over the question store, parameterized by filter.
type QuestionCounts struct {
	Total        int64                          `json:"total"`
	ByType       map[models.QuestionType]int64  `json:"by_type"`
	ByDifficulty map[models.DifficultyLevel]int64 `json:"by_difficulty"`
}

// ===== REPOSITORY INTERFACES =====

type QuestionRepository interface {
	Create(ctx context.Context, question *models.Question) error
	GetByID(ctx context.Context, id uint) (*models.Question, error)
	GetByIDs(ctx context.Context, ids []uint) ([]*models.Question, error)
	Replace(ctx context.Context, question *models.Question) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filters QuestionFilters) ([]*models.Question, int64, error)

	// Sample draws up to count random, duplicate-free questions matching the
	// filters. It returns what exists; fewer matches than count is not an error.
	Sample(ctx context.Context, filters SampleFilters, count int) ([]*models.Question, error)

	CountByFilters(ctx context.Context, filters QuestionFilters) (int64, error)
	Counts(ctx context.Context, filters QuestionFilters) (*QuestionCounts, error)
}

type AttemptRepository interface {
	Create(ctx context.Context, attempt *models.ExamAttempt) error
	GetByID(ctx context.Context, id uint) (*models.ExamAttempt, error)
	List(ctx context.Context, filters AttemptFilters) ([]*models.ExamAttempt, int64, error)

	// SubmitScored persists the graded answers and totals with a single
	// conditional update guarded on submitted_at being unset. It returns
	// ErrNotUpdated when the guard fails, which callers surface as an
	// already-submitted conflict.
	SubmitScored(ctx context.Context, id uint, update SubmitUpdate) error
}

// SubmitUpdate carries the fields written exactly once at submission.
type SubmitUpdate struct {
	Answers       []byte
	Score         int
	Percent       int
	PendingReview bool
	SubmittedAt   time.Time
}

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	Upsert(ctx context.Context, user *models.User) error
}

// Repository aggregates the per-model repositories over one shared store.
type Repository interface {
	Question() QuestionRepository
	Attempt() AttemptRepository
	User() UserRepository
	Ping(ctx context.Context) error
}
