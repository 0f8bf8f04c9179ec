package services

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"time"

	"github.com/edupulse/exam-service/internal/cache"
	"github.com/edupulse/exam-service/internal/models"
	"github.com/edupulse/exam-service/internal/repositories"
	"github.com/stretchr/testify/mock"
)

// MockQuestionRepository is a mock implementation of repositories.QuestionRepository
type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) Create(ctx context.Context, question *models.Question) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

func (m *MockQuestionRepository) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Question), args.Error(1)
}

func (m *MockQuestionRepository) GetByIDs(ctx context.Context, ids []uint) ([]*models.Question, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Question), args.Error(1)
}

func (m *MockQuestionRepository) Replace(ctx context.Context, question *models.Question) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

func (m *MockQuestionRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockQuestionRepository) List(ctx context.Context, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*models.Question), args.Get(1).(int64), args.Error(2)
}

func (m *MockQuestionRepository) Sample(ctx context.Context, filters repositories.SampleFilters, count int) ([]*models.Question, error) {
	args := m.Called(ctx, filters, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Question), args.Error(1)
}

func (m *MockQuestionRepository) CountByFilters(ctx context.Context, filters repositories.QuestionFilters) (int64, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockQuestionRepository) Counts(ctx context.Context, filters repositories.QuestionFilters) (*repositories.QuestionCounts, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repositories.QuestionCounts), args.Error(1)
}

// MockAttemptRepository is a mock implementation of repositories.AttemptRepository
type MockAttemptRepository struct {
	mock.Mock
}

func (m *MockAttemptRepository) Create(ctx context.Context, attempt *models.ExamAttempt) error {
	args := m.Called(ctx, attempt)
	return args.Error(0)
}

func (m *MockAttemptRepository) GetByID(ctx context.Context, id uint) (*models.ExamAttempt, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ExamAttempt), args.Error(1)
}

func (m *MockAttemptRepository) List(ctx context.Context, filters repositories.AttemptFilters) ([]*models.ExamAttempt, int64, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*models.ExamAttempt), args.Get(1).(int64), args.Error(2)
}

func (m *MockAttemptRepository) SubmitScored(ctx context.Context, id uint, update repositories.SubmitUpdate) error {
	args := m.Called(ctx, id, update)
	return args.Error(0)
}

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Upsert(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// MockRepository aggregates the mocked per-model repositories.
type MockRepository struct {
	QuestionRepo *MockQuestionRepository
	AttemptRepo  *MockAttemptRepository
	UserRepo     *MockUserRepository
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		QuestionRepo: &MockQuestionRepository{},
		AttemptRepo:  &MockAttemptRepository{},
		UserRepo:     &MockUserRepository{},
	}
}

func (m *MockRepository) Question() repositories.QuestionRepository {
	return m.QuestionRepo
}

func (m *MockRepository) Attempt() repositories.AttemptRepository {
	return m.AttemptRepo
}

func (m *MockRepository) User() repositories.UserRepository {
	return m.UserRepo
}

func (m *MockRepository) Ping(ctx context.Context) error {
	return nil
}

// fakeCache is an in-memory stand-in for the Redis-backed cache.
type fakeCache struct {
	store           map[string][]byte
	deletedPatterns []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: make(map[string][]byte)}
}

func (c *fakeCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.store[key] = data
	return nil
}

func (c *fakeCache) Get(ctx context.Context, key string, dest interface{}) error {
	data, ok := c.store[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (c *fakeCache) Delete(ctx context.Context, key string) error {
	delete(c.store, key)
	return nil
}

func (c *fakeCache) DeletePattern(ctx context.Context, pattern string) error {
	c.deletedPatterns = append(c.deletedPatterns, pattern)
	c.store = make(map[string][]byte)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
