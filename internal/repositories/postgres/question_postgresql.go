package postgres

import (
	"context"

	"github.com/edupulse/exam-service/internal/models"
	"github.com/edupulse/exam-service/internal/repositories"
	"gorm.io/gorm"
)

type QuestionPostgreSQL struct {
	db *gorm.DB
}

func NewQuestionPostgreSQL(db *gorm.DB) repositories.QuestionRepository {
	return &QuestionPostgreSQL{db: db}
}

func (q *QuestionPostgreSQL) Create(ctx context.Context, question *models.Question) error {
	return q.db.WithContext(ctx).Create(question).Error
}

func (q *QuestionPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	var question models.Question
	if err := q.db.WithContext(ctx).First(&question, id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (q *QuestionPostgreSQL) GetByIDs(ctx context.Context, ids []uint) ([]*models.Question, error) {
	var questions []*models.Question
	if len(ids) == 0 {
		return questions, nil
	}
	if err := q.db.WithContext(ctx).Where("id IN ?", ids).Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

// Replace overwrites the whole document. Question edits are full replacements,
// never incremental patches.
func (q *QuestionPostgreSQL) Replace(ctx context.Context, question *models.Question) error {
	res := q.db.WithContext(ctx).Model(&models.Question{}).
		Where("id = ?", question.ID).
		Select("type", "subject", "topic", "board", "class", "stage", "difficulty", "level", "tags", "content").
		Updates(question)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (q *QuestionPostgreSQL) Delete(ctx context.Context, id uint) error {
	res := q.db.WithContext(ctx).Delete(&models.Question{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (q *QuestionPostgreSQL) List(ctx context.Context, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	var questions []*models.Question
	var total int64

	query := q.db.WithContext(ctx).Model(&models.Question{})
	query = applyQuestionFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)
	if err := query.Find(&questions).Error; err != nil {
		return nil, 0, err
	}

	return questions, total, nil
}

// Sample draws an unordered, duplicate-free random subset. Randomization is
// pushed down to the store so concurrent samplers stay independent.
func (q *QuestionPostgreSQL) Sample(ctx context.Context, filters repositories.SampleFilters, count int) ([]*models.Question, error) {
	var questions []*models.Question

	query := q.db.WithContext(ctx).Model(&models.Question{}).
		Where("subject = ? AND topic = ?", filters.Subject, filters.Topic)
	if filters.Type != nil {
		query = query.Where("type = ?", *filters.Type)
	}
	if filters.Stage != nil {
		query = query.Where("stage = ?", *filters.Stage)
	}
	if filters.Board != nil {
		query = query.Where("board = ?", *filters.Board)
	}
	if filters.Class != nil {
		query = query.Where("class = ?", *filters.Class)
	}

	if err := query.Order("RANDOM()").Limit(count).Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func (q *QuestionPostgreSQL) CountByFilters(ctx context.Context, filters repositories.QuestionFilters) (int64, error) {
	var total int64
	query := q.db.WithContext(ctx).Model(&models.Question{})
	query = applyQuestionFilters(query, filters)
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (q *QuestionPostgreSQL) Counts(ctx context.Context, filters repositories.QuestionFilters) (*repositories.QuestionCounts, error) {
	counts := &repositories.QuestionCounts{
		ByType:       make(map[models.QuestionType]int64),
		ByDifficulty: make(map[models.DifficultyLevel]int64),
	}

	total, err := q.CountByFilters(ctx, filters)
	if err != nil {
		return nil, err
	}
	counts.Total = total

	for _, qt := range models.AllQuestionTypes {
		typed := filters
		typed.Type = &qt
		n, err := q.CountByFilters(ctx, typed)
		if err != nil {
			return nil, err
		}
		if n > 0 {
			counts.ByType[qt] = n
		}
	}

	for _, d := range []models.DifficultyLevel{models.DifficultyEasy, models.DifficultyModerate, models.DifficultyHard} {
		leveled := filters
		leveled.Difficulty = &d
		n, err := q.CountByFilters(ctx, leveled)
		if err != nil {
			return nil, err
		}
		if n > 0 {
			counts.ByDifficulty[d] = n
		}
	}

	return counts, nil
}

func applyQuestionFilters(query *gorm.DB, filters repositories.QuestionFilters) *gorm.DB {
	if filters.Type != nil {
		query = query.Where("type = ?", *filters.Type)
	}
	if filters.Subject != nil {
		query = query.Where("subject = ?", *filters.Subject)
	}
	if filters.Topic != nil {
		query = query.Where("topic = ?", *filters.Topic)
	}
	if filters.Board != nil {
		query = query.Where("board = ?", *filters.Board)
	}
	if filters.Class != nil {
		query = query.Where("class = ?", *filters.Class)
	}
	if filters.Stage != nil {
		query = query.Where("stage = ?", *filters.Stage)
	}
	if filters.Difficulty != nil {
		query = query.Where("difficulty = ?", *filters.Difficulty)
	}
	if filters.Level != nil {
		query = query.Where("level = ?", *filters.Level)
	}
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}
	return query
}
