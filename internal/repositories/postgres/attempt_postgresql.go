package postgres

import (
	"context"

	"github.com/edupulse/exam-service/internal/models"
	"github.com/edupulse/exam-service/internal/repositories"
	"gorm.io/gorm"
)

type AttemptPostgreSQL struct {
	db *gorm.DB
}

func NewAttemptPostgreSQL(db *gorm.DB) repositories.AttemptRepository {
	return &AttemptPostgreSQL{db: db}
}

func (a *AttemptPostgreSQL) Create(ctx context.Context, attempt *models.ExamAttempt) error {
	return a.db.WithContext(ctx).Create(attempt).Error
}

func (a *AttemptPostgreSQL) GetByID(ctx context.Context, id uint) (*models.ExamAttempt, error) {
	var attempt models.ExamAttempt
	if err := a.db.WithContext(ctx).First(&attempt, id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (a *AttemptPostgreSQL) List(ctx context.Context, filters repositories.AttemptFilters) ([]*models.ExamAttempt, int64, error) {
	var attempts []*models.ExamAttempt
	var total int64

	query := a.db.WithContext(ctx).Model(&models.ExamAttempt{})
	query = applyAttemptFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)
	if err := query.Find(&attempts).Error; err != nil {
		return nil, 0, err
	}

	return attempts, total, nil
}

// SubmitScored is the single write that makes an attempt terminal. The guard
// on submitted_at makes concurrent submissions race on one row update: the
// loser matches no rows and gets ErrNotUpdated, never a second write.
func (a *AttemptPostgreSQL) SubmitScored(ctx context.Context, id uint, update repositories.SubmitUpdate) error {
	res := a.db.WithContext(ctx).Model(&models.ExamAttempt{}).
		Where("id = ? AND submitted_at IS NULL", id).
		Updates(map[string]interface{}{
			"answers":        update.Answers,
			"score":          update.Score,
			"percent":        update.Percent,
			"pending_review": update.PendingReview,
			"submitted_at":   update.SubmittedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repositories.ErrNotUpdated
	}
	return nil
}

func applyAttemptFilters(query *gorm.DB, filters repositories.AttemptFilters) *gorm.DB {
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.Subject != nil {
		query = query.Where("subject = ?", *filters.Subject)
	}
	if filters.Topic != nil {
		query = query.Where("topic = ?", *filters.Topic)
	}
	if filters.Submitted != nil {
		if *filters.Submitted {
			query = query.Where("submitted_at IS NOT NULL")
		} else {
			query = query.Where("submitted_at IS NULL")
		}
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}
	return query
}
