package postgres

import (
	"context"

	"github.com/edupulse/exam-service/internal/models"
	"github.com/edupulse/exam-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserPostgreSQL struct {
	db *gorm.DB
}

func NewUserPostgreSQL(db *gorm.DB) repositories.UserRepository {
	return &UserPostgreSQL{db: db}
}

func (u *UserPostgreSQL) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := u.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Upsert mirrors the identity provider's view of the user into the local
// table so attempts can join on profile fields without a remote call.
func (u *UserPostgreSQL) Upsert(ctx context.Context, user *models.User) error {
	return u.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"full_name", "email", "role", "class", "board", "is_active", "updated_at",
		}),
	}).Create(user).Error
}
