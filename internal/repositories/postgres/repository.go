package postgres

import (
	"context"

	"github.com/edupulse/exam-service/internal/repositories"
	"gorm.io/gorm"
)

type repository struct {
	db       *gorm.DB
	question repositories.QuestionRepository
	attempt  repositories.AttemptRepository
	user     repositories.UserRepository
}

// NewRepository wires the per-model repositories over one gorm connection.
func NewRepository(db *gorm.DB) repositories.Repository {
	return &repository{
		db:       db,
		question: NewQuestionPostgreSQL(db),
		attempt:  NewAttemptPostgreSQL(db),
		user:     NewUserPostgreSQL(db),
	}
}

func (r *repository) Question() repositories.QuestionRepository { return r.question }
func (r *repository) Attempt() repositories.AttemptRepository   { return r.attempt }
func (r *repository) User() repositories.UserRepository         { return r.user }

func (r *repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// sortableColumns lists the columns callers may sort by. Anything else
// falls back to created_at so caller input never reaches the ORDER BY raw.
var sortableColumns = map[string]bool{
	"created_at": true,
	"subject":    true,
	"topic":      true,
}

// sortClause builds the ORDER BY expression from caller-supplied sort
// parameters, constrained to the whitelisted columns.
func sortClause(sortBy, sortOrder string) string {
	if !sortableColumns[sortBy] {
		sortBy = "created_at"
	}
	if sortOrder != "asc" {
		sortOrder = "desc"
	}
	return sortBy + " " + sortOrder
}

// applyPaginationAndSort applies shared pagination and sorting defaults.
func applyPaginationAndSort(query *gorm.DB, sortBy, sortOrder string, limit, offset int) *gorm.DB {
	query = query.Order(sortClause(sortBy, sortOrder))

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	return query
}
