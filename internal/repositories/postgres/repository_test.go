package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortClause_AllowedColumns(t *testing.T) {
	assert.Equal(t, "created_at desc", sortClause("created_at", "desc"))
	assert.Equal(t, "subject asc", sortClause("subject", "asc"))
	assert.Equal(t, "topic desc", sortClause("topic", "desc"))
}

func TestSortClause_DefaultsWhenEmpty(t *testing.T) {
	assert.Equal(t, "created_at desc", sortClause("", ""))
}

func TestSortClause_RejectsUnknownColumn(t *testing.T) {
	assert.Equal(t, "created_at desc", sortClause("difficulty", "desc"))
	assert.Equal(t, "created_at asc", sortClause("id; DROP TABLE exam_attempts --", "asc"))
}

func TestSortClause_NormalizesOrder(t *testing.T) {
	assert.Equal(t, "subject desc", sortClause("subject", "ASC; DELETE FROM questions"))
	assert.Equal(t, "topic desc", sortClause("topic", ""))
}
