package services

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/edupulse/exam-service/internal/events"
	"github.com/edupulse/exam-service/internal/models"
	"github.com/edupulse/exam-service/internal/repositories"
	"github.com/edupulse/exam-service/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newImportExportServiceForTest(repo *MockRepository, publisher *events.MockEventPublisher) ImportExportService {
	// A typed nil would defeat the service's interface nil check
	var p events.EventPublisher
	if publisher != nil {
		p = publisher
	}
	return NewImportExportService(repo, testLogger(), validator.New(), newFakeCache(), p)
}

const importCSV = `type,subject,topic,stage,difficulty,level,tags,content
true-false,geography,rivers,1,easy,basic,"africa,rivers","{""statement"":""The Nile flows north"",""correct"":""TRUE""}"
true-false,geography,rivers,not-a-number,easy,basic,,"{""statement"":""x"",""correct"":""true""}"
true-false,geography,rivers,1,easy,basic,,"{""statement"":""x"",""correct"":""maybe""}"
`

func TestImportQuestions_CSV(t *testing.T) {
	repo := NewMockRepository()
	publisher := events.NewMockEventPublisher(testLogger())
	service := newImportExportServiceForTest(repo, publisher)

	var stored []*models.Question
	repo.QuestionRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Question")).
		Run(func(args mock.Arguments) {
			stored = append(stored, args.Get(1).(*models.Question))
		}).Return(nil)

	result, err := service.ImportQuestions(context.Background(), strings.NewReader(importCSV), "questions.csv", teacher)

	require.NoError(t, err)
	assert.Equal(t, 3, result.TotalRows)
	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 2, result.ErrorCount)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, 3, result.Errors[0].Row)
	assert.Equal(t, "stage", result.Errors[0].Column)
	assert.Equal(t, 4, result.Errors[1].Row)
	assert.Equal(t, "content", result.Errors[1].Column)

	require.Len(t, stored, 1)
	assert.Equal(t, models.TrueFalse, stored[0].Type)
	assert.Equal(t, teacher.ID, stored[0].CreatedBy)
	assert.Equal(t, []string{"africa", "rivers"}, stored[0].TagList())

	var content models.TrueFalseContent
	require.NoError(t, json.Unmarshal(stored[0].Content, &content))
	assert.Equal(t, "true", content.Correct)

	published := publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventQuestionsImported, published[0].Type)
}

func TestImportQuestions_HeaderOnlyFile(t *testing.T) {
	repo := NewMockRepository()
	service := newImportExportServiceForTest(repo, nil)

	_, err := service.ImportQuestions(context.Background(),
		strings.NewReader("type,subject,topic,stage,difficulty,level,content\n"), "questions.csv", teacher)

	assert.ErrorIs(t, err, ErrImportEmptyFile)
}

func TestImportQuestions_MissingRequiredColumn(t *testing.T) {
	repo := NewMockRepository()
	service := newImportExportServiceForTest(repo, nil)

	_, err := service.ImportQuestions(context.Background(),
		strings.NewReader("type,subject,topic\nx,y,z\n"), "questions.csv", teacher)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "missing required column")
}

func TestImportQuestions_UnsupportedExtension(t *testing.T) {
	repo := NewMockRepository()
	service := newImportExportServiceForTest(repo, nil)

	_, err := service.ImportQuestions(context.Background(), strings.NewReader("x"), "questions.pdf", teacher)

	assert.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestImportQuestions_StudentDenied(t *testing.T) {
	repo := NewMockRepository()
	service := newImportExportServiceForTest(repo, nil)

	_, err := service.ImportQuestions(context.Background(), strings.NewReader(importCSV), "questions.csv", student)

	var permErr *PermissionError
	assert.ErrorAs(t, err, &permErr)
}

func TestExportQuestions_CSVRoundTrip(t *testing.T) {
	repo := NewMockRepository()
	service := newImportExportServiceForTest(repo, nil)

	question := validQuestion(t)
	question.ID = 7
	question.Board = "CBSE"
	question.Class = "10"
	tags, err := json.Marshal([]string{"africa", "rivers"})
	require.NoError(t, err)
	question.Tags = tags

	repo.QuestionRepo.On("List", mock.Anything, mock.MatchedBy(func(filters repositories.QuestionFilters) bool {
		return filters.Limit == 0 && filters.Offset == 0
	})).Return([]*models.Question{question}, int64(1), nil)

	data, err := service.ExportQuestions(context.Background(), repositories.QuestionFilters{Limit: 20}, "csv", teacher)
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, importColumns, rows[0])
	assert.Equal(t, "true-false", rows[1][0])
	assert.Equal(t, "geography", rows[1][1])
	assert.Equal(t, "CBSE", rows[1][3])
	assert.Equal(t, "1", rows[1][5])
	assert.Equal(t, "africa,rivers", rows[1][8])
	assert.JSONEq(t, string(question.Content), rows[1][9])
}

func TestExportQuestions_UnsupportedFormat(t *testing.T) {
	repo := NewMockRepository()
	service := newImportExportServiceForTest(repo, nil)

	repo.QuestionRepo.On("List", mock.Anything, mock.Anything).Return([]*models.Question{}, int64(0), nil)

	_, err := service.ExportQuestions(context.Background(), repositories.QuestionFilters{}, "pdf", teacher)

	assert.Error(t, err)
	assert.True(t, IsValidation(err))
}
