package scoring

import (
	"encoding/json"
	"testing"

	"github.com/edupulse/exam-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildQuestion(t *testing.T, id uint, qType models.QuestionType, content interface{}) *models.Question {
	t.Helper()
	raw, err := json.Marshal(content)
	require.NoError(t, err)
	return &models.Question{ID: id, Type: qType, Content: raw}
}

func capitalQuestion(t *testing.T) *models.Question {
	return buildQuestion(t, 1, models.MCQSingle, models.MCQSingleContent{
		Text: "What is the capital of France?",
		Options: []models.ChoiceOption{
			{Key: "A", Text: "Paris"},
			{Key: "B", Text: "London"},
			{Key: "C", Text: "Rome"},
			{Key: "D", Text: "Berlin"},
		},
		Correct: "A",
	})
}

func TestGrade_MCQSingle(t *testing.T) {
	q := capitalQuestion(t)

	tests := []struct {
		name     string
		selected []string
		want     int
	}{
		{"correct key", []string{"A"}, 1},
		{"lowercase key still counts", []string{"a"}, 1},
		{"wrong key", []string{"B"}, 0},
		{"two keys selected", []string{"A", "B"}, 0},
		{"no selection", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Grade(q, models.AnswerSubmission{QuestionID: 1, MCQ: tt.selected})
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Points)
			if tt.want == 1 {
				assert.Equal(t, models.VerdictCorrect, result.Verdict)
			} else {
				assert.Equal(t, models.VerdictWrong, result.Verdict)
			}
		})
	}
}

func TestGrade_MCQMulti(t *testing.T) {
	q := buildQuestion(t, 2, models.MCQMulti, models.MCQMultiContent{
		Text: "Which of these are prime numbers?",
		Options: []models.ChoiceOption{
			{Key: "A", Text: "2"},
			{Key: "B", Text: "3"},
			{Key: "C", Text: "4"},
			{Key: "D", Text: "6"},
		},
		Correct: []string{"A", "B"},
	})

	tests := []struct {
		name     string
		selected []string
		want     int
	}{
		{"exact set", []string{"A", "B"}, 1},
		{"exact set in other order", []string{"B", "A"}, 1},
		{"strict subset", []string{"A"}, 0},
		{"strict superset", []string{"A", "B", "C"}, 0},
		{"duplicate key padding", []string{"A", "A"}, 0},
		{"disjoint set", []string{"C", "D"}, 0},
		{"empty", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Grade(q, models.AnswerSubmission{QuestionID: 2, MCQ: tt.selected})
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Points)
		})
	}
}

func TestGrade_TrueFalse(t *testing.T) {
	q := buildQuestion(t, 3, models.TrueFalse, models.TrueFalseContent{
		Statement: "The Earth orbits the Sun.",
		Correct:   "true",
	})

	tests := []struct {
		name   string
		answer string
		want   int
	}{
		{"exact match", "true", 1},
		{"uppercase matches", "TRUE", 1},
		{"mixed case matches", "True", 1},
		{"wrong answer", "false", 0},
		{"empty answer is wrong, not an error", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Grade(q, models.AnswerSubmission{QuestionID: 3, TrueFalse: tt.answer})
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Points)
		})
	}
}

func TestGrade_ChoiceMatrix(t *testing.T) {
	q := buildQuestion(t, 4, models.ChoiceMatrix, models.ChoiceMatrixContent{
		Prompt:       "Mark each statement true or false",
		Rows:         []string{"Water boils at 100C", "Ice is warmer than steam"},
		Cols:         []string{"True", "False"},
		CorrectCells: []string{"0-0", "1-1"},
	})

	tests := []struct {
		name      string
		submitted map[string]string
		want      int
	}{
		{"all rows right", map[string]string{"0": "True", "1": "False"}, 1},
		{"one row wrong", map[string]string{"0": "True", "1": "True"}, 0},
		{"missing row", map[string]string{"0": "True"}, 0},
		{"extra row", map[string]string{"0": "True", "1": "False", "2": "True"}, 0},
		{"empty", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Grade(q, models.AnswerSubmission{QuestionID: 4, Matrix: tt.submitted})
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Points)
		})
	}
}

func TestGrade_ClozeDrag(t *testing.T) {
	q := buildQuestion(t, 5, models.ClozeDrag, models.ClozeDragContent{
		Text:    "The [[blank1]] rises in the [[blank2]].",
		Tokens:  []string{"sun", "east", "west"},
		Correct: map[string]string{"blank1": "sun", "blank2": "east"},
	})

	tests := []struct {
		name      string
		submitted map[string]string
		want      int
	}{
		{"all blanks right", map[string]string{"blank1": "sun", "blank2": "east"}, 1},
		{"one blank wrong", map[string]string{"blank1": "sun", "blank2": "west"}, 0},
		{"blank left empty", map[string]string{"blank1": "sun"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Grade(q, models.AnswerSubmission{QuestionID: 5, Cloze: tt.submitted})
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Points)
		})
	}
}

func TestGrade_ClozeSelect(t *testing.T) {
	q := buildQuestion(t, 6, models.ClozeSelect, models.ClozeSelectContent{
		Text: "Plants produce [[blank1]] during photosynthesis.",
		Blanks: map[string]models.ClozeSelectBlank{
			"blank1": {Options: []string{"oxygen", "nitrogen"}, Correct: "oxygen"},
		},
	})

	result, err := Grade(q, models.AnswerSubmission{QuestionID: 6, ClozeSelect: map[string]string{"blank1": "oxygen"}})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Points)

	result, err = Grade(q, models.AnswerSubmission{QuestionID: 6, ClozeSelect: map[string]string{"blank1": "nitrogen"}})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Points)
}

func TestGrade_ClozeText(t *testing.T) {
	q := buildQuestion(t, 7, models.ClozeText, models.ClozeTextContent{
		Text:    "The chemical symbol for gold is [[blank1]].",
		Correct: map[string]string{"blank1": "Au"},
	})

	tests := []struct {
		name      string
		submitted map[string]string
		want      int
	}{
		{"exact", map[string]string{"blank1": "Au"}, 1},
		{"case insensitive", map[string]string{"blank1": "au"}, 1},
		{"surrounding whitespace trimmed", map[string]string{"blank1": "  Au "}, 1},
		{"wrong text", map[string]string{"blank1": "Ag"}, 0},
		{"missing blank", map[string]string{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Grade(q, models.AnswerSubmission{QuestionID: 7, Cloze: tt.submitted})
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Points)
		})
	}
}

func TestGrade_MatchList(t *testing.T) {
	q := buildQuestion(t, 8, models.MatchList, models.MatchListContent{
		Prompt: "Match the country to its capital",
		Left:   []string{"France", "Italy"},
		Right:  []string{"Rome", "Paris"},
		Pairs:  []models.MatchPair{{Left: 0, Right: 1}, {Left: 1, Right: 0}},
	})

	tests := []struct {
		name      string
		submitted map[string]int
		want      int
	}{
		{"all pairs right", map[string]int{"0": 1, "1": 0}, 1},
		{"pairs swapped", map[string]int{"0": 0, "1": 1}, 0},
		{"pair missing", map[string]int{"0": 1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Grade(q, models.AnswerSubmission{QuestionID: 8, Match: tt.submitted})
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Points)
		})
	}
}

func TestGrade_Essay(t *testing.T) {
	for _, qType := range []models.QuestionType{models.EssayRich, models.EssayPlain} {
		t.Run(string(qType), func(t *testing.T) {
			q := buildQuestion(t, 9, qType, models.EssayContent{Prompt: "Explain photosynthesis."})

			result, err := Grade(q, models.AnswerSubmission{QuestionID: 9, Essay: "Plants convert light into energy."})
			require.NoError(t, err)
			assert.Equal(t, 0, result.Points)
			assert.Equal(t, models.VerdictPendingReview, result.Verdict)
		})
	}
}

func TestGrade_UnknownTypeIsError(t *testing.T) {
	q := &models.Question{ID: 10, Type: "hotspot", Content: []byte(`{}`)}

	_, err := Grade(q, models.AnswerSubmission{QuestionID: 10})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown question type")
}

func TestAggregate(t *testing.T) {
	graded := []models.GradedAnswer{
		{QuestionID: 1, Points: 1, Verdict: models.VerdictCorrect},
		{QuestionID: 2, Points: 0, Verdict: models.VerdictWrong},
		{QuestionID: 3, Points: 1, Verdict: models.VerdictCorrect},
	}

	totals := Aggregate(graded, 3)
	assert.Equal(t, 2, totals.Score)
	assert.Equal(t, 3, totals.Total)
	assert.Equal(t, 67, totals.Percent)
	assert.False(t, totals.PendingReview)
}

func TestAggregate_PendingReviewEssayStaysInTotal(t *testing.T) {
	graded := []models.GradedAnswer{
		{QuestionID: 1, Points: 1, Verdict: models.VerdictCorrect},
		{QuestionID: 2, Points: 0, Verdict: models.VerdictPendingReview},
	}

	totals := Aggregate(graded, 2)
	assert.Equal(t, 1, totals.Score)
	assert.Equal(t, 2, totals.Total)
	assert.Equal(t, 50, totals.Percent)
	assert.True(t, totals.PendingReview)
}

func TestAggregate_EmptyAttempt(t *testing.T) {
	totals := Aggregate(nil, 0)
	assert.Equal(t, 0, totals.Score)
	assert.Equal(t, 0, totals.Percent)
}

func TestRedact_NeverExposesAnswerKey(t *testing.T) {
	q := capitalQuestion(t)

	view, err := Redact(q)
	require.NoError(t, err)

	assert.Equal(t, q.ID, view.ID)
	assert.Equal(t, "What is the capital of France?", view.Body)
	assert.Len(t, view.Options, 4)

	raw, err := json.Marshal(view)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), `"correct"`)
}

func TestBuildReview(t *testing.T) {
	q := capitalQuestion(t)

	graded := models.GradedAnswer{
		QuestionID: q.ID,
		Type:       q.Type,
		Submission: models.AnswerSubmission{QuestionID: q.ID, MCQ: []string{"B"}},
		Points:     0,
		Verdict:    models.VerdictWrong,
	}

	entry, err := BuildReview(q, graded)
	require.NoError(t, err)

	assert.Equal(t, q.ID, entry.QuestionID)
	assert.False(t, entry.IsCorrect)
	assert.Equal(t, models.VerdictWrong, entry.Verdict)
	assert.Equal(t, []string{"B"}, entry.Submitted)
	assert.Equal(t, []string{"A: Paris"}, entry.Correct)
}
