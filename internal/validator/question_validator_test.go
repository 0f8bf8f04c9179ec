package validator

import (
	"encoding/json"
	"testing"

	"github.com/edupulse/exam-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newQuestion(t *testing.T, qType models.QuestionType, content interface{}) *models.Question {
	t.Helper()
	raw, err := json.Marshal(content)
	require.NoError(t, err)
	return &models.Question{Type: qType, Content: raw}
}

func TestValidateAndNormalize_MCQSingle(t *testing.T) {
	v := NewQuestionValidator()

	t.Run("assigns option keys by position", func(t *testing.T) {
		q := newQuestion(t, models.MCQSingle, models.MCQSingleContent{
			Text: "Pick one",
			Options: []models.ChoiceOption{
				{Text: "first"}, {Text: "second"}, {Text: "third"}, {Text: "fourth"},
			},
			Correct: "b",
		})

		require.NoError(t, v.ValidateAndNormalize(q))

		var normalized models.MCQSingleContent
		require.NoError(t, json.Unmarshal(q.Content, &normalized))
		assert.Equal(t, []string{"A", "B", "C", "D"}, optionKeysOf(normalized.Options))
		assert.Equal(t, "B", normalized.Correct)
	})

	t.Run("rejects wrong option count", func(t *testing.T) {
		q := newQuestion(t, models.MCQSingle, models.MCQSingleContent{
			Text:    "Pick one",
			Options: []models.ChoiceOption{{Text: "only"}, {Text: "two"}},
			Correct: "A",
		})
		assert.Error(t, v.ValidateAndNormalize(q))
	})

	t.Run("rejects correct key outside options", func(t *testing.T) {
		q := newQuestion(t, models.MCQSingle, models.MCQSingleContent{
			Text: "Pick one",
			Options: []models.ChoiceOption{
				{Text: "a"}, {Text: "b"}, {Text: "c"}, {Text: "d"},
			},
			Correct: "E",
		})
		assert.Error(t, v.ValidateAndNormalize(q))
	})
}

func TestValidateAndNormalize_MCQMulti(t *testing.T) {
	v := NewQuestionValidator()

	options := []models.ChoiceOption{
		{Text: "a"}, {Text: "b"}, {Text: "c"}, {Text: "d"},
	}

	t.Run("accepts subset of keys", func(t *testing.T) {
		q := newQuestion(t, models.MCQMulti, models.MCQMultiContent{
			Text: "Pick some", Options: options, Correct: []string{"a", "C"},
		})
		require.NoError(t, v.ValidateAndNormalize(q))

		var normalized models.MCQMultiContent
		require.NoError(t, json.Unmarshal(q.Content, &normalized))
		assert.Equal(t, []string{"A", "C"}, normalized.Correct)
	})

	t.Run("rejects empty correct set", func(t *testing.T) {
		q := newQuestion(t, models.MCQMulti, models.MCQMultiContent{
			Text: "Pick some", Options: options, Correct: nil,
		})
		assert.Error(t, v.ValidateAndNormalize(q))
	})

	t.Run("rejects duplicate keys", func(t *testing.T) {
		q := newQuestion(t, models.MCQMulti, models.MCQMultiContent{
			Text: "Pick some", Options: options, Correct: []string{"A", "a"},
		})
		assert.Error(t, v.ValidateAndNormalize(q))
	})
}

func TestValidateAndNormalize_TrueFalse(t *testing.T) {
	v := NewQuestionValidator()

	q := newQuestion(t, models.TrueFalse, models.TrueFalseContent{
		Statement: "Water is wet", Correct: " TRUE ",
	})
	require.NoError(t, v.ValidateAndNormalize(q))

	var normalized models.TrueFalseContent
	require.NoError(t, json.Unmarshal(q.Content, &normalized))
	assert.Equal(t, "true", normalized.Correct)

	q = newQuestion(t, models.TrueFalse, models.TrueFalseContent{
		Statement: "Water is wet", Correct: "yes",
	})
	assert.Error(t, v.ValidateAndNormalize(q))
}

func TestValidateAndNormalize_ChoiceMatrix(t *testing.T) {
	v := NewQuestionValidator()

	base := models.ChoiceMatrixContent{
		Prompt: "Classify",
		Rows:   []string{"r0", "r1"},
		Cols:   []string{"True", "False"},
	}

	t.Run("one correct cell per row", func(t *testing.T) {
		content := base
		content.CorrectCells = []string{"0-0", "1-1"}
		q := newQuestion(t, models.ChoiceMatrix, content)
		assert.NoError(t, v.ValidateAndNormalize(q))
	})

	t.Run("rejects row with two correct cells", func(t *testing.T) {
		content := base
		content.CorrectCells = []string{"0-0", "0-1"}
		q := newQuestion(t, models.ChoiceMatrix, content)
		assert.Error(t, v.ValidateAndNormalize(q))
	})

	t.Run("rejects uncovered row", func(t *testing.T) {
		content := base
		content.CorrectCells = []string{"0-0"}
		q := newQuestion(t, models.ChoiceMatrix, content)
		assert.Error(t, v.ValidateAndNormalize(q))
	})

	t.Run("rejects out of range cell", func(t *testing.T) {
		content := base
		content.CorrectCells = []string{"0-0", "1-5"}
		q := newQuestion(t, models.ChoiceMatrix, content)
		assert.Error(t, v.ValidateAndNormalize(q))
	})
}

func TestValidateAndNormalize_ClozeDrag(t *testing.T) {
	v := NewQuestionValidator()

	t.Run("valid", func(t *testing.T) {
		q := newQuestion(t, models.ClozeDrag, models.ClozeDragContent{
			Text:    "The [[blank1]] is [[blank2]]",
			Tokens:  []string{"sky", "blue", "green"},
			Correct: map[string]string{"blank1": "sky", "blank2": "blue"},
		})
		assert.NoError(t, v.ValidateAndNormalize(q))
	})

	t.Run("rejects correct token outside pool", func(t *testing.T) {
		q := newQuestion(t, models.ClozeDrag, models.ClozeDragContent{
			Text:    "The [[blank1]]",
			Tokens:  []string{"sky"},
			Correct: map[string]string{"blank1": "sea"},
		})
		assert.Error(t, v.ValidateAndNormalize(q))
	})

	t.Run("rejects uncovered blank", func(t *testing.T) {
		q := newQuestion(t, models.ClozeDrag, models.ClozeDragContent{
			Text:    "The [[blank1]] is [[blank2]]",
			Tokens:  []string{"sky", "blue"},
			Correct: map[string]string{"blank1": "sky"},
		})
		assert.Error(t, v.ValidateAndNormalize(q))
	})

	t.Run("rejects text without placeholders", func(t *testing.T) {
		q := newQuestion(t, models.ClozeDrag, models.ClozeDragContent{
			Text:    "No blanks here",
			Tokens:  []string{"sky"},
			Correct: map[string]string{},
		})
		assert.Error(t, v.ValidateAndNormalize(q))
	})
}

func TestValidateAndNormalize_ClozeSelect(t *testing.T) {
	v := NewQuestionValidator()

	t.Run("valid", func(t *testing.T) {
		q := newQuestion(t, models.ClozeSelect, models.ClozeSelectContent{
			Text: "Pick [[blank1]]",
			Blanks: map[string]models.ClozeSelectBlank{
				"blank1": {Options: []string{"x", "y"}, Correct: "x"},
			},
		})
		assert.NoError(t, v.ValidateAndNormalize(q))
	})

	t.Run("rejects correct outside options", func(t *testing.T) {
		q := newQuestion(t, models.ClozeSelect, models.ClozeSelectContent{
			Text: "Pick [[blank1]]",
			Blanks: map[string]models.ClozeSelectBlank{
				"blank1": {Options: []string{"x", "y"}, Correct: "z"},
			},
		})
		assert.Error(t, v.ValidateAndNormalize(q))
	})

	t.Run("rejects blank not in text", func(t *testing.T) {
		q := newQuestion(t, models.ClozeSelect, models.ClozeSelectContent{
			Text: "Pick [[blank1]]",
			Blanks: map[string]models.ClozeSelectBlank{
				"blank1": {Options: []string{"x"}, Correct: "x"},
				"blank2": {Options: []string{"y"}, Correct: "y"},
			},
		})
		assert.Error(t, v.ValidateAndNormalize(q))
	})
}

func TestValidateAndNormalize_MatchList(t *testing.T) {
	v := NewQuestionValidator()

	base := models.MatchListContent{
		Prompt: "Match",
		Left:   []string{"l0", "l1"},
		Right:  []string{"r0", "r1"},
	}

	t.Run("valid", func(t *testing.T) {
		content := base
		content.Pairs = []models.MatchPair{{Left: 0, Right: 1}, {Left: 1, Right: 0}}
		q := newQuestion(t, models.MatchList, content)
		assert.NoError(t, v.ValidateAndNormalize(q))
	})

	t.Run("rejects duplicate left index", func(t *testing.T) {
		content := base
		content.Pairs = []models.MatchPair{{Left: 0, Right: 0}, {Left: 0, Right: 1}}
		q := newQuestion(t, models.MatchList, content)
		assert.Error(t, v.ValidateAndNormalize(q))
	})

	t.Run("rejects out of range index", func(t *testing.T) {
		content := base
		content.Pairs = []models.MatchPair{{Left: 0, Right: 5}}
		q := newQuestion(t, models.MatchList, content)
		assert.Error(t, v.ValidateAndNormalize(q))
	})
}

func TestValidateAndNormalize_Essay(t *testing.T) {
	v := NewQuestionValidator()

	q := newQuestion(t, models.EssayPlain, models.EssayContent{Prompt: "Discuss"})
	assert.NoError(t, v.ValidateAndNormalize(q))

	q = newQuestion(t, models.EssayRich, models.EssayContent{Prompt: ""})
	assert.Error(t, v.ValidateAndNormalize(q))
}

func TestValidateAndNormalize_UnknownType(t *testing.T) {
	v := NewQuestionValidator()

	q := &models.Question{Type: "hotspot", Content: []byte(`{}`)}
	assert.Error(t, v.ValidateAndNormalize(q))
}

func optionKeysOf(options []models.ChoiceOption) []string {
	keys := make([]string, len(options))
	for i, opt := range options {
		keys[i] = opt.Key
	}
	return keys
}
