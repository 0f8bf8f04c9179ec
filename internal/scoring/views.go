package scoring

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/edupulse/exam-service/internal/models"
)

// RedactedQuestion is the pre-submission projection of a question: body and
// choices only, no correct keys, no explanations. It is the only question
// shape a student sees before submitting.
type RedactedQuestion struct {
	ID    uint                `json:"id"`
	Type  models.QuestionType `json:"type"`
	Label string              `json:"label"`
	Body  string              `json:"body"`

	Options []models.ChoiceOption `json:"options,omitempty"`
	Rows    []string              `json:"rows,omitempty"`
	Cols    []string              `json:"cols,omitempty"`
	Tokens  []string              `json:"tokens,omitempty"`
	Blanks  map[string][]string   `json:"blanks,omitempty"`
	Left    []string              `json:"left,omitempty"`
	Right   []string              `json:"right,omitempty"`
}

// ReviewEntry is the post-submission projection of one question: what the
// student answered, what was correct, and the verdict.
type ReviewEntry struct {
	QuestionID uint                `json:"question_id"`
	Type       models.QuestionType `json:"type"`
	Body       string              `json:"body"`
	Submitted  []string            `json:"submitted"`
	Correct    []string            `json:"correct"`
	IsCorrect  bool                `json:"is_correct"`
	Verdict    models.Verdict      `json:"verdict"`
}

// Redact builds the answer-key-free view of a question.
func Redact(q *models.Question) (RedactedQuestion, error) {
	decoded, err := models.DecodeContent(q.Type, q.Content)
	if err != nil {
		return RedactedQuestion{}, err
	}

	view := RedactedQuestion{ID: q.ID, Type: q.Type}
	if label, ok := models.LabelFor(q.Type); ok {
		view.Label = label.Label
	}

	switch content := decoded.(type) {
	case *models.MCQSingleContent:
		view.Body = content.Text
		view.Options = content.Options
	case *models.MCQMultiContent:
		view.Body = content.Text
		view.Options = content.Options
	case *models.TrueFalseContent:
		view.Body = content.Statement
	case *models.ChoiceMatrixContent:
		view.Body = content.Prompt
		view.Rows = content.Rows
		view.Cols = content.Cols
	case *models.ClozeDragContent:
		view.Body = content.Text
		view.Tokens = content.Tokens
	case *models.ClozeSelectContent:
		view.Body = content.Text
		view.Blanks = make(map[string][]string, len(content.Blanks))
		for blank, def := range content.Blanks {
			view.Blanks[blank] = def.Options
		}
	case *models.ClozeTextContent:
		view.Body = content.Text
	case *models.MatchListContent:
		view.Body = content.Prompt
		view.Left = content.Left
		view.Right = content.Right
	case *models.EssayContent:
		view.Body = content.Prompt
	default:
		return RedactedQuestion{}, fmt.Errorf("unknown question type %q", q.Type)
	}
	return view, nil
}

// BuildReview builds the full review entry for one graded answer. Callers
// must only expose it once the attempt is submitted.
func BuildReview(q *models.Question, graded models.GradedAnswer) (ReviewEntry, error) {
	decoded, err := models.DecodeContent(q.Type, q.Content)
	if err != nil {
		return ReviewEntry{}, err
	}

	entry := ReviewEntry{
		QuestionID: q.ID,
		Type:       q.Type,
		IsCorrect:  graded.Verdict == models.VerdictCorrect,
		Verdict:    graded.Verdict,
	}
	sub := graded.Submission

	switch content := decoded.(type) {
	case *models.MCQSingleContent:
		entry.Body = content.Text
		entry.Submitted = sub.MCQ
		entry.Correct = []string{formatOption(content.Options, content.Correct)}
	case *models.MCQMultiContent:
		entry.Body = content.Text
		entry.Submitted = sub.MCQ
		for _, key := range content.Correct {
			entry.Correct = append(entry.Correct, formatOption(content.Options, key))
		}
	case *models.TrueFalseContent:
		entry.Body = content.Statement
		if sub.TrueFalse != "" {
			entry.Submitted = []string{sub.TrueFalse}
		}
		entry.Correct = []string{content.Correct}
	case *models.ChoiceMatrixContent:
		entry.Body = content.Prompt
		entry.Submitted = formatMatrixSubmission(content, sub.Matrix)
		entry.Correct = formatMatrixKey(content)
	case *models.ClozeDragContent:
		entry.Body = content.Text
		entry.Submitted = formatBlankMap(sub.Cloze)
		entry.Correct = formatBlankMap(content.Correct)
	case *models.ClozeSelectContent:
		entry.Body = content.Text
		entry.Submitted = formatBlankMap(sub.ClozeSelect)
		correct := make(map[string]string, len(content.Blanks))
		for blank, def := range content.Blanks {
			correct[blank] = def.Correct
		}
		entry.Correct = formatBlankMap(correct)
	case *models.ClozeTextContent:
		entry.Body = content.Text
		entry.Submitted = formatBlankMap(sub.Cloze)
		entry.Correct = formatBlankMap(content.Correct)
	case *models.MatchListContent:
		entry.Body = content.Prompt
		entry.Submitted = formatMatchSubmission(content, sub.Match)
		entry.Correct = formatMatchKey(content)
	case *models.EssayContent:
		entry.Body = content.Prompt
		if sub.Essay != "" {
			entry.Submitted = []string{sub.Essay}
		}
		// No answer key: essays go to a human reviewer.
	default:
		return ReviewEntry{}, fmt.Errorf("unknown question type %q", q.Type)
	}
	return entry, nil
}

func formatOption(options []models.ChoiceOption, key string) string {
	for _, opt := range options {
		if opt.Key == key {
			return fmt.Sprintf("%s: %s", opt.Key, opt.Text)
		}
	}
	return key
}

// Matrix cells render as "row - column" pairs.
func formatMatrixKey(c *models.ChoiceMatrixContent) []string {
	out := make([]string, 0, len(c.CorrectCells))
	for _, cell := range c.CorrectCells {
		var row, col int
		if _, err := fmt.Sscanf(cell, "%d-%d", &row, &col); err != nil {
			continue
		}
		if row < len(c.Rows) && col < len(c.Cols) {
			out = append(out, fmt.Sprintf("%s - %s", c.Rows[row], c.Cols[col]))
		}
	}
	return out
}

func formatMatrixSubmission(c *models.ChoiceMatrixContent, submitted map[string]string) []string {
	out := make([]string, 0, len(submitted))
	for _, key := range sortedKeys(submitted) {
		row, err := strconv.Atoi(key)
		if err != nil || row < 0 || row >= len(c.Rows) {
			continue
		}
		out = append(out, fmt.Sprintf("%s - %s", c.Rows[row], submitted[key]))
	}
	return out
}

func formatMatchKey(c *models.MatchListContent) []string {
	out := make([]string, 0, len(c.Pairs))
	for _, pair := range c.Pairs {
		if pair.Left < len(c.Left) && pair.Right < len(c.Right) {
			out = append(out, fmt.Sprintf("%s - %s", c.Left[pair.Left], c.Right[pair.Right]))
		}
	}
	return out
}

func formatMatchSubmission(c *models.MatchListContent, submitted map[string]int) []string {
	keys := make([]string, 0, len(submitted))
	for k := range submitted {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, key := range keys {
		left, err := strconv.Atoi(key)
		right := submitted[key]
		if err != nil || left < 0 || left >= len(c.Left) || right < 0 || right >= len(c.Right) {
			continue
		}
		out = append(out, fmt.Sprintf("%s - %s", c.Left[left], c.Right[right]))
	}
	return out
}

func formatBlankMap(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for _, key := range sortedKeys(m) {
		out = append(out, fmt.Sprintf("%s: %s", key, m[key]))
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
