// Package scoring is the pure grading core: it maps (question, submitted
// answer) pairs to point values and builds the redacted and review
// projections of a question. It never touches the store.
package scoring

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/edupulse/exam-service/internal/models"
)

// Result is the grading outcome for a single question. Points is 0 or 1;
// there is no partial credit in the current behavior (a design constant, not
// a future guarantee).
type Result struct {
	Points  int            `json:"points"`
	Verdict models.Verdict `json:"verdict"`
}

// Grade scores one submitted answer against its question. It is
// side-effect-free. Essay variants are not auto-gradable: they contribute 0
// points and carry the pending_review verdict for a human reader. An unknown
// question type is an error, never a silent zero.
func Grade(q *models.Question, sub models.AnswerSubmission) (Result, error) {
	decoded, err := models.DecodeContent(q.Type, q.Content)
	if err != nil {
		return Result{}, fmt.Errorf("question %d: %w", q.ID, err)
	}

	switch content := decoded.(type) {
	case *models.MCQSingleContent:
		return verdict(gradeMCQSingle(content, sub.MCQ)), nil
	case *models.MCQMultiContent:
		return verdict(gradeMCQMulti(content, sub.MCQ)), nil
	case *models.TrueFalseContent:
		return verdict(gradeTrueFalse(content, sub.TrueFalse)), nil
	case *models.ChoiceMatrixContent:
		return verdict(gradeChoiceMatrix(content, sub.Matrix)), nil
	case *models.ClozeDragContent:
		return verdict(mapsEqual(sub.Cloze, content.Correct)), nil
	case *models.ClozeSelectContent:
		return verdict(gradeClozeSelect(content, sub.ClozeSelect)), nil
	case *models.ClozeTextContent:
		return verdict(gradeClozeText(content, sub.Cloze)), nil
	case *models.MatchListContent:
		return verdict(gradeMatchList(content, sub.Match)), nil
	case *models.EssayContent:
		return Result{Points: 0, Verdict: models.VerdictPendingReview}, nil
	default:
		return Result{}, fmt.Errorf("question %d: unknown question type %q", q.ID, q.Type)
	}
}

func verdict(correct bool) Result {
	if correct {
		return Result{Points: 1, Verdict: models.VerdictCorrect}
	}
	return Result{Points: 0, Verdict: models.VerdictWrong}
}

// Single-select expects exactly one submitted key.
func gradeMCQSingle(c *models.MCQSingleContent, selected []string) bool {
	if len(selected) != 1 {
		return false
	}
	return strings.ToUpper(strings.TrimSpace(selected[0])) == c.Correct
}

// Multi-select is graded on exact set equality: any strict subset or
// superset of the correct keys scores zero.
func gradeMCQMulti(c *models.MCQMultiContent, selected []string) bool {
	if len(selected) != len(c.Correct) {
		return false
	}
	correctSet := make(map[string]bool, len(c.Correct))
	for _, key := range c.Correct {
		correctSet[key] = true
	}
	seen := make(map[string]bool, len(selected))
	for _, key := range selected {
		key = strings.ToUpper(strings.TrimSpace(key))
		if !correctSet[key] || seen[key] {
			return false
		}
		seen[key] = true
	}
	return true
}

func gradeTrueFalse(c *models.TrueFalseContent, answer string) bool {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return false
	}
	return strings.EqualFold(answer, c.Correct)
}

// The matrix is correct iff the submitted row->column mapping exactly equals
// the correct one: every row answered with the right column label, no extras.
func gradeChoiceMatrix(c *models.ChoiceMatrixContent, submitted map[string]string) bool {
	expected := make(map[string]string, len(c.CorrectCells))
	for _, cell := range c.CorrectCells {
		parts := strings.SplitN(cell, "-", 2)
		if len(parts) != 2 {
			return false
		}
		col, err := strconv.Atoi(parts[1])
		if err != nil || col < 0 || col >= len(c.Cols) {
			return false
		}
		expected[parts[0]] = c.Cols[col]
	}
	return mapsEqual(submitted, expected)
}

func gradeClozeSelect(c *models.ClozeSelectContent, submitted map[string]string) bool {
	expected := make(map[string]string, len(c.Blanks))
	for blank, def := range c.Blanks {
		expected[blank] = def.Correct
	}
	return mapsEqual(submitted, expected)
}

// Free-text blanks are compared case-insensitively after trimming; coverage
// must still be exact.
func gradeClozeText(c *models.ClozeTextContent, submitted map[string]string) bool {
	if len(submitted) != len(c.Correct) {
		return false
	}
	for blank, want := range c.Correct {
		got, ok := submitted[blank]
		if !ok || !strings.EqualFold(strings.TrimSpace(got), strings.TrimSpace(want)) {
			return false
		}
	}
	return true
}

func gradeMatchList(c *models.MatchListContent, submitted map[string]int) bool {
	expected := make(map[string]int, len(c.Pairs))
	for _, pair := range c.Pairs {
		expected[strconv.Itoa(pair.Left)] = pair.Right
	}
	if len(submitted) != len(expected) {
		return false
	}
	for left, right := range expected {
		got, ok := submitted[left]
		if !ok || got != right {
			return false
		}
	}
	return true
}

func mapsEqual(got, want map[string]string) bool {
	if len(got) != len(want) {
		return false
	}
	for k, w := range want {
		g, ok := got[k]
		if !ok || g != w {
			return false
		}
	}
	return true
}
