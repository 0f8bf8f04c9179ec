package validator

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	apperrors "github.com/edupulse/exam-service/internal/errors"
	"github.com/edupulse/exam-service/internal/models"
)

// optionKeys are the fixed MCQ option keys, assigned by position.
var optionKeys = []string{"A", "B", "C", "D"}

// blankPattern matches [[blankN]] placeholders in cloze text.
var blankPattern = regexp.MustCompile(`\[\[(blank\d+)\]\]`)

// QuestionValidator validates and normalizes question content against the
// declared type. Validation failures are field-identified; nothing is
// partially applied.
type QuestionValidator struct{}

func NewQuestionValidator() *QuestionValidator {
	return &QuestionValidator{}
}

// ValidateAndNormalize checks the question's content against its declared
// type's required shape and rewrites q.Content into canonical form
// (option keys assigned A-D, boolean tokens lowercased). The payload shape is
// fully determined by the type; content belonging to another type is rejected.
func (v *QuestionValidator) ValidateAndNormalize(q *models.Question) error {
	if !q.Type.Valid() {
		return apperrors.NewValidationError("type", fmt.Sprintf("unknown question type %q", q.Type), q.Type)
	}
	if len(q.Content) == 0 {
		return apperrors.NewValidationError("content", "is required", nil)
	}

	decoded, err := models.DecodeContent(q.Type, q.Content)
	if err != nil {
		return apperrors.NewValidationError("content", err.Error(), nil)
	}

	var canonical interface{}
	switch content := decoded.(type) {
	case *models.MCQSingleContent:
		canonical, err = v.normalizeMCQSingle(content)
	case *models.MCQMultiContent:
		canonical, err = v.normalizeMCQMulti(content)
	case *models.TrueFalseContent:
		canonical, err = v.normalizeTrueFalse(content)
	case *models.ChoiceMatrixContent:
		canonical, err = v.validateChoiceMatrix(content)
	case *models.ClozeDragContent:
		canonical, err = v.validateClozeDrag(content)
	case *models.ClozeSelectContent:
		canonical, err = v.validateClozeSelect(content)
	case *models.ClozeTextContent:
		canonical, err = v.validateClozeText(content)
	case *models.MatchListContent:
		canonical, err = v.validateMatchList(content)
	case *models.EssayContent:
		canonical, err = v.validateEssay(content)
	default:
		return apperrors.NewValidationError("type", fmt.Sprintf("unknown question type %q", q.Type), q.Type)
	}
	if err != nil {
		return err
	}

	raw, err := json.Marshal(canonical)
	if err != nil {
		return fmt.Errorf("failed to marshal normalized content: %w", err)
	}
	q.Content = raw
	return nil
}

func (v *QuestionValidator) normalizeMCQSingle(c *models.MCQSingleContent) (*models.MCQSingleContent, error) {
	if strings.TrimSpace(c.Text) == "" {
		return nil, apperrors.NewValidationError("content.text", "is required", nil)
	}
	options, err := normalizeOptions(c.Options)
	if err != nil {
		return nil, err
	}
	c.Options = options

	c.Correct = strings.ToUpper(strings.TrimSpace(c.Correct))
	if !isOptionKey(c.Correct) {
		return nil, apperrors.NewValidationError("content.correct", "must be exactly one of A, B, C, D", c.Correct)
	}
	return c, nil
}

func (v *QuestionValidator) normalizeMCQMulti(c *models.MCQMultiContent) (*models.MCQMultiContent, error) {
	if strings.TrimSpace(c.Text) == "" {
		return nil, apperrors.NewValidationError("content.text", "is required", nil)
	}
	options, err := normalizeOptions(c.Options)
	if err != nil {
		return nil, err
	}
	c.Options = options

	if len(c.Correct) == 0 {
		return nil, apperrors.NewValidationError("content.correct", "must select at least one key", nil)
	}
	seen := make(map[string]bool, len(c.Correct))
	normalized := make([]string, 0, len(c.Correct))
	for _, key := range c.Correct {
		key = strings.ToUpper(strings.TrimSpace(key))
		if !isOptionKey(key) {
			return nil, apperrors.NewValidationError("content.correct", "keys must be a subset of A, B, C, D", key)
		}
		if seen[key] {
			return nil, apperrors.NewValidationError("content.correct", "contains duplicate key", key)
		}
		seen[key] = true
		normalized = append(normalized, key)
	}
	c.Correct = normalized
	return c, nil
}

func (v *QuestionValidator) normalizeTrueFalse(c *models.TrueFalseContent) (*models.TrueFalseContent, error) {
	if strings.TrimSpace(c.Statement) == "" {
		return nil, apperrors.NewValidationError("content.statement", "is required", nil)
	}
	correct := strings.ToLower(strings.TrimSpace(c.Correct))
	if correct != "true" && correct != "false" {
		return nil, apperrors.NewValidationError("content.correct", `must be "true" or "false"`, c.Correct)
	}
	c.Correct = correct
	return c, nil
}

func (v *QuestionValidator) validateChoiceMatrix(c *models.ChoiceMatrixContent) (*models.ChoiceMatrixContent, error) {
	if strings.TrimSpace(c.Prompt) == "" {
		return nil, apperrors.NewValidationError("content.prompt", "is required", nil)
	}
	if len(c.Rows) == 0 {
		return nil, apperrors.NewValidationError("content.rows", "must have at least one row", nil)
	}
	if len(c.Cols) == 0 {
		return nil, apperrors.NewValidationError("content.cols", "must have at least one column", nil)
	}
	if len(c.CorrectCells) == 0 {
		return nil, apperrors.NewValidationError("content.correct_cells", "must have at least one correct cell", nil)
	}

	rowSeen := make(map[int]bool, len(c.Rows))
	for _, cell := range c.CorrectCells {
		row, col, err := parseCell(cell)
		if err != nil {
			return nil, apperrors.NewValidationError("content.correct_cells", err.Error(), cell)
		}
		if row < 0 || row >= len(c.Rows) {
			return nil, apperrors.NewValidationError("content.correct_cells", "row index out of range", cell)
		}
		if col < 0 || col >= len(c.Cols) {
			return nil, apperrors.NewValidationError("content.correct_cells", "column index out of range", cell)
		}
		if rowSeen[row] {
			return nil, apperrors.NewValidationError("content.correct_cells", "row has more than one correct cell", cell)
		}
		rowSeen[row] = true
	}
	for i := range c.Rows {
		if !rowSeen[i] {
			return nil, apperrors.NewValidationError("content.correct_cells", fmt.Sprintf("row %d has no correct cell", i), nil)
		}
	}
	return c, nil
}

func (v *QuestionValidator) validateClozeDrag(c *models.ClozeDragContent) (*models.ClozeDragContent, error) {
	blanks, err := extractBlanks(c.Text)
	if err != nil {
		return nil, err
	}
	if len(c.Tokens) == 0 {
		return nil, apperrors.NewValidationError("content.tokens", "token pool must not be empty", nil)
	}
	pool := make(map[string]bool, len(c.Tokens))
	for _, tok := range c.Tokens {
		if strings.TrimSpace(tok) == "" {
			return nil, apperrors.NewValidationError("content.tokens", "token must not be empty", nil)
		}
		pool[tok] = true
	}
	if err := requireBlankCoverage(c.Correct, blanks); err != nil {
		return nil, err
	}
	for blank, tok := range c.Correct {
		if !pool[tok] {
			return nil, apperrors.NewValidationError("content.correct", fmt.Sprintf("token for %s is not in the pool", blank), tok)
		}
	}
	return c, nil
}

func (v *QuestionValidator) validateClozeSelect(c *models.ClozeSelectContent) (*models.ClozeSelectContent, error) {
	blanks, err := extractBlanks(c.Text)
	if err != nil {
		return nil, err
	}
	for _, blank := range blanks {
		def, ok := c.Blanks[blank]
		if !ok {
			return nil, apperrors.NewValidationError("content.blanks", fmt.Sprintf("missing definition for %s", blank), nil)
		}
		if len(def.Options) == 0 {
			return nil, apperrors.NewValidationError("content.blanks", fmt.Sprintf("%s must have at least one option", blank), nil)
		}
		found := false
		for _, opt := range def.Options {
			if opt == def.Correct {
				found = true
				break
			}
		}
		if !found {
			return nil, apperrors.NewValidationError("content.blanks", fmt.Sprintf("correct value for %s is not among its options", blank), def.Correct)
		}
	}
	for blank := range c.Blanks {
		if !containsString(blanks, blank) {
			return nil, apperrors.NewValidationError("content.blanks", fmt.Sprintf("%s does not appear in the text", blank), nil)
		}
	}
	return c, nil
}

func (v *QuestionValidator) validateClozeText(c *models.ClozeTextContent) (*models.ClozeTextContent, error) {
	blanks, err := extractBlanks(c.Text)
	if err != nil {
		return nil, err
	}
	if err := requireBlankCoverage(c.Correct, blanks); err != nil {
		return nil, err
	}
	for blank, answer := range c.Correct {
		if strings.TrimSpace(answer) == "" {
			return nil, apperrors.NewValidationError("content.correct", fmt.Sprintf("answer for %s must not be empty", blank), nil)
		}
	}
	return c, nil
}

func (v *QuestionValidator) validateMatchList(c *models.MatchListContent) (*models.MatchListContent, error) {
	if strings.TrimSpace(c.Prompt) == "" {
		return nil, apperrors.NewValidationError("content.prompt", "is required", nil)
	}
	if len(c.Left) == 0 {
		return nil, apperrors.NewValidationError("content.left", "must have at least one item", nil)
	}
	if len(c.Right) == 0 {
		return nil, apperrors.NewValidationError("content.right", "must have at least one item", nil)
	}
	if len(c.Pairs) == 0 {
		return nil, apperrors.NewValidationError("content.pairs", "must have at least one pair", nil)
	}
	leftSeen := make(map[int]bool, len(c.Pairs))
	for _, pair := range c.Pairs {
		if pair.Left < 0 || pair.Left >= len(c.Left) {
			return nil, apperrors.NewValidationError("content.pairs", "left index out of range", pair.Left)
		}
		if pair.Right < 0 || pair.Right >= len(c.Right) {
			return nil, apperrors.NewValidationError("content.pairs", "right index out of range", pair.Right)
		}
		if leftSeen[pair.Left] {
			return nil, apperrors.NewValidationError("content.pairs", "left index paired more than once", pair.Left)
		}
		leftSeen[pair.Left] = true
	}
	return c, nil
}

func (v *QuestionValidator) validateEssay(c *models.EssayContent) (*models.EssayContent, error) {
	if strings.TrimSpace(c.Prompt) == "" {
		return nil, apperrors.NewValidationError("content.prompt", "is required", nil)
	}
	// Body is optional at creation; students fill it at answer time.
	return c, nil
}

// ===== SHARED HELPERS =====

func normalizeOptions(options []models.ChoiceOption) ([]models.ChoiceOption, error) {
	if len(options) != len(optionKeys) {
		return nil, apperrors.NewValidationError("content.options", fmt.Sprintf("must have exactly %d options", len(optionKeys)), len(options))
	}
	normalized := make([]models.ChoiceOption, len(options))
	for i, opt := range options {
		if strings.TrimSpace(opt.Text) == "" {
			return nil, apperrors.NewValidationError("content.options", fmt.Sprintf("option %s text must not be empty", optionKeys[i]), nil)
		}
		normalized[i] = models.ChoiceOption{Key: optionKeys[i], Text: opt.Text}
	}
	return normalized, nil
}

func isOptionKey(key string) bool {
	for _, k := range optionKeys {
		if key == k {
			return true
		}
	}
	return false
}

func parseCell(cell string) (row, col int, err error) {
	parts := strings.SplitN(cell, "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf(`cell must have the form "{rowIndex}-{colIndex}"`)
	}
	row, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid row index %q", parts[0])
	}
	col, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid column index %q", parts[1])
	}
	return row, col, nil
}

// extractBlanks returns the ordered, de-duplicated [[blankN]] ids in text.
func extractBlanks(text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.NewValidationError("content.text", "is required", nil)
	}
	matches := blankPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil, apperrors.NewValidationError("content.text", "must contain at least one [[blankN]] placeholder", nil)
	}
	seen := make(map[string]bool, len(matches))
	blanks := make([]string, 0, len(matches))
	for _, m := range matches {
		if !seen[m[1]] {
			seen[m[1]] = true
			blanks = append(blanks, m[1])
		}
	}
	return blanks, nil
}

// requireBlankCoverage checks that the correct map covers exactly the blanks
// found in the text, no more and no fewer.
func requireBlankCoverage(correct map[string]string, blanks []string) error {
	for _, blank := range blanks {
		if _, ok := correct[blank]; !ok {
			return apperrors.NewValidationError("content.correct", fmt.Sprintf("missing answer for %s", blank), nil)
		}
	}
	for blank := range correct {
		if !containsString(blanks, blank) {
			return apperrors.NewValidationError("content.correct", fmt.Sprintf("%s does not appear in the text", blank), nil)
		}
	}
	return nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
