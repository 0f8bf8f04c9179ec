package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// QuestionType is the closed set of question archetypes. Every switch over it
// must handle all ten variants explicitly; there is no catch-all branch.
type QuestionType string

const (
	MCQSingle    QuestionType = "mcq-single"
	MCQMulti     QuestionType = "mcq-multi"
	TrueFalse    QuestionType = "true-false"
	ChoiceMatrix QuestionType = "choice-matrix"
	ClozeDrag    QuestionType = "cloze-drag"
	ClozeSelect  QuestionType = "cloze-select"
	ClozeText    QuestionType = "cloze-text"
	MatchList    QuestionType = "match-list"
	EssayRich    QuestionType = "essay-rich"
	EssayPlain   QuestionType = "essay-plain"
)

// AllQuestionTypes lists every variant, in presentation order.
var AllQuestionTypes = []QuestionType{
	MCQSingle, MCQMulti, TrueFalse, ChoiceMatrix,
	ClozeDrag, ClozeSelect, ClozeText, MatchList,
	EssayRich, EssayPlain,
}

func (t QuestionType) Valid() bool {
	for _, vt := range AllQuestionTypes {
		if t == vt {
			return true
		}
	}
	return false
}

type DifficultyLevel string

const (
	DifficultyEasy     DifficultyLevel = "easy"
	DifficultyModerate DifficultyLevel = "moderate"
	DifficultyHard     DifficultyLevel = "hard"
)

type KnowledgeLevel string

const (
	LevelBasic        KnowledgeLevel = "basic"
	LevelIntermediate KnowledgeLevel = "intermediate"
	LevelAdvanced     KnowledgeLevel = "advanced"
)

// Question is immutable once created; edits go through a full-document replace.
// Content holds exactly the payload branch declared by Type, validated and
// normalized before any write.
type Question struct {
	ID   uint         `json:"id" gorm:"primaryKey"`
	Type QuestionType `json:"type" gorm:"not null;size:20;index" validate:"required,question_type"`

	// Classification
	Subject    string          `json:"subject" gorm:"not null;size:100;index" validate:"required,min=1,max=100"`
	Topic      string          `json:"topic" gorm:"not null;size:100;index" validate:"required,min=1,max=100"`
	Board      string          `json:"board" gorm:"size:100;index" validate:"omitempty,max=100"`
	Class      string          `json:"class" gorm:"size:50;index" validate:"omitempty,max=50"`
	Stage      int             `json:"stage" gorm:"not null;index" validate:"required,exam_stage"`
	Difficulty DifficultyLevel `json:"difficulty" gorm:"not null;size:20" validate:"required,difficulty_level"`
	Level      KnowledgeLevel  `json:"level" gorm:"not null;size:20" validate:"required,knowledge_level"`
	Tags       datatypes.JSON  `json:"tags" gorm:"type:jsonb"`

	// Type-specific payload (exactly one branch, shape determined by Type)
	Content datatypes.JSON `json:"content" gorm:"type:jsonb;not null" validate:"required"`

	// Metadata
	CreatedBy string         `json:"created_by" gorm:"not null;size:255;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Question) TableName() string {
	return "questions"
}

// ===== TYPE-SPECIFIC CONTENT =====

// ChoiceOption is an MCQ option with its normalized key (A-D).
type ChoiceOption struct {
	Key  string `json:"key"`
	Text string `json:"text"`
}

// MCQSingleContent has exactly four options keyed A-D and one correct key.
type MCQSingleContent struct {
	Text    string         `json:"text"`
	Options []ChoiceOption `json:"options"`
	Correct string         `json:"correct"`
}

// MCQMultiContent has the same option shape; Correct is a non-empty,
// duplicate-free subset of the option keys.
type MCQMultiContent struct {
	Text    string         `json:"text"`
	Options []ChoiceOption `json:"options"`
	Correct []string       `json:"correct"`
}

type TrueFalseContent struct {
	Statement string `json:"statement"`
	Correct   string `json:"correct"` // "true" or "false", lowercased
}

// ChoiceMatrixContent: CorrectCells entries are "{rowIndex}-{colIndex}"
// referencing Rows and Cols.
type ChoiceMatrixContent struct {
	Prompt       string   `json:"prompt"`
	Rows         []string `json:"rows"`
	Cols         []string `json:"cols"`
	CorrectCells []string `json:"correct_cells"`
}

// ClozeDragContent: Text contains [[blankN]] placeholders; Tokens is the shared
// draggable pool; Correct maps blank id to the expected token.
type ClozeDragContent struct {
	Text    string            `json:"text"`
	Tokens  []string          `json:"tokens"`
	Correct map[string]string `json:"correct"`
}

type ClozeSelectBlank struct {
	Options []string `json:"options"`
	Correct string   `json:"correct"`
}

type ClozeSelectContent struct {
	Text   string                      `json:"text"`
	Blanks map[string]ClozeSelectBlank `json:"blanks"`
}

type ClozeTextContent struct {
	Text    string            `json:"text"`
	Correct map[string]string `json:"correct"` // blank id -> free-text answer
}

type MatchPair struct {
	Left  int `json:"left"`
	Right int `json:"right"`
}

type MatchListContent struct {
	Prompt string      `json:"prompt"`
	Left   []string    `json:"left"`
	Right  []string    `json:"right"`
	Pairs  []MatchPair `json:"pairs"`
}

// EssayContent covers both essay variants; Body is an optional model answer
// (rich HTML for essay-rich, plain text for essay-plain). Essays are not
// auto-graded.
type EssayContent struct {
	Prompt string `json:"prompt"`
	Body   string `json:"body,omitempty"`
}

// DecodeContent unmarshals raw content into the typed struct for the given
// variant. An unknown type is an error, never a silent fallback.
func DecodeContent(t QuestionType, raw []byte) (interface{}, error) {
	var (
		dst interface{}
	)
	switch t {
	case MCQSingle:
		dst = &MCQSingleContent{}
	case MCQMulti:
		dst = &MCQMultiContent{}
	case TrueFalse:
		dst = &TrueFalseContent{}
	case ChoiceMatrix:
		dst = &ChoiceMatrixContent{}
	case ClozeDrag:
		dst = &ClozeDragContent{}
	case ClozeSelect:
		dst = &ClozeSelectContent{}
	case ClozeText:
		dst = &ClozeTextContent{}
	case MatchList:
		dst = &MatchListContent{}
	case EssayRich, EssayPlain:
		dst = &EssayContent{}
	default:
		return nil, fmt.Errorf("unknown question type: %s", t)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return nil, fmt.Errorf("invalid %s content: %w", t, err)
	}
	return dst, nil
}

// TagList decodes the Tags jsonb column.
func (q *Question) TagList() []string {
	if len(q.Tags) == 0 {
		return nil
	}
	var tags []string
	if err := json.Unmarshal(q.Tags, &tags); err != nil {
		return nil
	}
	return tags
}
