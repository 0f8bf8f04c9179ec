package models

// AnswerSubmission is the discriminated answer union submitted for one
// question. Exactly the branch matching the question's type is read; the
// others are ignored by the scorer.
type AnswerSubmission struct {
	QuestionID uint `json:"qid"`

	MCQ         []string          `json:"mcq,omitempty"`         // mcq-single, mcq-multi
	TrueFalse   string            `json:"trueFalse,omitempty"`   // true-false
	Matrix      map[string]string `json:"matrix,omitempty"`      // row index -> column label
	Cloze       map[string]string `json:"cloze,omitempty"`       // cloze-drag, cloze-text: blank id -> token/text
	ClozeSelect map[string]string `json:"clozeSelect,omitempty"` // blank id -> selected value
	Match       map[string]int    `json:"match,omitempty"`       // left index -> right index
	Essay       string            `json:"essay,omitempty"`       // essay-rich, essay-plain
}

// Verdict is the grading outcome for one answer.
type Verdict string

const (
	VerdictCorrect       Verdict = "correct"
	VerdictWrong         Verdict = "wrong"
	VerdictPendingReview Verdict = "pending_review" // essays: not auto-gradable
)

// GradedAnswer is what an attempt persists per question after submission.
type GradedAnswer struct {
	QuestionID uint             `json:"question_id"`
	Type       QuestionType     `json:"type"`
	Submission AnswerSubmission `json:"submission"`
	Points     int              `json:"points"`
	Verdict    Verdict          `json:"verdict"`
}
