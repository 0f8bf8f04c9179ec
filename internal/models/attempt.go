package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// ExamAttempt is one instance of a student taking an exam. The question set is
// frozen at creation; the record transitions exactly once to its submitted
// state and is read-only afterwards.
type ExamAttempt struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	UserID string `json:"user_id" gorm:"not null;size:255;index"`

	// Filter snapshot the attempt was sampled with
	Subject string `json:"subject" gorm:"not null;size:100;index"`
	Topic   string `json:"topic" gorm:"not null;size:100"`
	Type    string `json:"type" gorm:"size:20"`
	Stage   int    `json:"stage"`

	// QuestionIDs is the exact ordered id list shown to the student.
	QuestionIDs datatypes.JSON `json:"question_ids" gorm:"type:jsonb;not null"`
	Total       int            `json:"total" gorm:"not null"`

	// Set exactly once at submission
	Answers       datatypes.JSON `json:"answers" gorm:"type:jsonb"`
	Score         int            `json:"score" gorm:"default:0"`
	Percent       int            `json:"percent" gorm:"default:0"`
	PendingReview bool           `json:"pending_review" gorm:"default:false"`
	SubmittedAt   *time.Time     `json:"submitted_at" gorm:"index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ExamAttempt) TableName() string {
	return "exam_attempts"
}

// Submitted reports whether the attempt has reached its terminal state.
func (a *ExamAttempt) Submitted() bool {
	return a.SubmittedAt != nil
}

// QuestionIDList decodes the frozen ordered question-id list.
func (a *ExamAttempt) QuestionIDList() ([]uint, error) {
	var ids []uint
	if err := json.Unmarshal(a.QuestionIDs, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// GradedAnswers decodes the persisted answers. Empty until submission.
func (a *ExamAttempt) GradedAnswers() ([]GradedAnswer, error) {
	if len(a.Answers) == 0 {
		return nil, nil
	}
	var answers []GradedAnswer
	if err := json.Unmarshal(a.Answers, &answers); err != nil {
		return nil, err
	}
	return answers, nil
}
