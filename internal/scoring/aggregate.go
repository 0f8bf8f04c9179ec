package scoring

import (
	"math"

	"github.com/edupulse/exam-service/internal/models"
)

// Totals is the aggregate outcome of one attempt.
type Totals struct {
	Score         int  `json:"score"`
	Total         int  `json:"total"`
	Percent       int  `json:"percent"`
	PendingReview bool `json:"pending_review"`
}

// Aggregate sums per-question points into the attempt totals. Total counts
// every question in the attempt, essays included. An empty attempt is defined
// as 0 percent.
func Aggregate(answers []models.GradedAnswer, total int) Totals {
	t := Totals{Total: total}
	for _, a := range answers {
		t.Score += a.Points
		if a.Verdict == models.VerdictPendingReview {
			t.PendingReview = true
		}
	}
	if total > 0 {
		t.Percent = int(math.Round(float64(t.Score) / float64(total) * 100))
	}
	return t
}
