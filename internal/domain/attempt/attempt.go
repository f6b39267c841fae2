package attempt

import (
	"math"
	"time"
)

// SolvedTolerance absorbs rounding in grader scores.
const SolvedTolerance = 0.1

// Attempt is one graded submission. Attempts are append-only and only deleted in bulk on reset.
type Attempt struct {
	ID             int64
	UserID         int64
	TaskID         int64
	UserAnswerText string
	Score          float64
	MaxScore       float64
	Comment        string // full grader output
	CreatedAt      time.Time
}

// SolvedAtMax reports whether the attempt reached the task maximum.
func (a *Attempt) SolvedAtMax() bool {
	return a.MaxScore > 0 && a.Score >= a.MaxScore-SolvedTolerance
}

// Percent returns the score as a rounded percentage of the max score.
func (a *Attempt) Percent() int {
	if a.MaxScore <= 0 {
		return 0
	}
	return int(math.Round(a.Score / a.MaxScore * 100))
}
