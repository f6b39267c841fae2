package postgrest

import (
	"context"
	"fmt"
	"time"

	"task_practice_bot/internal/domain/attempt"

	"github.com/ecodeclub/ekit/slice"
)

const tableAttempts = "attempts"

type attemptRow struct {
	ID             int64      `json:"id,omitempty"`
	UserID         int64      `json:"user_id"`
	TaskID         int64      `json:"task_id"`
	UserAnswerText string     `json:"user_answer_text"`
	Score          *float64   `json:"score"`
	MaxScore       *float64   `json:"max_score"`
	Comment        string     `json:"comment"`
	CreatedAt      *Timestamp `json:"created_at,omitempty"`
}

func (r attemptRow) toDomain() *attempt.Attempt {
	a := &attempt.Attempt{
		ID:             r.ID,
		UserID:         r.UserID,
		TaskID:         r.TaskID,
		UserAnswerText: r.UserAnswerText,
		Comment:        r.Comment,
	}
	if r.Score != nil {
		a.Score = *r.Score
	}
	if r.MaxScore != nil {
		a.MaxScore = *r.MaxScore
	}
	if r.CreatedAt != nil {
		a.CreatedAt = r.CreatedAt.Time
	}
	return a
}

type AttemptRepository struct {
	client *Client
}

func NewAttemptRepository(c *Client) *AttemptRepository {
	return &AttemptRepository{client: c}
}

func (r *AttemptRepository) Create(ctx context.Context, a *attempt.Attempt) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	in := attemptRow{
		UserID:         a.UserID,
		TaskID:         a.TaskID,
		UserAnswerText: a.UserAnswerText,
		Score:          &a.Score,
		MaxScore:       &a.MaxScore,
		Comment:        a.Comment,
		CreatedAt:      &Timestamp{Time: a.CreatedAt},
	}
	var rows []attemptRow
	if err := r.client.Post(ctx, tableAttempts, in, &rows); err != nil {
		return fmt.Errorf("error creating attempt for user %d task %d: %w", a.UserID, a.TaskID, err)
	}
	if len(rows) > 0 {
		a.ID = rows[0].ID
	}
	return nil
}

func (r *AttemptRepository) ListByUser(ctx context.Context, userID int64) ([]*attempt.Attempt, error) {
	var rows []attemptRow
	if err := r.client.Get(ctx, tableAttempts, NewQuery().Eq("user_id", userID), &rows); err != nil {
		return nil, fmt.Errorf("error listing attempts for user %d: %w", userID, err)
	}
	return slice.Map(rows, func(idx int, src attemptRow) *attempt.Attempt {
		return src.toDomain()
	}), nil
}

func (r *AttemptRepository) HasAny(ctx context.Context, userID int64) (bool, error) {
	var rows []attemptRow
	q := NewQuery().Eq("user_id", userID).Select("id").Limit(1)
	if err := r.client.Get(ctx, tableAttempts, q, &rows); err != nil {
		return false, fmt.Errorf("error checking attempts for user %d: %w", userID, err)
	}
	return len(rows) > 0, nil
}

func (r *AttemptRepository) DeleteByUser(ctx context.Context, userID int64) error {
	if err := r.client.Delete(ctx, tableAttempts, NewQuery().Eq("user_id", userID)); err != nil {
		return fmt.Errorf("error deleting attempts for user %d: %w", userID, err)
	}
	return nil
}
