package database

import (
	"context"
	"database/sql"
	"fmt"

	"task_practice_bot/internal/domain/attempt"
)

type PostgresAttemptRepository struct {
	db *sql.DB
}

func NewPostgresAttemptRepository(db *sql.DB) *PostgresAttemptRepository {
	return &PostgresAttemptRepository{db: db}
}

func (r *PostgresAttemptRepository) Create(ctx context.Context, a *attempt.Attempt) error {
	query := `INSERT INTO attempts (user_id, task_id, user_answer_text, score, max_score, comment)
               VALUES ($1, $2, $3, $4, $5, $6)
               RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, a.UserID, a.TaskID, a.UserAnswerText, a.Score, a.MaxScore, a.Comment).
		Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return fmt.Errorf("error creating attempt: %w", err)
	}
	return nil
}

func (r *PostgresAttemptRepository) ListByUser(ctx context.Context, userID int64) ([]*attempt.Attempt, error) {
	query := `SELECT id, user_id, task_id, user_answer_text, score, max_score, comment, created_at
               FROM attempts WHERE user_id = $1 ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing attempts: %w", err)
	}
	defer rows.Close()

	attempts := make([]*attempt.Attempt, 0)
	for rows.Next() {
		a := &attempt.Attempt{}
		var score, maxScore sql.NullFloat64
		var comment sql.NullString
		if err := rows.Scan(&a.ID, &a.UserID, &a.TaskID, &a.UserAnswerText, &score, &maxScore, &comment, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning attempt: %w", err)
		}
		a.Score = score.Float64
		a.MaxScore = maxScore.Float64
		a.Comment = comment.String
		attempts = append(attempts, a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attempts: %w", err)
	}
	return attempts, nil
}

func (r *PostgresAttemptRepository) HasAny(ctx context.Context, userID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM attempts WHERE user_id = $1)`, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking attempts: %w", err)
	}
	return exists, nil
}

func (r *PostgresAttemptRepository) DeleteByUser(ctx context.Context, userID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM attempts WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("error deleting attempts: %w", err)
	}
	return nil
}
