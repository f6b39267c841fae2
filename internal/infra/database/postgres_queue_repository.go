package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"task_practice_bot/internal/domain/queue"
)

type PostgresQueueRepository struct {
	db *sql.DB
}

func NewPostgresQueueRepository(db *sql.DB) *PostgresQueueRepository {
	return &PostgresQueueRepository{db: db}
}

func (r *PostgresQueueRepository) Enqueue(ctx context.Context, e *queue.Entry) error {
	query := `INSERT INTO processing_queue (chat_id, user_id, task_id, user_answer_text, status, created_at)
               VALUES ($1, $2, $3, $4, $5, $6)
               RETURNING id`
	e.Status = queue.StatusPending
	err := r.db.QueryRowContext(ctx, query, e.ChatID, e.UserID, e.TaskID, e.UserAnswerText, e.Status, e.CreatedAt).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("error enqueueing answer: %w", err)
	}
	return nil
}

func (r *PostgresQueueRepository) ListPending(ctx context.Context, limit int) ([]*queue.Entry, error) {
	query := `SELECT id, chat_id, user_id, task_id, user_answer_text, status, created_at,
                     processed_at, error_message, claimed_by, claimed_at
               FROM processing_queue WHERE status = $1 ORDER BY created_at ASC LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, queue.StatusPending, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing pending entries: %w", err)
	}
	defer rows.Close()

	entries := make([]*queue.Entry, 0, limit)
	for rows.Next() {
		e := &queue.Entry{}
		if err := rows.Scan(&e.ID, &e.ChatID, &e.UserID, &e.TaskID, &e.UserAnswerText, &e.Status, &e.CreatedAt,
			&e.ProcessedAt, &e.ErrorMessage, &e.ClaimedBy, &e.ClaimedAt); err != nil {
			return nil, fmt.Errorf("error scanning queue entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating queue entries: %w", err)
	}
	return entries, nil
}

func (r *PostgresQueueRepository) Claim(ctx context.Context, id int64, workerID string, at time.Time) error {
	query := `UPDATE processing_queue SET status = $1, claimed_by = $2, claimed_at = $3
               WHERE id = $4 AND status = $5`
	res, err := r.db.ExecContext(ctx, query, queue.StatusProcessing, workerID, at, id, queue.StatusPending)
	if err != nil {
		return fmt.Errorf("error claiming queue entry %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error claiming queue entry %d: %w", id, err)
	}
	if n == 0 {
		return queue.ErrNotClaimed
	}
	return nil
}

func (r *PostgresQueueRepository) Release(ctx context.Context, id int64, workerID string) error {
	query := `UPDATE processing_queue SET status = $1, claimed_by = NULL, claimed_at = NULL
               WHERE id = $2 AND status = $3 AND claimed_by = $4`
	if _, err := r.db.ExecContext(ctx, query, queue.StatusPending, id, queue.StatusProcessing, workerID); err != nil {
		return fmt.Errorf("error releasing queue entry %d: %w", id, err)
	}
	return nil
}

func (r *PostgresQueueRepository) ReleaseStale(ctx context.Context, olderThan time.Time) (int, error) {
	query := `UPDATE processing_queue SET status = $1, claimed_by = NULL, claimed_at = NULL
               WHERE status = $2 AND claimed_at < $3`
	res, err := r.db.ExecContext(ctx, query, queue.StatusPending, queue.StatusProcessing, olderThan)
	if err != nil {
		return 0, fmt.Errorf("error releasing stale entries: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("error releasing stale entries: %w", err)
	}
	return int(n), nil
}

func (r *PostgresQueueRepository) MarkProcessed(ctx context.Context, id int64, at time.Time) error {
	query := `UPDATE processing_queue SET status = $1, processed_at = $2 WHERE id = $3`
	if _, err := r.db.ExecContext(ctx, query, queue.StatusProcessed, at, id); err != nil {
		return fmt.Errorf("error marking entry %d processed: %w", id, err)
	}
	return nil
}

func (r *PostgresQueueRepository) MarkError(ctx context.Context, id int64, message string) error {
	query := `UPDATE processing_queue SET status = $1, error_message = $2 WHERE id = $3`
	if _, err := r.db.ExecContext(ctx, query, queue.StatusError, message, id); err != nil {
		return fmt.Errorf("error marking entry %d as error: %w", id, err)
	}
	return nil
}
