package postgrest

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"task_practice_bot/internal/domain/queue"

	"github.com/ecodeclub/ekit/slice"
)

const tableProcessingQueue = "processing_queue"

type queueRow struct {
	ID             int64        `json:"id,omitempty"`
	ChatID         int64        `json:"chat_id"`
	UserID         int64        `json:"user_id"`
	TaskID         int64        `json:"task_id"`
	UserAnswerText string       `json:"user_answer_text"`
	Status         queue.Status `json:"status"`
	CreatedAt      Timestamp    `json:"created_at"`
	ProcessedAt    *Timestamp   `json:"processed_at,omitempty"`
	ErrorMessage   *string      `json:"error_message,omitempty"`
	ClaimedBy      *string      `json:"claimed_by,omitempty"`
	ClaimedAt      *Timestamp   `json:"claimed_at,omitempty"`
}

func (r queueRow) toDomain() *queue.Entry {
	e := &queue.Entry{
		ID:             r.ID,
		ChatID:         r.ChatID,
		UserID:         r.UserID,
		TaskID:         r.TaskID,
		UserAnswerText: r.UserAnswerText,
		Status:         r.Status,
		CreatedAt:      r.CreatedAt.Time,
	}
	if r.ProcessedAt != nil {
		e.ProcessedAt = sql.NullTime{Time: r.ProcessedAt.Time, Valid: true}
	}
	if r.ErrorMessage != nil {
		e.ErrorMessage = sql.NullString{String: *r.ErrorMessage, Valid: true}
	}
	if r.ClaimedBy != nil {
		e.ClaimedBy = sql.NullString{String: *r.ClaimedBy, Valid: true}
	}
	if r.ClaimedAt != nil {
		e.ClaimedAt = sql.NullTime{Time: r.ClaimedAt.Time, Valid: true}
	}
	return e
}

type QueueRepository struct {
	client *Client
}

func NewQueueRepository(c *Client) *QueueRepository {
	return &QueueRepository{client: c}
}

func (r *QueueRepository) Enqueue(ctx context.Context, e *queue.Entry) error {
	in := queueRow{
		ChatID:         e.ChatID,
		UserID:         e.UserID,
		TaskID:         e.TaskID,
		UserAnswerText: e.UserAnswerText,
		Status:         queue.StatusPending,
		CreatedAt:      Timestamp{Time: e.CreatedAt},
	}
	var rows []queueRow
	if err := r.client.Post(ctx, tableProcessingQueue, in, &rows); err != nil {
		return fmt.Errorf("error enqueueing answer of user %d: %w", e.UserID, err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("error enqueueing answer of user %d: no row returned", e.UserID)
	}
	*e = *rows[0].toDomain()
	return nil
}

func (r *QueueRepository) ListPending(ctx context.Context, limit int) ([]*queue.Entry, error) {
	q := NewQuery().
		Select("*").
		Eq("status", queue.StatusPending).
		Limit(limit).
		Order("created_at", true)
	var rows []queueRow
	if err := r.client.Get(ctx, tableProcessingQueue, q, &rows); err != nil {
		return nil, fmt.Errorf("error listing pending queue entries: %w", err)
	}
	return slice.Map(rows, func(idx int, src queueRow) *queue.Entry {
		return src.toDomain()
	}), nil
}

// Claim relies on the status=eq.pending filter: PostgREST applies the PATCH as one
// UPDATE ... WHERE, so only one worker gets the row back.
func (r *QueueRepository) Claim(ctx context.Context, id int64, workerID string, at time.Time) error {
	q := NewQuery().Eq("id", id).Eq("status", queue.StatusPending)
	body := map[string]any{
		"status":     queue.StatusProcessing,
		"claimed_by": workerID,
		"claimed_at": Timestamp{Time: at},
	}
	var rows []queueRow
	if err := r.client.Patch(ctx, tableProcessingQueue, q, body, &rows); err != nil {
		return fmt.Errorf("error claiming queue entry %d: %w", id, err)
	}
	if len(rows) == 0 {
		return queue.ErrNotClaimed
	}
	return nil
}

func (r *QueueRepository) Release(ctx context.Context, id int64, workerID string) error {
	q := NewQuery().Eq("id", id).Eq("status", queue.StatusProcessing).Eq("claimed_by", workerID)
	body := map[string]any{
		"status":     queue.StatusPending,
		"claimed_by": nil,
		"claimed_at": nil,
	}
	if err := r.client.Patch(ctx, tableProcessingQueue, q, body, nil); err != nil {
		return fmt.Errorf("error releasing queue entry %d: %w", id, err)
	}
	return nil
}

func (r *QueueRepository) ReleaseStale(ctx context.Context, olderThan time.Time) (int, error) {
	q := NewQuery().
		Eq("status", queue.StatusProcessing).
		Lt("claimed_at", olderThan.UTC().Format(time.RFC3339))
	body := map[string]any{
		"status":     queue.StatusPending,
		"claimed_by": nil,
		"claimed_at": nil,
	}
	var rows []queueRow
	if err := r.client.Patch(ctx, tableProcessingQueue, q, body, &rows); err != nil {
		return 0, fmt.Errorf("error releasing stale queue entries: %w", err)
	}
	return len(rows), nil
}

func (r *QueueRepository) MarkProcessed(ctx context.Context, id int64, at time.Time) error {
	body := map[string]any{
		"status":       queue.StatusProcessed,
		"processed_at": Timestamp{Time: at},
	}
	if err := r.client.Patch(ctx, tableProcessingQueue, NewQuery().Eq("id", id), body, nil); err != nil {
		return fmt.Errorf("error marking queue entry %d processed: %w", id, err)
	}
	return nil
}

func (r *QueueRepository) MarkError(ctx context.Context, id int64, message string) error {
	body := map[string]any{
		"status":        queue.StatusError,
		"error_message": message,
	}
	if err := r.client.Patch(ctx, tableProcessingQueue, NewQuery().Eq("id", id), body, nil); err != nil {
		return fmt.Errorf("error marking queue entry %d as error: %w", id, err)
	}
	return nil
}
