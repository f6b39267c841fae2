package postgrest

import (
	"context"
	"fmt"

	"task_practice_bot/internal/domain/task"

	"github.com/ecodeclub/ekit/slice"
)

const tableTasks = "tasks"

type taskRow struct {
	ID            int64    `json:"id"`
	Category      *string  `json:"category"`
	Text          string   `json:"text"`
	AnswerKeyText string   `json:"answer_key_text"`
	MaxScore      *float64 `json:"max_score"`
}

func (r taskRow) toDomain() *task.Task {
	t := &task.Task{ID: r.ID, Text: r.Text, AnswerKeyText: r.AnswerKeyText, MaxScore: task.DefaultMaxScore}
	if r.Category != nil {
		t.Category = *r.Category
	}
	if r.MaxScore != nil {
		t.MaxScore = *r.MaxScore
	}
	return t
}

type TaskRepository struct {
	client *Client
}

func NewTaskRepository(c *Client) *TaskRepository {
	return &TaskRepository{client: c}
}

func (r *TaskRepository) GetByID(ctx context.Context, id int64) (*task.Task, error) {
	var rows []taskRow
	if err := r.client.Get(ctx, tableTasks, NewQuery().Eq("id", id), &rows); err != nil {
		return nil, fmt.Errorf("error getting task %d: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, task.ErrNotFound
	}
	return rows[0].toDomain(), nil
}

func (r *TaskRepository) List(ctx context.Context, category string) ([]*task.Task, error) {
	q := NewQuery()
	if !task.IsAllCategories(category) {
		q.Eq("category", category)
	}
	var rows []taskRow
	if err := r.client.Get(ctx, tableTasks, q, &rows); err != nil {
		return nil, fmt.Errorf("error listing tasks: %w", err)
	}
	return slice.Map(rows, func(idx int, src taskRow) *task.Task {
		return src.toDomain()
	}), nil
}

func (r *TaskRepository) ListCategories(ctx context.Context) ([]string, error) {
	var rows []taskRow
	if err := r.client.Get(ctx, tableTasks, NewQuery().Select("category"), &rows); err != nil {
		return nil, fmt.Errorf("error listing categories: %w", err)
	}
	return slice.Map(rows, func(idx int, src taskRow) string {
		if src.Category == nil {
			return ""
		}
		return *src.Category
	}), nil
}
