package database

import (
	"context"
	"database/sql"
	"fmt"

	"task_practice_bot/internal/domain/task"
)

type PostgresTaskRepository struct {
	db *sql.DB
}

func NewPostgresTaskRepository(db *sql.DB) *PostgresTaskRepository {
	return &PostgresTaskRepository{db: db}
}

func (r *PostgresTaskRepository) GetByID(ctx context.Context, id int64) (*task.Task, error) {
	query := `SELECT id, category, text, answer_key_text, max_score FROM tasks WHERE id = $1`
	t, err := scanTask(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, task.ErrNotFound
		}
		return nil, fmt.Errorf("error getting task by ID: %w", err)
	}
	return t, nil
}

func (r *PostgresTaskRepository) List(ctx context.Context, category string) ([]*task.Task, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if task.IsAllCategories(category) {
		rows, err = r.db.QueryContext(ctx, `SELECT id, category, text, answer_key_text, max_score FROM tasks ORDER BY id`)
	} else {
		rows, err = r.db.QueryContext(ctx, `SELECT id, category, text, answer_key_text, max_score FROM tasks WHERE category = $1 ORDER BY id`, category)
	}
	if err != nil {
		return nil, fmt.Errorf("error listing tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]*task.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}
	return tasks, nil
}

func (r *PostgresTaskRepository) ListCategories(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT category FROM tasks`)
	if err != nil {
		return nil, fmt.Errorf("error listing categories: %w", err)
	}
	defer rows.Close()

	categories := make([]string, 0)
	for rows.Next() {
		var c sql.NullString
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("error scanning category: %w", err)
		}
		categories = append(categories, c.String)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}
	return categories, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*task.Task, error) {
	t := &task.Task{}
	var (
		category sql.NullString
		maxScore sql.NullFloat64
	)
	if err := row.Scan(&t.ID, &category, &t.Text, &t.AnswerKeyText, &maxScore); err != nil {
		return nil, err
	}
	t.Category = category.String
	t.MaxScore = task.DefaultMaxScore
	if maxScore.Valid {
		t.MaxScore = maxScore.Float64
	}
	return t, nil
}
