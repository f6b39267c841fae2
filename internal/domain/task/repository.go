package task

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("task not found")

type Repository interface {
	GetByID(ctx context.Context, id int64) (*Task, error)
	// List returns every task in category, or all tasks when IsAllCategories(category).
	List(ctx context.Context, category string) ([]*Task, error)
	// ListCategories returns the raw category value of every task, duplicates included.
	ListCategories(ctx context.Context) ([]string, error)
}
