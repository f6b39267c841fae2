package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"task_practice_bot/internal/domain/attempt"
	"task_practice_bot/internal/domain/task"

	"github.com/ecodeclub/ekit/slice"
)

// ErrNoTaskAvailable is returned when every task in the category is solved at max.
var ErrNoTaskAvailable = errors.New("no unsolved task available")

// TaskSelector picks the next exercise for a user. Nothing is cached between calls.
type TaskSelector struct {
	taskRepo    task.Repository
	attemptRepo attempt.Repository
	intn        func(n int) int
}

func NewTaskSelector(tr task.Repository, ar attempt.Repository) *TaskSelector {
	return &TaskSelector{
		taskRepo:    tr,
		attemptRepo: ar,
		intn:        rand.Intn,
	}
}

// RandomTask returns a uniformly random task from category that the user has not yet solved at max.
// An empty category or task.CategoryAll means every task.
func (s *TaskSelector) RandomTask(ctx context.Context, userID int64, category string) (*task.Task, error) {
	attempts, err := s.attemptRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	solved := slice.ToMap(slice.FindAll(attempts, func(a *attempt.Attempt) bool {
		return a.SolvedAtMax()
	}), func(a *attempt.Attempt) int64 {
		return a.TaskID
	})

	tasks, err := s.taskRepo.List(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	eligible := slice.FindAll(tasks, func(t *task.Task) bool {
		_, done := solved[t.ID]
		return !done
	})
	if len(eligible) == 0 {
		return nil, ErrNoTaskAvailable
	}
	return eligible[s.intn(len(eligible))], nil
}

// Categories returns the distinct non-empty task categories in ascending order.
func (s *TaskSelector) Categories(ctx context.Context) ([]string, error) {
	raw, err := s.taskRepo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	set := slice.ToMap(slice.FindAll(raw, func(c string) bool {
		return c != ""
	}), func(c string) string {
		return c
	})

	categories := make([]string, 0, len(set))
	for c := range set {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	return categories, nil
}
