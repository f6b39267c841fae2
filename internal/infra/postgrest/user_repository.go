package postgrest

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"task_practice_bot/internal/domain/user"
)

const tableUsers = "users"

type userRow struct {
	UserID    int64   `json:"user_id"`
	Username  *string `json:"username"`
	IsAllowed bool    `json:"is_allowed"`
	TasksLeft int     `json:"tasks_left"`
}

func (r userRow) toDomain() *user.User {
	u := &user.User{UserID: r.UserID, IsAllowed: r.IsAllowed, TasksLeft: r.TasksLeft}
	if r.Username != nil {
		u.Username = *r.Username
	}
	return u
}

type UserRepository struct {
	client *Client
}

func NewUserRepository(c *Client) *UserRepository {
	return &UserRepository{client: c}
}

func (r *UserRepository) GetByUserID(ctx context.Context, userID int64) (*user.User, error) {
	var rows []userRow
	if err := r.client.Get(ctx, tableUsers, NewQuery().Eq("user_id", userID).Limit(1), &rows); err != nil {
		return nil, fmt.Errorf("error getting user %d: %w", userID, err)
	}
	if len(rows) == 0 {
		return nil, user.ErrNotFound
	}
	return rows[0].toDomain(), nil
}

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	in := userRow{UserID: u.UserID, IsAllowed: u.IsAllowed, TasksLeft: u.TasksLeft}
	if u.Username != "" {
		in.Username = &u.Username
	}
	var rows []userRow
	if err := r.client.Post(ctx, tableUsers, in, &rows); err != nil {
		var aerr *APIError
		if errors.As(err, &aerr) && aerr.StatusCode == http.StatusConflict {
			return user.ErrAlreadyExists
		}
		return fmt.Errorf("error creating user %d: %w", u.UserID, err)
	}
	if len(rows) > 0 {
		*u = *rows[0].toDomain()
	}
	return nil
}

// decrementAttempts bounds the compare-and-set loop in DecrementTasksLeft.
const decrementAttempts = 3

// DecrementTasksLeft lowers the balance by one, never below zero. PostgREST cannot express
// tasks_left - 1, so the write is a compare-and-set: the PATCH only matches while tasks_left
// still holds the value that was read, and a concurrent change makes it re-read.
func (r *UserRepository) DecrementTasksLeft(ctx context.Context, userID int64) (int, error) {
	for i := 0; i < decrementAttempts; i++ {
		u, err := r.GetByUserID(ctx, userID)
		if err != nil {
			return 0, err
		}
		if u.TasksLeft <= 0 {
			return 0, nil
		}

		var rows []userRow
		q := NewQuery().Eq("user_id", userID).Eq("tasks_left", u.TasksLeft)
		if err := r.client.Patch(ctx, tableUsers, q, map[string]any{"tasks_left": u.TasksLeft - 1}, &rows); err != nil {
			return u.TasksLeft, fmt.Errorf("error decrementing tasks_left for user %d: %w", userID, err)
		}
		if len(rows) > 0 {
			return rows[0].TasksLeft, nil
		}
	}
	return 0, fmt.Errorf("error decrementing tasks_left for user %d: balance changed concurrently %d times", userID, decrementAttempts)
}
