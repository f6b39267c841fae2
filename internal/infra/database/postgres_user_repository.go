package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"task_practice_bot/internal/domain/user"

	"github.com/lib/pq"
)

type PostgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) GetByUserID(ctx context.Context, userID int64) (*user.User, error) {
	query := `SELECT user_id, username, is_allowed, tasks_left FROM users WHERE user_id = $1`
	u := &user.User{}
	var username sql.NullString
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&u.UserID, &username, &u.IsAllowed, &u.TasksLeft)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("error getting user by ID: %w", err)
	}
	u.Username = username.String
	return u, nil
}

func (r *PostgresUserRepository) Create(ctx context.Context, u *user.User) error {
	query := `INSERT INTO users (user_id, username, is_allowed, tasks_left)
               VALUES ($1, $2, $3, $4)`
	username := sql.NullString{String: u.Username, Valid: u.Username != ""}
	_, err := r.db.ExecContext(ctx, query, u.UserID, username, u.IsAllowed, u.TasksLeft)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" { // unique_violation
			return user.ErrAlreadyExists
		}
		return fmt.Errorf("error creating user: %w", err)
	}
	return nil
}

func (r *PostgresUserRepository) DecrementTasksLeft(ctx context.Context, userID int64) (int, error) {
	query := `UPDATE users SET tasks_left = tasks_left - 1
               WHERE user_id = $1 AND tasks_left > 0
               RETURNING tasks_left`
	var left int
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&left)
	if err != nil {
		if err == sql.ErrNoRows { // already at zero, or no such user
			return 0, nil
		}
		return 0, fmt.Errorf("error decrementing tasks_left: %w", err)
	}
	return left, nil
}
