package user

import (
	"context"
	"errors"
)

var (
	ErrNotFound      = errors.New("user not found")
	ErrAlreadyExists = errors.New("user already exists")
)

// Repository defines the operations for persisting and retrieving users.
type Repository interface {
	GetByUserID(ctx context.Context, userID int64) (*User, error)
	Create(ctx context.Context, u *User) error
	// DecrementTasksLeft lowers the balance by one unless it is already zero.
	// It returns the balance after the update.
	DecrementTasksLeft(ctx context.Context, userID int64) (int, error)
}
