package session

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("session state not found")

// Repository stores at most one State per user.
type Repository interface {
	// Get returns the stored state as is, expired or not.
	Get(ctx context.Context, userID int64) (*State, error)
	// Upsert overwrites the user's state.
	Upsert(ctx context.Context, s *State) error
	Delete(ctx context.Context, userID int64) error
}
