package queue

import (
	"context"
	"errors"
	"time"
)

// ErrNotClaimed is returned when an entry is no longer pending at claim time.
var ErrNotClaimed = errors.New("queue entry already claimed or not pending")

type Repository interface {
	Enqueue(ctx context.Context, e *Entry) error
	// ListPending returns up to limit entries with StatusPending, oldest first.
	ListPending(ctx context.Context, limit int) ([]*Entry, error)
	// Claim moves a pending entry to StatusProcessing for workerID in one conditional update.
	Claim(ctx context.Context, id int64, workerID string, at time.Time) error
	// Release puts an entry claimed by workerID back to StatusPending.
	Release(ctx context.Context, id int64, workerID string) error
	// ReleaseStale returns processing entries claimed before olderThan to StatusPending.
	ReleaseStale(ctx context.Context, olderThan time.Time) (int, error)
	MarkProcessed(ctx context.Context, id int64, at time.Time) error
	MarkError(ctx context.Context, id int64, message string) error
}
