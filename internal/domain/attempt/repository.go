package attempt

import "context"

type Repository interface {
	Create(ctx context.Context, a *Attempt) error
	ListByUser(ctx context.Context, userID int64) ([]*Attempt, error)
	HasAny(ctx context.Context, userID int64) (bool, error)
	DeleteByUser(ctx context.Context, userID int64) error
}
