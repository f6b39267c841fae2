package storage

import (
	"fmt"

	"task_practice_bot/internal/domain/attempt"
	"task_practice_bot/internal/domain/queue"
	"task_practice_bot/internal/domain/session"
	"task_practice_bot/internal/domain/task"
	"task_practice_bot/internal/domain/user"
	"task_practice_bot/internal/infra/config"
	idb "task_practice_bot/internal/infra/database"
	"task_practice_bot/internal/infra/postgrest"

	"github.com/sirupsen/logrus"
)

// Repositories groups the datastore access used by both binaries.
type Repositories struct {
	Users    user.Repository
	Tasks    task.Repository
	Attempts attempt.Repository
	Sessions session.Repository
	Queue    queue.Repository

	closeFn func() error
}

// Close releases the underlying connection, if any.
func (r *Repositories) Close() error {
	if r.closeFn == nil {
		return nil
	}
	return r.closeFn()
}

// New opens the backend selected by DATASTORE_BACKEND.
func New(cfg *config.AppConfig, logger *logrus.Entry) (*Repositories, error) {
	switch cfg.DatastoreBackend {
	case config.BackendREST:
		client := postgrest.NewClient(cfg.SupabaseURL, cfg.SupabaseKey, logger.WithField("backend", config.BackendREST))
		return &Repositories{
			Users:    postgrest.NewUserRepository(client),
			Tasks:    postgrest.NewTaskRepository(client),
			Attempts: postgrest.NewAttemptRepository(client),
			Sessions: postgrest.NewSessionRepository(client),
			Queue:    postgrest.NewQueueRepository(client),
		}, nil
	case config.BackendPostgres:
		db, err := idb.NewPostgresConnection(cfg.DatabaseURL, idb.PoolConfigFrom(cfg))
		if err != nil {
			return nil, err
		}
		return &Repositories{
			Users:    idb.NewPostgresUserRepository(db),
			Tasks:    idb.NewPostgresTaskRepository(db),
			Attempts: idb.NewPostgresAttemptRepository(db),
			Sessions: idb.NewPostgresSessionRepository(db),
			Queue:    idb.NewPostgresQueueRepository(db),
			closeFn:  db.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unknown datastore backend %q", cfg.DatastoreBackend)
	}
}
