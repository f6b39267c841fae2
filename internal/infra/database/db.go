package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"task_practice_bot/internal/infra/config"

	_ "github.com/lib/pq" // PostgreSQL driver
)

const (
	connMaxIdleTime = time.Minute
	pingTimeout     = 10 * time.Second
)

// PoolConfig sizes the connection pool shared by the repositories.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// PoolConfigFrom takes the DB_* pool settings of cfg.
func PoolConfigFrom(cfg *config.AppConfig) PoolConfig {
	return PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	}
}

// apply sizes db. Idle connections are closed after a minute so a worker that
// sleeps between cron runs does not hold them.
func (p PoolConfig) apply(db *sql.DB) {
	db.SetMaxOpenConns(p.MaxOpenConns)
	db.SetMaxIdleConns(p.MaxIdleConns)
	db.SetConnMaxLifetime(p.ConnMaxLifetime)
	db.SetConnMaxIdleTime(connMaxIdleTime)
}

// NewPostgresConnection opens the pool and pings the database before returning.
func NewPostgresConnection(dataSourceName string, pool PoolConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	pool.apply(db)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
