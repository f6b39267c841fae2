package database

import (
	"context"
	"database/sql"
	"fmt"

	"task_practice_bot/internal/domain/session"
)

type PostgresSessionRepository struct {
	db *sql.DB
}

func NewPostgresSessionRepository(db *sql.DB) *PostgresSessionRepository {
	return &PostgresSessionRepository{db: db}
}

func (r *PostgresSessionRepository) Get(ctx context.Context, userID int64) (*session.State, error) {
	query := `SELECT user_id, state, data, updated_at FROM user_states WHERE user_id = $1`
	s := &session.State{}
	var (
		kind string
		data []byte
	)
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&s.UserID, &kind, &data, &s.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, session.ErrNotFound
		}
		return nil, fmt.Errorf("error getting user state: %w", err)
	}
	s.Kind = session.Kind(kind)
	if err := session.DecodeData(s, data); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *PostgresSessionRepository) Upsert(ctx context.Context, s *session.State) error {
	data, err := session.EncodeData(s)
	if err != nil {
		return fmt.Errorf("error encoding user state: %w", err)
	}
	query := `INSERT INTO user_states (user_id, state, data, updated_at)
               VALUES ($1, $2, $3, $4)
               ON CONFLICT (user_id) DO UPDATE
               SET state = EXCLUDED.state, data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, s.UserID, string(s.Kind), data, s.UpdatedAt); err != nil {
		return fmt.Errorf("error saving user state: %w", err)
	}
	return nil
}

func (r *PostgresSessionRepository) Delete(ctx context.Context, userID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM user_states WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("error clearing user state: %w", err)
	}
	return nil
}
