package postgrest

import (
	"context"
	"encoding/json"
	"fmt"

	"task_practice_bot/internal/domain/session"
)

const tableUserStates = "user_states"

type sessionRow struct {
	UserID    int64           `json:"user_id"`
	State     string          `json:"state"`
	Data      json.RawMessage `json:"data"`
	UpdatedAt Timestamp       `json:"updated_at"`
}

type SessionRepository struct {
	client *Client
}

func NewSessionRepository(c *Client) *SessionRepository {
	return &SessionRepository{client: c}
}

func (r *SessionRepository) Get(ctx context.Context, userID int64) (*session.State, error) {
	var rows []sessionRow
	if err := r.client.Get(ctx, tableUserStates, NewQuery().Eq("user_id", userID), &rows); err != nil {
		return nil, fmt.Errorf("error getting state for user %d: %w", userID, err)
	}
	if len(rows) == 0 {
		return nil, session.ErrNotFound
	}
	row := rows[0]
	s := &session.State{UserID: row.UserID, Kind: session.Kind(row.State), UpdatedAt: row.UpdatedAt.Time}
	if err := session.DecodeData(s, row.Data); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *SessionRepository) Upsert(ctx context.Context, s *session.State) error {
	data, err := session.EncodeData(s)
	if err != nil {
		return fmt.Errorf("error encoding state for user %d: %w", s.UserID, err)
	}
	in := sessionRow{UserID: s.UserID, State: string(s.Kind), Data: data, UpdatedAt: Timestamp{Time: s.UpdatedAt}}
	if err := r.client.Upsert(ctx, tableUserStates, "user_id", in, nil); err != nil {
		return fmt.Errorf("error saving state for user %d: %w", s.UserID, err)
	}
	return nil
}

func (r *SessionRepository) Delete(ctx context.Context, userID int64) error {
	if err := r.client.Delete(ctx, tableUserStates, NewQuery().Eq("user_id", userID)); err != nil {
		return fmt.Errorf("error clearing state for user %d: %w", userID, err)
	}
	return nil
}
