package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"task_practice_bot/internal/domain/queue"
	"task_practice_bot/internal/domain/session"
	"task_practice_bot/internal/domain/task"
	"task_practice_bot/internal/domain/user"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return db, mock
}

func TestPostgresUserRepository_Create(t *testing.T) {
	testCases := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "created",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("INSERT INTO users .*").
					WithArgs(int64(42), "student", true, 100).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "duplicate user",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("INSERT INTO users .*").
					WillReturnError(&pq.Error{Code: "23505"})
			},
			wantErr: user.ErrAlreadyExists,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			tc.mock(mock)

			err := NewPostgresUserRepository(db).Create(context.Background(), user.New(42, "student"))
			assert.Equal(t, tc.wantErr, err)
		})
	}
}

func TestPostgresUserRepository_DecrementTasksLeft(t *testing.T) {
	testCases := []struct {
		name     string
		mock     func(mock sqlmock.Sqlmock)
		wantLeft int
		wantErr  bool
	}{
		{
			name: "decremented",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("UPDATE users SET tasks_left = tasks_left - 1 .*").
					WithArgs(int64(42)).
					WillReturnRows(sqlmock.NewRows([]string{"tasks_left"}).AddRow(4))
			},
			wantLeft: 4,
		},
		{
			name: "already at zero",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("UPDATE users SET tasks_left .*").
					WillReturnRows(sqlmock.NewRows([]string{"tasks_left"}))
			},
			wantLeft: 0,
		},
		{
			name: "connection lost",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("UPDATE users SET tasks_left .*").
					WillReturnError(errors.New("connection reset"))
			},
			wantErr: true,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			tc.mock(mock)

			left, err := NewPostgresUserRepository(db).DecrementTasksLeft(context.Background(), 42)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantLeft, left)
		})
	}
}

func TestPostgresTaskRepository_GetByID(t *testing.T) {
	db, mock := newMockDB(t)
	columns := []string{"id", "category", "text", "answer_key_text", "max_score"}
	mock.ExpectQuery("SELECT id, category, text, answer_key_text, max_score FROM tasks WHERE id = .*").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(1, nil, "Задача", "Ключ", nil))
	mock.ExpectQuery("SELECT id, category, text, answer_key_text, max_score FROM tasks WHERE id = .*").
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows(columns))

	repo := NewPostgresTaskRepository(db)
	got, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, &task.Task{ID: 1, Text: "Задача", AnswerKeyText: "Ключ", MaxScore: task.DefaultMaxScore}, got)

	_, err = repo.GetByID(context.Background(), 2)
	assert.ErrorIs(t, err, task.ErrNotFound)
}

func TestPostgresQueueRepository_Claim(t *testing.T) {
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	testCases := []struct {
		name     string
		affected int64
		wantErr  error
	}{
		{name: "claimed", affected: 1},
		{name: "lost the race", affected: 0, wantErr: queue.ErrNotClaimed},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			mock.ExpectExec("UPDATE processing_queue SET status = .* WHERE id = .* AND status = .*").
				WithArgs("processing", "w1", at, int64(7), "pending").
				WillReturnResult(sqlmock.NewResult(0, tc.affected))

			err := NewPostgresQueueRepository(db).Claim(context.Background(), 7, "w1", at)
			assert.Equal(t, tc.wantErr, err)
		})
	}
}

func TestPostgresQueueRepository_ReleaseStale(t *testing.T) {
	db, mock := newMockDB(t)
	cutoff := time.Date(2024, 5, 1, 9, 50, 0, 0, time.UTC)
	mock.ExpectExec("UPDATE processing_queue .* WHERE status = .* AND claimed_at < .*").
		WithArgs("pending", "processing", cutoff).
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := NewPostgresQueueRepository(db).ReleaseStale(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestPostgresSessionRepository_Get(t *testing.T) {
	db, mock := newMockDB(t)
	updated := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	columns := []string{"user_id", "state", "data", "updated_at"}
	mock.ExpectQuery("SELECT user_id, state, data, updated_at FROM user_states .*").
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(42, "waiting_for_answer", []byte(`{"task":{"id":3,"text":"Задача","max_score":2}}`), updated))
	mock.ExpectQuery("SELECT user_id, state, data, updated_at FROM user_states .*").
		WithArgs(int64(43)).
		WillReturnRows(sqlmock.NewRows(columns))

	repo := NewPostgresSessionRepository(db)
	st, err := repo.Get(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, session.KindWaitingForAnswer, st.Kind)
	assert.Equal(t, updated, st.UpdatedAt)
	require.NotNil(t, st.Assignment)
	assert.Equal(t, int64(3), st.Assignment.TaskID)

	_, err = repo.Get(context.Background(), 43)
	assert.ErrorIs(t, err, session.ErrNotFound)
}
