package postgrest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"task_practice_bot/internal/domain/queue"
	"task_practice_bot/internal/domain/task"
	"task_practice_bot/internal/domain/user"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	method string
	path   string
	query  map[string][]string
	header http.Header
	body   string
}

// newTestServer answers every request with status and body and records what it received.
func newTestServer(t *testing.T, status int, body string) (*Client, *[]recordedRequest) {
	t.Helper()
	var got []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		got = append(got, recordedRequest{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.Query(),
			header: r.Header.Clone(),
			body:   string(raw),
		})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	l := logrus.New()
	l.SetOutput(io.Discard)
	return NewClient(srv.URL+"/", "secret-key", logrus.NewEntry(l)), &got
}

func TestClient_SendsAuthHeaders(t *testing.T) {
	c, got := newTestServer(t, http.StatusOK, `[]`)
	var rows []userRow
	require.NoError(t, c.Get(context.Background(), tableUsers, NewQuery().Eq("user_id", 42), &rows))

	require.Len(t, *got, 1)
	req := (*got)[0]
	assert.Equal(t, http.MethodGet, req.method)
	assert.Equal(t, "/rest/v1/users", req.path)
	assert.Equal(t, []string{"eq.42"}, req.query["user_id"])
	assert.Equal(t, "secret-key", req.header.Get("apikey"))
	assert.Equal(t, "Bearer secret-key", req.header.Get("Authorization"))
	assert.Equal(t, "return=representation", req.header.Get("Prefer"))
}

func TestClient_Errors(t *testing.T) {
	testCases := []struct {
		name      string
		status    int
		retryable bool
	}{
		{name: "server error", status: http.StatusBadGateway, retryable: true},
		{name: "rate limited", status: http.StatusTooManyRequests, retryable: true},
		{name: "bad request", status: http.StatusBadRequest, retryable: false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newTestServer(t, tc.status, `{"message":"boom"}`)
			err := c.Get(context.Background(), tableTasks, NewQuery(), &[]taskRow{})

			var aerr *APIError
			require.True(t, errors.As(err, &aerr))
			assert.Equal(t, tc.status, aerr.StatusCode)
			assert.Contains(t, aerr.Body, "boom")
			assert.Equal(t, tc.retryable, IsRetryable(err))
		})
	}
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	l := logrus.New()
	l.SetOutput(io.Discard)
	c := NewClient(url, "k", logrus.NewEntry(l))

	err := c.Delete(context.Background(), tableAttempts, NewQuery().Eq("user_id", 1))
	var terr *TransportError
	require.True(t, errors.As(err, &terr))
	assert.True(t, IsRetryable(err))
}

func TestClient_NoContent(t *testing.T) {
	c, _ := newTestServer(t, http.StatusNoContent, ``)
	var rows []userRow
	require.NoError(t, c.Patch(context.Background(), tableUsers, NewQuery().Eq("user_id", 1), map[string]any{"tasks_left": 1}, &rows))
	assert.Empty(t, rows)
}

func TestUserRepository_NotFoundAndConflict(t *testing.T) {
	c, _ := newTestServer(t, http.StatusOK, `[]`)
	_, err := NewUserRepository(c).GetByUserID(context.Background(), 1)
	assert.ErrorIs(t, err, user.ErrNotFound)

	c, _ = newTestServer(t, http.StatusConflict, `{"code":"23505"}`)
	err = NewUserRepository(c).Create(context.Background(), user.New(1, "x"))
	assert.ErrorIs(t, err, user.ErrAlreadyExists)
}

func TestTaskRepository_DefaultsMaxScore(t *testing.T) {
	c, got := newTestServer(t, http.StatusOK, `[{"id":1,"category":null,"text":"t","answer_key_text":"k","max_score":null}]`)
	tasks, err := NewTaskRepository(c).List(context.Background(), "Логика")
	require.NoError(t, err)

	require.Len(t, tasks, 1)
	assert.Equal(t, task.DefaultMaxScore, tasks[0].MaxScore)
	assert.Equal(t, "", tasks[0].Category)
	assert.Equal(t, []string{"eq.Логика"}, (*got)[0].query["category"])
}

func TestQueueRepository_ListPending(t *testing.T) {
	c, got := newTestServer(t, http.StatusOK, `[
		{"id":3,"chat_id":10,"user_id":20,"task_id":4,"user_answer_text":"a","status":"pending","created_at":"2024-05-01T10:00:00.123456"}
	]`)
	entries, err := NewQueueRepository(c).ListPending(context.Background(), 5)
	require.NoError(t, err)

	req := (*got)[0]
	assert.Equal(t, "/rest/v1/processing_queue", req.path)
	assert.Equal(t, []string{"eq.pending"}, req.query["status"])
	assert.Equal(t, []string{"created_at.asc"}, req.query["order"])
	assert.Equal(t, []string{"5"}, req.query["limit"])

	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, int64(3), e.ID)
	assert.Equal(t, queue.StatusPending, e.Status)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 123456000, time.UTC), e.CreatedAt)
	assert.False(t, e.ClaimedBy.Valid)
}

func TestQueueRepository_Claim(t *testing.T) {
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	c, got := newTestServer(t, http.StatusOK, `[{"id":3,"status":"processing","created_at":"2024-05-01T09:00:00Z"}]`)
	require.NoError(t, NewQueueRepository(c).Claim(context.Background(), 3, "w1", at))

	req := (*got)[0]
	assert.Equal(t, http.MethodPatch, req.method)
	assert.Equal(t, []string{"eq.3"}, req.query["id"])
	assert.Equal(t, []string{"eq.pending"}, req.query["status"])
	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(req.body), &body))
	assert.Equal(t, "processing", body["status"])
	assert.Equal(t, "w1", body["claimed_by"])
	assert.Equal(t, "2024-05-01T10:00:00Z", body["claimed_at"])

	c, _ = newTestServer(t, http.StatusOK, `[]`)
	err := NewQueueRepository(c).Claim(context.Background(), 3, "w2", at)
	assert.ErrorIs(t, err, queue.ErrNotClaimed)
}

func TestTimestamp_Unmarshal(t *testing.T) {
	testCases := []struct {
		in   string
		want time.Time
	}{
		{in: `"2024-05-01T10:00:00Z"`, want: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
		{in: `"2024-05-01T13:00:00+03:00"`, want: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
		{in: `"2024-05-01T10:00:00.5"`, want: time.Date(2024, 5, 1, 10, 0, 0, 500000000, time.UTC)},
		{in: `"2024-05-01 10:00:00"`, want: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			var ts Timestamp
			require.NoError(t, json.Unmarshal([]byte(tc.in), &ts))
			assert.True(t, tc.want.Equal(ts.Time), "got %s", ts.Time)
		})
	}

	var ts Timestamp
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &ts))
}
