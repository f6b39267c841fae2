package app

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"task_practice_bot/internal/domain/attempt"
	"task_practice_bot/internal/domain/queue"
	"task_practice_bot/internal/domain/session"
	"task_practice_bot/internal/domain/task"
	"task_practice_bot/internal/domain/user"
)

var errStoreDown = errors.New("datastore unavailable")

// memStore is an in-memory datastore shared by the fake repositories below.
type memStore struct {
	mu       sync.Mutex
	nextID   int64
	users    map[int64]*user.User
	tasks    []*task.Task
	attempts []*attempt.Attempt
	sessions map[int64]*session.State
	entries  []*queue.Entry

	failUsers     error
	failEnqueue   error
	failDecrement error
	failAttempts  error
	failTaskGet   error
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[int64]*user.User{},
		sessions: map[int64]*session.State{},
	}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *memStore) addTask(t task.Task) *task.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := t
	s.tasks = append(s.tasks, &c)
	return &c
}

func (s *memStore) entry(id int64) *queue.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.ID == id {
			c := *e
			return &c
		}
	}
	return nil
}

type memUsers struct{ *memStore }

func (r memUsers) GetByUserID(_ context.Context, userID int64) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failUsers != nil {
		return nil, r.failUsers
	}
	u, ok := r.users[userID]
	if !ok {
		return nil, user.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (r memUsers) Create(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.UserID]; ok {
		return user.ErrAlreadyExists
	}
	c := *u
	r.users[u.UserID] = &c
	return nil
}

func (r memUsers) DecrementTasksLeft(_ context.Context, userID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failDecrement != nil {
		return 0, r.failDecrement
	}
	u, ok := r.users[userID]
	if !ok {
		return 0, nil
	}
	if u.TasksLeft > 0 {
		u.TasksLeft--
	}
	return u.TasksLeft, nil
}

type memTasks struct{ *memStore }

func (r memTasks) GetByID(_ context.Context, id int64) (*task.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failTaskGet != nil {
		return nil, r.failTaskGet
	}
	for _, t := range r.tasks {
		if t.ID == id {
			c := *t
			return &c, nil
		}
	}
	return nil, task.ErrNotFound
}

func (r memTasks) List(_ context.Context, category string) ([]*task.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*task.Task
	for _, t := range r.tasks {
		if task.IsAllCategories(category) || t.Category == category {
			c := *t
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r memTasks) ListCategories(_ context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.tasks))
	for _, t := range r.tasks {
		out = append(out, t.Category)
	}
	return out, nil
}

type memAttempts struct{ *memStore }

func (r memAttempts) Create(_ context.Context, a *attempt.Attempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAttempts != nil {
		return r.failAttempts
	}
	a.ID = r.id()
	a.CreatedAt = time.Now()
	c := *a
	r.attempts = append(r.attempts, &c)
	return nil
}

func (r memAttempts) ListByUser(_ context.Context, userID int64) ([]*attempt.Attempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAttempts != nil {
		return nil, r.failAttempts
	}
	var out []*attempt.Attempt
	for _, a := range r.attempts {
		if a.UserID == userID {
			c := *a
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r memAttempts) HasAny(ctx context.Context, userID int64) (bool, error) {
	list, err := r.ListByUser(ctx, userID)
	return len(list) > 0, err
}

func (r memAttempts) DeleteByUser(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.attempts[:0]
	for _, a := range r.attempts {
		if a.UserID != userID {
			kept = append(kept, a)
		}
	}
	r.attempts = kept
	return nil
}

type memSessions struct{ *memStore }

func (r memSessions) Get(_ context.Context, userID int64) (*session.State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.sessions[userID]
	if !ok {
		return nil, session.ErrNotFound
	}
	c := *st
	return &c, nil
}

func (r memSessions) Upsert(_ context.Context, st *session.State) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *st
	r.sessions[st.UserID] = &c
	return nil
}

func (r memSessions) Delete(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, userID)
	return nil
}

type memQueue struct{ *memStore }

func (r memQueue) Enqueue(_ context.Context, e *queue.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failEnqueue != nil {
		return r.failEnqueue
	}
	e.ID = r.id()
	c := *e
	r.entries = append(r.entries, &c)
	return nil
}

func (r memQueue) ListPending(_ context.Context, limit int) ([]*queue.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*queue.Entry
	for _, e := range r.entries {
		if e.Status == queue.StatusPending {
			c := *e
			out = append(out, &c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r memQueue) find(id int64) *queue.Entry {
	for _, e := range r.entries {
		if e.ID == id {
			return e
		}
	}
	return nil
}

func (r memQueue) Claim(_ context.Context, id int64, workerID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := r.find(id)
	if e == nil || e.Status != queue.StatusPending {
		return queue.ErrNotClaimed
	}
	e.Status = queue.StatusProcessing
	e.ClaimedBy.String, e.ClaimedBy.Valid = workerID, true
	e.ClaimedAt.Time, e.ClaimedAt.Valid = at, true
	return nil
}

func (r memQueue) Release(_ context.Context, id int64, workerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := r.find(id)
	if e != nil && e.Status == queue.StatusProcessing && e.ClaimedBy.String == workerID {
		e.Status = queue.StatusPending
		e.ClaimedBy.Valid, e.ClaimedAt.Valid = false, false
	}
	return nil
}

func (r memQueue) ReleaseStale(_ context.Context, olderThan time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.entries {
		if e.Status == queue.StatusProcessing && e.ClaimedAt.Valid && e.ClaimedAt.Time.Before(olderThan) {
			e.Status = queue.StatusPending
			e.ClaimedBy.Valid, e.ClaimedAt.Valid = false, false
			n++
		}
	}
	return n, nil
}

func (r memQueue) MarkProcessed(_ context.Context, id int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e := r.find(id); e != nil {
		e.Status = queue.StatusProcessed
		e.ProcessedAt.Time, e.ProcessedAt.Valid = at, true
	}
	return nil
}

func (r memQueue) MarkError(_ context.Context, id int64, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e := r.find(id); e != nil {
		e.Status = queue.StatusError
		e.ErrorMessage.String, e.ErrorMessage.Valid = message, true
	}
	return nil
}
