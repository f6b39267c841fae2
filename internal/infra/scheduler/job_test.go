package scheduler

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"task_practice_bot/internal/app"
	"task_practice_bot/internal/infra/metrics"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBatchService struct {
	result   app.BatchResult
	err      error
	deadline time.Time
	calls    int
}

func (s *fakeBatchService) RunBatch(ctx context.Context) (app.BatchResult, error) {
	s.calls++
	s.deadline, _ = ctx.Deadline()
	return s.result, s.err
}

func TestGradingJob_Run(t *testing.T) {
	svc := &fakeBatchService{result: app.BatchResult{Fetched: 2, Processed: 2}}
	job := NewGradingJob(svc, metrics.New(), time.Minute)

	start := time.Now()
	result, err := job.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, 1, svc.calls)
	assert.WithinDuration(t, start.Add(time.Minute), svc.deadline, 5*time.Second)
}

func TestGradingJob_RunError(t *testing.T) {
	svc := &fakeBatchService{err: errors.New("queue unavailable")}
	job := NewGradingJob(svc, nil, time.Minute)

	_, err := job.Run(context.Background())
	assert.EqualError(t, err, "queue unavailable")
}

func TestGradingScheduler_InvalidSpec(t *testing.T) {
	l := logrus.New()
	l.SetOutput(io.Discard)
	s := NewGradingScheduler(NewGradingJob(&fakeBatchService{}, nil, time.Minute), logrus.NewEntry(l), "every now and then")

	assert.Error(t, s.Start())
}
