package scheduler

import (
	"context"
	"time"

	"task_practice_bot/internal/app"
	"task_practice_bot/internal/infra/metrics"
)

// BatchService is the part of app.GradingService the job drives.
type BatchService interface {
	RunBatch(ctx context.Context) (app.BatchResult, error)
}

// GradingJob runs one batch under a deadline and records it. The cron scheduler,
// the HTTP trigger and the one-shot command all go through it.
type GradingJob struct {
	service BatchService
	metrics *metrics.Metrics
	timeout time.Duration
}

func NewGradingJob(service BatchService, m *metrics.Metrics, timeout time.Duration) *GradingJob {
	return &GradingJob{service: service, metrics: m, timeout: timeout}
}

func (j *GradingJob) Run(ctx context.Context) (app.BatchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	start := time.Now()
	result, err := j.service.RunBatch(ctx)
	if j.metrics != nil {
		j.metrics.ObserveBatch(result, err, time.Since(start))
	}
	return result, err
}
