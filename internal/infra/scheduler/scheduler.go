package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// GradingScheduler runs the grading job on a cron spec inside a long-running worker.
// A tick is skipped while the previous batch is still running.
type GradingScheduler struct {
	cronEngine *cron.Cron
	job        *GradingJob
	logger     *logrus.Entry
	cronSpec   string
}

func NewGradingScheduler(job *GradingJob, logger *logrus.Entry, cronSpec string) *GradingScheduler {
	cronLogger := cron.PrintfLogger(logger)
	return &GradingScheduler{
		cronEngine: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		job:      job,
		logger:   logger,
		cronSpec: cronSpec,
	}
}

func (s *GradingScheduler) Start() error {
	s.logger.WithField("spec", s.cronSpec).Info("Starting grading scheduler...")

	_, err := s.cronEngine.AddFunc(s.cronSpec, func() {
		s.logger.Debug("Cron job triggered for grading batch")
		if _, err := s.job.Run(context.Background()); err != nil {
			s.logger.WithError(err).Error("Error during scheduled grading batch")
		}
	})
	if err != nil {
		return fmt.Errorf("could not add grading cron job: %w", err)
	}

	s.cronEngine.Start()
	s.logger.Info("Grading scheduler started")
	return nil
}

func (s *GradingScheduler) Stop() {
	s.logger.Info("Stopping grading scheduler...")
	ctx := s.cronEngine.Stop() // Stops the scheduler from adding new jobs, waits for running jobs.
	<-ctx.Done()
	s.logger.Info("Grading scheduler gracefully stopped")
}
