package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"task_practice_bot/internal/domain/attempt"
	"task_practice_bot/internal/domain/grading"
	"task_practice_bot/internal/domain/queue"
	"task_practice_bot/internal/domain/task"
	domainTelegram "task_practice_bot/internal/domain/telegram"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// ErrorTaskNotFound is stored on queue entries whose task no longer exists.
const ErrorTaskNotFound = "Task not found"

const (
	DefaultBatchSize  = 5
	DefaultClaimLease = 10 * time.Minute

	releaseTimeout = 10 * time.Second
)

// BatchResult counts what happened to the entries of one run.
type BatchResult struct {
	Fetched   int // pending entries listed
	Processed int // graded, stored and marked processed
	Failed    int // marked error, not retried
	Retried   int // left or put back to pending for the next run
	Skipped   int // claimed by another worker
	Released  int // stale claims returned to pending before listing
}

// Idle reports whether the run found nothing to do.
func (r BatchResult) Idle() bool {
	return r.Fetched == 0
}

// Summary is the plain-text body returned by the trigger endpoint.
func (r BatchResult) Summary() string {
	if r.Idle() {
		return "Idle"
	}
	return fmt.Sprintf("Processed %d tasks", r.Fetched)
}

type GradingConfig struct {
	WorkerID   string
	BatchSize  int
	ClaimLease time.Duration
}

type outcome int

const (
	outcomeProcessed outcome = iota
	outcomeFailed
	outcomeRetried
	outcomeSkipped
)

// GradingService drains the processing queue: claim, grade, store the attempt, notify.
type GradingService struct {
	queueRepo      queue.Repository
	taskRepo       task.Repository
	attemptRepo    attempt.Repository
	grader         grading.Grader
	telegramClient domainTelegram.Client
	logger         *logrus.Entry
	cfg            GradingConfig
	now            func() time.Time
}

func NewGradingService(
	qr queue.Repository,
	tr task.Repository,
	ar attempt.Repository,
	g grading.Grader,
	tc domainTelegram.Client,
	logger *logrus.Entry,
	cfg GradingConfig,
) *GradingService {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.ClaimLease <= 0 {
		cfg.ClaimLease = DefaultClaimLease
	}
	return &GradingService{
		queueRepo:      qr,
		taskRepo:       tr,
		attemptRepo:    ar,
		grader:         g,
		telegramClient: tc,
		logger:         logger.WithField("worker_id", cfg.WorkerID),
		cfg:            cfg,
		now:            time.Now,
	}
}

// RunBatch processes up to BatchSize pending entries, oldest first.
// Only a failure to list the queue is returned; per-entry failures are counted in the result.
func (s *GradingService) RunBatch(ctx context.Context) (BatchResult, error) {
	var result BatchResult

	released, err := s.queueRepo.ReleaseStale(ctx, s.now().UTC().Add(-s.cfg.ClaimLease))
	if err != nil {
		s.logger.WithError(err).Warn("Failed to release stale claims")
	} else if released > 0 {
		s.logger.WithField("released", released).Warn("Released stale claims back to pending")
	}
	result.Released = released

	entries, err := s.queueRepo.ListPending(ctx, s.cfg.BatchSize)
	if err != nil {
		return result, fmt.Errorf("failed to list pending entries: %w", err)
	}
	result.Fetched = len(entries)
	if len(entries) == 0 {
		s.logger.Debug("No pending entries")
		return result, nil
	}
	s.logger.WithField("count", len(entries)).Info("Found pending entries")

	for i, e := range entries {
		if ctx.Err() != nil {
			s.logger.WithField("left", len(entries)-i).Warn("Batch deadline reached, leaving remaining entries pending")
			result.Retried += len(entries) - i
			break
		}
		switch s.processEntry(ctx, e) {
		case outcomeProcessed:
			result.Processed++
		case outcomeFailed:
			result.Failed++
		case outcomeRetried:
			result.Retried++
		case outcomeSkipped:
			result.Skipped++
		}
	}

	s.logger.WithFields(logrus.Fields{
		"fetched":   result.Fetched,
		"processed": result.Processed,
		"failed":    result.Failed,
		"retried":   result.Retried,
		"skipped":   result.Skipped,
	}).Info("Batch finished")
	return result, nil
}

func (s *GradingService) processEntry(ctx context.Context, e *queue.Entry) outcome {
	logCtx := s.logger.WithFields(logrus.Fields{
		"queue_id": e.ID,
		"user_id":  e.UserID,
		"task_id":  e.TaskID,
	})

	if err := s.queueRepo.Claim(ctx, e.ID, s.cfg.WorkerID, s.now().UTC()); err != nil {
		if errors.Is(err, queue.ErrNotClaimed) {
			logCtx.Info("Entry already claimed, skipping")
			return outcomeSkipped
		}
		logCtx.WithError(err).Error("Failed to claim entry")
		return outcomeRetried
	}

	t, err := s.taskRepo.GetByID(ctx, e.TaskID)
	if errors.Is(err, task.ErrNotFound) {
		logCtx.Warn("Task not found, marking entry as error")
		if err := s.queueRepo.MarkError(ctx, e.ID, ErrorTaskNotFound); err != nil {
			logCtx.WithError(err).Error("Failed to mark entry as error")
		}
		return outcomeFailed
	}
	if err != nil {
		logCtx.WithError(err).Error("Failed to load task")
		s.release(ctx, e, logCtx)
		return outcomeRetried
	}

	output, err := s.grader.Grade(ctx, BuildPrompt(t.Text, t.AnswerKeyText, e.UserAnswerText, t.MaxScore))
	if err == nil && strings.TrimSpace(output) == "" {
		err = errors.New("empty grader output")
	}
	if err != nil {
		logCtx.WithError(err).WithField("grader", s.grader.Name()).Error("Grading failed, entry will be retried")
		s.release(ctx, e, logCtx)
		return outcomeRetried
	}

	score, ok := ParseScore(output)
	if !ok {
		logCtx.WithField("output", output).Warn("Could not parse score from grader output, using 0")
	}

	a := &attempt.Attempt{
		UserID:         e.UserID,
		TaskID:         e.TaskID,
		UserAnswerText: e.UserAnswerText,
		Score:          score,
		MaxScore:       t.MaxScore,
		Comment:        output,
	}
	if err := s.attemptRepo.Create(ctx, a); err != nil {
		logCtx.WithError(err).Error("Failed to store attempt, entry will be retried")
		s.release(ctx, e, logCtx)
		return outcomeRetried
	}

	if err := s.queueRepo.MarkProcessed(ctx, e.ID, s.now().UTC()); err != nil {
		// The claim expires after the lease and the entry is graded again.
		logCtx.WithError(err).WithField("attempt_id", a.ID).Error("Failed to mark entry processed")
		return outcomeFailed
	}
	logCtx.WithFields(logrus.Fields{"attempt_id": a.ID, "score": score, "max_score": t.MaxScore}).Info("Entry graded")

	s.notify(e.ChatID, output, logCtx)
	return outcomeProcessed
}

// release puts the entry back to pending. It runs detached from ctx so a batch deadline
// does not leave the entry stuck in processing until the lease expires.
func (s *GradingService) release(ctx context.Context, e *queue.Entry, logCtx *logrus.Entry) {
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()
	if err := s.queueRepo.Release(rctx, e.ID, s.cfg.WorkerID); err != nil {
		logCtx.WithError(err).Error("Failed to release claim")
	}
}

// notify sends the grader output. Model output is not guaranteed to be valid Markdown,
// so a rejected message is resent as plain text.
func (s *GradingService) notify(chatID int64, output string, logCtx *logrus.Entry) {
	text := fmt.Sprintf(msgGradingDone, output)
	err := s.telegramClient.SendMessage(chatID, text, &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
	if err == nil {
		return
	}
	if !isBadRequest(err) {
		logCtx.WithError(err).Error("Failed to notify user about graded answer")
		return
	}
	logCtx.WithError(err).Warn("Telegram rejected Markdown result, retrying as plain text")
	if err := s.telegramClient.SendMessage(chatID, text, &telebot.SendOptions{}); err != nil {
		logCtx.WithError(err).Error("Failed to notify user about graded answer")
	}
}

// isBadRequest reports whether Telegram answered 400. Descriptions telebot does not
// know, such as entity parse failures, come back as plain errors ending in the code.
func isBadRequest(err error) bool {
	var tbErr *telebot.Error
	if errors.As(err, &tbErr) {
		return tbErr.Code == http.StatusBadRequest
	}
	return strings.HasSuffix(err.Error(), fmt.Sprintf("(%d)", http.StatusBadRequest))
}
