package app

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"task_practice_bot/internal/domain/attempt"
	"task_practice_bot/internal/domain/queue"
	"task_practice_bot/internal/domain/session"
	"task_practice_bot/internal/domain/task"
	domainTelegram "task_practice_bot/internal/domain/telegram"
	"task_practice_bot/internal/domain/user"

	"github.com/ecodeclub/ekit/slice"
	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// IncomingMessage is the part of a chat update the practice flow reacts to.
type IncomingMessage struct {
	ChatID   int64
	UserID   int64
	Username string
	Text     string
}

// PracticeService drives the per-user conversation: menu, task assignment, answer submission,
// statistics and reset. It handles one message at a time and keeps no state in memory.
type PracticeService struct {
	accounts       *AccountService
	selector       *TaskSelector
	userRepo       user.Repository
	attemptRepo    attempt.Repository
	sessionRepo    session.Repository
	queueRepo      queue.Repository
	telegramClient domainTelegram.Client
	logger         *logrus.Entry
	now            func() time.Time
}

func NewPracticeService(
	accounts *AccountService,
	selector *TaskSelector,
	ur user.Repository,
	ar attempt.Repository,
	sr session.Repository,
	qr queue.Repository,
	tc domainTelegram.Client,
	logger *logrus.Entry,
) *PracticeService {
	return &PracticeService{
		accounts:       accounts,
		selector:       selector,
		userRepo:       ur,
		attemptRepo:    ar,
		sessionRepo:    sr,
		queueRepo:      qr,
		telegramClient: tc,
		logger:         logger,
		now:            time.Now,
	}
}

// HandleMessage dispatches one incoming message. Datastore failures are answered with an
// apology and not returned; the returned error is always a failed outbound send.
func (s *PracticeService) HandleMessage(ctx context.Context, msg IncomingMessage) error {
	if msg.Text == "" {
		return nil
	}
	logCtx := s.logger.WithFields(logrus.Fields{"user_id": msg.UserID, "chat_id": msg.ChatID})

	u, err := s.accounts.GetOrCreate(ctx, msg.UserID, msg.Username)
	if err != nil {
		logCtx.WithError(err).Error("Failed to resolve user")
		return s.reply(msg.ChatID, msgServiceUnavailable, nil)
	}
	if !u.IsAllowed {
		logCtx.Info("Access denied for user")
		return s.reply(msg.ChatID, msgAccessDenied, nil)
	}

	switch msg.Text {
	case CommandStart:
		return s.reply(msg.ChatID, msgWelcome, MainKeyboard())
	case BtnGetTask:
		return s.handleTaskMenu(ctx, msg, u, logCtx)
	case BtnStatistics:
		return s.handleStatistics(ctx, msg, logCtx)
	case BtnReset:
		return s.handleReset(ctx, msg, logCtx)
	case BtnBack:
		s.clearState(ctx, msg.UserID, logCtx)
		return s.reply(msg.ChatID, msgMainMenu, MainKeyboard())
	}

	st := s.loadState(ctx, msg.UserID, logCtx)
	if st != nil {
		switch st.Kind {
		case session.KindWaitingForCategory:
			switch {
			case msg.Text == BtnAllCategories:
				return s.assignTask(ctx, msg, u, task.CategoryAll, logCtx)
			case strings.HasPrefix(msg.Text, CategoryPrefix):
				return s.assignTask(ctx, msg, u, strings.TrimPrefix(msg.Text, CategoryPrefix), logCtx)
			default:
				return s.reply(msg.ChatID, msgPickFromMenu, nil)
			}
		case session.KindWaitingForAnswer:
			return s.handleAnswer(ctx, msg, u, st, logCtx)
		}
	}

	return s.reply(msg.ChatID, msgUseMenu, MainKeyboard())
}

// loadState returns the live session or nil. Expired and unreadable rows are deleted.
func (s *PracticeService) loadState(ctx context.Context, userID int64, logCtx *logrus.Entry) *session.State {
	st, err := s.sessionRepo.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, session.ErrNotFound) {
			logCtx.WithError(err).Warn("Failed to load user state, treating as absent")
			s.clearState(ctx, userID, logCtx)
		}
		return nil
	}
	if st.Expired(s.now()) {
		logCtx.WithField("updated_at", st.UpdatedAt).Info("User state expired")
		s.clearState(ctx, userID, logCtx)
		return nil
	}
	return st
}

func (s *PracticeService) saveState(ctx context.Context, st *session.State) error {
	if err := s.sessionRepo.Upsert(ctx, st); err != nil {
		return fmt.Errorf("failed to save user state: %w", err)
	}
	return nil
}

func (s *PracticeService) clearState(ctx context.Context, userID int64, logCtx *logrus.Entry) {
	if err := s.sessionRepo.Delete(ctx, userID); err != nil {
		logCtx.WithError(err).Warn("Failed to clear user state")
	}
}

func (s *PracticeService) handleTaskMenu(ctx context.Context, msg IncomingMessage, u *user.User, logCtx *logrus.Entry) error {
	categories, err := s.selector.Categories(ctx)
	if err != nil {
		logCtx.WithError(err).Error("Failed to load categories")
		return s.reply(msg.ChatID, msgServiceUnavailable, MainKeyboard())
	}
	if len(categories) == 0 {
		return s.assignTask(ctx, msg, u, "", logCtx)
	}

	if err := s.saveState(ctx, session.WaitingForCategory(msg.UserID, s.now())); err != nil {
		logCtx.WithError(err).Error("Failed to enter category selection")
		return s.reply(msg.ChatID, msgServiceUnavailable, MainKeyboard())
	}
	return s.reply(msg.ChatID, msgChooseCat, CategoriesKeyboard(categories))
}

func (s *PracticeService) assignTask(ctx context.Context, msg IncomingMessage, u *user.User, category string, logCtx *logrus.Entry) error {
	logCtx = logCtx.WithField("category", category)

	if !u.HasBalance() {
		logCtx.Info("Task refused, balance exhausted")
		s.clearState(ctx, msg.UserID, logCtx)
		return s.reply(msg.ChatID, msgNoBalanceForTask, MainKeyboard())
	}

	t, err := s.selector.RandomTask(ctx, msg.UserID, category)
	if errors.Is(err, ErrNoTaskAvailable) {
		s.clearState(ctx, msg.UserID, logCtx)
		text := msgAllSolved
		if category != "" {
			text += msgAllSolvedHint
		}
		return s.reply(msg.ChatID, text, MainKeyboard())
	}
	if err != nil {
		logCtx.WithError(err).Error("Failed to select task")
		s.clearState(ctx, msg.UserID, logCtx)
		return s.reply(msg.ChatID, msgServiceUnavailable, MainKeyboard())
	}

	st := session.WaitingForAnswer(msg.UserID, session.NewAssignment(t), s.now())
	if err := s.saveState(ctx, st); err != nil {
		logCtx.WithError(err).WithField("task_id", t.ID).Error("Failed to store assigned task")
		return s.reply(msg.ChatID, msgServiceUnavailable, MainKeyboard())
	}
	logCtx.WithField("task_id", t.ID).Info("Task assigned")

	label := t.Category
	if label == "" {
		label = msgNoCategory
	}
	text := fmt.Sprintf(msgTaskTemplate, html.EscapeString(label), html.EscapeString(t.Text))
	return s.reply(msg.ChatID, text, MainKeyboard())
}

func (s *PracticeService) handleAnswer(ctx context.Context, msg IncomingMessage, u *user.User, st *session.State, logCtx *logrus.Entry) error {
	// The session is single-use: cleared whether or not the answer is queued.
	defer s.clearState(ctx, msg.UserID, logCtx)
	logCtx = logCtx.WithField("task_id", st.Assignment.TaskID)

	if !u.HasBalance() {
		logCtx.Info("Answer refused, balance exhausted")
		return s.reply(msg.ChatID, msgNoBalanceForAnswer, MainKeyboard())
	}

	entry := queue.NewPending(msg.ChatID, msg.UserID, st.Assignment.TaskID, msg.Text, s.now().UTC())
	if err := s.queueRepo.Enqueue(ctx, entry); err != nil {
		logCtx.WithError(err).Error("Failed to enqueue answer")
		return s.reply(msg.ChatID, msgAnswerFailed, MainKeyboard())
	}
	logCtx.WithField("queue_id", entry.ID).Info("Answer queued for grading")

	left, err := s.userRepo.DecrementTasksLeft(ctx, msg.UserID)
	if err != nil {
		// The entry is already queued and will be graded without charging the balance.
		logCtx.WithError(err).WithField("queue_id", entry.ID).Warn("Balance not charged for queued answer")
		left = u.TasksLeft - 1
	}
	return s.reply(msg.ChatID, fmt.Sprintf(msgAnswerAccepted, left), nil)
}

func (s *PracticeService) handleStatistics(ctx context.Context, msg IncomingMessage, logCtx *logrus.Entry) error {
	attempts, err := s.attemptRepo.ListByUser(ctx, msg.UserID)
	if err != nil {
		logCtx.WithError(err).Error("Failed to load attempts for statistics")
		return s.reply(msg.ChatID, msgStatsFailed, MainKeyboard())
	}
	if len(attempts) == 0 {
		return s.reply(msg.ChatID, msgNoAttempts, MainKeyboard())
	}

	stats := ComputeStatistics(attempts)
	text := fmt.Sprintf(msgStatistics, stats.Attempts, stats.AveragePercent, stats.BestPercent)
	return s.reply(msg.ChatID, text, MainKeyboard())
}

func (s *PracticeService) handleReset(ctx context.Context, msg IncomingMessage, logCtx *logrus.Entry) error {
	has, err := s.attemptRepo.HasAny(ctx, msg.UserID)
	if err != nil {
		logCtx.WithError(err).Error("Failed to check attempts before reset")
		return s.reply(msg.ChatID, msgResetFailed, nil)
	}
	if !has {
		return s.reply(msg.ChatID, msgNothingReset, MainKeyboard())
	}
	if err := s.attemptRepo.DeleteByUser(ctx, msg.UserID); err != nil {
		logCtx.WithError(err).Error("Failed to delete attempts")
		return s.reply(msg.ChatID, msgResetFailed, nil)
	}
	logCtx.Info("Statistics reset")
	return s.reply(msg.ChatID, msgResetDone, MainKeyboard())
}

func (s *PracticeService) reply(chatID int64, text string, markup *telebot.ReplyMarkup) error {
	opts := &telebot.SendOptions{ParseMode: telebot.ModeHTML}
	if markup != nil {
		opts.ReplyMarkup = markup
	}
	if err := s.telegramClient.SendMessage(chatID, text, opts); err != nil {
		return fmt.Errorf("failed to send reply to chat %d: %w", chatID, err)
	}
	return nil
}

// Statistics summarises a user's attempts.
type Statistics struct {
	Attempts       int
	AveragePercent float64
	BestPercent    int
}

// ComputeStatistics derives the attempt count, mean percent and best percent.
func ComputeStatistics(attempts []*attempt.Attempt) Statistics {
	stats := Statistics{Attempts: len(attempts)}
	if len(attempts) == 0 {
		return stats
	}
	percents := slice.Map(attempts, func(idx int, a *attempt.Attempt) int {
		return a.Percent()
	})
	sum := 0
	for i, p := range percents {
		sum += p
		if i == 0 || p > stats.BestPercent {
			stats.BestPercent = p
		}
	}
	stats.AveragePercent = float64(sum) / float64(len(percents))
	return stats
}
