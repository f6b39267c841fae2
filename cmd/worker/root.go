package main

import (
	"fmt"
	"os"

	"task_practice_bot/internal/app"
	"task_practice_bot/internal/infra/config"
	"task_practice_bot/internal/infra/grader"
	"task_practice_bot/internal/infra/logger"
	"task_practice_bot/internal/infra/metrics"
	"task_practice_bot/internal/infra/scheduler"
	"task_practice_bot/internal/infra/storage"
	"task_practice_bot/internal/infra/telegram"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "worker",
		Short:        "Grade queued answers and notify users",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().Int("batch-size", 0, "Entries per batch (overrides WORKER_BATCH_SIZE).")
	cmd.PersistentFlags().String("grader", "", "Grader provider: mistral, openai or zhipu (overrides GRADER_PROVIDER).")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newRunOnceCmd())
	return cmd
}

// loadConfig reads the environment, applies flag overrides and validates the result.
func loadConfig(cmd *cobra.Command) (*config.AppConfig, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if n, _ := cmd.Flags().GetInt("batch-size"); cmd.Flags().Changed("batch-size") {
		cfg.WorkerBatchSize = n
	}
	if p, _ := cmd.Flags().GetString("grader"); p != "" {
		cfg.GraderProvider = p
	}
	logger.Init(cfg, "worker")
	if err := cfg.ValidateForWorker(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

type worker struct {
	job     *scheduler.GradingJob
	metrics *metrics.Metrics
	repos   *storage.Repositories
}

func (w *worker) Close() {
	if err := w.repos.Close(); err != nil {
		logger.Component("main").WithError(err).Warn("Failed to close datastore")
	}
}

func newWorker(cfg *config.AppConfig) (*worker, error) {
	repos, err := storage.New(cfg, logger.Component("datastore"))
	if err != nil {
		return nil, fmt.Errorf("could not initialise datastore: %w", err)
	}

	g, err := grader.New(cfg)
	if err != nil {
		repos.Close()
		return nil, err
	}

	bot, err := telegram.NewBot(cfg.TelegramToken, false, logger.Component("telebot"))
	if err != nil {
		repos.Close()
		return nil, fmt.Errorf("could not create Telegram bot: %w", err)
	}

	m := metrics.New()
	service := app.NewGradingService(
		repos.Queue,
		repos.Tasks,
		repos.Attempts,
		m.InstrumentGrader(g),
		telegram.NewTelebotAdapter(bot),
		logger.Component("grading"),
		app.GradingConfig{
			WorkerID:   workerID(),
			BatchSize:  cfg.WorkerBatchSize,
			ClaimLease: cfg.WorkerClaimLease,
		},
	)
	return &worker{
		job:     scheduler.NewGradingJob(service, m, cfg.WorkerBatchTimeout),
		metrics: m,
		repos:   repos,
	}, nil
}

// workerID identifies this process as the owner of claimed entries.
func workerID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "worker"
	}
	return host + "-" + uuid.NewString()
}
