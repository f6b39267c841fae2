package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"task_practice_bot/internal/app"
	"task_practice_bot/internal/infra/config"
	"task_practice_bot/internal/infra/httpapi"
	"task_practice_bot/internal/infra/logger"
	"task_practice_bot/internal/infra/metrics"
	"task_practice_bot/internal/infra/storage"
	"task_practice_bot/internal/infra/telegram"

	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	fmt.Println("Task Practice Bot starting...")

	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("Could not load application configuration: %v", err)
	}
	logger.Init(cfg, "bot")
	mainLogger := logger.Component("main")

	if err := cfg.ValidateForBot(); err != nil {
		mainLogger.Fatalf("Invalid configuration: %v", err)
	}
	mainLogger.Infof("Configuration loaded. Mode: %s, Datastore: %s, Environment: %s", cfg.BotMode, cfg.DatastoreBackend, cfg.Environment)

	repos, err := storage.New(cfg, logger.Component("datastore"))
	if err != nil {
		mainLogger.Fatalf("Could not initialise datastore: %v", err)
	}
	defer repos.Close()
	mainLogger.Info("Datastore repositories initialized")

	polling := cfg.BotMode == config.BotModePolling
	bot, err := telegram.NewBot(cfg.TelegramToken, polling, logger.Component("telebot"))
	if err != nil {
		mainLogger.Fatalf("Could not create Telegram bot: %v", err)
	}
	telegramClient := telegram.NewTelebotAdapter(bot)

	practiceService := app.NewPracticeService(
		app.NewAccountService(repos.Users),
		app.NewTaskSelector(repos.Tasks, repos.Attempts),
		repos.Users,
		repos.Attempts,
		repos.Sessions,
		repos.Queue,
		telegramClient,
		logger.Component("practice"),
	)
	mainLogger.Info("Practice service initialized")

	m := metrics.New()
	router := httpapi.NewRouter(m, logger.Component("http"))
	if !polling {
		httpapi.NewWebhookHandler(practiceService, cfg.TelegramWebhookSecret, logger.Component("webhook")).Register(router)
		if cfg.TelegramWebhookSecret == "" {
			mainLogger.Warn("TELEGRAM_WEBHOOK_SECRET is not set, webhook calls are not authenticated")
		}
	}
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		mainLogger.Infof("HTTP server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if polling {
		telegram.RegisterHandlers(gctx, bot, practiceService, logger.Component("telegram"))
		g.Go(func() error {
			mainLogger.Info("Starting long polling")
			bot.Start() // blocks until bot.Stop
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		mainLogger.Info("Shutting down application...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if polling {
			bot.Stop()
		}
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		mainLogger.WithError(err).Error("Application stopped with error")
		os.Exit(1)
	}
	mainLogger.Info("Application shut down gracefully")
}
