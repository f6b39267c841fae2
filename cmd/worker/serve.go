package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"task_practice_bot/internal/infra/httpapi"
	"task_practice_bot/internal/infra/logger"
	"task_practice_bot/internal/infra/scheduler"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCmd() *cobra.Command {
	var noCron bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the cron scheduler and the HTTP trigger endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			mainLogger := logger.Component("main")

			w, err := newWorker(cfg)
			if err != nil {
				return err
			}
			defer w.Close()

			router := httpapi.NewRouter(w.metrics, logger.Component("http"))
			httpapi.NewRunHandler(w.job, logger.Component("trigger")).Register(router)
			srv := &http.Server{
				Addr:              cfg.HTTPAddr,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			var sched *scheduler.GradingScheduler
			if !noCron {
				sched = scheduler.NewGradingScheduler(w.job, logger.Component("scheduler"), cfg.WorkerCronSpec)
				if err := sched.Start(); err != nil {
					return err
				}
			}

			g, gctx := errgroup.WithContext(cmd.Context())

			g.Go(func() error {
				mainLogger.Infof("HTTP server listening on %s", cfg.HTTPAddr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("http server: %w", err)
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				mainLogger.Info("Shutting down worker...")
				if sched != nil {
					sched.Stop()
				}
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})
			return g.Wait()
		},
	}

	cmd.Flags().BoolVar(&noCron, "no-cron", false, "Only serve the HTTP trigger, do not schedule batches.")
	return cmd
}
