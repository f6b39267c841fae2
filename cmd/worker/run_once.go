package main

import (
	"fmt"

	"task_practice_bot/internal/infra/logger"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newRunOnceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run-once",
		Short: "Process one batch and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			w, err := newWorker(cfg)
			if err != nil {
				return err
			}
			defer w.Close()

			result, err := w.job.Run(cmd.Context())
			if err != nil {
				return err
			}
			logger.Component("main").WithFields(logrus.Fields{
				"fetched":   result.Fetched,
				"processed": result.Processed,
				"failed":    result.Failed,
				"retried":   result.Retried,
				"skipped":   result.Skipped,
			}).Info("Batch completed")
			fmt.Fprintln(cmd.OutOrStdout(), result.Summary())
			return nil
		},
	}
}
