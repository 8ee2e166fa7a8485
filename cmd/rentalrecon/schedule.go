package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"rental-recon/internal/jobs"
	"rental-recon/internal/logger"
	"rental-recon/internal/scheduler"
	"rental-recon/internal/storage"
)

func (a *app) newScheduleCmd() *cobra.Command {
	var runOnce bool
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the scheduled report exports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			exports, err := storage.NewLocalStorage(a.cfg.Export.Dir)
			if err != nil {
				return err
			}
			jobRunner := jobs.NewJobRunner(a.reportService(store), exports, a.cfg)

			if runOnce {
				logger.Info("Running all jobs once")
				jobRunner.RunAll()
				return nil
			}

			s, err := scheduler.NewScheduler(jobRunner)
			if err != nil {
				return err
			}
			s.Start()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			<-ctx.Done()

			s.Stop()
			return nil
		},
	}
	cmd.Flags().BoolVar(&runOnce, "run-once", false, "Run every job immediately and exit")
	return cmd
}
