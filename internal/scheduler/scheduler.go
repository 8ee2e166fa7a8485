package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"

	"rental-recon/internal/jobs"
	"rental-recon/internal/logger"
)

// Scheduler manages cron job scheduling
type Scheduler struct {
	cron *cron.Cron
	jobs *jobs.JobRunner
}

// cronLogger routes cron's own messages into the application logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Error("cron: "+msg, append([]any{"error", err}, keysAndValues...)...)
}

// NewScheduler creates a new scheduler with the provided job runner.
// A job still running when its next tick fires is skipped for that tick.
func NewScheduler(jobRunner *jobs.JobRunner) (*Scheduler, error) {
	l := cronLogger{}
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithSeconds(),
		cron.WithLogger(l),
		cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l)),
	)

	s := &Scheduler{
		cron: c,
		jobs: jobRunner,
	}

	if err := s.registerJobs(); err != nil {
		return nil, err
	}
	return s, nil
}

// registerJobs registers all scheduled jobs with the cron scheduler
func (s *Scheduler) registerJobs() error {
	cfg := s.jobs.Config().Scheduler

	if _, err := s.cron.AddFunc(cfg.ExportOutstanding, s.jobs.ExportOutstanding); err != nil {
		logger.Error("Failed to register ExportOutstanding job", "schedule", cfg.ExportOutstanding, "error", err)
		return err
	}

	logger.Info("All cron jobs registered successfully", "export_outstanding", cfg.ExportOutstanding)
	return nil
}

// Start begins the cron scheduler
func (s *Scheduler) Start() {
	logger.Info("Starting cron scheduler...")
	s.cron.Start()
	for _, e := range s.cron.Entries() {
		logger.Info("Next run scheduled", "entry", e.ID, "at", e.Next)
	}
}

// Stop gracefully stops the cron scheduler, waiting for running jobs.
func (s *Scheduler) Stop() {
	logger.Info("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Cron scheduler stopped")
}
