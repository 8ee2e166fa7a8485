package jobs

import (
	"time"

	"rental-recon/internal/config"
	"rental-recon/internal/logger"
	"rental-recon/internal/service"
	"rental-recon/internal/storage"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	reports service.ReportService
	exports storage.ExportStore
	config  *config.Config
	now     func() time.Time
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(reports service.ReportService, exports storage.ExportStore, cfg *config.Config) *JobRunner {
	return &JobRunner{
		reports: reports,
		exports: exports,
		config:  cfg,
		now:     time.Now,
	}
}

func (jr *JobRunner) Config() *config.Config { return jr.config }

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	started := jr.now()
	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName, "duration", jr.now().Sub(started))
}

// RunAll runs every scheduled job once (for manual execution)
func (jr *JobRunner) RunAll() {
	jr.ExportOutstanding()
}
