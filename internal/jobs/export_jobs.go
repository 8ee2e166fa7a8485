package jobs

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"rental-recon/internal/domain"
	"rental-recon/internal/logger"
	"rental-recon/internal/reportfmt"
	"rental-recon/internal/utils"
)

// ExportOutstanding writes the outstanding report as of the last day of the
// previous month.
func (jr *JobRunner) ExportOutstanding() {
	jr.runWithRecovery("ExportOutstanding", func() {
		now := jr.now().UTC()
		prev := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
		cutoff := utils.EndOfMonth(prev.Year(), int(prev.Month()))

		if _, err := jr.ExportOutstandingAt(context.Background(), cutoff); err != nil {
			logger.Error("Failed to export outstanding report", "cutoff", cutoff.Format(domain.DateLayout), "error", err)
		}
	})
}

// ExportOutstandingAt renders the outstanding report for cutoff into the
// export store and returns the stored key.
func (jr *JobRunner) ExportOutstandingAt(ctx context.Context, cutoff time.Time) (string, error) {
	rows, err := jr.reports.Outstanding(ctx, cutoff, domain.ReportFilter{})
	if err != nil {
		return "", fmt.Errorf("failed to build outstanding report: %w", err)
	}

	var buf bytes.Buffer
	if err := reportfmt.WriteCSV(&buf, reportfmt.Outstanding(rows)); err != nil {
		return "", fmt.Errorf("failed to render outstanding report: %w", err)
	}

	key := jr.exports.NewKey("outstanding-"+cutoff.Format("2006-01-02"), "csv")
	if err := jr.exports.SaveFile(key, &buf); err != nil {
		return "", fmt.Errorf("failed to store outstanding report: %w", err)
	}

	logger.Info("Outstanding report exported", "key", key, "rows", len(rows), "cutoff", cutoff.Format(domain.DateLayout))

	if err := jr.pruneExports(ctx, "outstanding-"); err != nil {
		logger.Warn("Failed to prune old exports", "error", err)
	}
	return key, nil
}

// pruneExports deletes the oldest exports with prefix beyond config Export.Keep.
func (jr *JobRunner) pruneExports(ctx context.Context, prefix string) error {
	keep := 0
	if jr.config != nil {
		keep = jr.config.Export.Keep
	}
	if keep <= 0 {
		return nil
	}

	files, err := jr.exports.List(ctx)
	if err != nil {
		return err
	}
	kept := 0
	for _, f := range files {
		if !strings.HasPrefix(f.Key, prefix) {
			continue
		}
		if kept < keep {
			kept++
			continue
		}
		if err := jr.exports.DeleteFile(ctx, f.Key); err != nil {
			return err
		}
		logger.Info("Old export removed", "key", f.Key)
	}
	return nil
}
