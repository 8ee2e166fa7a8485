package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"rental-recon/internal/domain"
	"rental-recon/internal/reportfmt"
	"rental-recon/internal/selector"
	"rental-recon/internal/service"
)

type importFunc func(svc service.ImportService, ctx context.Context, r io.Reader) (*domain.ImportSummary, error)

func (a *app) newImportCmd() *cobra.Command {
	var (
		mode   string
		format string
	)
	imp := &cobra.Command{Use: "import", Short: "Import CSV exports"}
	imp.PersistentFlags().StringVar(&format, "format", reportfmt.FormatTable, "Summary format: table, json or csv")

	sub := func(use, short string, run importFunc) *cobra.Command {
		return &cobra.Command{
			Use:   use + " FILE",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.runImport(cmd, args[0], mode, format, run)
			},
		}
	}

	payments := sub("payments", "Import order-number-keyed payments", service.ImportService.ImportOrderPayments)
	payments.Flags().StringVar(&mode, "selector", "", "Ambiguity handling: prompt, skip or fail (default from config)")

	imp.AddCommand(
		sub("customers", "Import the customer and instrument master data", service.ImportService.ImportInitialData),
		sub("legacy-payments", "Import the legacy rental sheet with monthly payment columns", service.ImportService.ImportLegacyPayments),
		payments,
	)
	return imp
}

func (a *app) runImport(cmd *cobra.Command, path, mode, format string, run importFunc) error {
	ctx := cmd.Context()
	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}

	if mode == "" {
		mode = a.cfg.Import.Selector
	}
	sel, err := selector.New(mode, cmd.InOrStdin(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	matcher := service.NewPaymentMatcher(sel, a.cfg.Import.MaxSelectionAttempts)
	svc := service.NewImportService(store, matcher, a.importOptions())

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	summary, err := run(svc, ctx, f)
	if err != nil {
		return fmt.Errorf("import of %s failed, nothing was written: %w", path, err)
	}

	out := cmd.OutOrStdout()
	if err := reportfmt.Write(out, format, reportfmt.Summary(summary), summary); err != nil {
		return err
	}
	if format == reportfmt.FormatTable || format == "" {
		for _, d := range summary.Diagnostics {
			fmt.Fprintln(out, "  "+d)
		}
		if summary.DroppedDiagnostics > 0 {
			fmt.Fprintf(out, "  ... %d more\n", summary.DroppedDiagnostics)
		}
	}
	return nil
}
