package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"rental-recon/internal/config"
	"rental-recon/internal/logger"
	"rental-recon/internal/repository/sqlstore"
	"rental-recon/internal/service"
	"rental-recon/internal/utils"
)

// app carries the state shared by every subcommand.
type app struct {
	configPath string
	cfg        *config.Config
	store      *sqlstore.Store
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "rentalrecon",
		Short:         "Instrument rental payment reconciliation",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			logger.Initialize(cfg.Log.Level, cfg.Log.Format, os.Stderr)
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.store != nil {
				return a.store.Close()
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "config.yaml", "Path to configuration file")

	root.AddCommand(
		a.newDBCmd(),
		a.newImportCmd(),
		a.newPaymentCmd(),
		a.newCustomerCmd(),
		a.newRentalCmd(),
		a.newReportCmd(),
		a.newServeCmd(),
		a.newScheduleCmd(),
	)
	return root
}

// openStore connects to the configured database and creates missing tables.
func (a *app) openStore(ctx context.Context) (*sqlstore.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	driver, dsn := a.cfg.GetDatabaseDSN()
	logger.Debug("Connecting to database...", "driver", driver)

	db, err := sqlstore.Open(ctx, driver, dsn)
	if err != nil {
		return nil, err
	}
	if err := sqlstore.EnsureSchema(ctx, db, driver); err != nil {
		db.Close()
		return nil, err
	}

	a.store = sqlstore.NewStore(db, driver)
	return a.store, nil
}

func (a *app) reportService(store *sqlstore.Store) service.ReportService {
	return service.NewReportService(store.Reports, store.Payments, time.Now)
}

func (a *app) importOptions() service.ImportOptions {
	ic := a.cfg.Import
	oc := ic.OrderColumns
	return service.ImportOptions{
		Encoding:           ic.Encoding,
		MaxDiagnostics:     ic.MaxDiagnostics,
		FirstPaymentColumn: ic.FirstPaymentColumn,
		OrderColumns: service.OrderColumnLayout{
			PaymentDate:   *oc.PaymentDate,
			CustomerID:    *oc.CustomerID,
			OrderNumber:   *oc.OrderNumber,
			ReceiptNumber: *oc.ReceiptNumber,
			Name:          *oc.Name,
			Amount:        *oc.Amount,
			MinColumns:    oc.MinColumns,
		},
	}
}

// parseDateFlag accepts dd.MM.yyyy; empty means today.
func parseDateFlag(name, value string) (time.Time, error) {
	if value == "" {
		return utils.DateOnly(time.Now()), nil
	}
	d, err := utils.ParseDate(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s: %w", name, err)
	}
	return d, nil
}

func (a *app) newDBCmd() *cobra.Command {
	db := &cobra.Command{Use: "db", Short: "Database maintenance"}
	db.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the database schema if it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.openStore(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "database ready")
			return nil
		},
	})
	return db
}
