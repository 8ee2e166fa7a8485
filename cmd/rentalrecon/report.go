package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"rental-recon/internal/domain"
	"rental-recon/internal/reportfmt"
	"rental-recon/internal/utils"
)

type reportFlags struct {
	month    string
	date     string
	name     string
	customer string
	format   string
}

func (f *reportFlags) filter() domain.ReportFilter {
	return domain.ReportFilter{Name: f.name, CustomerID: f.customer}
}

// cutoff resolves --month (last day of that month) or --date; today otherwise.
func (f *reportFlags) cutoff() (time.Time, error) {
	switch {
	case f.month != "" && f.date != "":
		return time.Time{}, fmt.Errorf("--month and --date are mutually exclusive")
	case f.month != "":
		return utils.ParseMonth(f.month)
	default:
		return parseDateFlag("date", f.date)
	}
}

func (a *app) newReportCmd() *cobra.Command {
	f := &reportFlags{}
	report := &cobra.Command{Use: "report", Short: "Reconciliation reports"}
	report.PersistentFlags().StringVar(&f.name, "name", "", "Filter by customer name (substring)")
	report.PersistentFlags().StringVar(&f.customer, "customer", "", "Filter by customer id (substring)")
	report.PersistentFlags().StringVar(&f.format, "format", reportfmt.FormatTable, "Output format: table, json or csv")

	outstanding := &cobra.Command{
		Use:   "outstanding",
		Short: "Rentals whose payments fall short of the expected rent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cutoff, err := f.cutoff()
			if err != nil {
				return err
			}
			store, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			rows, err := a.reportService(store).Outstanding(cmd.Context(), cutoff, f.filter())
			if err != nil {
				return err
			}
			return reportfmt.Write(cmd.OutOrStdout(), f.format, reportfmt.Outstanding(rows), rows)
		},
	}
	outstanding.Flags().StringVar(&f.month, "month", "", "Cutoff month MM.yyyy")
	outstanding.Flags().StringVar(&f.date, "date", "", "Cutoff date dd.MM.yyyy (default today)")

	payments := &cobra.Command{
		Use:   "payments",
		Short: "All payments, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			rows, err := a.reportService(store).PaymentHistory(cmd.Context(), f.filter())
			if err != nil {
				return err
			}
			return reportfmt.Write(cmd.OutOrStdout(), f.format, reportfmt.Payments(rows), rows)
		},
	}

	multi := &cobra.Command{
		Use:   "multi-rentals",
		Short: "Customers with more than one rental",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			rows, err := a.reportService(store).MultiRentalCustomers(cmd.Context(), f.filter())
			if err != nil {
				return err
			}
			return reportfmt.Write(cmd.OutOrStdout(), f.format, reportfmt.MultiRentals(rows), rows)
		},
	}

	rentals := &cobra.Command{
		Use:   "rentals",
		Short: "Every rental with its balance as of today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			rows, err := a.reportService(store).RentalBalances(cmd.Context(), f.filter())
			if err != nil {
				return err
			}
			return reportfmt.Write(cmd.OutOrStdout(), f.format, reportfmt.Rentals(rows), rows)
		},
	}

	report.AddCommand(outstanding, payments, multi, rentals)
	return report
}
