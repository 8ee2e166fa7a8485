package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"rental-recon/internal/domain"
	"rental-recon/internal/reportfmt"
	"rental-recon/internal/repository/sqlstore"
	"rental-recon/internal/service"
	"rental-recon/internal/utils"
)

func (a *app) paymentService(cmd *cobra.Command) (service.PaymentService, error) {
	store, err := a.openStore(cmd.Context())
	if err != nil {
		return nil, err
	}
	return newPaymentService(store), nil
}

func newPaymentService(store *sqlstore.Store) service.PaymentService {
	return service.NewPaymentService(store, store.Repositories)
}

func (a *app) newPaymentCmd() *cobra.Command {
	var (
		rentalID int64
		date     string
		amount   string
		receipt  string
		format   string
	)
	add := &cobra.Command{
		Use:   "add",
		Short: "Record a manual payment against a rental",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseDateFlag("date", date)
			if err != nil {
				return err
			}
			amt, err := utils.ParseAmount(amount)
			if err != nil {
				return fmt.Errorf("--amount: %w", err)
			}
			svc, err := a.paymentService(cmd)
			if err != nil {
				return err
			}
			p, err := svc.AddManualPayment(cmd.Context(), rentalID, d, amt, receipt)
			if err != nil {
				return err
			}
			t := reportfmt.Table{
				Header: []string{"Payment", "Rental", "Date", "Amount", "Receipt"},
				Rows:   [][]string{{strconv.FormatInt(p.ID, 10), strconv.FormatInt(p.RentalID, 10), p.PaymentDate.Format(domain.DateLayout), p.Amount.StringFixed(2), receiptText(p.ReceiptNumber)}},
			}
			return reportfmt.Write(cmd.OutOrStdout(), format, t, p)
		},
	}
	add.Flags().Int64Var(&rentalID, "rental", 0, "Rental id")
	add.Flags().StringVar(&date, "date", "", "Payment date dd.MM.yyyy (default today)")
	add.Flags().StringVar(&amount, "amount", "", "Amount, e.g. 45.00")
	add.Flags().StringVar(&receipt, "receipt", "", "Receipt number")
	add.Flags().StringVar(&format, "format", reportfmt.FormatTable, "Output format: table, json or csv")
	_ = add.MarkFlagRequired("rental")
	_ = add.MarkFlagRequired("amount")

	payment := &cobra.Command{Use: "payment", Short: "Manual payments"}
	payment.AddCommand(add)
	return payment
}

func receiptText(r *string) string {
	if r == nil {
		return "-"
	}
	return *r
}

func (a *app) newCustomerCmd() *cobra.Command {
	var format string
	search := &cobra.Command{
		Use:   "search QUERY",
		Short: "Find customers by name or id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.paymentService(cmd)
			if err != nil {
				return err
			}
			customers, err := svc.SearchCustomers(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return reportfmt.Write(cmd.OutOrStdout(), format, reportfmt.Customers(customers), customers)
		},
	}
	search.Flags().StringVar(&format, "format", reportfmt.FormatTable, "Output format: table, json or csv")

	customer := &cobra.Command{Use: "customer", Short: "Customer lookup"}
	customer.AddCommand(search)
	return customer
}

func (a *app) newRentalCmd() *cobra.Command {
	var (
		customerID int64
		rentalID   int64
		date       string
		format     string
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List the rentals of a customer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.paymentService(cmd)
			if err != nil {
				return err
			}
			rentals, err := svc.ListCustomerRentals(cmd.Context(), customerID)
			if err != nil {
				return err
			}
			return reportfmt.Write(cmd.OutOrStdout(), format, reportfmt.CustomerRentals(rentals), rentals)
		},
	}
	list.Flags().Int64Var(&customerID, "customer", 0, "Customer id")
	list.Flags().StringVar(&format, "format", reportfmt.FormatTable, "Output format: table, json or csv")
	_ = list.MarkFlagRequired("customer")

	end := &cobra.Command{
		Use:   "end",
		Short: "Mark a rental as ended",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseDateFlag("date", date)
			if err != nil {
				return err
			}
			svc, err := a.paymentService(cmd)
			if err != nil {
				return err
			}
			r, err := svc.EndRental(cmd.Context(), rentalID, d)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rental %d ended on %s\n", r.ID, d.Format(domain.DateLayout))
			return nil
		},
	}
	end.Flags().Int64Var(&rentalID, "rental", 0, "Rental id")
	end.Flags().StringVar(&date, "date", "", "End date dd.MM.yyyy (default today)")
	_ = end.MarkFlagRequired("rental")

	rental := &cobra.Command{Use: "rental", Short: "Rental lookup and maintenance"}
	rental.AddCommand(list, end)
	return rental
}
