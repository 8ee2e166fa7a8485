// Package reportfmt maps report rows to tables and writes them as aligned
// text, CSV or JSON.
package reportfmt

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"rental-recon/internal/domain"
)

const (
	FormatTable = "table"
	FormatCSV   = "csv"
	FormatJSON  = "json"
)

// CSVDelimiter matches the semicolon-separated files the importers read.
const CSVDelimiter = ';'

type Table struct {
	Header []string
	Rows   [][]string
}

func Outstanding(rows []domain.OutstandingRow) Table {
	t := Table{Header: []string{"Customer ID", "Customer", "Instrument", "Rental", "Payments", "Last payment", "Paid", "Expected", "Outstanding"}}
	for _, r := range rows {
		last := "-"
		if r.LastPayment != nil {
			last = r.LastPayment.Format("01.2006")
		}
		t.Rows = append(t.Rows, []string{
			id(r.CustomerID), r.CustomerName, r.Instrument, id(r.RentalID), strconv.Itoa(r.PaymentCount),
			last, r.AmountPaid.StringFixed(2), r.AmountExpected.StringFixed(2), r.Outstanding.StringFixed(2),
		})
	}
	return t
}

func Payments(rows []domain.PaymentHistoryRow) Table {
	t := Table{Header: []string{"Date", "Customer ID", "Customer", "Instrument", "Rental", "Amount", "Receipt"}}
	for _, r := range rows {
		receipt := ""
		if r.ReceiptNumber != nil {
			receipt = *r.ReceiptNumber
		}
		t.Rows = append(t.Rows, []string{
			r.PaymentDate.Format(domain.DateLayout), id(r.CustomerID), r.CustomerName, r.Instrument,
			id(r.RentalID), r.Amount.StringFixed(2), receipt,
		})
	}
	return t
}

func MultiRentals(rows []domain.MultiRentalCustomer) Table {
	t := Table{Header: []string{"Customer ID", "Customer", "Rentals"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{id(r.CustomerID), r.CustomerName, strconv.Itoa(r.RentalCount)})
	}
	return t
}

func Rentals(rows []domain.RentalBalanceRow) Table {
	t := Table{Header: []string{"Rental", "Customer ID", "Customer", "Instrument", "Order", "Start", "End", "Ended", "Price", "Expected", "Paid", "Balance"}}
	for _, r := range rows {
		order := ""
		if r.OrderNumber != nil {
			order = *r.OrderNumber
		}
		ended := "no"
		if r.Ended {
			ended = "yes"
		}
		t.Rows = append(t.Rows, []string{
			id(r.RentalID), id(r.CustomerID), r.CustomerName, r.Instrument, order,
			r.StartDate.Format(domain.DateLayout), date(r.EndDate), ended, r.MonthlyPrice.StringFixed(2),
			r.AmountExpected.StringFixed(2), r.AmountPaid.StringFixed(2), r.Balance.StringFixed(2),
		})
	}
	return t
}

func Customers(rows []domain.Customer) Table {
	t := Table{Header: []string{"Customer ID", "Last name", "First name", "Email"}}
	for _, c := range rows {
		email := ""
		if c.Email != nil {
			email = *c.Email
		}
		t.Rows = append(t.Rows, []string{id(c.ID), c.LastName, c.FirstName, email})
	}
	return t
}

func CustomerRentals(rows []domain.Rental) Table {
	t := Table{Header: []string{"Rental", "Serial", "Details"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{id(r.ID), r.SerialNumber, domain.NewRentalCandidate(r).Display()})
	}
	return t
}

// Summary renders an import summary as label/value pairs.
func Summary(s *domain.ImportSummary) Table {
	t := Table{Header: []string{"Import", string(s.Kind)}}
	add := func(label string, v int) { t.Rows = append(t.Rows, []string{label, strconv.Itoa(v)}) }
	t.Rows = append(t.Rows, []string{"Batch", s.BatchID})
	add("Rows", s.TotalRows)
	add("Imported", s.Imported)
	add("Already present", s.AlreadyExists)
	add("No rental found", s.NoRentalFound)
	add("Invalid data", s.InvalidData)
	add("Skipped by user", s.UserSkipped)
	add("Not imported", s.NotImported())
	switch s.Kind {
	case domain.ImportKindInitial:
		add("Customers inserted", s.CustomersInserted)
		add("Instruments inserted", s.InstrumentsInserted)
	case domain.ImportKindLegacyPayments:
		add("Instruments inserted", s.InstrumentsInserted)
		add("Rentals created", s.RentalsCreated)
		add("Payments inserted", s.PaymentsInserted)
	case domain.ImportKindOrderPayments:
		add("Payments inserted", s.PaymentsInserted)
		add("Order numbers linked", s.OrderNumbersLinked)
	}
	return t
}

// Write renders t in format. JSON encodes v instead of the table so that
// consumers get typed fields.
func Write(w io.Writer, format string, t Table, v any) error {
	switch strings.ToLower(format) {
	case FormatTable, "":
		return WriteText(w, t)
	case FormatCSV:
		return WriteCSV(w, t)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func WriteText(w io.Writer, t Table) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(t.Header, "\t"))
	for _, row := range t.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	cw.Comma = CSVDelimiter
	if err := cw.Write(t.Header); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}
	return cw.Error()
}

func id(v int64) string { return strconv.FormatInt(v, 10) }

func date(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(domain.DateLayout)
}
