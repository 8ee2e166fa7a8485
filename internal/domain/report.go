package domain

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OutstandingRow struct {
	RentalID       int64           `json:"rental_id"`
	CustomerID     int64           `json:"customer_id"`
	CustomerName   string          `json:"customer_name"`
	Instrument     string          `json:"instrument"`
	PaymentCount   int             `json:"payment_count"`
	LastPayment    *time.Time      `json:"last_payment,omitempty"`
	AmountPaid     decimal.Decimal `json:"amount_paid"`
	AmountExpected decimal.Decimal `json:"amount_expected"`
	Outstanding    decimal.Decimal `json:"outstanding"`
}

type PaymentHistoryRow struct {
	PaymentID     int64           `json:"payment_id"`
	RentalID      int64           `json:"rental_id"`
	CustomerID    int64           `json:"customer_id"`
	CustomerName  string          `json:"customer_name"`
	Instrument    string          `json:"instrument"`
	PaymentDate   time.Time       `json:"payment_date"`
	Amount        decimal.Decimal `json:"amount"`
	ReceiptNumber *string         `json:"receipt_number,omitempty"`
}

type MultiRentalCustomer struct {
	CustomerID   int64  `json:"customer_id"`
	CustomerName string `json:"customer_name"`
	RentalCount  int    `json:"rental_count"`
}

type RentalBalanceRow struct {
	RentalID       int64           `json:"rental_id"`
	CustomerID     int64           `json:"customer_id"`
	CustomerName   string          `json:"customer_name"`
	Instrument     string          `json:"instrument"`
	OrderNumber    *string         `json:"order_number,omitempty"`
	StartDate      time.Time       `json:"start_date"`
	EndDate        *time.Time      `json:"end_date,omitempty"`
	Ended          bool            `json:"ended"`
	MonthlyPrice   decimal.Decimal `json:"monthly_price"`
	AmountExpected decimal.Decimal `json:"amount_expected"`
	AmountPaid     decimal.Decimal `json:"amount_paid"`
	Balance        decimal.Decimal `json:"balance"` // expected - paid
}

// RentalDetail is a rental joined with its customer, as read by the reporter.
type RentalDetail struct {
	Rental
	CustomerName string
}

// ReportFilter narrows report rows by customer name and id substrings.
type ReportFilter struct {
	Name       string
	CustomerID string
}

func (f ReportFilter) Match(customerID int64, customerName string) bool {
	if f.Name != "" && !strings.Contains(strings.ToLower(customerName), strings.ToLower(strings.TrimSpace(f.Name))) {
		return false
	}
	if f.CustomerID != "" && !strings.Contains(strconv.FormatInt(customerID, 10), strings.TrimSpace(f.CustomerID)) {
		return false
	}
	return true
}
