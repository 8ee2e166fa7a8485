package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the dd.MM.yyyy format used by every CSV export and by the CLI.
const DateLayout = "02.01.2006"

type Payment struct {
	ID            int64           `json:"id"`
	RentalID      int64           `json:"rental_id"`
	PaymentDate   time.Time       `json:"payment_date"`
	Amount        decimal.Decimal `json:"amount"`
	ReceiptNumber *string         `json:"receipt_number,omitempty"`
}

// PaymentAggregate summarises the payments of one rental up to a cutoff.
type PaymentAggregate struct {
	Total       decimal.Decimal
	Count       int
	LastPayment *time.Time
}

// PaymentRow is one parsed line of an order-number-keyed payment export.
type PaymentRow struct {
	Line          int
	PaymentDate   time.Time
	CustomerID    int64
	OrderNumber   string
	ReceiptNumber string
	CustomerName  string
	Amount        decimal.Decimal
}

func (p PaymentRow) Receipt() *string {
	if p.ReceiptNumber == "" {
		return nil
	}
	r := p.ReceiptNumber
	return &r
}
