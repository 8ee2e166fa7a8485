package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Rental struct {
	ID           int64           `json:"id"`
	CustomerID   int64           `json:"customer_id"`
	SerialNumber string          `json:"serial_number"`
	Instrument   string          `json:"instrument,omitempty"` // joined from instruments, read-only
	StartDate    time.Time       `json:"start_date"`
	EndDate      *time.Time      `json:"end_date,omitempty"`
	MonthlyPrice decimal.Decimal `json:"monthly_price"`
	Ended        bool            `json:"ended"`
	OrderNumber  *string         `json:"order_number,omitempty"`
}

// HasOrderNumber reports whether a non-empty order number is stored.
func (r *Rental) HasOrderNumber() bool {
	return r.OrderNumber != nil && *r.OrderNumber != ""
}

// RentalCandidate is the read-only view of a rental offered to a RentalSelector.
// It is built for a single matching attempt and discarded afterwards.
type RentalCandidate struct {
	rentalID     int64
	orderNumber  string
	instrument   string
	startDate    time.Time
	endDate      *time.Time
	monthlyPrice decimal.Decimal
}

func NewRentalCandidate(r Rental) RentalCandidate {
	c := RentalCandidate{
		rentalID:     r.ID,
		instrument:   r.Instrument,
		startDate:    r.StartDate,
		monthlyPrice: r.MonthlyPrice,
	}
	if r.OrderNumber != nil {
		c.orderNumber = *r.OrderNumber
	}
	if r.EndDate != nil {
		end := *r.EndDate
		c.endDate = &end
	}
	return c
}

func (c RentalCandidate) RentalID() int64               { return c.rentalID }
func (c RentalCandidate) OrderNumber() string           { return c.orderNumber }
func (c RentalCandidate) Instrument() string            { return c.instrument }
func (c RentalCandidate) StartDate() time.Time          { return c.startDate }
func (c RentalCandidate) MonthlyPrice() decimal.Decimal { return c.monthlyPrice }

func (c RentalCandidate) EndDate() (time.Time, bool) {
	if c.endDate == nil {
		return time.Time{}, false
	}
	return *c.endDate, true
}

// Display renders the candidate the way the selection list shows it.
func (c RentalCandidate) Display() string {
	s := "rental since " + c.startDate.Format(DateLayout)
	if end, ok := c.EndDate(); ok {
		s += " until " + end.Format(DateLayout)
	}
	if c.orderNumber != "" {
		s += fmt.Sprintf(" (order %s)", c.orderNumber)
	}
	return s + fmt.Sprintf(" | instrument: %s | price: %s", c.instrument, c.monthlyPrice.StringFixed(2))
}
