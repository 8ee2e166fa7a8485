package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"rental-recon/internal/csvsource"
	"rental-recon/internal/domain"
	"rental-recon/internal/utils"
)

const (
	initialColumns            = 5
	DefaultFirstPaymentColumn = 6
)

// InitialRow is one line of the customer/instrument master export:
// lastName;firstName;customerId;instrument;serialNumber.
type InitialRow struct {
	Line         int
	LastName     string
	FirstName    string
	CustomerID   int64
	Instrument   string
	SerialNumber string
}

func parseInitialRow(row csvsource.Row) (*InitialRow, error) {
	id, err := parseCustomerID(row, 2)
	if err != nil {
		return nil, err
	}
	return &InitialRow{
		Line:         row.Line,
		LastName:     row.Field(0),
		FirstName:    row.Field(1),
		CustomerID:   id,
		Instrument:   row.Field(3),
		SerialNumber: row.Field(4),
	}, nil
}

// LegacyRow is one rental of the wide payment sheet:
// customerId;instrument;serialNumber;counter;monthlyPrice;startDate;<payment cells>.
type LegacyRow struct {
	Line         int
	CustomerID   int64
	Instrument   string
	SerialNumber string
	Counter      int
	MonthlyPrice decimal.Decimal
	StartDate    time.Time
	Cells        []string
}

func parseLegacyRow(row csvsource.Row, firstPaymentColumn int) (*LegacyRow, error) {
	id, err := parseCustomerID(row, 0)
	if err != nil {
		return nil, err
	}
	start, err := utils.ParseDate(row.Field(5))
	if err != nil {
		return nil, &domain.RowError{Line: row.Line, Field: "start date", Value: row.Field(5), Err: fmt.Errorf("%w: %v", domain.ErrInvalidDate, err)}
	}
	counter, err := strconv.Atoi(row.Field(3))
	if err != nil {
		counter = 0
	}
	price, err := utils.ParseAmount(row.Field(4))
	if err != nil {
		price = decimal.Zero
	}

	lr := &LegacyRow{
		Line:         row.Line,
		CustomerID:   id,
		Instrument:   row.Field(1),
		SerialNumber: row.Field(2),
		Counter:      counter,
		MonthlyPrice: price,
		StartDate:    start,
	}
	if len(row.Fields) > firstPaymentColumn {
		lr.Cells = row.Fields[firstPaymentColumn:]
	}
	return lr, nil
}

// OrderColumnLayout holds zero-based column positions of the
// order-number-keyed payment export.
type OrderColumnLayout struct {
	PaymentDate   int
	CustomerID    int
	OrderNumber   int
	ReceiptNumber int
	Name          int
	Amount        int
	MinColumns    int
}

func DefaultOrderColumnLayout() OrderColumnLayout {
	return OrderColumnLayout{
		PaymentDate:   0,
		CustomerID:    1,
		OrderNumber:   2,
		ReceiptNumber: 3,
		Name:          4,
		Amount:        5,
		MinColumns:    6,
	}
}

// parsePaymentRow validates one line of the order-number-keyed export. The
// returned error is a diagnostic for an invalid_data row, never fatal.
func parsePaymentRow(row csvsource.Row, layout OrderColumnLayout) (domain.PaymentRow, error) {
	var pr domain.PaymentRow
	if len(row.Fields) < layout.MinColumns {
		return pr, fmt.Errorf("insufficient columns: got %d, need %d", len(row.Fields), layout.MinColumns)
	}
	date, err := utils.ParseDate(row.Field(layout.PaymentDate))
	if err != nil {
		return pr, fmt.Errorf("payment date %q: %v", row.Field(layout.PaymentDate), err)
	}
	id, err := strconv.ParseInt(row.Field(layout.CustomerID), 10, 64)
	if err != nil {
		return pr, fmt.Errorf("customer id %q: %w", row.Field(layout.CustomerID), domain.ErrInvalidNumber)
	}
	amount, err := utils.ParseAmount(row.Field(layout.Amount))
	if err != nil {
		return pr, fmt.Errorf("amount %q: %v", row.Field(layout.Amount), err)
	}
	return domain.PaymentRow{
		Line:          row.Line,
		PaymentDate:   date,
		CustomerID:    id,
		OrderNumber:   row.Field(layout.OrderNumber),
		ReceiptNumber: row.Field(layout.ReceiptNumber),
		CustomerName:  row.Field(layout.Name),
		Amount:        amount,
	}, nil
}

func parseCustomerID(row csvsource.Row, col int) (int64, error) {
	value := row.Field(col)
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, &domain.RowError{Line: row.Line, Field: "customer id", Value: value, Err: domain.ErrInvalidNumber}
	}
	return id, nil
}
