package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"rental-recon/internal/domain"
	"rental-recon/internal/logger"
	"rental-recon/internal/repository"
)

type reportRepository struct {
	db *sqlx.DB
}

// NewReportRepository wraps db with sqlx for struct scanning. Reports only read.
func NewReportRepository(db *sql.DB, driver string) repository.ReportRepository {
	return &reportRepository{db: sqlx.NewDb(db, driver)}
}

type rentalDetailRecord struct {
	RentalID     int64           `db:"rental_id"`
	CustomerID   int64           `db:"customer_id"`
	SerialNumber string          `db:"serial_number"`
	Instrument   string          `db:"instrument"`
	StartDate    nullDate        `db:"rental_start"`
	EndDate      nullDate        `db:"rental_end"`
	Price        decimal.Decimal `db:"rental_price"`
	Ended        bool            `db:"is_ended"`
	OrderNumber  sql.NullString  `db:"order_number"`
	FirstName    string          `db:"first_name"`
	LastName     string          `db:"last_name"`
}

type paymentHistoryRecord struct {
	PaymentID     int64           `db:"payment_id"`
	RentalID      int64           `db:"rental_id"`
	CustomerID    int64           `db:"customer_id"`
	FirstName     string          `db:"first_name"`
	LastName      string          `db:"last_name"`
	Instrument    string          `db:"instrument"`
	PaymentDate   nullDate        `db:"payment_date"`
	Amount        decimal.Decimal `db:"amount"`
	ReceiptNumber sql.NullString  `db:"receipt_number"`
}

type multiRentalRecord struct {
	CustomerID  int64  `db:"customer_id"`
	FirstName   string `db:"first_name"`
	LastName    string `db:"last_name"`
	RentalCount int    `db:"rental_count"`
}

func fullName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}

func (r *reportRepository) ListRentalDetails(ctx context.Context) ([]domain.RentalDetail, error) {
	query := `
		SELECT r.rental_id, r.customer_id, r.serial_number, COALESCE(i.instrument, '') AS instrument,
		       r.rental_start, r.rental_end, r.rental_price, r.is_ended, r.order_number,
		       COALESCE(c.first_name, '') AS first_name, COALESCE(c.last_name, '') AS last_name
		FROM rentals r
		LEFT JOIN customers c ON c.customer_id = r.customer_id
		LEFT JOIN instruments i ON i.serial_number = r.serial_number
		ORDER BY r.rental_id
	`
	logger.DatabaseCall("reportRepository.ListRentalDetails", query)
	var records []rentalDetailRecord
	if err := r.db.SelectContext(ctx, &records, query); err != nil {
		logger.DatabaseResult("reportRepository.ListRentalDetails", 0, err)
		return nil, fmt.Errorf("failed to list rentals: %w", err)
	}
	logger.DatabaseResult("reportRepository.ListRentalDetails", int64(len(records)), nil)

	details := make([]domain.RentalDetail, 0, len(records))
	for _, rec := range records {
		d := domain.RentalDetail{
			Rental: domain.Rental{
				ID:           rec.RentalID,
				CustomerID:   rec.CustomerID,
				SerialNumber: rec.SerialNumber,
				Instrument:   rec.Instrument,
				StartDate:    rec.StartDate.Time,
				EndDate:      rec.EndDate.Ptr(),
				MonthlyPrice: rec.Price.Round(2),
				Ended:        rec.Ended,
			},
			CustomerName: fullName(rec.FirstName, rec.LastName),
		}
		if rec.OrderNumber.Valid && rec.OrderNumber.String != "" {
			o := rec.OrderNumber.String
			d.OrderNumber = &o
		}
		details = append(details, d)
	}
	return details, nil
}

// ListPaymentHistory returns every payment, newest first.
func (r *reportRepository) ListPaymentHistory(ctx context.Context) ([]domain.PaymentHistoryRow, error) {
	query := `
		SELECT p.payment_id, p.rental_id, r.customer_id,
		       COALESCE(c.first_name, '') AS first_name, COALESCE(c.last_name, '') AS last_name,
		       COALESCE(i.instrument, '') AS instrument,
		       p.payment_date, p.amount, p.receipt_number
		FROM payments p
		JOIN rentals r ON r.rental_id = p.rental_id
		LEFT JOIN customers c ON c.customer_id = r.customer_id
		LEFT JOIN instruments i ON i.serial_number = r.serial_number
		ORDER BY p.payment_date DESC, p.payment_id DESC
	`
	logger.DatabaseCall("reportRepository.ListPaymentHistory", query)
	var records []paymentHistoryRecord
	if err := r.db.SelectContext(ctx, &records, query); err != nil {
		logger.DatabaseResult("reportRepository.ListPaymentHistory", 0, err)
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	logger.DatabaseResult("reportRepository.ListPaymentHistory", int64(len(records)), nil)

	rows := make([]domain.PaymentHistoryRow, 0, len(records))
	for _, rec := range records {
		row := domain.PaymentHistoryRow{
			PaymentID:    rec.PaymentID,
			RentalID:     rec.RentalID,
			CustomerID:   rec.CustomerID,
			CustomerName: fullName(rec.FirstName, rec.LastName),
			Instrument:   rec.Instrument,
			PaymentDate:  rec.PaymentDate.Time,
			Amount:       rec.Amount.Round(2),
		}
		if rec.ReceiptNumber.Valid {
			receipt := rec.ReceiptNumber.String
			row.ReceiptNumber = &receipt
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (r *reportRepository) ListMultiRentalCustomers(ctx context.Context) ([]domain.MultiRentalCustomer, error) {
	query := `
		SELECT c.customer_id, c.first_name, c.last_name, COUNT(r.rental_id) AS rental_count
		FROM rentals r
		JOIN customers c ON c.customer_id = r.customer_id
		GROUP BY c.customer_id, c.first_name, c.last_name
		HAVING COUNT(r.rental_id) > 1
		ORDER BY c.first_name || ' ' || c.last_name, c.customer_id
	`
	logger.DatabaseCall("reportRepository.ListMultiRentalCustomers", query)
	var records []multiRentalRecord
	if err := r.db.SelectContext(ctx, &records, query); err != nil {
		logger.DatabaseResult("reportRepository.ListMultiRentalCustomers", 0, err)
		return nil, fmt.Errorf("failed to list customers with multiple rentals: %w", err)
	}
	logger.DatabaseResult("reportRepository.ListMultiRentalCustomers", int64(len(records)), nil)

	customers := make([]domain.MultiRentalCustomer, 0, len(records))
	for _, rec := range records {
		customers = append(customers, domain.MultiRentalCustomer{
			CustomerID:   rec.CustomerID,
			CustomerName: fullName(rec.FirstName, rec.LastName),
			RentalCount:  rec.RentalCount,
		})
	}
	return customers, nil
}
