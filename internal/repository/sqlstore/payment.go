package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"rental-recon/internal/domain"
	"rental-recon/internal/logger"
	"rental-recon/internal/repository"
)

type paymentRepository struct {
	db DBTX
}

func NewPaymentRepository(db DBTX) repository.PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	logger.EnterMethod("paymentRepository.Create", "rentalID", p.RentalID, "amount", p.Amount.StringFixed(2))

	query := `INSERT INTO payments (rental_id, payment_date, amount, receipt_number)
	          VALUES ($1, $2, $3, $4) RETURNING payment_id`
	err := r.db.QueryRowContext(ctx, query,
		p.RentalID, toDate(p.PaymentDate), p.Amount.StringFixed(2), nullString(p.ReceiptNumber),
	).Scan(&p.ID)
	if err != nil {
		logger.ExitMethodWithError("paymentRepository.Create", err, "rentalID", p.RentalID)
		return err
	}

	logger.ExitMethod("paymentRepository.Create", "paymentID", p.ID)
	return nil
}

func (r *paymentRepository) FindByReceipt(ctx context.Context, rentalID int64, receiptNumber string) (*domain.Payment, error) {
	query := `SELECT payment_id, rental_id, payment_date, amount, receipt_number
	          FROM payments WHERE rental_id = $1 AND receipt_number = $2`
	var p domain.Payment
	var date nullDate
	var receipt sql.NullString
	err := r.db.QueryRowContext(ctx, query, rentalID, receiptNumber).Scan(&p.ID, &p.RentalID, &date, &p.Amount, &receipt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p.PaymentDate = date.Time
	p.Amount = p.Amount.Round(2)
	if receipt.Valid {
		p.ReceiptNumber = &receipt.String
	}
	return &p, nil
}

// SumByRental totals the payments of a rental dated on or before upTo.
func (r *paymentRepository) SumByRental(ctx context.Context, rentalID int64, upTo time.Time) (*domain.PaymentAggregate, error) {
	query := `SELECT SUM(amount), COUNT(*), MAX(payment_date)
	          FROM payments WHERE rental_id = $1 AND payment_date <= $2`
	var total decimal.NullDecimal
	var count int
	var last nullDate
	if err := r.db.QueryRowContext(ctx, query, rentalID, toDate(upTo)).Scan(&total, &count, &last); err != nil {
		return nil, err
	}
	agg := &domain.PaymentAggregate{Total: decimal.Zero, Count: count, LastPayment: last.Ptr()}
	if total.Valid {
		agg.Total = total.Decimal.Round(2)
	}
	return agg, nil
}
