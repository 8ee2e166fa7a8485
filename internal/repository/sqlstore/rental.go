package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"rental-recon/internal/domain"
	"rental-recon/internal/logger"
	"rental-recon/internal/repository"
)

const rentalColumns = `r.rental_id, r.customer_id, r.serial_number, COALESCE(i.instrument, ''),
       r.rental_start, r.rental_end, r.rental_price, r.is_ended, r.order_number`

const rentalFrom = `FROM rentals r LEFT JOIN instruments i ON i.serial_number = r.serial_number`

type rentalRepository struct {
	db DBTX
}

func NewRentalRepository(db DBTX) repository.RentalRepository {
	return &rentalRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRental(s rowScanner) (*domain.Rental, error) {
	var rt domain.Rental
	var start, end nullDate
	var order sql.NullString
	if err := s.Scan(&rt.ID, &rt.CustomerID, &rt.SerialNumber, &rt.Instrument,
		&start, &end, &rt.MonthlyPrice, &rt.Ended, &order); err != nil {
		return nil, err
	}
	rt.StartDate = start.Time
	rt.EndDate = end.Ptr()
	rt.MonthlyPrice = rt.MonthlyPrice.Round(2)
	if order.Valid && order.String != "" {
		o := order.String
		rt.OrderNumber = &o
	}
	return &rt, nil
}

func (r *rentalRepository) Create(ctx context.Context, rt *domain.Rental) error {
	logger.EnterMethod("rentalRepository.Create", "customerID", rt.CustomerID, "serial", rt.SerialNumber)

	query := `INSERT INTO rentals (customer_id, serial_number, rental_start, rental_end, rental_price, is_ended, order_number)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING rental_id`
	err := r.db.QueryRowContext(ctx, query,
		rt.CustomerID, rt.SerialNumber, toDate(rt.StartDate), nullTime(rt.EndDate),
		rt.MonthlyPrice.StringFixed(2), rt.Ended, nullString(rt.OrderNumber),
	).Scan(&rt.ID)
	if err != nil {
		logger.ExitMethodWithError("rentalRepository.Create", err, "customerID", rt.CustomerID)
		return err
	}

	logger.ExitMethod("rentalRepository.Create", "rentalID", rt.ID)
	return nil
}

func (r *rentalRepository) GetByID(ctx context.Context, id int64) (*domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` ` + rentalFrom + ` WHERE r.rental_id = $1`
	rt, err := scanRental(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load rental %d: %w", id, err)
	}
	return rt, nil
}

func (r *rentalRepository) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` ` + rentalFrom + ` WHERE r.customer_id = $1 ORDER BY r.rental_start, r.rental_id`
	return r.list(ctx, "rentalRepository.ListByCustomer", query, customerID)
}

func (r *rentalRepository) FindByOrderNumber(ctx context.Context, orderNumber string) ([]domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` ` + rentalFrom + ` WHERE r.order_number = $1 ORDER BY r.rental_id`
	return r.list(ctx, "rentalRepository.FindByOrderNumber", query, orderNumber)
}

func (r *rentalRepository) list(ctx context.Context, op, query string, args ...any) ([]domain.Rental, error) {
	logger.DatabaseCall(op, query, "args", args)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.DatabaseResult(op, 0, err)
		return nil, err
	}
	defer rows.Close()

	var rentals []domain.Rental
	for rows.Next() {
		rt, err := scanRental(rows)
		if err != nil {
			return nil, err
		}
		rentals = append(rentals, *rt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	logger.DatabaseResult(op, int64(len(rentals)), nil)
	return rentals, nil
}

func (r *rentalRepository) UpdateOrderNumber(ctx context.Context, rentalID int64, orderNumber string) error {
	query := `UPDATE rentals SET order_number = $1 WHERE rental_id = $2`
	return r.exec(ctx, "rentalRepository.UpdateOrderNumber", query, orderNumber, rentalID)
}

func (r *rentalRepository) End(ctx context.Context, rentalID int64, endDate time.Time) error {
	query := `UPDATE rentals SET rental_end = $1, is_ended = $2 WHERE rental_id = $3`
	return r.exec(ctx, "rentalRepository.End", query, toDate(endDate), true, rentalID)
}

func (r *rentalRepository) exec(ctx context.Context, op, query string, args ...any) error {
	logger.DatabaseCall(op, query, "args", args)
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		logger.DatabaseResult(op, 0, err)
		return err
	}
	n, err := res.RowsAffected()
	logger.DatabaseResult(op, n, err)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
