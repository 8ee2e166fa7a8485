package repository

import (
	"context"
	"time"

	"rental-recon/internal/domain"
)

type CustomerRepository interface {
	// Upsert inserts the customer unless the id exists; it reports whether a row was inserted.
	Upsert(ctx context.Context, customer *domain.Customer) (bool, error)
	GetByID(ctx context.Context, id int64) (*domain.Customer, error)
	Search(ctx context.Context, query string) ([]domain.Customer, error)
}

type InstrumentRepository interface {
	Upsert(ctx context.Context, instrument *domain.Instrument) (bool, error)
}

type RentalRepository interface {
	Create(ctx context.Context, rental *domain.Rental) error
	GetByID(ctx context.Context, id int64) (*domain.Rental, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]domain.Rental, error)
	FindByOrderNumber(ctx context.Context, orderNumber string) ([]domain.Rental, error)
	UpdateOrderNumber(ctx context.Context, rentalID int64, orderNumber string) error
	End(ctx context.Context, rentalID int64, endDate time.Time) error
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	// FindByReceipt returns nil, nil when the rental has no payment with that receipt.
	FindByReceipt(ctx context.Context, rentalID int64, receiptNumber string) (*domain.Payment, error)
	SumByRental(ctx context.Context, rentalID int64, upTo time.Time) (*domain.PaymentAggregate, error)
}

type ReportRepository interface {
	ListRentalDetails(ctx context.Context) ([]domain.RentalDetail, error)
	ListPaymentHistory(ctx context.Context) ([]domain.PaymentHistoryRow, error)
	ListMultiRentalCustomers(ctx context.Context) ([]domain.MultiRentalCustomer, error)
}

// Repositories is the set of repositories bound to one connection or transaction.
type Repositories struct {
	Customers   CustomerRepository
	Instruments InstrumentRepository
	Rentals     RentalRepository
	Payments    PaymentRepository
}

// UnitOfWork runs fn inside a single transaction. The transaction commits when
// fn returns nil and rolls back otherwise.
type UnitOfWork interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
