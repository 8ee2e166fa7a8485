package service

import (
	"context"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"rental-recon/internal/domain"
	"rental-recon/internal/repository"
)

// RentalSelector resolves a payment row that fits several rentals of the same
// customer. Implementations may block on an operator.
type RentalSelector interface {
	SelectRental(ctx context.Context, req domain.SelectionRequest) (domain.Selection, error)
}

type PaymentMatcher interface {
	Match(ctx context.Context, repos repository.Repositories, row domain.PaymentRow) (*MatchResult, error)
}

type ImportService interface {
	ImportInitialData(ctx context.Context, r io.Reader) (*domain.ImportSummary, error)
	ImportLegacyPayments(ctx context.Context, r io.Reader) (*domain.ImportSummary, error)
	ImportOrderPayments(ctx context.Context, r io.Reader) (*domain.ImportSummary, error)
}

type ReportService interface {
	Outstanding(ctx context.Context, cutoff time.Time, filter domain.ReportFilter) ([]domain.OutstandingRow, error)
	PaymentHistory(ctx context.Context, filter domain.ReportFilter) ([]domain.PaymentHistoryRow, error)
	MultiRentalCustomers(ctx context.Context, filter domain.ReportFilter) ([]domain.MultiRentalCustomer, error)
	RentalBalances(ctx context.Context, filter domain.ReportFilter) ([]domain.RentalBalanceRow, error)
}

type PaymentService interface {
	SearchCustomers(ctx context.Context, query string) ([]domain.Customer, error)
	ListCustomerRentals(ctx context.Context, customerID int64) ([]domain.Rental, error)
	AddManualPayment(ctx context.Context, rentalID int64, date time.Time, amount decimal.Decimal, receipt string) (*domain.Payment, error)
	EndRental(ctx context.Context, rentalID int64, endDate time.Time) (*domain.Rental, error)
}
