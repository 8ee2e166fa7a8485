package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"rental-recon/internal/domain"
	"rental-recon/internal/logger"
	"rental-recon/internal/repository"
	"rental-recon/internal/utils"
)

type paymentService struct {
	uow   repository.UnitOfWork
	repos repository.Repositories
}

// NewPaymentService serves manual entry and lookups. repos is used for reads
// outside a transaction.
func NewPaymentService(uow repository.UnitOfWork, repos repository.Repositories) PaymentService {
	return &paymentService{uow: uow, repos: repos}
}

func (s *paymentService) SearchCustomers(ctx context.Context, query string) ([]domain.Customer, error) {
	return s.repos.Customers.Search(ctx, query)
}

func (s *paymentService) ListCustomerRentals(ctx context.Context, customerID int64) ([]domain.Rental, error) {
	if _, err := s.repos.Customers.GetByID(ctx, customerID); err != nil {
		return nil, fmt.Errorf("customer %d: %w", customerID, err)
	}
	return s.repos.Rentals.ListByCustomer(ctx, customerID)
}

// AddManualPayment records one payment through the same receipt check the
// importers use.
func (s *paymentService) AddManualPayment(ctx context.Context, rentalID int64, date time.Time, amount decimal.Decimal, receipt string) (*domain.Payment, error) {
	logger.EnterMethod("paymentService.AddManualPayment", "rentalID", rentalID, "amount", amount.StringFixed(2))

	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: must be greater than zero", domain.ErrInvalidAmount)
	}
	receipt = strings.TrimSpace(receipt)

	payment := &domain.Payment{RentalID: rentalID, PaymentDate: utils.DateOnly(date), Amount: amount.Round(2)}
	if receipt != "" {
		payment.ReceiptNumber = &receipt
	}

	err := s.uow.RunInTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if _, err := repos.Rentals.GetByID(ctx, rentalID); err != nil {
			return fmt.Errorf("rental %d: %w", rentalID, err)
		}
		if receipt != "" {
			existing, err := repos.Payments.FindByReceipt(ctx, rentalID, receipt)
			if err != nil {
				return err
			}
			if existing != nil {
				return domain.ErrDuplicatePayment
			}
		}
		return repos.Payments.Create(ctx, payment)
	})
	if err != nil {
		logger.ExitMethodWithError("paymentService.AddManualPayment", err, "rentalID", rentalID)
		return nil, err
	}

	logger.ExitMethod("paymentService.AddManualPayment", "paymentID", payment.ID)
	return payment, nil
}

func (s *paymentService) EndRental(ctx context.Context, rentalID int64, endDate time.Time) (*domain.Rental, error) {
	logger.EnterMethod("paymentService.EndRental", "rentalID", rentalID)

	endDate = utils.DateOnly(endDate)
	var rental *domain.Rental
	err := s.uow.RunInTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		rental, err = repos.Rentals.GetByID(ctx, rentalID)
		if err != nil {
			return fmt.Errorf("rental %d: %w", rentalID, err)
		}
		if endDate.Before(rental.StartDate) {
			return errors.New("end date is before the rental start")
		}
		if err := repos.Rentals.End(ctx, rentalID, endDate); err != nil {
			return err
		}
		rental.EndDate = &endDate
		rental.Ended = true
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("paymentService.EndRental", err, "rentalID", rentalID)
		return nil, err
	}

	logger.ExitMethod("paymentService.EndRental", "rentalID", rentalID)
	return rental, nil
}
