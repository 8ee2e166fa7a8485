package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"rental-recon/internal/domain"
)

func testRental(id, customerID int64, price, orderNumber string) domain.Rental {
	r := domain.Rental{
		ID:           id,
		CustomerID:   customerID,
		SerialNumber: "SN-" + price,
		Instrument:   "Violin",
		StartDate:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		MonthlyPrice: decimal.RequireFromString(price),
	}
	if orderNumber != "" {
		r.OrderNumber = &orderNumber
	}
	return r
}

func testRow(amount, orderNumber, receipt string) domain.PaymentRow {
	return domain.PaymentRow{
		Line:          3,
		PaymentDate:   time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		CustomerID:    1001,
		OrderNumber:   orderNumber,
		ReceiptNumber: receipt,
		CustomerName:  "Anna Berg",
		Amount:        decimal.RequireFromString(amount),
	}
}

func paymentFor(rentalID int64, amount string) interface{} {
	return mock.MatchedBy(func(p *domain.Payment) bool {
		return p.RentalID == rentalID && p.Amount.Equal(decimal.RequireFromString(amount))
	})
}

func TestPaymentMatcher_OrderNumber(t *testing.T) {
	ctx := context.Background()

	t.Run("UniqueOrderNumber", func(t *testing.T) {
		repos := newTestRepos()
		matcher := NewPaymentMatcher(new(MockSelector), 3)
		row := testRow("45.00", "ORD-1", "R1")

		repos.rentals.On("FindByOrderNumber", ctx, "ORD-1").Return([]domain.Rental{testRental(5, 1001, "45.00", "ORD-1")}, nil).Once()
		repos.payments.On("FindByReceipt", ctx, int64(5), "R1").Return(nil, nil).Once()
		repos.payments.On("Create", ctx, paymentFor(5, "45.00")).Return(nil).Once()

		result, err := matcher.Match(ctx, repos.bundle(), row)
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeImported, result.Outcome)
		assert.Len(t, result.Payments, 1)
		assert.False(t, result.OrderNumberLinked)
		repos.rentals.AssertNotCalled(t, "ListByCustomer", mock.Anything, mock.Anything)
		repos.payments.AssertExpectations(t)
	})

	t.Run("OrderNumberOfAnotherCustomerFallsBack", func(t *testing.T) {
		repos := newTestRepos()
		matcher := NewPaymentMatcher(new(MockSelector), 3)
		row := testRow("30.00", "ORD-2", "")

		repos.rentals.On("FindByOrderNumber", ctx, "ORD-2").Return([]domain.Rental{testRental(9, 2002, "30.00", "ORD-2")}, nil).Once()
		repos.rentals.On("ListByCustomer", ctx, int64(1001)).Return([]domain.Rental{testRental(4, 1001, "30.00", "")}, nil).Once()
		repos.payments.On("Create", ctx, paymentFor(4, "30.00")).Return(nil).Once()

		result, err := matcher.Match(ctx, repos.bundle(), row)
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeImported, result.Outcome)
		assert.False(t, result.OrderNumberLinked)
		repos.rentals.AssertExpectations(t)
		repos.rentals.AssertNotCalled(t, "UpdateOrderNumber", mock.Anything, mock.Anything, mock.Anything)
		repos.payments.AssertNotCalled(t, "FindByReceipt", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("UnusedOrderNumberIsLinked", func(t *testing.T) {
		repos := newTestRepos()
		matcher := NewPaymentMatcher(new(MockSelector), 3)
		row := testRow("30.00", "ORD-3", "")

		repos.rentals.On("FindByOrderNumber", ctx, "ORD-3").Return([]domain.Rental{}, nil).Once()
		repos.rentals.On("ListByCustomer", ctx, int64(1001)).Return([]domain.Rental{testRental(4, 1001, "30.00", "")}, nil).Once()
		repos.rentals.On("UpdateOrderNumber", ctx, int64(4), "ORD-3").Return(nil).Once()
		repos.payments.On("Create", ctx, paymentFor(4, "30.00")).Return(nil).Once()

		result, err := matcher.Match(ctx, repos.bundle(), row)
		require.NoError(t, err)
		assert.True(t, result.OrderNumberLinked)
		repos.rentals.AssertExpectations(t)
	})

	t.Run("StoredOrderNumberIsKept", func(t *testing.T) {
		repos := newTestRepos()
		matcher := NewPaymentMatcher(new(MockSelector), 3)
		row := testRow("30.00", "ORD-NEW", "")

		repos.rentals.On("FindByOrderNumber", ctx, "ORD-NEW").Return([]domain.Rental{}, nil).Once()
		repos.rentals.On("ListByCustomer", ctx, int64(1001)).Return([]domain.Rental{testRental(4, 1001, "30.00", "ORD-OLD")}, nil).Once()
		repos.payments.On("Create", ctx, paymentFor(4, "30.00")).Return(nil).Once()

		result, err := matcher.Match(ctx, repos.bundle(), row)
		require.NoError(t, err)
		assert.False(t, result.OrderNumberLinked)
		repos.rentals.AssertNotCalled(t, "UpdateOrderNumber", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestPaymentMatcher_NoRentalFound(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos()
	matcher := NewPaymentMatcher(new(MockSelector), 3)

	repos.rentals.On("ListByCustomer", ctx, int64(1001)).Return([]domain.Rental{}, nil).Once()

	result, err := matcher.Match(ctx, repos.bundle(), testRow("45.00", "", "R1"))
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeNoRentalFound, result.Outcome)
	assert.Empty(t, result.Payments)
	repos.payments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPaymentMatcher_DuplicateReceipt(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos()
	matcher := NewPaymentMatcher(new(MockSelector), 3)
	receipt := "R100"
	existing := &domain.Payment{ID: 1, RentalID: 4, ReceiptNumber: &receipt}

	repos.rentals.On("ListByCustomer", ctx, int64(1001)).Return([]domain.Rental{testRental(4, 1001, "45.00", "")}, nil).Once()
	repos.payments.On("FindByReceipt", ctx, int64(4), "R100").Return(existing, nil).Once()

	result, err := matcher.Match(ctx, repos.bundle(), testRow("45.00", "", "R100"))
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeAlreadyExists, result.Outcome)
	assert.Equal(t, 1, result.Duplicates)
	assert.Contains(t, result.Message, "R100")
	repos.payments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPaymentMatcher_Selection(t *testing.T) {
	ctx := context.Background()
	twoRentals := []domain.Rental{testRental(1, 1001, "30.00", ""), testRental(2, 1001, "45.00", "")}

	t.Run("SplitMatchingAmount", func(t *testing.T) {
		repos := newTestRepos()
		selector := new(MockSelector)
		matcher := NewPaymentMatcher(selector, 3)
		row := testRow("75.00", "", "R7")

		repos.rentals.On("ListByCustomer", ctx, int64(1001)).Return(twoRentals, nil).Once()
		selector.On("SelectRental", ctx, mock.MatchedBy(func(req domain.SelectionRequest) bool {
			return req.Attempt == 1 && len(req.Candidates) == 2 && req.Rejection == ""
		})).Return(domain.SelectSplit(1, 2), nil).Once()
		repos.payments.On("FindByReceipt", ctx, mock.Anything, "R7").Return(nil, nil).Twice()
		repos.payments.On("Create", ctx, paymentFor(1, "30.00")).Return(nil).Once()
		repos.payments.On("Create", ctx, paymentFor(2, "45.00")).Return(nil).Once()

		result, err := matcher.Match(ctx, repos.bundle(), row)
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeImported, result.Outcome)
		require.Len(t, result.Payments, 2)
		for _, p := range result.Payments {
			assert.Equal(t, row.PaymentDate, p.PaymentDate)
		}
		assert.False(t, result.OrderNumberLinked)
		repos.payments.AssertExpectations(t)
		selector.AssertExpectations(t)
	})

	t.Run("SplitMismatchIsRejectedUntilAttemptsRunOut", func(t *testing.T) {
		repos := newTestRepos()
		selector := new(MockSelector)
		matcher := NewPaymentMatcher(selector, 3)

		repos.rentals.On("ListByCustomer", ctx, int64(1001)).Return(twoRentals, nil).Once()
		selector.On("SelectRental", ctx, mock.MatchedBy(func(req domain.SelectionRequest) bool {
			return req.Attempt == 1
		})).Return(domain.SelectSplit(1, 2), nil).Once()
		selector.On("SelectRental", ctx, mock.MatchedBy(func(req domain.SelectionRequest) bool {
			return req.Attempt > 1 && req.Rejection != ""
		})).Return(domain.SelectSplit(1, 2), nil).Twice()

		result, err := matcher.Match(ctx, repos.bundle(), testRow("74.00", "", "R8"))
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeUserSkipped, result.Outcome)
		assert.Contains(t, result.Message, "split rejected")
		assert.Contains(t, result.Message, domain.ErrSplitMismatch.Error())
		repos.payments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		selector.AssertExpectations(t)
	})

	t.Run("SplitWithinTolerance", func(t *testing.T) {
		repos := newTestRepos()
		selector := new(MockSelector)
		matcher := NewPaymentMatcher(selector, 3)

		repos.rentals.On("ListByCustomer", ctx, int64(1001)).Return(twoRentals, nil).Once()
		selector.On("SelectRental", ctx, mock.Anything).Return(domain.SelectSplit(2, 1), nil).Once()
		repos.payments.On("Create", ctx, mock.Anything).Return(nil).Twice()

		result, err := matcher.Match(ctx, repos.bundle(), testRow("75.01", "", ""))
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeImported, result.Outcome)
		assert.Len(t, result.Payments, 2)
	})

	t.Run("RejectedThenSingleLinksOrderNumber", func(t *testing.T) {
		repos := newTestRepos()
		selector := new(MockSelector)
		matcher := NewPaymentMatcher(selector, 3)
		row := testRow("45.00", "ORD-5", "")

		repos.rentals.On("FindByOrderNumber", ctx, "ORD-5").Return([]domain.Rental{}, nil).Once()
		repos.rentals.On("ListByCustomer", ctx, int64(1001)).Return(twoRentals, nil).Once()
		selector.On("SelectRental", ctx, mock.MatchedBy(func(req domain.SelectionRequest) bool {
			return req.Attempt == 1
		})).Return(domain.SelectSingle(99), nil).Once()
		selector.On("SelectRental", ctx, mock.MatchedBy(func(req domain.SelectionRequest) bool {
			return req.Attempt == 2 && req.Rejection != ""
		})).Return(domain.SelectSingle(2), nil).Once()
		repos.rentals.On("UpdateOrderNumber", ctx, int64(2), "ORD-5").Return(nil).Once()
		repos.payments.On("Create", ctx, paymentFor(2, "45.00")).Return(nil).Once()

		result, err := matcher.Match(ctx, repos.bundle(), row)
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeImported, result.Outcome)
		assert.True(t, result.OrderNumberLinked)
		selector.AssertExpectations(t)
		repos.rentals.AssertExpectations(t)
	})

	t.Run("SkipAndCancel", func(t *testing.T) {
		for _, sel := range []domain.Selection{domain.Skip(), domain.Cancel()} {
			repos := newTestRepos()
			selector := new(MockSelector)
			matcher := NewPaymentMatcher(selector, 3)

			repos.rentals.On("ListByCustomer", ctx, int64(1001)).Return(twoRentals, nil).Once()
			selector.On("SelectRental", ctx, mock.Anything).Return(sel, nil).Once()

			result, err := matcher.Match(ctx, repos.bundle(), testRow("45.00", "", "R9"))
			require.NoError(t, err)
			assert.Equal(t, domain.OutcomeUserSkipped, result.Outcome)
			repos.payments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		}
	})

	t.Run("SelectorErrorIsFatal", func(t *testing.T) {
		repos := newTestRepos()
		selector := new(MockSelector)
		matcher := NewPaymentMatcher(selector, 3)

		repos.rentals.On("ListByCustomer", ctx, int64(1001)).Return(twoRentals, nil).Once()
		selector.On("SelectRental", ctx, mock.Anything).Return(domain.Selection{}, domain.ErrAmbiguousPayment).Once()

		result, err := matcher.Match(ctx, repos.bundle(), testRow("45.00", "", ""))
		assert.ErrorIs(t, err, domain.ErrAmbiguousPayment)
		assert.Nil(t, result)
	})
}

func TestPaymentMatcher_StoreErrors(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos()
	matcher := NewPaymentMatcher(new(MockSelector), 3)

	repos.rentals.On("ListByCustomer", ctx, int64(1001)).Return([]domain.Rental{testRental(4, 1001, "45.00", "")}, nil).Once()
	repos.payments.On("Create", ctx, mock.Anything).Return(errors.New("disk full")).Once()

	result, err := matcher.Match(ctx, repos.bundle(), testRow("45.00", "", ""))
	assert.Error(t, err)
	assert.Nil(t, result)
}
