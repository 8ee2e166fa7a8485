package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"rental-recon/internal/domain"
	"rental-recon/internal/repository"
)

// MockCustomerRepo
type MockCustomerRepo struct {
	mock.Mock
}

func (m *MockCustomerRepo) Upsert(ctx context.Context, c *domain.Customer) (bool, error) {
	args := m.Called(ctx, c)
	return args.Bool(0), args.Error(1)
}
func (m *MockCustomerRepo) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}
func (m *MockCustomerRepo) Search(ctx context.Context, query string) ([]domain.Customer, error) {
	args := m.Called(ctx, query)
	return args.Get(0).([]domain.Customer), args.Error(1)
}

// MockInstrumentRepo
type MockInstrumentRepo struct {
	mock.Mock
}

func (m *MockInstrumentRepo) Upsert(ctx context.Context, in *domain.Instrument) (bool, error) {
	args := m.Called(ctx, in)
	return args.Bool(0), args.Error(1)
}

// MockRentalRepo
type MockRentalRepo struct {
	mock.Mock
}

func (m *MockRentalRepo) Create(ctx context.Context, rt *domain.Rental) error {
	args := m.Called(ctx, rt)
	return args.Error(0)
}
func (m *MockRentalRepo) GetByID(ctx context.Context, id int64) (*domain.Rental, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}
func (m *MockRentalRepo) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Rental, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).([]domain.Rental), args.Error(1)
}
func (m *MockRentalRepo) FindByOrderNumber(ctx context.Context, orderNumber string) ([]domain.Rental, error) {
	args := m.Called(ctx, orderNumber)
	return args.Get(0).([]domain.Rental), args.Error(1)
}
func (m *MockRentalRepo) UpdateOrderNumber(ctx context.Context, rentalID int64, orderNumber string) error {
	args := m.Called(ctx, rentalID, orderNumber)
	return args.Error(0)
}
func (m *MockRentalRepo) End(ctx context.Context, rentalID int64, endDate time.Time) error {
	args := m.Called(ctx, rentalID, endDate)
	return args.Error(0)
}

// MockPaymentRepo
type MockPaymentRepo struct {
	mock.Mock
}

func (m *MockPaymentRepo) Create(ctx context.Context, p *domain.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}
func (m *MockPaymentRepo) FindByReceipt(ctx context.Context, rentalID int64, receipt string) (*domain.Payment, error) {
	args := m.Called(ctx, rentalID, receipt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}
func (m *MockPaymentRepo) SumByRental(ctx context.Context, rentalID int64, upTo time.Time) (*domain.PaymentAggregate, error) {
	args := m.Called(ctx, rentalID, upTo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentAggregate), args.Error(1)
}

// MockReportRepo
type MockReportRepo struct {
	mock.Mock
}

func (m *MockReportRepo) ListRentalDetails(ctx context.Context) ([]domain.RentalDetail, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.RentalDetail), args.Error(1)
}
func (m *MockReportRepo) ListPaymentHistory(ctx context.Context) ([]domain.PaymentHistoryRow, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.PaymentHistoryRow), args.Error(1)
}
func (m *MockReportRepo) ListMultiRentalCustomers(ctx context.Context) ([]domain.MultiRentalCustomer, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.MultiRentalCustomer), args.Error(1)
}

// MockSelector
type MockSelector struct {
	mock.Mock
}

func (m *MockSelector) SelectRental(ctx context.Context, req domain.SelectionRequest) (domain.Selection, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(domain.Selection), args.Error(1)
}

// fakeUnitOfWork runs fn against fixed repositories and records whether the
// batch would have been committed.
type fakeUnitOfWork struct {
	repos     repository.Repositories
	commits   int
	rollbacks int
}

func (u *fakeUnitOfWork) RunInTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	if err := fn(ctx, u.repos); err != nil {
		u.rollbacks++
		return err
	}
	u.commits++
	return nil
}

type testRepos struct {
	customers   *MockCustomerRepo
	instruments *MockInstrumentRepo
	rentals     *MockRentalRepo
	payments    *MockPaymentRepo
}

func newTestRepos() *testRepos {
	return &testRepos{
		customers:   new(MockCustomerRepo),
		instruments: new(MockInstrumentRepo),
		rentals:     new(MockRentalRepo),
		payments:    new(MockPaymentRepo),
	}
}

func (r *testRepos) bundle() repository.Repositories {
	return repository.Repositories{
		Customers:   r.customers,
		Instruments: r.instruments,
		Rentals:     r.rentals,
		Payments:    r.payments,
	}
}

// MockMatcher
type MockMatcher struct {
	mock.Mock
}

func (m *MockMatcher) Match(ctx context.Context, repos repository.Repositories, row domain.PaymentRow) (*MatchResult, error) {
	args := m.Called(ctx, repos, row)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*MatchResult), args.Error(1)
}
