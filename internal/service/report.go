package service

import (
	"context"
	"fmt"
	"time"

	"rental-recon/internal/domain"
	"rental-recon/internal/logger"
	"rental-recon/internal/repository"
	"rental-recon/internal/utils"
)

type reportService struct {
	reports  repository.ReportRepository
	payments repository.PaymentRepository
	now      func() time.Time
}

// NewReportService builds the read-only reporter. now defaults to time.Now.
func NewReportService(reports repository.ReportRepository, payments repository.PaymentRepository, now func() time.Time) ReportService {
	if now == nil {
		now = time.Now
	}
	return &reportService{reports: reports, payments: payments, now: now}
}

// Outstanding lists rentals whose payments dated on or before cutoff are
// below the expected amount. End dates are not taken into account.
func (s *reportService) Outstanding(ctx context.Context, cutoff time.Time, filter domain.ReportFilter) ([]domain.OutstandingRow, error) {
	logger.EnterMethod("reportService.Outstanding", "cutoff", cutoff.Format(domain.DateLayout))

	cutoff = utils.DateOnly(cutoff)
	details, err := s.reports.ListRentalDetails(ctx)
	if err != nil {
		logger.ExitMethodWithError("reportService.Outstanding", err)
		return nil, err
	}

	rows := []domain.OutstandingRow{}
	for _, d := range details {
		if !filter.Match(d.CustomerID, d.CustomerName) {
			continue
		}
		if utils.ElapsedMonths(d.StartDate, cutoff) < 1 {
			continue
		}
		expected := utils.ExpectedAmount(d.StartDate, cutoff, d.MonthlyPrice)
		agg, err := s.payments.SumByRental(ctx, d.ID, cutoff)
		if err != nil {
			return nil, fmt.Errorf("failed to sum payments of rental %d: %w", d.ID, err)
		}
		if !utils.IsOutstanding(expected, agg.Total) {
			continue
		}
		rows = append(rows, domain.OutstandingRow{
			RentalID:       d.ID,
			CustomerID:     d.CustomerID,
			CustomerName:   d.CustomerName,
			Instrument:     d.Instrument,
			PaymentCount:   agg.Count,
			LastPayment:    agg.LastPayment,
			AmountPaid:     agg.Total,
			AmountExpected: expected,
			Outstanding:    utils.OutstandingAmount(expected, agg.Total),
		})
	}

	logger.ExitMethod("reportService.Outstanding", "rows", len(rows))
	return rows, nil
}

func (s *reportService) PaymentHistory(ctx context.Context, filter domain.ReportFilter) ([]domain.PaymentHistoryRow, error) {
	all, err := s.reports.ListPaymentHistory(ctx)
	if err != nil {
		return nil, err
	}
	rows := []domain.PaymentHistoryRow{}
	for _, p := range all {
		if filter.Match(p.CustomerID, p.CustomerName) {
			rows = append(rows, p)
		}
	}
	return rows, nil
}

func (s *reportService) MultiRentalCustomers(ctx context.Context, filter domain.ReportFilter) ([]domain.MultiRentalCustomer, error) {
	all, err := s.reports.ListMultiRentalCustomers(ctx)
	if err != nil {
		return nil, err
	}
	rows := []domain.MultiRentalCustomer{}
	for _, c := range all {
		if filter.Match(c.CustomerID, c.CustomerName) {
			rows = append(rows, c)
		}
	}
	return rows, nil
}

// RentalBalances lists every rental with its expected-minus-paid balance as
// of today; positive means the customer owes. An ended rental stops accruing
// at its end date.
func (s *reportService) RentalBalances(ctx context.Context, filter domain.ReportFilter) ([]domain.RentalBalanceRow, error) {
	logger.EnterMethod("reportService.RentalBalances")

	today := utils.DateOnly(s.now())
	details, err := s.reports.ListRentalDetails(ctx)
	if err != nil {
		logger.ExitMethodWithError("reportService.RentalBalances", err)
		return nil, err
	}

	rows := []domain.RentalBalanceRow{}
	for _, d := range details {
		if !filter.Match(d.CustomerID, d.CustomerName) {
			continue
		}
		accrueUntil := today
		if d.EndDate != nil && d.EndDate.Before(today) {
			accrueUntil = *d.EndDate
		}
		expected := utils.ExpectedAmount(d.StartDate, accrueUntil, d.MonthlyPrice)
		agg, err := s.payments.SumByRental(ctx, d.ID, today)
		if err != nil {
			return nil, fmt.Errorf("failed to sum payments of rental %d: %w", d.ID, err)
		}
		rows = append(rows, domain.RentalBalanceRow{
			RentalID:       d.ID,
			CustomerID:     d.CustomerID,
			CustomerName:   d.CustomerName,
			Instrument:     d.Instrument,
			OrderNumber:    d.OrderNumber,
			StartDate:      d.StartDate,
			EndDate:        d.EndDate,
			Ended:          d.Ended,
			MonthlyPrice:   d.MonthlyPrice,
			AmountExpected: expected,
			AmountPaid:     agg.Total,
			Balance:        utils.OutstandingAmount(expected, agg.Total),
		})
	}

	logger.ExitMethod("reportService.RentalBalances", "rows", len(rows))
	return rows, nil
}
