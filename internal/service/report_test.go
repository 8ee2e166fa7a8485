package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rental-recon/internal/domain"
)

func detail(id, customerID int64, name, price string, start time.Time) domain.RentalDetail {
	return domain.RentalDetail{
		Rental: domain.Rental{
			ID:           id,
			CustomerID:   customerID,
			Instrument:   "Cello",
			StartDate:    start,
			MonthlyPrice: decimal.RequireFromString(price),
		},
		CustomerName: name,
	}
}

func TestReportService_Outstanding(t *testing.T) {
	ctx := context.Background()
	cutoff := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	lastPayment := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	reports := new(MockReportRepo)
	payments := new(MockPaymentRepo)
	svc := NewReportService(reports, payments, nil)

	reports.On("ListRentalDetails", ctx).Return([]domain.RentalDetail{
		detail(1, 1001, "Anna Berg", "50.00", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)),
		detail(2, 1002, "Jonas Weber", "30.00", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)),
		detail(3, 1003, "Lena Kraus", "40.00", time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)),
	}, nil)
	payments.On("SumByRental", ctx, int64(1), cutoff).Return(&domain.PaymentAggregate{
		Total: decimal.RequireFromString("100.00"), Count: 2, LastPayment: &lastPayment,
	}, nil)
	payments.On("SumByRental", ctx, int64(2), cutoff).Return(&domain.PaymentAggregate{
		Total: decimal.RequireFromString("60.00"), Count: 2,
	}, nil)

	t.Run("PaidShortOfExpected", func(t *testing.T) {
		rows, err := svc.Outstanding(ctx, cutoff, domain.ReportFilter{})
		require.NoError(t, err)
		require.Len(t, rows, 1)
		row := rows[0]
		assert.Equal(t, int64(1), row.RentalID)
		assert.Equal(t, "150.00", row.AmountExpected.StringFixed(2))
		assert.Equal(t, "100.00", row.AmountPaid.StringFixed(2))
		assert.Equal(t, "50.00", row.Outstanding.StringFixed(2))
		assert.Equal(t, 2, row.PaymentCount)
		assert.Equal(t, &lastPayment, row.LastPayment)
	})

	t.Run("FilterByName", func(t *testing.T) {
		rows, err := svc.Outstanding(ctx, cutoff, domain.ReportFilter{Name: "weber"})
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	payments.AssertNotCalled(t, "SumByRental", ctx, int64(3), cutoff)
}

func TestReportService_ZeroPaymentRentalIsOutstanding(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2023, 11, 20, 0, 0, 0, 0, time.UTC)

	for month := 0; month < 6; month++ {
		cutoff := time.Date(2023, time.Month(11+month), 1, 0, 0, 0, 0, time.UTC)
		reports := new(MockReportRepo)
		payments := new(MockPaymentRepo)
		svc := NewReportService(reports, payments, nil)

		reports.On("ListRentalDetails", ctx).Return([]domain.RentalDetail{detail(1, 1001, "Anna Berg", "25.00", start)}, nil)
		payments.On("SumByRental", ctx, int64(1), cutoff).Return(&domain.PaymentAggregate{Total: decimal.Zero}, nil)

		rows, err := svc.Outstanding(ctx, cutoff, domain.ReportFilter{})
		require.NoError(t, err)
		require.Len(t, rows, 1, "cutoff %s", cutoff.Format(domain.DateLayout))
		assert.True(t, rows[0].Outstanding.IsPositive())
		assert.Nil(t, rows[0].LastPayment)
	}
}

func TestReportService_RentalBalances(t *testing.T) {
	ctx := context.Background()
	today := time.Date(2024, 5, 10, 14, 30, 0, 0, time.UTC)
	midnight := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	ended := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)

	reports := new(MockReportRepo)
	payments := new(MockPaymentRepo)
	svc := NewReportService(reports, payments, func() time.Time { return today })

	endedRental := detail(2, 1001, "Anna Berg", "30.00", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	endedRental.EndDate = &ended
	endedRental.Ended = true
	reports.On("ListRentalDetails", ctx).Return([]domain.RentalDetail{
		detail(1, 1001, "Anna Berg", "50.00", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)),
		endedRental,
	}, nil)
	payments.On("SumByRental", ctx, int64(1), midnight).Return(&domain.PaymentAggregate{Total: decimal.RequireFromString("200")}, nil)
	payments.On("SumByRental", ctx, int64(2), midnight).Return(&domain.PaymentAggregate{Total: decimal.RequireFromString("60")}, nil)

	rows, err := svc.RentalBalances(ctx, domain.ReportFilter{CustomerID: "100"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "250.00", rows[0].AmountExpected.StringFixed(2))
	assert.Equal(t, "50.00", rows[0].Balance.StringFixed(2))
	assert.Equal(t, rows[0].AmountExpected.Sub(rows[0].AmountPaid).String(), rows[0].Balance.String())
	assert.Equal(t, "60.00", rows[1].AmountExpected.StringFixed(2))
	assert.True(t, rows[1].Balance.IsZero())
	assert.True(t, rows[1].Ended)
}

func TestReportService_Listings(t *testing.T) {
	ctx := context.Background()
	reports := new(MockReportRepo)
	svc := NewReportService(reports, new(MockPaymentRepo), nil)

	reports.On("ListPaymentHistory", ctx).Return([]domain.PaymentHistoryRow{
		{PaymentID: 2, CustomerID: 1001, CustomerName: "Anna Berg"},
		{PaymentID: 1, CustomerID: 2002, CustomerName: "Jonas Weber"},
	}, nil)
	reports.On("ListMultiRentalCustomers", ctx).Return([]domain.MultiRentalCustomer{
		{CustomerID: 1001, CustomerName: "Anna Berg", RentalCount: 2},
	}, nil)

	history, err := svc.PaymentHistory(ctx, domain.ReportFilter{CustomerID: "200"})
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, int64(1), history[0].PaymentID)

	multi, err := svc.MultiRentalCustomers(ctx, domain.ReportFilter{Name: "BERG"})
	require.NoError(t, err)
	assert.Len(t, multi, 1)
}
