package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"rental-recon/internal/csvsource"
	"rental-recon/internal/domain"
	"rental-recon/internal/logger"
	"rental-recon/internal/repository"
	"rental-recon/internal/utils"
)

const DefaultMaxDiagnostics = 20

// ImportOptions configures the three CSV importers.
type ImportOptions struct {
	Encoding           string
	MaxDiagnostics     int
	FirstPaymentColumn int
	OrderColumns       OrderColumnLayout
}

type importService struct {
	uow     repository.UnitOfWork
	matcher PaymentMatcher
	opts    ImportOptions
	newID   func() string
}

func NewImportService(uow repository.UnitOfWork, matcher PaymentMatcher, opts ImportOptions) ImportService {
	if opts.MaxDiagnostics <= 0 {
		opts.MaxDiagnostics = DefaultMaxDiagnostics
	}
	if opts.FirstPaymentColumn <= 0 {
		opts.FirstPaymentColumn = DefaultFirstPaymentColumn
	}
	if opts.OrderColumns.MinColumns == 0 {
		opts.OrderColumns = DefaultOrderColumnLayout()
	}
	return &importService{uow: uow, matcher: matcher, opts: opts, newID: uuid.NewString}
}

func (s *importService) begin(kind domain.ImportKind) (*domain.ImportSummary, *slog.Logger) {
	summary := domain.NewImportSummary(s.newID(), kind, s.opts.MaxDiagnostics)
	log := logger.WithBatch(summary.BatchID, string(kind))
	log.Info("Import started")
	return summary, log
}

func (s *importService) finish(log *slog.Logger, summary *domain.ImportSummary, started time.Time, err error) (*domain.ImportSummary, error) {
	if err != nil {
		log.Error("Import rolled back", "error", err, "duration", time.Since(started))
		return nil, err
	}
	log.Info("Import committed",
		"total", summary.TotalRows,
		"imported", summary.Imported,
		"already_exists", summary.AlreadyExists,
		"no_rental_found", summary.NoRentalFound,
		"invalid_data", summary.InvalidData,
		"user_skipped", summary.UserSkipped,
		"payments", summary.PaymentsInserted,
		"duration", time.Since(started),
	)
	return summary, nil
}

// ImportInitialData loads customers and instruments. Existing records are
// left untouched, so re-running the same file changes nothing.
func (s *importService) ImportInitialData(ctx context.Context, r io.Reader) (*domain.ImportSummary, error) {
	started := time.Now()
	summary, log := s.begin(domain.ImportKindInitial)

	src, err := csvsource.Read(r, csvsource.Options{Delimiter: ';', HeaderRows: 1, Encoding: s.opts.Encoding})
	if err != nil {
		return s.finish(log, summary, started, err)
	}

	err = s.uow.RunInTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		for _, row := range src.Rows {
			summary.TotalRows++
			if len(row.Fields) < initialColumns {
				msg := fmt.Sprintf("expected %d columns, got %d", initialColumns, len(row.Fields))
				summary.Record(row.Line, domain.OutcomeInvalidData, msg)
				logger.RowOutcome(log, row.Line, string(domain.OutcomeInvalidData), msg)
				continue
			}
			ir, err := parseInitialRow(row)
			if err != nil {
				return err
			}

			customerInserted, err := repos.Customers.Upsert(ctx, &domain.Customer{
				ID:        ir.CustomerID,
				FirstName: ir.FirstName,
				LastName:  ir.LastName,
			})
			if err != nil {
				return fmt.Errorf("line %d: failed to store customer %d: %w", row.Line, ir.CustomerID, err)
			}
			instrumentInserted := false
			if ir.SerialNumber != "" {
				instrumentInserted, err = repos.Instruments.Upsert(ctx, &domain.Instrument{SerialNumber: ir.SerialNumber, Name: ir.Instrument})
				if err != nil {
					return fmt.Errorf("line %d: failed to store instrument %s: %w", row.Line, ir.SerialNumber, err)
				}
			}

			if customerInserted {
				summary.CustomersInserted++
			}
			if instrumentInserted {
				summary.InstrumentsInserted++
			}
			if customerInserted || instrumentInserted {
				summary.Record(row.Line, domain.OutcomeImported, "")
				logger.RowOutcome(log, row.Line, string(domain.OutcomeImported), fmt.Sprintf("customer %d", ir.CustomerID))
			} else {
				summary.Record(row.Line, domain.OutcomeAlreadyExists, "")
			}
		}
		return nil
	})
	return s.finish(log, summary, started, err)
}

// ImportLegacyPayments loads the wide sheet where every row is one rental and
// every column from FirstPaymentColumn on is a month keyed by a dd.MM.yyyy header.
func (s *importService) ImportLegacyPayments(ctx context.Context, r io.Reader) (*domain.ImportSummary, error) {
	started := time.Now()
	summary, log := s.begin(domain.ImportKindLegacyPayments)

	src, err := csvsource.Read(r, csvsource.Options{Delimiter: ';', HeaderRows: 1, Encoding: s.opts.Encoding})
	if err != nil {
		return s.finish(log, summary, started, err)
	}

	first := s.opts.FirstPaymentColumn
	header := src.Header()
	paymentDates := make(map[int]time.Time)
	for i := first; i < len(header); i++ {
		if d, err := utils.ParseDate(header[i]); err == nil {
			paymentDates[i-first] = d
		}
	}
	log.Debug("Payment columns detected", "columns", len(paymentDates))

	err = s.uow.RunInTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		for _, row := range src.Rows {
			summary.TotalRows++
			if len(row.Fields) < first {
				msg := fmt.Sprintf("expected at least %d columns, got %d", first, len(row.Fields))
				summary.Record(row.Line, domain.OutcomeInvalidData, msg)
				logger.RowOutcome(log, row.Line, string(domain.OutcomeInvalidData), msg)
				continue
			}
			lr, err := parseLegacyRow(row, first)
			if err != nil {
				return err
			}

			inserted, err := repos.Instruments.Upsert(ctx, &domain.Instrument{SerialNumber: lr.SerialNumber, Name: lr.Instrument})
			if err != nil {
				return fmt.Errorf("line %d: failed to store instrument %s: %w", row.Line, lr.SerialNumber, err)
			}
			if inserted {
				summary.InstrumentsInserted++
			}

			rental := &domain.Rental{
				CustomerID:   lr.CustomerID,
				SerialNumber: lr.SerialNumber,
				StartDate:    lr.StartDate,
				MonthlyPrice: lr.MonthlyPrice,
			}
			if err := repos.Rentals.Create(ctx, rental); err != nil {
				return fmt.Errorf("line %d: failed to create rental for customer %d: %w", row.Line, lr.CustomerID, err)
			}
			summary.RentalsCreated++

			payments := 0
			for i, cell := range lr.Cells {
				date, ok := paymentDates[i]
				cell = strings.TrimSpace(cell)
				if !ok || cell == "" {
					continue
				}
				amount := lr.MonthlyPrice
				if !strings.EqualFold(cell, "x") {
					if amount, err = utils.ParseAmount(cell); err != nil {
						continue
					}
				}
				p := &domain.Payment{RentalID: rental.ID, PaymentDate: date, Amount: amount}
				if err := repos.Payments.Create(ctx, p); err != nil {
					return fmt.Errorf("line %d: failed to insert payment of %s: %w", row.Line, date.Format(domain.DateLayout), err)
				}
				payments++
			}
			summary.PaymentsInserted += payments
			summary.Record(row.Line, domain.OutcomeImported, "")
			logger.RowOutcome(log, row.Line, string(domain.OutcomeImported), fmt.Sprintf("rental %d with %d payments", rental.ID, payments))
		}
		return nil
	})
	return s.finish(log, summary, started, err)
}

// ImportOrderPayments loads the current payment export and resolves every row
// through the PaymentMatcher.
func (s *importService) ImportOrderPayments(ctx context.Context, r io.Reader) (*domain.ImportSummary, error) {
	started := time.Now()
	summary, log := s.begin(domain.ImportKindOrderPayments)

	src, err := csvsource.Read(r, csvsource.Options{Delimiter: ',', HeaderRows: 2, Encoding: s.opts.Encoding})
	if err != nil {
		return s.finish(log, summary, started, err)
	}

	err = s.uow.RunInTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		for _, row := range src.Rows {
			summary.TotalRows++
			pr, err := parsePaymentRow(row, s.opts.OrderColumns)
			if err != nil {
				summary.Record(row.Line, domain.OutcomeInvalidData, err.Error())
				logger.RowOutcome(log, row.Line, string(domain.OutcomeInvalidData), err.Error())
				continue
			}

			result, err := s.matcher.Match(ctx, repos, pr)
			if err != nil {
				return err
			}
			if result.OrderNumberLinked {
				summary.OrderNumbersLinked++
			}
			summary.PaymentsInserted += len(result.Payments)
			summary.Record(row.Line, result.Outcome, result.Message)
			logger.RowOutcome(log, row.Line, string(result.Outcome), result.Message)
		}
		return nil
	})
	return s.finish(log, summary, started, err)
}
