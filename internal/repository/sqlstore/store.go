package sqlstore

import (
	"context"
	"database/sql"

	"rental-recon/internal/repository"
)

type Store struct {
	db     *sql.DB
	driver string
	repository.Repositories
	Reports repository.ReportRepository
}

func NewStore(db *sql.DB, driver string) *Store {
	return &Store{
		db:           db,
		driver:       driver,
		Repositories: newRepositories(db),
		Reports:      NewReportRepository(db, driver),
	}
}

func newRepositories(q DBTX) repository.Repositories {
	return repository.Repositories{
		Customers:   NewCustomerRepository(q),
		Instruments: NewInstrumentRepository(q),
		Rentals:     NewRentalRepository(q),
		Payments:    NewPaymentRepository(q),
	}
}

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error { return s.db.Close() }

// RunInTx implements repository.UnitOfWork.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	return RunInTx(ctx, s.db, nil, func(ctx context.Context, tx DBTX) error {
		return fn(ctx, newRepositories(tx))
	})
}
