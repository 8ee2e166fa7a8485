package sqlstore

import (
	"context"

	"rental-recon/internal/domain"
	"rental-recon/internal/logger"
	"rental-recon/internal/repository"
)

type instrumentRepository struct {
	db DBTX
}

func NewInstrumentRepository(db DBTX) repository.InstrumentRepository {
	return &instrumentRepository{db: db}
}

func (r *instrumentRepository) Upsert(ctx context.Context, in *domain.Instrument) (bool, error) {
	query := `INSERT INTO instruments (serial_number, instrument) VALUES ($1, $2)
	          ON CONFLICT (serial_number) DO NOTHING`
	logger.DatabaseCall("instrumentRepository.Upsert", query, "serial", in.SerialNumber)
	res, err := r.db.ExecContext(ctx, query, in.SerialNumber, in.Name)
	if err != nil {
		logger.DatabaseResult("instrumentRepository.Upsert", 0, err)
		return false, err
	}
	n, err := res.RowsAffected()
	logger.DatabaseResult("instrumentRepository.Upsert", n, err)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
