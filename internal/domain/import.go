package domain

import "fmt"

type Outcome string

const (
	OutcomeImported      Outcome = "imported"
	OutcomeAlreadyExists Outcome = "already_exists"
	OutcomeNoRentalFound Outcome = "no_rental_found"
	OutcomeInvalidData   Outcome = "invalid_data"
	OutcomeUserSkipped   Outcome = "user_skipped"
)

type ImportKind string

const (
	ImportKindInitial        ImportKind = "initial_data"
	ImportKindLegacyPayments ImportKind = "legacy_payments"
	ImportKindOrderPayments  ImportKind = "order_payments"
)

// ImportSummary is the end-of-batch report shown to the operator.
type ImportSummary struct {
	BatchID   string     `json:"batch_id"`
	Kind      ImportKind `json:"kind"`
	TotalRows int        `json:"total_rows"`
	Imported  int        `json:"imported"`

	AlreadyExists int `json:"already_exists"`
	NoRentalFound int `json:"no_rental_found"`
	InvalidData   int `json:"invalid_data"`
	UserSkipped   int `json:"user_skipped"`

	CustomersInserted   int `json:"customers_inserted,omitempty"`
	InstrumentsInserted int `json:"instruments_inserted,omitempty"`
	RentalsCreated      int `json:"rentals_created,omitempty"`
	PaymentsInserted    int `json:"payments_inserted"`
	OrderNumbersLinked  int `json:"order_numbers_linked,omitempty"`

	Diagnostics        []string `json:"diagnostics,omitempty"`
	DroppedDiagnostics int      `json:"dropped_diagnostics,omitempty"`

	maxDiagnostics int
}

func NewImportSummary(batchID string, kind ImportKind, maxDiagnostics int) *ImportSummary {
	return &ImportSummary{BatchID: batchID, Kind: kind, maxDiagnostics: maxDiagnostics}
}

// Record counts one row outcome. A non-empty message is kept as a diagnostic
// until the cap is reached; later ones are only counted.
func (s *ImportSummary) Record(line int, outcome Outcome, msg string) {
	switch outcome {
	case OutcomeImported:
		s.Imported++
	case OutcomeAlreadyExists:
		s.AlreadyExists++
	case OutcomeNoRentalFound:
		s.NoRentalFound++
	case OutcomeInvalidData:
		s.InvalidData++
	case OutcomeUserSkipped:
		s.UserSkipped++
	}
	if msg == "" {
		return
	}
	if len(s.Diagnostics) >= s.maxDiagnostics {
		s.DroppedDiagnostics++
		return
	}
	s.Diagnostics = append(s.Diagnostics, fmt.Sprintf("line %d: %s: %s", line, outcome, msg))
}

// NotImported is the sum of every non-imported category.
func (s *ImportSummary) NotImported() int {
	return s.AlreadyExists + s.NoRentalFound + s.InvalidData + s.UserSkipped
}
