package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrDuplicatePayment = errors.New("payment with this receipt number already exists for the rental")
	ErrInvalidNumber    = errors.New("not a valid number")
	ErrInvalidDate      = errors.New("not a valid date")
	ErrInvalidAmount    = errors.New("not a valid amount")
	ErrSplitMismatch    = errors.New("sum of rental prices does not match the payment amount")
	ErrUnknownRental    = errors.New("selected rental is not a candidate")
	ErrAmbiguousPayment = errors.New("payment matches several rentals and no rental was selected")
)

// RowError is a fatal parse error that aborts a whole import batch.
type RowError struct {
	Line  int
	Field string
	Value string
	Err   error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %s %q: %v", e.Line, e.Field, e.Value, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }
