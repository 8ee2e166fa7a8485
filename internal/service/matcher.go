package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"rental-recon/internal/domain"
	"rental-recon/internal/logger"
	"rental-recon/internal/repository"
	"rental-recon/internal/utils"
)

const DefaultMaxSelectionAttempts = 3

// MatchResult describes what happened to one payment row.
type MatchResult struct {
	Outcome           domain.Outcome
	Payments          []domain.Payment
	Duplicates        int
	OrderNumberLinked bool
	Message           string
}

type allocation struct {
	rental domain.Rental
	amount decimal.Decimal
}

type paymentMatcher struct {
	selector    RentalSelector
	maxAttempts int
}

func NewPaymentMatcher(selector RentalSelector, maxAttempts int) PaymentMatcher {
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxSelectionAttempts
	}
	return &paymentMatcher{selector: selector, maxAttempts: maxAttempts}
}

// Match resolves row to one or more rentals and inserts the payments through
// repos. Classified outcomes come back in the result; a returned error means
// the batch cannot continue.
func (m *paymentMatcher) Match(ctx context.Context, repos repository.Repositories, row domain.PaymentRow) (*MatchResult, error) {
	logger.EnterMethod("paymentMatcher.Match", "line", row.Line, "customerID", row.CustomerID, "orderNumber", row.OrderNumber)

	// the order number may only be linked when no rental carries it yet
	orderUnused := false
	if row.OrderNumber != "" {
		byOrder, err := repos.Rentals.FindByOrderNumber(ctx, row.OrderNumber)
		if err != nil {
			return nil, fmt.Errorf("failed to look up order %s: %w", row.OrderNumber, err)
		}
		if len(byOrder) == 1 && byOrder[0].CustomerID == row.CustomerID {
			result, err := m.insert(ctx, repos, row, []allocation{{rental: byOrder[0], amount: row.Amount}})
			if err != nil {
				return nil, err
			}
			logger.ExitMethod("paymentMatcher.Match", "line", row.Line, "via", "order_number", "outcome", result.Outcome)
			return result, nil
		}
		orderUnused = len(byOrder) == 0
	}

	rentals, err := repos.Rentals.ListByCustomer(ctx, row.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rentals of customer %d: %w", row.CustomerID, err)
	}

	var allocs []allocation
	switch len(rentals) {
	case 0:
		logger.ExitMethod("paymentMatcher.Match", "line", row.Line, "outcome", domain.OutcomeNoRentalFound)
		return &MatchResult{
			Outcome: domain.OutcomeNoRentalFound,
			Message: fmt.Sprintf("no rental found for customer %d", row.CustomerID),
		}, nil
	case 1:
		allocs = []allocation{{rental: rentals[0], amount: row.Amount}}
	default:
		var skipped *MatchResult
		allocs, skipped, err = m.selectRentals(ctx, row, rentals)
		if err != nil {
			logger.ExitMethodWithError("paymentMatcher.Match", err, "line", row.Line)
			return nil, err
		}
		if skipped != nil {
			logger.ExitMethod("paymentMatcher.Match", "line", row.Line, "outcome", skipped.Outcome)
			return skipped, nil
		}
	}

	linked := false
	if len(allocs) == 1 && orderUnused && !allocs[0].rental.HasOrderNumber() {
		if err := repos.Rentals.UpdateOrderNumber(ctx, allocs[0].rental.ID, row.OrderNumber); err != nil {
			return nil, fmt.Errorf("failed to link order %s to rental %d: %w", row.OrderNumber, allocs[0].rental.ID, err)
		}
		linked = true
		logger.Info("Order number linked to rental", "line", row.Line, "rentalID", allocs[0].rental.ID, "orderNumber", row.OrderNumber)
	}

	result, err := m.insert(ctx, repos, row, allocs)
	if err != nil {
		return nil, err
	}
	result.OrderNumberLinked = linked

	logger.ExitMethod("paymentMatcher.Match", "line", row.Line, "outcome", result.Outcome, "payments", len(result.Payments))
	return result, nil
}

// selectRentals asks the selector until it returns an acceptable selection,
// skips, or runs out of attempts. Rejected selections are reported back on the
// next attempt and never corrected here.
func (m *paymentMatcher) selectRentals(ctx context.Context, row domain.PaymentRow, rentals []domain.Rental) ([]allocation, *MatchResult, error) {
	candidates := make([]domain.RentalCandidate, 0, len(rentals))
	byID := make(map[int64]domain.Rental, len(rentals))
	for _, r := range rentals {
		candidates = append(candidates, domain.NewRentalCandidate(r))
		byID[r.ID] = r
	}

	rejection := ""
	for attempt := 1; attempt <= m.maxAttempts; attempt++ {
		sel, err := m.selector.SelectRental(ctx, domain.SelectionRequest{
			Row:        row,
			Candidates: candidates,
			Attempt:    attempt,
			Rejection:  rejection,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: rental selection failed: %w", row.Line, err)
		}

		switch sel.Kind {
		case domain.SelectionSkip:
			return nil, &MatchResult{Outcome: domain.OutcomeUserSkipped, Message: "skipped by user"}, nil
		case domain.SelectionCancel:
			return nil, &MatchResult{Outcome: domain.OutcomeUserSkipped, Message: "selection dismissed without a decision"}, nil
		case domain.SelectionSingle:
			if len(sel.RentalIDs) != 1 {
				rejection = "select exactly one rental"
				continue
			}
			r, ok := byID[sel.RentalIDs[0]]
			if !ok {
				rejection = fmt.Sprintf("%v: %d", domain.ErrUnknownRental, sel.RentalIDs[0])
				continue
			}
			return []allocation{{rental: r, amount: row.Amount}}, nil, nil
		case domain.SelectionSplit:
			allocs, reason := splitAllocations(row.Amount, sel.RentalIDs, byID)
			if reason != "" {
				rejection = reason
				logger.Info("Split selection rejected", "line", row.Line, "attempt", attempt, "reason", reason)
				continue
			}
			return allocs, nil, nil
		default:
			rejection = fmt.Sprintf("unsupported selection %q", sel.Kind)
		}
	}

	return nil, &MatchResult{
		Outcome: domain.OutcomeUserSkipped,
		Message: fmt.Sprintf("split rejected after %d attempts: %s", m.maxAttempts, rejection),
	}, nil
}

// splitAllocations pays each selected rental its monthly price. The prices
// must add up to the row amount within utils.SplitTolerance.
func splitAllocations(amount decimal.Decimal, ids []int64, byID map[int64]domain.Rental) ([]allocation, string) {
	if len(ids) == 0 {
		return nil, "no rentals selected"
	}
	seen := make(map[int64]bool, len(ids))
	allocs := make([]allocation, 0, len(ids))
	sum := decimal.Zero
	for _, id := range ids {
		r, ok := byID[id]
		if !ok {
			return nil, fmt.Sprintf("%v: %d", domain.ErrUnknownRental, id)
		}
		if seen[id] {
			return nil, fmt.Sprintf("rental %d selected twice", id)
		}
		seen[id] = true
		sum = sum.Add(r.MonthlyPrice)
		allocs = append(allocs, allocation{rental: r, amount: r.MonthlyPrice})
	}
	if !utils.WithinTolerance(sum, amount) {
		return nil, fmt.Sprintf("%v: selected rentals total %s, payment is %s",
			domain.ErrSplitMismatch, sum.StringFixed(2), amount.StringFixed(2))
	}
	return allocs, ""
}

// insert writes one payment per allocation, skipping allocations whose
// receipt is already recorded for that rental.
func (m *paymentMatcher) insert(ctx context.Context, repos repository.Repositories, row domain.PaymentRow, allocs []allocation) (*MatchResult, error) {
	result := &MatchResult{}
	var dupRentals []string
	for _, a := range allocs {
		if row.ReceiptNumber != "" {
			existing, err := repos.Payments.FindByReceipt(ctx, a.rental.ID, row.ReceiptNumber)
			if err != nil {
				return nil, fmt.Errorf("failed to check receipt %s: %w", row.ReceiptNumber, err)
			}
			if existing != nil {
				result.Duplicates++
				dupRentals = append(dupRentals, fmt.Sprint(a.rental.ID))
				continue
			}
		}
		p := domain.Payment{
			RentalID:      a.rental.ID,
			PaymentDate:   row.PaymentDate,
			Amount:        a.amount,
			ReceiptNumber: row.Receipt(),
		}
		if err := repos.Payments.Create(ctx, &p); err != nil {
			return nil, fmt.Errorf("failed to insert payment for rental %d: %w", a.rental.ID, err)
		}
		result.Payments = append(result.Payments, p)
	}

	if len(result.Payments) == 0 {
		result.Outcome = domain.OutcomeAlreadyExists
		result.Message = fmt.Sprintf("receipt %s already recorded for rental %s", row.ReceiptNumber, strings.Join(dupRentals, ", "))
		return result, nil
	}
	result.Outcome = domain.OutcomeImported
	if result.Duplicates > 0 {
		result.Message = fmt.Sprintf("receipt %s already recorded for rental %s", row.ReceiptNumber, strings.Join(dupRentals, ", "))
	}
	return result, nil
}
