// Package selector provides the RentalSelector implementations used when a
// payment row fits several rentals of one customer.
package selector

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"rental-recon/internal/domain"
	"rental-recon/internal/logger"
	"rental-recon/internal/service"
)

const (
	ModePrompt = "prompt"
	ModeSkip   = "skip"
	ModeFail   = "fail"
)

// AlwaysSkip leaves every ambiguous row unassigned.
type AlwaysSkip struct{}

func (AlwaysSkip) SelectRental(_ context.Context, req domain.SelectionRequest) (domain.Selection, error) {
	logger.Info("Ambiguous payment skipped", "line", req.Row.Line, "customerID", req.Row.CustomerID, "candidates", len(req.Candidates))
	return domain.Skip(), nil
}

// AlwaysFail aborts the batch on the first ambiguous row.
type AlwaysFail struct{}

func (AlwaysFail) SelectRental(_ context.Context, req domain.SelectionRequest) (domain.Selection, error) {
	return domain.Selection{}, fmt.Errorf("customer %d, amount %s: %w",
		req.Row.CustomerID, req.Row.Amount.StringFixed(2), domain.ErrAmbiguousPayment)
}

// Prompt asks an operator on a terminal. Input is one line per attempt:
// a candidate number for a single rental, several numbers separated by
// commas or spaces for a split, "s" to skip, and "c" or end of input to
// dismiss without a decision.
type Prompt struct {
	in  *bufio.Scanner
	out io.Writer
}

func NewPrompt(in io.Reader, out io.Writer) *Prompt {
	return &Prompt{in: bufio.NewScanner(in), out: out}
}

func (p *Prompt) SelectRental(ctx context.Context, req domain.SelectionRequest) (domain.Selection, error) {
	p.render(req)
	for {
		if err := ctx.Err(); err != nil {
			return domain.Selection{}, err
		}
		fmt.Fprint(p.out, "Selection [number(s), s=skip, c=cancel]: ")
		if !p.in.Scan() {
			if err := p.in.Err(); err != nil {
				return domain.Selection{}, fmt.Errorf("failed to read selection: %w", err)
			}
			fmt.Fprintln(p.out)
			return domain.Cancel(), nil
		}
		sel, err := parseAnswer(p.in.Text(), req.Candidates)
		if err != nil {
			fmt.Fprintf(p.out, "  %v\n", err)
			continue
		}
		return sel, nil
	}
}

func (p *Prompt) render(req domain.SelectionRequest) {
	row := req.Row
	fmt.Fprintf(p.out, "\nLine %d: payment of %s on %s by %s (customer %d)",
		row.Line, row.Amount.StringFixed(2), row.PaymentDate.Format(domain.DateLayout), row.CustomerName, row.CustomerID)
	if row.OrderNumber != "" {
		fmt.Fprintf(p.out, ", order %s", row.OrderNumber)
	}
	fmt.Fprintln(p.out)
	if req.Rejection != "" {
		fmt.Fprintf(p.out, "Previous selection rejected (attempt %d): %s\n", req.Attempt, req.Rejection)
	}
	// flag rentals that had already ended when the payment was made
	for i, c := range req.Candidates {
		mark := ""
		if end, ok := c.EndDate(); ok && end.Before(row.PaymentDate) {
			mark = " [ended]"
		}
		fmt.Fprintf(p.out, "  [%d] #%d %s%s\n", i+1, c.RentalID(), c.Display(), mark)
	}
}

func parseAnswer(answer string, candidates []domain.RentalCandidate) (domain.Selection, error) {
	answer = strings.TrimSpace(strings.ToLower(answer))
	switch answer {
	case "":
		return domain.Selection{}, fmt.Errorf("enter a number, s or c")
	case "s", "skip":
		return domain.Skip(), nil
	case "c", "cancel", "q":
		return domain.Cancel(), nil
	}

	fields := strings.FieldsFunc(answer, func(r rune) bool { return r == ',' || r == ' ' || r == ';' })
	ids := make([]int64, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil || n < 1 || n > len(candidates) {
			return domain.Selection{}, fmt.Errorf("%q is not a number between 1 and %d", f, len(candidates))
		}
		ids = append(ids, candidates[n-1].RentalID())
	}
	if len(ids) == 1 {
		return domain.SelectSingle(ids[0]), nil
	}
	return domain.SelectSplit(ids...), nil
}

// New returns the selector for a configured mode. Prompt mode reads from in
// and writes to out.
func New(mode string, in io.Reader, out io.Writer) (service.RentalSelector, error) {
	switch mode {
	case ModePrompt, "":
		return NewPrompt(in, out), nil
	case ModeSkip:
		return AlwaysSkip{}, nil
	case ModeFail:
		return AlwaysFail{}, nil
	default:
		return nil, fmt.Errorf("unknown selector %q", mode)
	}
}
