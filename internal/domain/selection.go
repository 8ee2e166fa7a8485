package domain

type SelectionKind string

const (
	SelectionSingle SelectionKind = "SINGLE"
	SelectionSplit  SelectionKind = "SPLIT"
	SelectionSkip   SelectionKind = "SKIP"
	SelectionCancel SelectionKind = "CANCEL"
)

// SelectionRequest is what a RentalSelector sees for one ambiguous payment row.
type SelectionRequest struct {
	Row        PaymentRow
	Candidates []RentalCandidate
	Attempt    int
	// Rejection explains why the previous attempt's selection was refused.
	Rejection string
}

type Selection struct {
	Kind      SelectionKind
	RentalIDs []int64
}

func SelectSingle(rentalID int64) Selection {
	return Selection{Kind: SelectionSingle, RentalIDs: []int64{rentalID}}
}

func SelectSplit(rentalIDs ...int64) Selection {
	return Selection{Kind: SelectionSplit, RentalIDs: rentalIDs}
}

func Skip() Selection   { return Selection{Kind: SelectionSkip} }
func Cancel() Selection { return Selection{Kind: SelectionCancel} }
