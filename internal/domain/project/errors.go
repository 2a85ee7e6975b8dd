package project

import "fmt"

// BudgetMismatchError reports a donor contribution sum that does not
// equal the project's total budget.
type BudgetMismatchError struct {
	Expected float64
	Actual   float64
}

func (e *BudgetMismatchError) Error() string {
	return fmt.Sprintf("donor contributions sum to %.2f, budget total is %.2f", e.Actual, e.Expected)
}

// BudgetExceededError reports an activity allocation that does not fit
// in the remaining budget. Available and Requested are carried as
// structured fields so callers can render the exact shortfall.
type BudgetExceededError struct {
	Available float64
	Requested float64
}

func (e *BudgetExceededError) Error() string {
	return fmt.Sprintf("allocation of %.2f exceeds available budget %.2f", e.Requested, e.Available)
}

// BeneficiaryCountMismatchError reports candidate beneficiary ids that
// did not all resolve to registry records.
type BeneficiaryCountMismatchError struct {
	Requested int
	Found     int
}

func (e *BeneficiaryCountMismatchError) Error() string {
	return fmt.Sprintf("requested %d beneficiaries, found %d", e.Requested, e.Found)
}

// GenerationError reports a failed number or code assignment.
type GenerationError struct {
	Kind  string
	Cause error
}

func (e *GenerationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("could not generate project %s: %v", e.Kind, e.Cause)
	}
	return fmt.Sprintf("could not generate project %s", e.Kind)
}

func (e *GenerationError) Unwrap() error { return e.Cause }
