package project

import (
	"fmt"
	"math"

	"github.com/google/uuid"
)

// ValidationError reports an input shape or range violation on a named
// field. These are caller mistakes and are never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Money fields are compared at cent precision. Floating point sums of
// otherwise exact amounts drift below a cent, never above.
func sameAmount(a, b float64) bool {
	return round2(a) == round2(b)
}

// Normalize validates the aggregate and recomputes every derived field:
// donor percentages, activity budget percentages, executed budget,
// progress level and reached people. It mutates p in place and must run
// inside the same transaction as the persist so no observer ever sees
// derived fields inconsistent with their inputs.
func Normalize(p *Project) error {
	if err := validate(p); err != nil {
		return err
	}

	if !sameAmount(donorSum(p.Donors), p.BudgetTotal) {
		return &BudgetMismatchError{Expected: round2(p.BudgetTotal), Actual: round2(donorSum(p.Donors))}
	}
	for i := range p.Donors {
		p.Donors[i].Percentage = pctOf(p.Donors[i].Amount, p.BudgetTotal)
	}

	allocated := activitySum(p.Activities)
	if round2(allocated) > round2(p.BudgetTotal) {
		return &BudgetExceededError{
			Available: round2(p.BudgetTotal),
			Requested: round2(allocated),
		}
	}
	for i := range p.Activities {
		p.Activities[i].PctOfBudget = pctOf(p.Activities[i].AllocatedBudget, p.BudgetTotal)
	}
	p.BudgetExecuted = round2(allocated)

	p.ReachedPeople = reachedPeople(p.Activities)
	p.ProgressLevel = progressLevel(p.Activities)
	return nil
}

// AvailableBudget is what is left for new activity allocations.
func AvailableBudget(p *Project) float64 {
	return round2(p.BudgetTotal - activitySum(p.Activities))
}

func validate(p *Project) error {
	if p.Name == "" {
		return &ValidationError{Field: "name", Reason: "required"}
	}
	if p.BudgetTotal < 0 {
		return &ValidationError{Field: "budget_total", Reason: "must be >= 0"}
	}
	if p.StartDate.IsZero() {
		return &ValidationError{Field: "start_date", Reason: "required"}
	}
	if p.EndDate.IsZero() {
		return &ValidationError{Field: "end_date", Reason: "required"}
	}
	if p.EndDate.Before(p.StartDate) {
		return &ValidationError{Field: "end_date", Reason: "must not precede start_date"}
	}
	if p.Status != "" && !ValidStatus(p.Status) {
		return &ValidationError{Field: "status", Reason: "unrecognized value " + p.Status}
	}
	if p.FollowUpFrequency != "" && !ValidFollowUpFrequency(p.FollowUpFrequency) {
		return &ValidationError{Field: "follow_up.frequency", Reason: "unrecognized value " + p.FollowUpFrequency}
	}
	for i := range p.Donors {
		if p.Donors[i].Amount < 0 {
			return &ValidationError{
				Field:  fmt.Sprintf("donors[%d].amount_contributed", i),
				Reason: "must be >= 0",
			}
		}
	}
	for i := range p.Activities {
		a := &p.Activities[i]
		if a.Name == "" {
			return &ValidationError{Field: fmt.Sprintf("activities[%d].name", i), Reason: "required"}
		}
		if a.AllocatedBudget < 0 {
			return &ValidationError{
				Field:  fmt.Sprintf("activities[%d].allocated_budget", i),
				Reason: "must be >= 0",
			}
		}
		if a.Progress < 0 || a.Progress > 100 {
			return &ValidationError{
				Field:  fmt.Sprintf("activities[%d].progress", i),
				Reason: "must be between 0 and 100",
			}
		}
		if a.Status != "" && !ValidActivityStatus(a.Status) {
			return &ValidationError{
				Field:  fmt.Sprintf("activities[%d].status", i),
				Reason: "unrecognized value " + a.Status,
			}
		}
		for j := range a.Beneficiaries {
			if s := a.Beneficiaries[j].Status; s != "" && !ValidAssociationStatus(s) {
				return &ValidationError{
					Field:  fmt.Sprintf("activities[%d].beneficiaries[%d].status", i, j),
					Reason: "unrecognized value " + s,
				}
			}
		}
	}
	for i := range p.Beneficiaries {
		if s := p.Beneficiaries[i].Status; s != "" && !ValidAssociationStatus(s) {
			return &ValidationError{
				Field:  fmt.Sprintf("beneficiaries[%d].status", i),
				Reason: "unrecognized value " + s,
			}
		}
	}
	for i := range p.Locations {
		if r := p.Locations[i].Rank; r < 1 || r > 5 {
			return &ValidationError{
				Field:  fmt.Sprintf("prioritized_locations[%d].rank", i),
				Reason: "must be between 1 and 5",
			}
		}
	}
	for i := range p.Evidences {
		if t := p.Evidences[i].Type; t != EvidenceTypeImage && t != EvidenceTypeDocument {
			return &ValidationError{
				Field:  fmt.Sprintf("evidences[%d].type", i),
				Reason: "unrecognized value " + t,
			}
		}
	}
	return nil
}

func donorSum(donors []Donor) float64 {
	var sum float64
	for i := range donors {
		sum += donors[i].Amount
	}
	return sum
}

func activitySum(activities []Activity) float64 {
	var sum float64
	for i := range activities {
		sum += activities[i].AllocatedBudget
	}
	return sum
}

func pctOf(amount, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return round2(amount / total * 100)
}

// reachedPeople counts distinct beneficiaries with an Active association
// across all activities. A beneficiary active in several activities
// counts once.
func reachedPeople(activities []Activity) int {
	seen := make(map[uuid.UUID]struct{})
	for i := range activities {
		for j := range activities[i].Beneficiaries {
			ab := &activities[i].Beneficiaries[j]
			if ab.Status != AssociationStatusActive {
				continue
			}
			seen[ab.BeneficiaryID] = struct{}{}
		}
	}
	return len(seen)
}

// progressLevel is the budget-weighted average of activity progress.
func progressLevel(activities []Activity) int {
	var weighted float64
	for i := range activities {
		weighted += float64(activities[i].Progress) * activities[i].PctOfBudget / 100
	}
	return int(math.Round(weighted))
}
