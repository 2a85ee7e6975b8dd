package project

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
)

func baseProject() *Project {
	return &Project{
		Name:      "Agua potable comunitaria",
		Status:    StatusActive,
		StartDate: time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 12, 20, 0, 0, 0, 0, time.UTC),
	}
}

func TestNormalizeDonorPercentages(t *testing.T) {
	p := baseProject()
	p.BudgetTotal = 1000
	p.Donors = []Donor{
		{DonorID: uuid.New(), Amount: 333.33},
		{DonorID: uuid.New(), Amount: 333.33},
		{DonorID: uuid.New(), Amount: 333.34},
	}

	if err := Normalize(p); err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	want := []float64{33.33, 33.33, 33.33}
	var sum float64
	for i, d := range p.Donors {
		if d.Percentage != want[i] {
			t.Fatalf("donor %d percentage = %v, want %v", i, d.Percentage, want[i])
		}
		sum += d.Percentage
	}
	if math.Abs(sum-100) > 0.05 {
		t.Fatalf("percentages sum to %v, want ~100", sum)
	}
}

func TestNormalizeDonorSumMismatch(t *testing.T) {
	p := baseProject()
	p.BudgetTotal = 1000
	p.Donors = []Donor{
		{DonorID: uuid.New(), Amount: 600},
		{DonorID: uuid.New(), Amount: 300},
	}

	err := Normalize(p)
	var mismatch *BudgetMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("Normalize = %v, want BudgetMismatchError", err)
	}
	if mismatch.Expected != 1000 || mismatch.Actual != 900 {
		t.Fatalf("mismatch = {expected %v, actual %v}, want {1000, 900}", mismatch.Expected, mismatch.Actual)
	}
}

func TestNormalizeEmptyDonorsRequireZeroBudget(t *testing.T) {
	p := baseProject()
	p.BudgetTotal = 0
	if err := Normalize(p); err != nil {
		t.Fatalf("zero-budget project with no donors: %v", err)
	}

	p.BudgetTotal = 500
	if err := Normalize(p); err == nil {
		t.Fatal("nonzero budget with no donors should fail")
	}
}

func TestNormalizeActivityAllocation(t *testing.T) {
	p := baseProject()
	p.BudgetTotal = 1000
	p.Donors = []Donor{{DonorID: uuid.New(), Amount: 1000}}
	p.Activities = []Activity{
		{Name: "Perforación de pozo", AllocatedBudget: 400, Status: ActivityStatusPending},
	}

	if err := Normalize(p); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if p.Donors[0].Percentage != 100 {
		t.Fatalf("sole donor percentage = %v, want 100", p.Donors[0].Percentage)
	}
	if p.Activities[0].PctOfBudget != 40 {
		t.Fatalf("percentage_of_budget = %v, want 40", p.Activities[0].PctOfBudget)
	}
	if p.BudgetExecuted != 400 {
		t.Fatalf("budget_executed = %v, want 400", p.BudgetExecuted)
	}
	if got := AvailableBudget(p); got != 600 {
		t.Fatalf("AvailableBudget = %v, want 600", got)
	}
}

func TestNormalizeAllocationExceedsBudget(t *testing.T) {
	p := baseProject()
	p.BudgetTotal = 1000
	p.Donors = []Donor{{DonorID: uuid.New(), Amount: 1000}}
	p.Activities = []Activity{
		{Name: "Fase 1", AllocatedBudget: 400},
		{Name: "Fase 2", AllocatedBudget: 700},
	}

	err := Normalize(p)
	var exceeded *BudgetExceededError
	if !errors.As(err, &exceeded) {
		t.Fatalf("Normalize = %v, want BudgetExceededError", err)
	}
	if exceeded.Available != 1000 || exceeded.Requested != 1100 {
		t.Fatalf("exceeded = {available %v, requested %v}, want {1000, 1100}", exceeded.Available, exceeded.Requested)
	}
}

func TestNormalizeReachedPeopleDistinct(t *testing.T) {
	shared := uuid.New()
	p := baseProject()
	p.BudgetTotal = 200
	p.Donors = []Donor{{DonorID: uuid.New(), Amount: 200}}
	p.Activities = []Activity{
		{
			Name:            "Taller A",
			AllocatedBudget: 100,
			Beneficiaries: []ActivityBeneficiary{
				{BeneficiaryID: shared, Status: AssociationStatusActive},
				{BeneficiaryID: uuid.New(), Status: AssociationStatusActive},
			},
		},
		{
			Name:            "Taller B",
			AllocatedBudget: 100,
			Beneficiaries: []ActivityBeneficiary{
				{BeneficiaryID: shared, Status: AssociationStatusActive},
				{BeneficiaryID: uuid.New(), Status: AssociationStatusActive},
				{BeneficiaryID: uuid.New(), Status: AssociationStatusInactive},
			},
		},
	}

	if err := Normalize(p); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if p.ReachedPeople != 3 {
		t.Fatalf("reached_people = %d, want 3", p.ReachedPeople)
	}
}

func TestNormalizeProgressLevel(t *testing.T) {
	p := baseProject()
	p.BudgetTotal = 100
	p.Donors = []Donor{{DonorID: uuid.New(), Amount: 100}}
	p.Activities = []Activity{
		{Name: "A", AllocatedBudget: 30, Progress: 50},
		{Name: "B", AllocatedBudget: 70, Progress: 20},
	}

	if err := Normalize(p); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if p.ProgressLevel != 29 {
		t.Fatalf("progress_level = %d, want 29", p.ProgressLevel)
	}
}

func TestNormalizeValidation(t *testing.T) {
	cases := []struct {
		name  string
		mut   func(p *Project)
		field string
	}{
		{
			name:  "missing name",
			mut:   func(p *Project) { p.Name = "" },
			field: "name",
		},
		{
			name:  "negative budget",
			mut:   func(p *Project) { p.BudgetTotal = -1 },
			field: "budget_total",
		},
		{
			name:  "end before start",
			mut:   func(p *Project) { p.EndDate = p.StartDate.AddDate(0, 0, -1) },
			field: "end_date",
		},
		{
			name:  "unknown status",
			mut:   func(p *Project) { p.Status = "Archived" },
			field: "status",
		},
		{
			name: "progress out of range",
			mut: func(p *Project) {
				p.Activities = []Activity{{Name: "A", Progress: 120}}
			},
			field: "activities[0].progress",
		},
		{
			name: "unknown activity status",
			mut: func(p *Project) {
				p.Activities = []Activity{{Name: "A", Status: "Done"}}
			},
			field: "activities[0].status",
		},
		{
			name: "location rank out of range",
			mut: func(p *Project) {
				p.Locations = []Location{{Description: "Aldea", Rank: 6}}
			},
			field: "prioritized_locations[0].rank",
		},
		{
			name: "unknown evidence type",
			mut: func(p *Project) {
				p.Evidences = []Evidence{{Type: "video", BucketKey: "k"}}
			},
			field: "evidences[0].type",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := baseProject()
			tc.mut(p)
			err := Normalize(p)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("Normalize = %v, want ValidationError", err)
			}
			if ve.Field != tc.field {
				t.Fatalf("field = %q, want %q", ve.Field, tc.field)
			}
		})
	}
}

func TestNormalizeCentPrecision(t *testing.T) {
	p := baseProject()
	p.BudgetTotal = 0.3
	p.Donors = []Donor{
		{DonorID: uuid.New(), Amount: 0.1},
		{DonorID: uuid.New(), Amount: 0.2},
	}
	if err := Normalize(p); err != nil {
		t.Fatalf("cent-precision sum rejected: %v", err)
	}
}
