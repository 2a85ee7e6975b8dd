package aggregates

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	domainagg "github.com/devlabsgt/backend/internal/domain/aggregates"
	"github.com/devlabsgt/backend/internal/domain/project"
)

func TestMapErrorCodes(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want domainagg.ErrorCode
	}{
		{
			name: "validation",
			err:  &project.ValidationError{Field: "name", Reason: "required"},
			want: domainagg.CodeValidation,
		},
		{
			name: "budget mismatch",
			err:  &project.BudgetMismatchError{Expected: 100, Actual: 90},
			want: domainagg.CodeInvariantViolation,
		},
		{
			name: "budget exceeded",
			err:  &project.BudgetExceededError{Available: 600, Requested: 700},
			want: domainagg.CodeInvariantViolation,
		},
		{
			name: "beneficiary count",
			err:  &project.BeneficiaryCountMismatchError{Requested: 2, Found: 1},
			want: domainagg.CodePreconditionFailed,
		},
		{
			name: "record not found",
			err:  gorm.ErrRecordNotFound,
			want: domainagg.CodeNotFound,
		},
		{
			name: "unique violation",
			err:  &pgconn.PgError{Code: "23505"},
			want: domainagg.CodeConflict,
		},
		{
			name: "foreign key violation",
			err:  &pgconn.PgError{Code: "23503"},
			want: domainagg.CodePreconditionFailed,
		},
		{
			name: "serialization failure",
			err:  &pgconn.PgError{Code: "40001"},
			want: domainagg.CodeRetryable,
		},
		{
			name: "tagged conflict",
			err:  ConflictError("version mismatch"),
			want: domainagg.CodeConflict,
		},
		{
			name: "unknown",
			err:  errors.New("boom"),
			want: domainagg.CodeInternal,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mapped := MapError("op", tc.err)
			if got := domainagg.CodeOf(mapped); got != tc.want {
				t.Fatalf("CodeOf = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestMapErrorKeepsStructuredCause(t *testing.T) {
	mapped := MapError("project.add_activity", &project.BudgetExceededError{Available: 600, Requested: 700})
	var exceeded *project.BudgetExceededError
	if !errors.As(mapped, &exceeded) {
		t.Fatalf("structured cause lost: %v", mapped)
	}
	if exceeded.Available != 600 || exceeded.Requested != 700 {
		t.Fatalf("figures = %+v", exceeded)
	}
}

func TestMapErrorNil(t *testing.T) {
	if err := MapError("op", nil); err != nil {
		t.Fatalf("MapError(nil) = %v", err)
	}
}
