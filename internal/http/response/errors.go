package response

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/devlabsgt/backend/internal/domain/aggregates"
	"github.com/devlabsgt/backend/internal/domain/project"
)

var statusByCode = map[aggregates.ErrorCode]int{
	aggregates.CodeValidation:         400,
	aggregates.CodeNotFound:           404,
	aggregates.CodeConflict:           409,
	aggregates.CodeInvariantViolation: 422,
	aggregates.CodePreconditionFailed: 422,
	aggregates.CodeRetryable:          500,
	aggregates.CodeInternal:           500,
}

// RespondDomainError maps a write-path error to an HTTP status from its
// error code and attaches the figures carried by structured causes, so
// clients can render what actually went wrong instead of parsing text.
func RespondDomainError(c *gin.Context, err error) {
	code := aggregates.CodeOf(err)
	status, ok := statusByCode[code]
	if !ok {
		status = 500
	}

	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    string(code),
			Details: detailsOf(err),
		},
	})
}

func detailsOf(err error) map[string]any {
	var mismatch *project.BudgetMismatchError
	if errors.As(err, &mismatch) {
		return map[string]any{
			"expected": mismatch.Expected,
			"actual":   mismatch.Actual,
		}
	}
	var exceeded *project.BudgetExceededError
	if errors.As(err, &exceeded) {
		return map[string]any{
			"available": exceeded.Available,
			"requested": exceeded.Requested,
		}
	}
	var count *project.BeneficiaryCountMismatchError
	if errors.As(err, &count) {
		return map[string]any{
			"requested": count.Requested,
			"found":     count.Found,
		}
	}
	var ve *project.ValidationError
	if errors.As(err, &ve) {
		return map[string]any{"field": ve.Field}
	}
	return nil
}
