package apierr

import (
	"net/http"

	"github.com/yungbote/storefront-backend/internal/domain/aggregates"
)

// FromCode maps an aggregate error code to its HTTP status. Unknown codes
// fall through to 500 so a new code is never silently treated as a client
// fault.
func FromCode(code aggregates.ErrorCode) int {
	switch code {
	case aggregates.CodeValidation:
		return http.StatusBadRequest
	case aggregates.CodeNotFound:
		return http.StatusNotFound
	case aggregates.CodeConflict,
		aggregates.CodeInvalidState,
		aggregates.CodeInsufficientStock,
		aggregates.CodeCycleDetected,
		aggregates.CodePreconditionFailed:
		return http.StatusConflict
	case aggregates.CodePaymentFailed:
		return http.StatusPaymentRequired
	case aggregates.CodeInvariantViolation:
		return http.StatusUnprocessableEntity
	case aggregates.CodeTransactionFailure, aggregates.CodeRetryable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// FromError resolves the status for any error via its aggregate code.
func FromError(err error) int {
	if err == nil {
		return http.StatusOK
	}
	return FromCode(aggregates.CodeOf(err))
}
