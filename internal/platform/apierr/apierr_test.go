package apierr

import (
	"errors"
	"net/http"
	"testing"

	"github.com/yungbote/storefront-backend/internal/domain/aggregates"
)

func TestFromCode(t *testing.T) {
	cases := []struct {
		code aggregates.ErrorCode
		want int
	}{
		{aggregates.CodeValidation, http.StatusBadRequest},
		{aggregates.CodeNotFound, http.StatusNotFound},
		{aggregates.CodeConflict, http.StatusConflict},
		{aggregates.CodeInvalidState, http.StatusConflict},
		{aggregates.CodeInsufficientStock, http.StatusConflict},
		{aggregates.CodeCycleDetected, http.StatusConflict},
		{aggregates.CodePreconditionFailed, http.StatusConflict},
		{aggregates.CodePaymentFailed, http.StatusPaymentRequired},
		{aggregates.CodeInvariantViolation, http.StatusUnprocessableEntity},
		{aggregates.CodeTransactionFailure, http.StatusServiceUnavailable},
		{aggregates.CodeRetryable, http.StatusServiceUnavailable},
		{aggregates.CodeInternal, http.StatusInternalServerError},
		{aggregates.ErrorCode("brand_new_code"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := FromCode(tc.code); got != tc.want {
			t.Fatalf("FromCode(%s) = %d, want %d", tc.code, got, tc.want)
		}
	}
}

func TestFromError(t *testing.T) {
	if got := FromError(nil); got != http.StatusOK {
		t.Fatalf("nil error should map to 200, got %d", got)
	}
	err := aggregates.NewError(aggregates.CodeNotFound, "cart.get", "cart not found", nil)
	if got := FromError(err); got != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", got)
	}
	if got := FromError(errors.New("plain")); got != http.StatusInternalServerError {
		t.Fatalf("plain error should map to 500, got %d", got)
	}
}
