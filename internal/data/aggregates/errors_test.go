package aggregates

import (
	"errors"
	"testing"

	domainagg "github.com/yungbote/storefront-backend/internal/domain/aggregates"
	"github.com/yungbote/storefront-backend/internal/domain/catalog"
	"gorm.io/gorm"
)

func TestMapError_Validation(t *testing.T) {
	err := MapError("op", ValidationError("bad input"))
	if !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("expected validation code, got %q (%v)", domainagg.CodeOf(err), err)
	}
}

func TestMapError_InsufficientStock(t *testing.T) {
	err := MapError("op", catalog.ReserveStock(2, 5))
	if !domainagg.IsCode(err, domainagg.CodeInsufficientStock) {
		t.Fatalf("expected insufficient_stock code, got %q (%v)", domainagg.CodeOf(err), err)
	}
}

func TestMapError_InvalidQuantityIsValidation(t *testing.T) {
	err := MapError("op", catalog.ReserveStock(2, 0))
	if !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("expected validation code, got %q (%v)", domainagg.CodeOf(err), err)
	}
}

func TestMapError_CycleDetected(t *testing.T) {
	err := MapError("op", catalog.ErrCycleDetected)
	if !domainagg.IsCode(err, domainagg.CodeCycleDetected) {
		t.Fatalf("expected cycle_detected code, got %q (%v)", domainagg.CodeOf(err), err)
	}
}

func TestMapError_InvalidState(t *testing.T) {
	err := MapError("op", InvalidStateError("already cancelled"))
	if !domainagg.IsCode(err, domainagg.CodeInvalidState) {
		t.Fatalf("expected invalid_state code, got %q (%v)", domainagg.CodeOf(err), err)
	}
}

func TestMapError_PaymentFailed(t *testing.T) {
	err := MapError("op", PaymentError("card declined"))
	if !domainagg.IsCode(err, domainagg.CodePaymentFailed) {
		t.Fatalf("expected payment_failed code, got %q (%v)", domainagg.CodeOf(err), err)
	}
}

func TestMapError_NotFound(t *testing.T) {
	err := MapError("op", gorm.ErrRecordNotFound)
	if !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("expected not_found code, got %q (%v)", domainagg.CodeOf(err), err)
	}
}

func TestMapError_TransactionFailure(t *testing.T) {
	err := MapError("op", gorm.ErrInvalidTransaction)
	if !domainagg.IsCode(err, domainagg.CodeTransactionFailure) {
		t.Fatalf("expected transaction_failure code, got %q (%v)", domainagg.CodeOf(err), err)
	}
}

func TestMapError_PassthroughAggregateError(t *testing.T) {
	in := domainagg.NewError(domainagg.CodeRetryable, "op", "retry", errors.New("boom"))
	out := MapError("other", in)
	if out != in {
		t.Fatalf("expected passthrough aggregate error")
	}
}
