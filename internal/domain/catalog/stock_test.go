package catalog

import (
	"errors"
	"testing"
)

func TestReserveStock(t *testing.T) {
	if err := ReserveStock(3, 3); err != nil {
		t.Fatalf("exact stock should pass: %v", err)
	}
	if err := ReserveStock(3, 4); !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
	if err := ReserveStock(3, 0); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected invalid quantity for zero, got %v", err)
	}
	if err := ReserveStock(3, -1); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected invalid quantity for negative, got %v", err)
	}
}

func TestClampToStock(t *testing.T) {
	if got := ClampToStock(2, 3); got != 2 {
		t.Fatalf("clamp over stock: want=2 got=%d", got)
	}
	if got := ClampToStock(5, 3); got != 3 {
		t.Fatalf("within stock: want=3 got=%d", got)
	}
	if got := ClampToStock(-1, 3); got != 0 {
		t.Fatalf("negative stock: want=0 got=%d", got)
	}
}
