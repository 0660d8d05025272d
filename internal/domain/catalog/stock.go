package catalog

import "errors"

var (
	// ErrInvalidQuantity indicates a non-positive requested quantity.
	ErrInvalidQuantity = errors.New("catalog: quantity must be a positive integer")
	// ErrInsufficientStock indicates the catalog cannot fulfill the requested quantity.
	ErrInsufficientStock = errors.New("catalog: insufficient stock")
)

// ReserveStock is the stock guard: it validates that a requested total line
// quantity (existing + delta) can be fulfilled by currentStock. It never
// mutates stock; inventory decrement happens at fulfillment, outside this
// core.
func ReserveStock(currentStock, requestedQty int) error {
	if requestedQty <= 0 {
		return ErrInvalidQuantity
	}
	if requestedQty > currentStock {
		return ErrInsufficientStock
	}
	return nil
}

// ClampToStock caps a requested quantity at the available stock, flooring at
// zero. Used by guest-cart merges where overflow is clamped instead of
// rejected.
func ClampToStock(currentStock, requestedQty int) int {
	if currentStock < 0 {
		return 0
	}
	if requestedQty > currentStock {
		return currentStock
	}
	if requestedQty < 0 {
		return 0
	}
	return requestedQty
}
