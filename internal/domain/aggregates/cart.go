package aggregates

import (
	"context"

	"github.com/google/uuid"

	dcart "github.com/yungbote/storefront-backend/internal/domain/cart"
)

var CartAggregateContract = Contract{
	Name:             "Commerce.CartAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicySnapshotQueries,
	Notes:            "Owns cart + line-item writes and derived total recomputation as one atomic boundary.",
}

// CartAggregate owns cart lifecycle invariants.
//
// Write method failures return *aggregates.Error with codes:
// CodeValidation, CodeNotFound, CodeInsufficientStock, CodeInvalidState,
// CodeConflict, CodeTransactionFailure, CodeRetryable, CodeInternal.
// Every write returns the fully recomputed cart snapshot.
type CartAggregate interface {
	Aggregate

	// GetOrCreate returns the single active cart for owner, creating an
	// empty one when none exists. Calling it repeatedly without mutation
	// yields the same cart id.
	GetOrCreate(ctx context.Context, owner dcart.Owner) (*dcart.Cart, error)

	// GetCart returns a cart snapshot with items and derived totals.
	GetCart(ctx context.Context, cartID uuid.UUID) (*dcart.Cart, error)

	// AddItem merges qty into the (product, options) line, snapshotting the
	// current product price for new lines, after the stock guard passes for
	// existing + qty.
	AddItem(ctx context.Context, in AddCartItemInput) (*dcart.Cart, error)

	// UpdateItemQuantity sets a line quantity; qty <= 0 removes the line.
	UpdateItemQuantity(ctx context.Context, cartID, itemID uuid.UUID, quantity int) (*dcart.Cart, error)

	// RemoveItem deletes one line and recomputes totals.
	RemoveItem(ctx context.Context, cartID, itemID uuid.UUID) (*dcart.Cart, error)

	// Clear deletes all lines and zeroes every derived amount and the coupon.
	Clear(ctx context.Context, cartID uuid.UUID) (*dcart.Cart, error)

	// ApplyCoupon stores the code and wires the evaluated discount into totals.
	ApplyCoupon(ctx context.Context, cartID uuid.UUID, code string) (*dcart.Cart, error)

	// RemoveCoupon clears the code and discount.
	RemoveCoupon(ctx context.Context, cartID uuid.UUID) (*dcart.Cart, error)

	// UpdateGiftSettings retains the message only while isGift is true.
	UpdateGiftSettings(ctx context.Context, cartID uuid.UUID, isGift bool, message string) (*dcart.Cart, error)

	// SetShippingRate applies the shipping rate collaborator for the
	// destination and persists the result into totals.
	SetShippingRate(ctx context.Context, cartID uuid.UUID, country, postalCode string) (*dcart.Cart, error)

	// SetTaxRate applies the tax rate collaborator for the destination and
	// persists the result into totals.
	SetTaxRate(ctx context.Context, cartID uuid.UUID, country, postalCode string) (*dcart.Cart, error)

	// MergeGuestCart folds the session cart into the user cart: quantities
	// summed and clamped to stock, guest coupon/gift settings adopted only
	// where the user cart has none, guest cart deactivated. Missing or empty
	// guest carts make this a no-op returning the user cart.
	MergeGuestCart(ctx context.Context, sessionID string, userID uuid.UUID) (*dcart.Cart, error)
}

type AddCartItemInput struct {
	CartID          uuid.UUID
	ProductID       uuid.UUID
	Quantity        int
	SelectedOptions map[string]string
}
