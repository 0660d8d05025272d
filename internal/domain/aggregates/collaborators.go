package aggregates

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	sub "github.com/yungbote/storefront-backend/internal/domain/subscription"
)

// ProductView is the read-only slice of a product the core needs for pricing
// and stock decisions.
type ProductView struct {
	ID    uuid.UUID
	Price decimal.Decimal
	Stock int
}

// ProductCatalog exposes catalog reads to the aggregates. Implementations
// must honor the transaction carried by ctx (via dbctx) so stock reads inside
// a write scope see transaction-consistent state.
type ProductCatalog interface {
	GetByID(ctx context.Context, productID uuid.UUID) (ProductView, error)
}

// CartPricingView is what rate/discount collaborators get to see of a cart.
type CartPricingView struct {
	CartID    uuid.UUID
	Subtotal  decimal.Decimal
	ItemCount int
}

// RateCalculator computes shipping and tax amounts for a destination.
// Rate-table accuracy is explicitly outside this core; the results are wired
// into totals as-is.
type RateCalculator interface {
	Shipping(ctx context.Context, cart CartPricingView, country, postalCode string) (decimal.Decimal, error)
	Tax(ctx context.Context, cart CartPricingView, country, postalCode string) (decimal.Decimal, error)
}

// DiscountRule evaluates a coupon code against a cart and returns the
// discount amount. Rule semantics live outside this core.
type DiscountRule interface {
	Evaluate(ctx context.Context, code string, cart CartPricingView) (decimal.Decimal, error)
}

// PaymentProcessor charges a subscription renewal. Any returned error is
// treated as a payment failure for that subscription.
type PaymentProcessor interface {
	Charge(ctx context.Context, subscription *sub.Subscription) error
}

// OrderPlacer creates the order resulting from a successful renewal.
type OrderPlacer interface {
	PlaceRenewalOrder(ctx context.Context, subscription *sub.Subscription) (uuid.UUID, error)
}
