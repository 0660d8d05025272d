package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	sub "github.com/yungbote/storefront-backend/internal/domain/subscription"
)

var SubscriptionAggregateContract = Contract{
	Name:             "Commerce.SubscriptionAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes:            "Owns subscription lifecycle transitions, item invariants and renewal batch progression.",
}

// SubscriptionAggregate owns the recurring-order state machine.
//
// Write method failures return *aggregates.Error with codes:
// CodeValidation, CodeNotFound, CodeInvalidState, CodeInsufficientStock,
// CodeInvariantViolation, CodePaymentFailed, CodeTransactionFailure,
// CodeRetryable, CodeInternal.
type SubscriptionAggregate interface {
	Aggregate

	// Create starts an active subscription with at least one item; prices are
	// snapshotted from the catalog and the first next-order date is derived
	// from now.
	Create(ctx context.Context, in CreateSubscriptionInput) (*sub.Subscription, error)

	// Get returns a subscription snapshot with items.
	Get(ctx context.Context, subscriptionID uuid.UUID) (*sub.Subscription, error)

	// AddItem adds or increments a product line; active subscriptions only.
	AddItem(ctx context.Context, subscriptionID, productID uuid.UUID, quantity int) (*sub.Subscription, error)

	// UpdateItemQuantity sets a line quantity; active subscriptions only.
	UpdateItemQuantity(ctx context.Context, subscriptionID, itemID uuid.UUID, quantity int) (*sub.Subscription, error)

	// RemoveItem deletes a line but never the last one.
	RemoveItem(ctx context.Context, subscriptionID, itemID uuid.UUID) (*sub.Subscription, error)

	// UpdateFrequency changes the cadence and recomputes the next order date.
	UpdateFrequency(ctx context.Context, subscriptionID uuid.UUID, frequency string) (*sub.Subscription, error)

	// UpdateAddresses replaces shipping/billing addresses; active only.
	UpdateAddresses(ctx context.Context, subscriptionID uuid.UUID, shipping, billing sub.Address) (*sub.Subscription, error)

	// SetAutoRenew toggles auto renewal; active only.
	SetAutoRenew(ctx context.Context, subscriptionID uuid.UUID, autoRenew bool) (*sub.Subscription, error)

	// Pause moves active -> paused.
	Pause(ctx context.Context, subscriptionID uuid.UUID) (*sub.Subscription, error)

	// Resume moves paused -> active and re-anchors the next order date at now.
	Resume(ctx context.Context, subscriptionID uuid.UUID) (*sub.Subscription, error)

	// Cancel terminates from any non-cancelled state; cancelling twice fails
	// with an invalid-state "already cancelled" error.
	Cancel(ctx context.Context, subscriptionID uuid.UUID) (*sub.Subscription, error)

	// ProcessDueRenewals charges every active auto-renew subscription whose
	// next order date has passed. Each renewal runs in its own transaction;
	// one failure never aborts the rest. Charge failures move the
	// subscription to payment_failed and leave its next order date untouched.
	ProcessDueRenewals(ctx context.Context, in ProcessRenewalsInput) (ProcessRenewalsResult, error)
}

type CreateSubscriptionInput struct {
	UserID          uuid.UUID
	Frequency       string
	Items           []SubscriptionItemInput
	Discount        decimal.Decimal
	AutoRenew       bool
	ShippingAddress sub.Address
	BillingAddress  sub.Address
}

type SubscriptionItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

type ProcessRenewalsInput struct {
	Now    time.Time
	Limit  int
	DryRun bool
}

type RenewalOutcome struct {
	SubscriptionID uuid.UUID
	Status         sub.Status
	OrderID        *uuid.UUID
	NextOrderDate  time.Time
	// Skipped marks a subscription whose lifecycle changed between the due
	// query and the per-row lock; it counts as neither renewed nor failed.
	Skipped bool
	Err     string
}

type ProcessRenewalsResult struct {
	Processed int
	Renewed   int
	Failed    int
	Outcomes  []RenewalOutcome
}
