package services

import (
	"context"

	"github.com/google/uuid"

	domainagg "github.com/yungbote/storefront-backend/internal/domain/aggregates"
	sub "github.com/yungbote/storefront-backend/internal/domain/subscription"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

// renewalOrderPlacer mints an order id for each successful renewal and logs
// the placement. Full order fulfillment lives outside this core.
type renewalOrderPlacer struct {
	log *logger.Logger
}

func NewRenewalOrderPlacer(log *logger.Logger) domainagg.OrderPlacer {
	return &renewalOrderPlacer{log: log.With("service", "RenewalOrderPlacer")}
}

func (op *renewalOrderPlacer) PlaceRenewalOrder(ctx context.Context, subscription *sub.Subscription) (uuid.UUID, error) {
	orderID := uuid.New()
	op.log.Info("placed renewal order",
		"order_id", orderID,
		"subscription_id", subscription.ID,
		"user_id", subscription.UserID,
		"amount", subscription.Amount.String(),
		"items", len(subscription.Items),
	)
	return orderID, nil
}
