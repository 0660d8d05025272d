package services

import (
	"context"

	domainagg "github.com/yungbote/storefront-backend/internal/domain/aggregates"
	sub "github.com/yungbote/storefront-backend/internal/domain/subscription"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

// loggingPaymentProcessor stands in for a real PSP integration. It approves
// every charge and records the attempt; swapping in a live processor only
// requires implementing the same interface.
type loggingPaymentProcessor struct {
	log *logger.Logger
}

func NewLoggingPaymentProcessor(log *logger.Logger) domainagg.PaymentProcessor {
	return &loggingPaymentProcessor{log: log.With("service", "PaymentProcessor")}
}

func (pp *loggingPaymentProcessor) Charge(ctx context.Context, subscription *sub.Subscription) error {
	pp.log.Info("charging subscription renewal",
		"subscription_id", subscription.ID,
		"user_id", subscription.UserID,
		"amount", subscription.Amount.String(),
	)
	return nil
}
