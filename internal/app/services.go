package app

import (
	domainagg "github.com/yungbote/storefront-backend/internal/domain/aggregates"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
	"github.com/yungbote/storefront-backend/internal/services"
)

type Services struct {
	Rates     domainagg.RateCalculator
	Discounts domainagg.DiscountRule
	Payments  domainagg.PaymentProcessor
	Orders    domainagg.OrderPlacer
}

func wireServices(log *logger.Logger) Services {
	log.Info("Wiring services...")
	return Services{
		Rates:     services.NewFlatRateCalculator(log),
		Discounts: services.NewEnvDiscountRule(log),
		Payments:  services.NewLoggingPaymentProcessor(log),
		Orders:    services.NewRenewalOrderPlacer(log),
	}
}
