package services

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	domainagg "github.com/yungbote/storefront-backend/internal/domain/aggregates"
	"github.com/yungbote/storefront-backend/internal/platform/envutil"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

// flatRateCalculator quotes a flat shipping fee and a percent tax on the cart
// subtotal. Destination-aware rate tables live behind the same interface when
// a real provider is wired in.
type flatRateCalculator struct {
	log          *logger.Logger
	shippingFlat decimal.Decimal
	taxPercent   decimal.Decimal
	freeShipOver decimal.Decimal
}

func NewFlatRateCalculator(log *logger.Logger) domainagg.RateCalculator {
	return &flatRateCalculator{
		log:          log.With("service", "FlatRateCalculator"),
		shippingFlat: decimalEnv("SHIPPING_FLAT_RATE", "5.00"),
		taxPercent:   decimalEnv("TAX_PERCENT", "8.75"),
		freeShipOver: decimalEnv("FREE_SHIPPING_THRESHOLD", "0"),
	}
}

func decimalEnv(name, def string) decimal.Decimal {
	raw := strings.TrimSpace(envutil.String(name, def))
	d, err := decimal.NewFromString(raw)
	if err != nil {
		d, _ = decimal.NewFromString(def)
	}
	return d
}

func (rc *flatRateCalculator) Shipping(ctx context.Context, cart domainagg.CartPricingView, country, postalCode string) (decimal.Decimal, error) {
	if cart.ItemCount == 0 {
		return decimal.Zero, nil
	}
	if rc.freeShipOver.IsPositive() && cart.Subtotal.GreaterThanOrEqual(rc.freeShipOver) {
		return decimal.Zero, nil
	}
	return rc.shippingFlat, nil
}

func (rc *flatRateCalculator) Tax(ctx context.Context, cart domainagg.CartPricingView, country, postalCode string) (decimal.Decimal, error) {
	return cart.Subtotal.Mul(rc.taxPercent).Div(decimal.NewFromInt(100)).Round(2), nil
}
