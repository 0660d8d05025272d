package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	domainagg "github.com/yungbote/storefront-backend/internal/domain/aggregates"
	"github.com/yungbote/storefront-backend/internal/platform/envutil"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

// envDiscountRule resolves coupon codes from a static table configured as
// DISCOUNT_CODES="WELCOME10=10,SPRING5=5". Values are percent off the cart
// subtotal. Unknown codes fail evaluation.
type envDiscountRule struct {
	log   *logger.Logger
	codes map[string]decimal.Decimal
}

func NewEnvDiscountRule(log *logger.Logger) domainagg.DiscountRule {
	codes := map[string]decimal.Decimal{}
	raw := envutil.String("DISCOUNT_CODES", "WELCOME10=10")
	for _, pair := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(parts) != 2 {
			continue
		}
		pct, err := decimal.NewFromString(strings.TrimSpace(parts[1]))
		if err != nil || pct.IsNegative() {
			continue
		}
		codes[strings.ToUpper(strings.TrimSpace(parts[0]))] = pct
	}
	return &envDiscountRule{
		log:   log.With("service", "EnvDiscountRule"),
		codes: codes,
	}
}

func (dr *envDiscountRule) Evaluate(ctx context.Context, code string, cart domainagg.CartPricingView) (decimal.Decimal, error) {
	pct, ok := dr.codes[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return decimal.Zero, fmt.Errorf("unknown coupon code %q", code)
	}
	return cart.Subtotal.Mul(pct).Div(decimal.NewFromInt(100)).Round(2), nil
}
