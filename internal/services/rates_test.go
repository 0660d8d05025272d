package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domainagg "github.com/yungbote/storefront-backend/internal/domain/aggregates"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

func pricingView(subtotal string, items int) domainagg.CartPricingView {
	d, _ := decimal.NewFromString(subtotal)
	return domainagg.CartPricingView{CartID: uuid.New(), Subtotal: d, ItemCount: items}
}

func TestFlatRateShipping(t *testing.T) {
	t.Setenv("SHIPPING_FLAT_RATE", "7.50")
	t.Setenv("FREE_SHIPPING_THRESHOLD", "50")
	rc := NewFlatRateCalculator(testLogger(t))

	got, err := rc.Shipping(context.Background(), pricingView("20.00", 2), "US", "62704")
	if err != nil {
		t.Fatalf("shipping: %v", err)
	}
	if got.StringFixed(2) != "7.50" {
		t.Fatalf("expected 7.50, got %s", got)
	}

	free, err := rc.Shipping(context.Background(), pricingView("60.00", 2), "US", "62704")
	if err != nil {
		t.Fatalf("shipping over threshold: %v", err)
	}
	if !free.IsZero() {
		t.Fatalf("expected free shipping over threshold, got %s", free)
	}

	empty, err := rc.Shipping(context.Background(), pricingView("0", 0), "US", "62704")
	if err != nil {
		t.Fatalf("shipping empty cart: %v", err)
	}
	if !empty.IsZero() {
		t.Fatalf("expected zero shipping for empty cart, got %s", empty)
	}
}

func TestFlatRateTax(t *testing.T) {
	t.Setenv("TAX_PERCENT", "10")
	rc := NewFlatRateCalculator(testLogger(t))

	got, err := rc.Tax(context.Background(), pricingView("24.99", 1), "US", "62704")
	if err != nil {
		t.Fatalf("tax: %v", err)
	}
	if got.StringFixed(2) != "2.50" {
		t.Fatalf("expected 2.50, got %s", got)
	}
}

func TestFlatRateBadEnvFallsBack(t *testing.T) {
	t.Setenv("SHIPPING_FLAT_RATE", "not-a-number")
	rc := NewFlatRateCalculator(testLogger(t))

	got, err := rc.Shipping(context.Background(), pricingView("20.00", 1), "US", "62704")
	if err != nil {
		t.Fatalf("shipping: %v", err)
	}
	if got.StringFixed(2) != "5.00" {
		t.Fatalf("expected default 5.00, got %s", got)
	}
}
