package services

import (
	"context"
	"testing"
)

func TestEnvDiscountRule(t *testing.T) {
	t.Setenv("DISCOUNT_CODES", "SAVE10=10, flat20 = 20")
	dr := NewEnvDiscountRule(testLogger(t))

	got, err := dr.Evaluate(context.Background(), "save10", pricingView("40.00", 2))
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if got.StringFixed(2) != "4.00" {
		t.Fatalf("expected 4.00, got %s", got)
	}

	got, err = dr.Evaluate(context.Background(), "FLAT20", pricingView("10.00", 1))
	if err != nil {
		t.Fatalf("evaluate mixed-case config: %v", err)
	}
	if got.StringFixed(2) != "2.00" {
		t.Fatalf("expected 2.00, got %s", got)
	}

	if _, err := dr.Evaluate(context.Background(), "NOPE", pricingView("10.00", 1)); err == nil {
		t.Fatal("expected error for unknown code")
	}
}

func TestEnvDiscountRuleSkipsMalformedEntries(t *testing.T) {
	t.Setenv("DISCOUNT_CODES", "GOOD=5,broken,NEG=-3")
	dr := NewEnvDiscountRule(testLogger(t))

	if _, err := dr.Evaluate(context.Background(), "GOOD", pricingView("100.00", 1)); err != nil {
		t.Fatalf("expected GOOD to resolve: %v", err)
	}
	if _, err := dr.Evaluate(context.Background(), "NEG", pricingView("100.00", 1)); err == nil {
		t.Fatal("expected negative percent entry to be dropped")
	}
}
