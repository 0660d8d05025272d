package cart

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Totals is the derived money state of a cart.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Shipping decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// LineSubtotal computes price * quantity rounded to 2 decimal places.
func LineSubtotal(price decimal.Decimal, quantity int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}

// ComputeTotals derives cart totals from the current item set:
//
//	subtotal = Σ item.subtotal
//	total    = subtotal + shipping + tax - discount
//
// The discount is clamped to subtotal + shipping + tax so it can never drive
// the total negative. All amounts are rounded to 2 decimal places.
func ComputeTotals(items []CartItem, shipping, tax, discount decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.Subtotal)
	}
	subtotal = subtotal.Round(2)

	if shipping.IsNegative() {
		shipping = decimal.Zero
	}
	if tax.IsNegative() {
		tax = decimal.Zero
	}
	if discount.IsNegative() {
		discount = decimal.Zero
	}

	gross := subtotal.Add(shipping).Add(tax)
	if discount.GreaterThan(gross) {
		discount = gross
	}

	return Totals{
		Subtotal: subtotal,
		Tax:      tax.Round(2),
		Shipping: shipping.Round(2),
		Discount: discount.Round(2),
		Total:    gross.Sub(discount).Round(2),
	}
}

// ZeroTotals is the totals state of a cleared cart.
func ZeroTotals() Totals {
	return Totals{
		Subtotal: decimal.Zero,
		Tax:      decimal.Zero,
		Shipping: decimal.Zero,
		Discount: decimal.Zero,
		Total:    decimal.Zero,
	}
}

// OptionsKey canonicalizes selected options into a stable identity string:
// keys sorted, joined as k=v pairs. Two option maps with the same pairs are
// the same line regardless of insertion order. Empty and nil maps share the
// empty key.
func OptionsKey(options map[string]string) string {
	if len(options) == 0 {
		return ""
	}
	keys := make([]string, 0, len(options))
	for k := range options {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(strings.TrimSpace(k))
		b.WriteByte('=')
		b.WriteString(strings.TrimSpace(options[k]))
	}
	return b.String()
}
