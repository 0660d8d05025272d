package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	types "github.com/yungbote/storefront-backend/internal/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func SeedProduct(tb testing.TB, ctx context.Context, tx *gorm.DB, price string, stock int) *types.Product {
	tb.Helper()
	id := uuid.New()
	p := &types.Product{
		ID:       id,
		SKU:      fmt.Sprintf("SKU-%s", id.String()[:8]),
		Name:     "product",
		Price:    mustDecimal(tb, price),
		Stock:    stock,
		IsActive: true,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed product: %v", err)
	}
	return p
}

func SeedCategory(tb testing.TB, ctx context.Context, tx *gorm.DB, name string, parentID *uuid.UUID) *types.Category {
	tb.Helper()
	id := uuid.New()
	c := &types.Category{
		ID:       id,
		ParentID: parentID,
		Name:     name,
		Slug:     fmt.Sprintf("%s-%s", name, id.String()[:8]),
		IsActive: true,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed category: %v", err)
	}
	return c
}

func SeedUserCart(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID) *types.Cart {
	tb.Helper()
	c := &types.Cart{
		ID:       uuid.New(),
		UserID:   &userID,
		IsActive: true,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed cart: %v", err)
	}
	return c
}

func SeedSessionCart(tb testing.TB, ctx context.Context, tx *gorm.DB, sessionID string) *types.Cart {
	tb.Helper()
	c := &types.Cart{
		ID:        uuid.New(),
		SessionID: &sessionID,
		IsActive:  true,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed cart: %v", err)
	}
	return c
}

func SeedCartItem(tb testing.TB, ctx context.Context, tx *gorm.DB, cartID, productID uuid.UUID, qty int, price string) *types.CartItem {
	tb.Helper()
	p := mustDecimal(tb, price)
	it := &types.CartItem{
		ID:              uuid.New(),
		CartID:          cartID,
		ProductID:       productID,
		Quantity:        qty,
		Price:           p,
		Subtotal:        p.Mul(decimal.NewFromInt(int64(qty))).Round(2),
		SelectedOptions: datatypes.JSON([]byte("{}")),
	}
	if err := tx.WithContext(ctx).Create(it).Error; err != nil {
		tb.Fatalf("seed cart item: %v", err)
	}
	return it
}

func SeedSubscription(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, next time.Time) *types.Subscription {
	tb.Helper()
	s := &types.Subscription{
		ID:            uuid.New(),
		UserID:        userID,
		Frequency:     "monthly",
		Status:        "active",
		LastOrderDate: next.AddDate(0, -1, 0),
		NextOrderDate: next,
		AutoRenew:     true,
		ShippingAddress: types.Address{
			Line1:      "1 Main St",
			City:       "Springfield",
			State:      "IL",
			PostalCode: "62701",
			Country:    "US",
		},
		BillingAddress: types.Address{
			Line1:      "1 Main St",
			City:       "Springfield",
			State:      "IL",
			PostalCode: "62701",
			Country:    "US",
		},
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed subscription: %v", err)
	}
	return s
}

func SeedSubscriptionItem(tb testing.TB, ctx context.Context, tx *gorm.DB, subscriptionID, productID uuid.UUID, qty int, price string) *types.SubscriptionItem {
	tb.Helper()
	it := &types.SubscriptionItem{
		ID:             uuid.New(),
		SubscriptionID: subscriptionID,
		ProductID:      productID,
		Quantity:       qty,
		Price:          mustDecimal(tb, price),
	}
	if err := tx.WithContext(ctx).Create(it).Error; err != nil {
		tb.Fatalf("seed subscription item: %v", err)
	}
	return it
}

func PtrUUID(v uuid.UUID) *uuid.UUID { return &v }

func PtrString(v string) *string { return &v }

func PtrTime(v time.Time) *time.Time { return &v }

func mustDecimal(tb testing.TB, v string) decimal.Decimal {
	tb.Helper()
	d, err := decimal.NewFromString(v)
	if err != nil {
		tb.Fatalf("parse decimal %q: %v", v, err)
	}
	return d
}
