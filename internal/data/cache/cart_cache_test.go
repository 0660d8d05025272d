package cache

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	types "github.com/yungbote/storefront-backend/internal/domain"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

func testCache(t *testing.T) CartCache {
	t.Helper()
	addr := strings.TrimSpace(os.Getenv("TEST_REDIS_ADDR"))
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set; skipping redis cache tests")
	}
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	c, err := NewCartCache(log, nil, addr, time.Minute)
	if err != nil {
		t.Fatalf("init cart cache: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestCartCacheRoundTrip(t *testing.T) {
	c := testCache(t)
	ctx := context.Background()

	subtotal, _ := decimal.NewFromString("19.99")
	cart := &types.Cart{
		ID:       uuid.New(),
		Subtotal: subtotal,
		IsActive: true,
	}

	if _, hit := c.Get(ctx, cart.ID); hit {
		t.Fatal("expected miss before set")
	}

	c.Set(ctx, cart)
	got, hit := c.Get(ctx, cart.ID)
	if !hit {
		t.Fatal("expected hit after set")
	}
	if got.ID != cart.ID || !got.Subtotal.Equal(cart.Subtotal) {
		t.Fatalf("snapshot mismatch: %+v", got)
	}

	c.Invalidate(ctx, cart.ID)
	if _, hit := c.Get(ctx, cart.ID); hit {
		t.Fatal("expected miss after invalidate")
	}
}

func TestNoopCartCache(t *testing.T) {
	var c CartCache = NoopCartCache{}
	ctx := context.Background()
	cartID := uuid.New()

	c.Set(ctx, &types.Cart{ID: cartID})
	if _, hit := c.Get(ctx, cartID); hit {
		t.Fatal("noop cache should never hit")
	}
	c.Invalidate(ctx, cartID)
	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
