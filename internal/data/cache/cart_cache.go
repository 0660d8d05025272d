package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	types "github.com/yungbote/storefront-backend/internal/domain"
	"github.com/yungbote/storefront-backend/internal/observability"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

// CartCache is a read-through snapshot cache for fully loaded carts. Writers
// must invalidate after every mutation; a stale snapshot is only ever served
// between a write commit and its invalidation call.
type CartCache interface {
	Get(ctx context.Context, cartID uuid.UUID) (*types.Cart, bool)
	Set(ctx context.Context, cart *types.Cart)
	Invalidate(ctx context.Context, cartID uuid.UUID)
	Close() error
}

type cartCache struct {
	log     *logger.Logger
	rdb     *goredis.Client
	metrics *observability.Metrics
	ttl     time.Duration
}

// NewCartCache connects to redis at addr and returns a cart snapshot cache.
// A zero ttl defaults to 24 hours.
func NewCartCache(log *logger.Logger, metrics *observability.Metrics, addr string, ttl time.Duration) (CartCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("missing redis addr")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &cartCache{
		log:     log.With("service", "CartCache"),
		rdb:     rdb,
		metrics: metrics,
		ttl:     ttl,
	}, nil
}

func cartKey(cartID uuid.UUID) string {
	return fmt.Sprintf("cart:%s", cartID)
}

func (c *cartCache) Get(ctx context.Context, cartID uuid.UUID) (*types.Cart, bool) {
	raw, err := c.rdb.Get(ctx, cartKey(cartID)).Bytes()
	if err == goredis.Nil {
		c.metrics.IncCacheMiss("cart")
		return nil, false
	}
	if err != nil {
		c.log.Warn("cart cache read failed", "cart_id", cartID, "error", err)
		c.metrics.IncCacheMiss("cart")
		return nil, false
	}
	var cart types.Cart
	if err := json.Unmarshal(raw, &cart); err != nil {
		c.log.Warn("cart cache snapshot corrupt", "cart_id", cartID, "error", err)
		c.rdb.Del(ctx, cartKey(cartID))
		c.metrics.IncCacheMiss("cart")
		return nil, false
	}
	c.metrics.IncCacheHit("cart")
	return &cart, true
}

func (c *cartCache) Set(ctx context.Context, cart *types.Cart) {
	if cart == nil {
		return
	}
	raw, err := json.Marshal(cart)
	if err != nil {
		c.log.Warn("cart cache encode failed", "cart_id", cart.ID, "error", err)
		return
	}
	if err := c.rdb.Set(ctx, cartKey(cart.ID), raw, c.ttl).Err(); err != nil {
		c.log.Warn("cart cache write failed", "cart_id", cart.ID, "error", err)
	}
}

func (c *cartCache) Invalidate(ctx context.Context, cartID uuid.UUID) {
	if err := c.rdb.Del(ctx, cartKey(cartID)).Err(); err != nil {
		c.log.Warn("cart cache invalidate failed", "cart_id", cartID, "error", err)
	}
}

func (c *cartCache) Close() error {
	return c.rdb.Close()
}

// NoopCartCache satisfies CartCache when redis is not configured.
type NoopCartCache struct{}

func (NoopCartCache) Get(context.Context, uuid.UUID) (*types.Cart, bool) { return nil, false }
func (NoopCartCache) Set(context.Context, *types.Cart)                   {}
func (NoopCartCache) Invalidate(context.Context, uuid.UUID)              {}
func (NoopCartCache) Close() error                                       { return nil }
