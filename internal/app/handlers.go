package app

import (
	"github.com/yungbote/storefront-backend/internal/data/cache"
	"github.com/yungbote/storefront-backend/internal/handlers"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

type Handlers struct {
	Cart         *handlers.CartHandler
	Category     *handlers.CategoryHandler
	Subscription *handlers.SubscriptionHandler
}

func wireHandlers(log *logger.Logger, aggregateset Aggregates, cartCache cache.CartCache) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Cart:         handlers.NewCartHandler(aggregateset.Cart, cartCache),
		Category:     handlers.NewCategoryHandler(aggregateset.Category),
		Subscription: handlers.NewSubscriptionHandler(aggregateset.Subscription),
	}
}
