package app

import (
	"gorm.io/gorm"

	dataagg "github.com/yungbote/storefront-backend/internal/data/aggregates"
	domainagg "github.com/yungbote/storefront-backend/internal/domain/aggregates"
	"github.com/yungbote/storefront-backend/internal/observability"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

type Aggregates struct {
	Cart         domainagg.CartAggregate
	Category     domainagg.CategoryAggregate
	Subscription domainagg.SubscriptionAggregate
}

func wireAggregates(db *gorm.DB, log *logger.Logger, metrics *observability.Metrics, reposet Repos, serviceset Services) Aggregates {
	log.Info("Wiring aggregates...")
	base := dataagg.BaseDeps{
		DB:    db,
		Log:   log,
		Hooks: dataagg.NewObservabilityHooks(metrics),
	}
	return Aggregates{
		Cart: dataagg.NewCartAggregate(dataagg.CartAggregateDeps{
			Base:      base,
			Carts:     reposet.Cart,
			Items:     reposet.CartItem,
			Products:  reposet.Product,
			Rates:     serviceset.Rates,
			Discounts: serviceset.Discounts,
		}),
		Category: dataagg.NewCategoryAggregate(dataagg.CategoryAggregateDeps{
			Base:       base,
			Categories: reposet.Category,
			Products:   reposet.Product,
		}),
		Subscription: dataagg.NewSubscriptionAggregate(dataagg.SubscriptionAggregateDeps{
			Base:          base,
			Subscriptions: reposet.Subscription,
			Items:         reposet.SubscriptionItem,
			Catalog:       dataagg.NewProductCatalog(reposet.Product),
			Payments:      serviceset.Payments,
			Orders:        serviceset.Orders,
		}),
	}
}
