package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/storefront-backend/internal/data/repos/cart"
	"github.com/yungbote/storefront-backend/internal/data/repos/catalog"
	"github.com/yungbote/storefront-backend/internal/data/repos/subscription"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

type ProductRepo = catalog.ProductRepo
type CategoryRepo = catalog.CategoryRepo

type CartRepo = cart.CartRepo
type CartItemRepo = cart.CartItemRepo

type SubscriptionRepo = subscription.SubscriptionRepo
type SubscriptionItemRepo = subscription.SubscriptionItemRepo

func NewProductRepo(db *gorm.DB, baseLog *logger.Logger) ProductRepo {
	return catalog.NewProductRepo(db, baseLog)
}
func NewCategoryRepo(db *gorm.DB, baseLog *logger.Logger) CategoryRepo {
	return catalog.NewCategoryRepo(db, baseLog)
}

func NewCartRepo(db *gorm.DB, baseLog *logger.Logger) CartRepo {
	return cart.NewCartRepo(db, baseLog)
}
func NewCartItemRepo(db *gorm.DB, baseLog *logger.Logger) CartItemRepo {
	return cart.NewCartItemRepo(db, baseLog)
}

func NewSubscriptionRepo(db *gorm.DB, baseLog *logger.Logger) SubscriptionRepo {
	return subscription.NewSubscriptionRepo(db, baseLog)
}
func NewSubscriptionItemRepo(db *gorm.DB, baseLog *logger.Logger) SubscriptionItemRepo {
	return subscription.NewSubscriptionItemRepo(db, baseLog)
}
