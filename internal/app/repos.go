package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/storefront-backend/internal/data/repos"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

type Repos struct {
	Product          repos.ProductRepo
	Category         repos.CategoryRepo
	Cart             repos.CartRepo
	CartItem         repos.CartItemRepo
	Subscription     repos.SubscriptionRepo
	SubscriptionItem repos.SubscriptionItemRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Product:          repos.NewProductRepo(db, log),
		Category:         repos.NewCategoryRepo(db, log),
		Cart:             repos.NewCartRepo(db, log),
		CartItem:         repos.NewCartItemRepo(db, log),
		Subscription:     repos.NewSubscriptionRepo(db, log),
		SubscriptionItem: repos.NewSubscriptionItemRepo(db, log),
	}
}
