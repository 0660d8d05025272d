package db

import (
	types "github.com/yungbote/storefront-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		// Catalog
		&types.Product{},
		&types.Category{},

		// Carts
		&types.Cart{},
		&types.CartItem{},

		// Subscriptions
		&types.Subscription{},
		&types.SubscriptionItem{},
	)
}
