package domain

import (
	"github.com/yungbote/storefront-backend/internal/domain/cart"
	"github.com/yungbote/storefront-backend/internal/domain/catalog"
	"github.com/yungbote/storefront-backend/internal/domain/subscription"
)

// Entity surface re-exported for the data layer (imported as `types`).

type Product = catalog.Product
type Category = catalog.Category
type CategoryNode = catalog.CategoryNode

type Cart = cart.Cart
type CartItem = cart.CartItem
type CartOwner = cart.Owner

type Subscription = subscription.Subscription
type SubscriptionItem = subscription.SubscriptionItem
type Address = subscription.Address
