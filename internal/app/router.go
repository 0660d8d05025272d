package app

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/storefront-backend/internal/observability"
	"github.com/yungbote/storefront-backend/internal/server"
)

func wireRouter(cfg Config, handlerset Handlers, middlewareset Middleware, metrics *observability.Metrics) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		AuthMiddleware:      middlewareset.Auth,
		CartHandler:         handlerset.Cart,
		CategoryHandler:     handlerset.Category,
		SubscriptionHandler: handlerset.Subscription,
		Metrics:             metrics,
		CORSOrigins:         cfg.CORSOrigins,
	})
}
