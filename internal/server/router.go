package server

import (
  "github.com/gin-gonic/gin"
  "github.com/gin-contrib/cors"
  "github.com/yungbote/storefront-backend/internal/handlers"
  "github.com/yungbote/storefront-backend/internal/middleware"
  "github.com/yungbote/storefront-backend/internal/observability"
)

type RouterConfig struct {
  AuthMiddleware        *middleware.AuthMiddleware
  CartHandler           *handlers.CartHandler
  CategoryHandler       *handlers.CategoryHandler
  SubscriptionHandler   *handlers.SubscriptionHandler
  Metrics               *observability.Metrics
  CORSOrigins           []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
  router := gin.Default()

  // Cors
  origins := cfg.CORSOrigins
  if len(origins) == 0 {
    origins = []string{
      "http://localhost:80",
      "http://localhost:3000",
      "http://localhost:5174",
    }
  }
  router.Use(cors.New(cors.Config{
    AllowOrigins:     origins,
    AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
    AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With", "X-Session-ID"},
    AllowCredentials: true,
  }))
  router.Use(middleware.Metrics(cfg.Metrics))

// ===============
// || Public    ||
// ===============
  router.GET("/healthcheck", handlers.HealthCheck)
  if cfg.Metrics != nil {
    router.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
  }
  api := router.Group("/api")
  // Categories (reads)
  api.GET("/categories", cfg.CategoryHandler.Tree)
  api.GET("/categories/:categoryID/path", cfg.CategoryHandler.Path)
  api.GET("/categories/:categoryID/descendants", cfg.CategoryHandler.Descendants)

// ===============
// || Identity  ||
// ===============
  // Cart works for guests (session id) and users (bearer token) alike.
  cart := api.Group("/cart")
  cart.Use(cfg.AuthMiddleware.Identity())
  cart.GET("", cfg.CartHandler.GetCart)
  cart.POST("/items", cfg.CartHandler.AddItem)
  cart.PATCH("/items/:itemID", cfg.CartHandler.UpdateItemQuantity)
  cart.DELETE("/items/:itemID", cfg.CartHandler.RemoveItem)
  cart.POST("/clear", cfg.CartHandler.Clear)
  cart.POST("/coupon", cfg.CartHandler.ApplyCoupon)
  cart.DELETE("/coupon", cfg.CartHandler.RemoveCoupon)
  cart.PUT("/gift", cfg.CartHandler.UpdateGiftSettings)
  cart.PUT("/rates", cfg.CartHandler.SetRates)

// ===============
// || Protected ||
// ===============
  protected := api.Group("/")
  protected.Use(cfg.AuthMiddleware.RequireAuth())
  // Cart merge happens at login
  protected.POST("/cart/merge", cfg.CartHandler.MergeGuestCart)
  // Categories (writes)
  protected.POST("/categories", cfg.CategoryHandler.Create)
  protected.PATCH("/categories/:categoryID/parent", cfg.CategoryHandler.Reparent)
  protected.DELETE("/categories/:categoryID", cfg.CategoryHandler.Delete)
  // Subscriptions
  protected.POST("/subscriptions", cfg.SubscriptionHandler.Create)
  protected.GET("/subscriptions/:subscriptionID", cfg.SubscriptionHandler.Get)
  protected.POST("/subscriptions/:subscriptionID/items", cfg.SubscriptionHandler.AddItem)
  protected.PATCH("/subscriptions/:subscriptionID/items/:itemID", cfg.SubscriptionHandler.UpdateItemQuantity)
  protected.DELETE("/subscriptions/:subscriptionID/items/:itemID", cfg.SubscriptionHandler.RemoveItem)
  protected.PATCH("/subscriptions/:subscriptionID/frequency", cfg.SubscriptionHandler.UpdateFrequency)
  protected.PUT("/subscriptions/:subscriptionID/addresses", cfg.SubscriptionHandler.UpdateAddresses)
  protected.PATCH("/subscriptions/:subscriptionID/auto-renew", cfg.SubscriptionHandler.SetAutoRenew)
  protected.POST("/subscriptions/:subscriptionID/pause", cfg.SubscriptionHandler.Pause)
  protected.POST("/subscriptions/:subscriptionID/resume", cfg.SubscriptionHandler.Resume)
  protected.POST("/subscriptions/:subscriptionID/cancel", cfg.SubscriptionHandler.Cancel)

  return router
}
