package handlers

import (
  "errors"
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/yungbote/storefront-backend/internal/data/cache"
  domainagg "github.com/yungbote/storefront-backend/internal/domain/aggregates"
  dcart "github.com/yungbote/storefront-backend/internal/domain/cart"
  "github.com/yungbote/storefront-backend/internal/requestdata"
)

type CartHandler struct {
  cartAggregate   domainagg.CartAggregate
  cartCache       cache.CartCache
}

func NewCartHandler(cartAggregate domainagg.CartAggregate, cartCache cache.CartCache) *CartHandler {
  if cartCache == nil {
    cartCache = cache.NoopCartCache{}
  }
  return &CartHandler{cartAggregate: cartAggregate, cartCache: cartCache}
}

// ownerFromRequest resolves the cart owner from the request identity set by
// the middleware.
func ownerFromRequest(c *gin.Context) (dcart.Owner, error) {
  rd := requestdata.GetRequestData(c.Request.Context())
  userID, sessionID := rd.Owner()
  switch {
  case userID != nil:
    return dcart.UserOwner(*userID), nil
  case sessionID != nil:
    return dcart.SessionOwner(*sessionID), nil
  default:
    return dcart.Owner{}, errors.New("missing user token or session id")
  }
}

// resolveCart locks onto the caller's active cart, creating it on first use.
func (ch *CartHandler) resolveCart(c *gin.Context) (*dcart.Cart, bool) {
  owner, err := ownerFromRequest(c)
  if err != nil {
    RespondError(c, http.StatusUnauthorized, "unauthorized", err)
    return nil, false
  }
  cart, err := ch.cartAggregate.GetOrCreate(c.Request.Context(), owner)
  if err != nil {
    RespondAggregateError(c, err)
    return nil, false
  }
  return cart, true
}

func (ch *CartHandler) GetCart(c *gin.Context) {
  cart, ok := ch.resolveCart(c)
  if !ok {
    return
  }
  if cached, hit := ch.cartCache.Get(c.Request.Context(), cart.ID); hit {
    RespondOK(c, gin.H{"cart": cached})
    return
  }
  full, err := ch.cartAggregate.GetCart(c.Request.Context(), cart.ID)
  if err != nil {
    RespondAggregateError(c, err)
    return
  }
  ch.cartCache.Set(c.Request.Context(), full)
  RespondOK(c, gin.H{"cart": full})
}

func (ch *CartHandler) AddItem(c *gin.Context) {
  var req struct {
    ProductID       string              `json:"product_id"`
    Quantity        int                 `json:"quantity"`
    SelectedOptions map[string]string   `json:"selected_options"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "validation", errors.New("invalid request body"))
    return
  }
  productID, err := uuid.Parse(req.ProductID)
  if err != nil {
    RespondError(c, http.StatusBadRequest, "validation", errors.New("invalid product id"))
    return
  }
  cart, ok := ch.resolveCart(c)
  if !ok {
    return
  }
  updated, err := ch.cartAggregate.AddItem(c.Request.Context(), domainagg.AddCartItemInput{
    CartID:          cart.ID,
    ProductID:       productID,
    Quantity:        req.Quantity,
    SelectedOptions: req.SelectedOptions,
  })
  if err != nil {
    RespondAggregateError(c, err)
    return
  }
  ch.cartCache.Invalidate(c.Request.Context(), cart.ID)
  RespondOK(c, gin.H{"cart": updated})
}

func (ch *CartHandler) UpdateItemQuantity(c *gin.Context) {
  itemID, err := uuid.Parse(c.Param("itemID"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "validation", errors.New("invalid item id"))
    return
  }
  var req struct {
    Quantity      int     `json:"quantity"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "validation", errors.New("invalid request body"))
    return
  }
  cart, ok := ch.resolveCart(c)
  if !ok {
    return
  }
  updated, err := ch.cartAggregate.UpdateItemQuantity(c.Request.Context(), cart.ID, itemID, req.Quantity)
  if err != nil {
    RespondAggregateError(c, err)
    return
  }
  ch.cartCache.Invalidate(c.Request.Context(), cart.ID)
  RespondOK(c, gin.H{"cart": updated})
}

func (ch *CartHandler) RemoveItem(c *gin.Context) {
  itemID, err := uuid.Parse(c.Param("itemID"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "validation", errors.New("invalid item id"))
    return
  }
  cart, ok := ch.resolveCart(c)
  if !ok {
    return
  }
  updated, err := ch.cartAggregate.RemoveItem(c.Request.Context(), cart.ID, itemID)
  if err != nil {
    RespondAggregateError(c, err)
    return
  }
  ch.cartCache.Invalidate(c.Request.Context(), cart.ID)
  RespondOK(c, gin.H{"cart": updated})
}

func (ch *CartHandler) Clear(c *gin.Context) {
  cart, ok := ch.resolveCart(c)
  if !ok {
    return
  }
  updated, err := ch.cartAggregate.Clear(c.Request.Context(), cart.ID)
  if err != nil {
    RespondAggregateError(c, err)
    return
  }
  ch.cartCache.Invalidate(c.Request.Context(), cart.ID)
  RespondOK(c, gin.H{"cart": updated})
}

func (ch *CartHandler) ApplyCoupon(c *gin.Context) {
  var req struct {
    Code          string      `json:"code"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "validation", errors.New("invalid request body"))
    return
  }
  cart, ok := ch.resolveCart(c)
  if !ok {
    return
  }
  updated, err := ch.cartAggregate.ApplyCoupon(c.Request.Context(), cart.ID, req.Code)
  if err != nil {
    RespondAggregateError(c, err)
    return
  }
  ch.cartCache.Invalidate(c.Request.Context(), cart.ID)
  RespondOK(c, gin.H{"cart": updated})
}

func (ch *CartHandler) RemoveCoupon(c *gin.Context) {
  cart, ok := ch.resolveCart(c)
  if !ok {
    return
  }
  updated, err := ch.cartAggregate.RemoveCoupon(c.Request.Context(), cart.ID)
  if err != nil {
    RespondAggregateError(c, err)
    return
  }
  ch.cartCache.Invalidate(c.Request.Context(), cart.ID)
  RespondOK(c, gin.H{"cart": updated})
}

func (ch *CartHandler) UpdateGiftSettings(c *gin.Context) {
  var req struct {
    IsGift        bool        `json:"is_gift"`
    GiftMessage   string      `json:"gift_message"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "validation", errors.New("invalid request body"))
    return
  }
  cart, ok := ch.resolveCart(c)
  if !ok {
    return
  }
  updated, err := ch.cartAggregate.UpdateGiftSettings(c.Request.Context(), cart.ID, req.IsGift, req.GiftMessage)
  if err != nil {
    RespondAggregateError(c, err)
    return
  }
  ch.cartCache.Invalidate(c.Request.Context(), cart.ID)
  RespondOK(c, gin.H{"cart": updated})
}

// SetRates recomputes totals with shipping and tax quoted for the given
// destination.
func (ch *CartHandler) SetRates(c *gin.Context) {
  var req struct {
    Country       string      `json:"country"`
    PostalCode    string      `json:"postal_code"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "validation", errors.New("invalid request body"))
    return
  }
  cart, ok := ch.resolveCart(c)
  if !ok {
    return
  }
  if _, err := ch.cartAggregate.SetShippingRate(c.Request.Context(), cart.ID, req.Country, req.PostalCode); err != nil {
    RespondAggregateError(c, err)
    return
  }
  updated, err := ch.cartAggregate.SetTaxRate(c.Request.Context(), cart.ID, req.Country, req.PostalCode)
  if err != nil {
    RespondAggregateError(c, err)
    return
  }
  ch.cartCache.Invalidate(c.Request.Context(), cart.ID)
  RespondOK(c, gin.H{"cart": updated})
}

// MergeGuestCart folds the guest session cart into the authenticated user's
// cart. Requires auth; the session id comes from the body or session header.
func (ch *CartHandler) MergeGuestCart(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil || rd.UserID == uuid.Nil {
    RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("authentication required"))
    return
  }
  var req struct {
    SessionID     string      `json:"session_id"`
  }
  // Body is optional; the session id may ride on the header instead.
  _ = c.ShouldBindJSON(&req)
  sessionID := req.SessionID
  if sessionID == "" {
    sessionID = c.GetHeader("X-Session-ID")
  }
  if sessionID == "" {
    RespondError(c, http.StatusBadRequest, "validation", errors.New("missing session id"))
    return
  }
  merged, err := ch.cartAggregate.MergeGuestCart(c.Request.Context(), sessionID, rd.UserID)
  if err != nil {
    RespondAggregateError(c, err)
    return
  }
  ch.cartCache.Invalidate(c.Request.Context(), merged.ID)
  RespondOK(c, gin.H{"cart": merged})
}
