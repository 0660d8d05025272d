package handlers

import (
  "context"
  "errors"
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  "github.com/shopspring/decimal"
  domainagg "github.com/yungbote/storefront-backend/internal/domain/aggregates"
  sub "github.com/yungbote/storefront-backend/internal/domain/subscription"
  "github.com/yungbote/storefront-backend/internal/requestdata"
)

type SubscriptionHandler struct {
  subscriptionAggregate   domainagg.SubscriptionAggregate
}

func NewSubscriptionHandler(subscriptionAggregate domainagg.SubscriptionAggregate) *SubscriptionHandler {
  return &SubscriptionHandler{subscriptionAggregate: subscriptionAggregate}
}

type addressRequest struct {
  Line1       string      `json:"line1"`
  Line2       string      `json:"line2"`
  City        string      `json:"city"`
  State       string      `json:"state"`
  PostalCode  string      `json:"postal_code"`
  Country     string      `json:"country"`
}

func (ar addressRequest) toAddress() sub.Address {
  return sub.Address{
    Line1:      ar.Line1,
    Line2:      ar.Line2,
    City:       ar.City,
    State:      ar.State,
    PostalCode: ar.PostalCode,
    Country:    ar.Country,
  }
}

func requestUserID(c *gin.Context) (uuid.UUID, bool) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil || rd.UserID == uuid.Nil {
    RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("authentication required"))
    return uuid.Nil, false
  }
  return rd.UserID, true
}

// ownedSubscription loads the subscription and hides it from other users.
func (sh *SubscriptionHandler) ownedSubscription(c *gin.Context, subscriptionID, userID uuid.UUID) (*sub.Subscription, bool) {
  found, err := sh.subscriptionAggregate.Get(c.Request.Context(), subscriptionID)
  if err != nil {
    RespondAggregateError(c, err)
    return nil, false
  }
  if found.UserID != userID {
    RespondError(c, http.StatusNotFound, "not_found", errors.New("subscription not found"))
    return nil, false
  }
  return found, true
}

func (sh *SubscriptionHandler) Create(c *gin.Context) {
  userID, ok := requestUserID(c)
  if !ok {
    return
  }
  var req struct {
    Frequency         string            `json:"frequency"`
    Items             []struct {
      ProductID       string            `json:"product_id"`
      Quantity        int               `json:"quantity"`
    }                                   `json:"items"`
    Discount          string            `json:"discount"`
    AutoRenew         *bool             `json:"auto_renew"`
    ShippingAddress   addressRequest    `json:"shipping_address"`
    BillingAddress    addressRequest    `json:"billing_address"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "validation", errors.New("invalid request body"))
    return
  }
  items := make([]domainagg.SubscriptionItemInput, 0, len(req.Items))
  for _, it := range req.Items {
    productID, err := uuid.Parse(it.ProductID)
    if err != nil {
      RespondError(c, http.StatusBadRequest, "validation", errors.New("invalid product id"))
      return
    }
    items = append(items, domainagg.SubscriptionItemInput{ProductID: productID, Quantity: it.Quantity})
  }
  discount := decimal.Zero
  if req.Discount != "" {
    parsed, err := decimal.NewFromString(req.Discount)
    if err != nil {
      RespondError(c, http.StatusBadRequest, "validation", errors.New("invalid discount"))
      return
    }
    discount = parsed
  }
  autoRenew := true
  if req.AutoRenew != nil {
    autoRenew = *req.AutoRenew
  }
  created, err := sh.subscriptionAggregate.Create(c.Request.Context(), domainagg.CreateSubscriptionInput{
    UserID:          userID,
    Frequency:       req.Frequency,
    Items:           items,
    Discount:        discount,
    AutoRenew:       autoRenew,
    ShippingAddress: req.ShippingAddress.toAddress(),
    BillingAddress:  req.BillingAddress.toAddress(),
  })
  if err != nil {
    RespondAggregateError(c, err)
    return
  }
  RespondOK(c, gin.H{"subscription": created})
}

func (sh *SubscriptionHandler) Get(c *gin.Context) {
  userID, ok := requestUserID(c)
  if !ok {
    return
  }
  subscriptionID, err := uuid.Parse(c.Param("subscriptionID"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "validation", errors.New("invalid subscription id"))
    return
  }
  found, ok := sh.ownedSubscription(c, subscriptionID, userID)
  if !ok {
    return
  }
  RespondOK(c, gin.H{"subscription": found})
}

func (sh *SubscriptionHandler) AddItem(c *gin.Context) {
  userID, ok := requestUserID(c)
  if !ok {
    return
  }
  subscriptionID, err := uuid.Parse(c.Param("subscriptionID"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "validation", errors.New("invalid subscription id"))
    return
  }
  var req struct {
    ProductID     string      `json:"product_id"`
    Quantity      int         `json:"quantity"`
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
  if _, ok := sh.ownedSubscription(c, subscriptionID, userID); !ok {
    return
  }
  updated, err := sh.subscriptionAggregate.AddItem(c.Request.Context(), subscriptionID, productID, req.Quantity)
  if err != nil {
    RespondAggregateError(c, err)
    return
  }
  RespondOK(c, gin.H{"subscription": updated})
}

func (sh *SubscriptionHandler) UpdateItemQuantity(c *gin.Context) {
  userID, ok := requestUserID(c)
  if !ok {
    return
  }
  subscriptionID, err := uuid.Parse(c.Param("subscriptionID"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "validation", errors.New("invalid subscription id"))
    return
  }
  itemID, err := uuid.Parse(c.Param("itemID"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "validation", errors.New("invalid item id"))
    return
  }
  var req struct {
    Quantity      int         `json:"quantity"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "validation", errors.New("invalid request body"))
    return
  }
  if _, ok := sh.ownedSubscription(c, subscriptionID, userID); !ok {
    return
  }
  updated, err := sh.subscriptionAggregate.UpdateItemQuantity(c.Request.Context(), subscriptionID, itemID, req.Quantity)
  if err != nil {
    RespondAggregateError(c, err)
    return
  }
  RespondOK(c, gin.H{"subscription": updated})
}

func (sh *SubscriptionHandler) RemoveItem(c *gin.Context) {
  userID, ok := requestUserID(c)
  if !ok {
    return
  }
  subscriptionID, err := uuid.Parse(c.Param("subscriptionID"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "validation", errors.New("invalid subscription id"))
    return
  }
  itemID, err := uuid.Parse(c.Param("itemID"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "validation", errors.New("invalid item id"))
    return
  }
  if _, ok := sh.ownedSubscription(c, subscriptionID, userID); !ok {
    return
  }
  updated, err := sh.subscriptionAggregate.RemoveItem(c.Request.Context(), subscriptionID, itemID)
  if err != nil {
    RespondAggregateError(c, err)
    return
  }
  RespondOK(c, gin.H{"subscription": updated})
}

func (sh *SubscriptionHandler) UpdateFrequency(c *gin.Context) {
  userID, ok := requestUserID(c)
  if !ok {
    return
  }
  subscriptionID, err := uuid.Parse(c.Param("subscriptionID"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "validation", errors.New("invalid subscription id"))
    return
  }
  var req struct {
    Frequency     string      `json:"frequency"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "validation", errors.New("invalid request body"))
    return
  }
  if _, ok := sh.ownedSubscription(c, subscriptionID, userID); !ok {
    return
  }
  updated, err := sh.subscriptionAggregate.UpdateFrequency(c.Request.Context(), subscriptionID, req.Frequency)
  if err != nil {
    RespondAggregateError(c, err)
    return
  }
  RespondOK(c, gin.H{"subscription": updated})
}

func (sh *SubscriptionHandler) UpdateAddresses(c *gin.Context) {
  userID, ok := requestUserID(c)
  if !ok {
    return
  }
  subscriptionID, err := uuid.Parse(c.Param("subscriptionID"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "validation", errors.New("invalid subscription id"))
    return
  }
  var req struct {
    ShippingAddress   addressRequest    `json:"shipping_address"`
    BillingAddress    addressRequest    `json:"billing_address"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "validation", errors.New("invalid request body"))
    return
  }
  if _, ok := sh.ownedSubscription(c, subscriptionID, userID); !ok {
    return
  }
  updated, err := sh.subscriptionAggregate.UpdateAddresses(c.Request.Context(), subscriptionID, req.ShippingAddress.toAddress(), req.BillingAddress.toAddress())
  if err != nil {
    RespondAggregateError(c, err)
    return
  }
  RespondOK(c, gin.H{"subscription": updated})
}

func (sh *SubscriptionHandler) SetAutoRenew(c *gin.Context) {
  userID, ok := requestUserID(c)
  if !ok {
    return
  }
  subscriptionID, err := uuid.Parse(c.Param("subscriptionID"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "validation", errors.New("invalid subscription id"))
    return
  }
  var req struct {
    AutoRenew     bool        `json:"auto_renew"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "validation", errors.New("invalid request body"))
    return
  }
  if _, ok := sh.ownedSubscription(c, subscriptionID, userID); !ok {
    return
  }
  updated, err := sh.subscriptionAggregate.SetAutoRenew(c.Request.Context(), subscriptionID, req.AutoRenew)
  if err != nil {
    RespondAggregateError(c, err)
    return
  }
  RespondOK(c, gin.H{"subscription": updated})
}

func (sh *SubscriptionHandler) Pause(c *gin.Context) {
  sh.lifecycle(c, sh.subscriptionAggregate.Pause)
}

func (sh *SubscriptionHandler) Resume(c *gin.Context) {
  sh.lifecycle(c, sh.subscriptionAggregate.Resume)
}

func (sh *SubscriptionHandler) Cancel(c *gin.Context) {
  sh.lifecycle(c, sh.subscriptionAggregate.Cancel)
}

func (sh *SubscriptionHandler) lifecycle(c *gin.Context, op func(ctx context.Context, subscriptionID uuid.UUID) (*sub.Subscription, error)) {
  userID, ok := requestUserID(c)
  if !ok {
    return
  }
  subscriptionID, err := uuid.Parse(c.Param("subscriptionID"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "validation", errors.New("invalid subscription id"))
    return
  }
  if _, ok := sh.ownedSubscription(c, subscriptionID, userID); !ok {
    return
  }
  updated, err := op(c.Request.Context(), subscriptionID)
  if err != nil {
    RespondAggregateError(c, err)
    return
  }
  RespondOK(c, gin.H{"subscription": updated})
}
