package handlers

import (
  "errors"
  "net/http"
  "github.com/gin-gonic/gin"
  "github.com/google/uuid"
  domainagg "github.com/yungbote/storefront-backend/internal/domain/aggregates"
)

type CategoryHandler struct {
  categoryAggregate   domainagg.CategoryAggregate
}

func NewCategoryHandler(categoryAggregate domainagg.CategoryAggregate) *CategoryHandler {
  return &CategoryHandler{categoryAggregate: categoryAggregate}
}

func (ch *CategoryHandler) Create(c *gin.Context) {
  var req struct {
    Name        string      `json:"name"`
    Slug        string      `json:"slug"`
    ParentID    *string     `json:"parent_id"`
    SortOrder   int         `json:"sort_order"`
    IsActive    *bool       `json:"is_active"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "validation", errors.New("invalid request body"))
    return
  }
  var parentID *uuid.UUID
  if req.ParentID != nil && *req.ParentID != "" {
    id, err := uuid.Parse(*req.ParentID)
    if err != nil {
      RespondError(c, http.StatusBadRequest, "validation", errors.New("invalid parent id"))
      return
    }
    parentID = &id
  }
  isActive := true
  if req.IsActive != nil {
    isActive = *req.IsActive
  }
  category, err := ch.categoryAggregate.Create(c.Request.Context(), domainagg.CreateCategoryInput{
    Name:      req.Name,
    Slug:      req.Slug,
    ParentID:  parentID,
    SortOrder: req.SortOrder,
    IsActive:  isActive,
  })
  if err != nil {
    RespondAggregateError(c, err)
    return
  }
  RespondOK(c, gin.H{"category": category})
}

func (ch *CategoryHandler) Reparent(c *gin.Context) {
  categoryID, err := uuid.Parse(c.Param("categoryID"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "validation", errors.New("invalid category id"))
    return
  }
  var req struct {
    ParentID    *string     `json:"parent_id"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, http.StatusBadRequest, "validation", errors.New("invalid request body"))
    return
  }
  var parentID *uuid.UUID
  if req.ParentID != nil && *req.ParentID != "" {
    id, err := uuid.Parse(*req.ParentID)
    if err != nil {
      RespondError(c, http.StatusBadRequest, "validation", errors.New("invalid parent id"))
      return
    }
    parentID = &id
  }
  category, err := ch.categoryAggregate.Reparent(c.Request.Context(), categoryID, parentID)
  if err != nil {
    RespondAggregateError(c, err)
    return
  }
  RespondOK(c, gin.H{"category": category})
}

func (ch *CategoryHandler) Delete(c *gin.Context) {
  categoryID, err := uuid.Parse(c.Param("categoryID"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "validation", errors.New("invalid category id"))
    return
  }
  if err := ch.categoryAggregate.Delete(c.Request.Context(), categoryID); err != nil {
    RespondAggregateError(c, err)
    return
  }
  RespondOK(c, gin.H{"success": "true"})
}

func (ch *CategoryHandler) Tree(c *gin.Context) {
  tree, err := ch.categoryAggregate.Tree(c.Request.Context())
  if err != nil {
    RespondAggregateError(c, err)
    return
  }
  RespondOK(c, gin.H{"tree": tree})
}

func (ch *CategoryHandler) Path(c *gin.Context) {
  categoryID, err := uuid.Parse(c.Param("categoryID"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "validation", errors.New("invalid category id"))
    return
  }
  path, err := ch.categoryAggregate.Path(c.Request.Context(), categoryID)
  if err != nil {
    RespondAggregateError(c, err)
    return
  }
  RespondOK(c, gin.H{"path": path})
}

func (ch *CategoryHandler) Descendants(c *gin.Context) {
  categoryID, err := uuid.Parse(c.Param("categoryID"))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "validation", errors.New("invalid category id"))
    return
  }
  ids, err := ch.categoryAggregate.Descendants(c.Request.Context(), categoryID)
  if err != nil {
    RespondAggregateError(c, err)
    return
  }
  RespondOK(c, gin.H{"descendant_ids": ids})
}
