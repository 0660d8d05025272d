package handlers

import (
  "net/http"
  "github.com/gin-gonic/gin"
  domainagg "github.com/yungbote/storefront-backend/internal/domain/aggregates"
  "github.com/yungbote/storefront-backend/internal/platform/apierr"
)

type APIError struct {
  Message     string	`json:"message"`
  Code	      string	`json:"code,omitempty"`
}

type ErrorEnvelope struct {
  Error	      APIError	`json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
  msg := "unknown error"
  if err != nil {
    msg = err.Error()
  }
  c.JSON(status, ErrorEnvelope{
    Error: APIError{
      Message: msg,
      Code:    code,
    },
  })
}

// RespondAggregateError maps an aggregate error to its HTTP status and code.
func RespondAggregateError(c *gin.Context, err error) {
  code := domainagg.CodeOf(err)
  RespondError(c, apierr.FromCode(code), string(code), err)
}

func RespondOK(c *gin.Context, payload any) {
  c.JSON(http.StatusOK, payload)
}
