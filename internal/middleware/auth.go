package middleware

import (
  "errors"
  "net/http"
  "strings"
  "github.com/gin-gonic/gin"
  "github.com/golang-jwt/jwt/v5"
  "github.com/google/uuid"
  "github.com/yungbote/storefront-backend/internal/platform/logger"
  "github.com/yungbote/storefront-backend/internal/requestdata"
)

type AuthMiddleware struct {
  log          *logger.Logger
  jwtSecretKey string
}

func NewAuthMiddleware(log *logger.Logger, jwtSecretKey string) *AuthMiddleware {
  middlewareLogger := log.With("Middleware", "AuthMiddleware")
  return &AuthMiddleware{log: middlewareLogger, jwtSecretKey: jwtSecretKey}
}

// RequireAuth rejects requests without a valid bearer token.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
  return func(c *gin.Context) {
    tokenString := extractToken(c)
    if tokenString == "" {
      c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
      return
    }
    userID, err := am.parseToken(tokenString)
    if err != nil {
      c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
      return
    }
    rd := &requestdata.RequestData{TokenString: tokenString, UserID: userID}
    c.Request = c.Request.WithContext(requestdata.WithRequestData(c.Request.Context(), rd))
    c.Next()
  }
}

// Identity resolves the caller as an authenticated user when a valid token is
// present, otherwise as a guest via the session header or cookie. Requests
// with neither are rejected; cart ownership needs one of the two.
func (am *AuthMiddleware) Identity() gin.HandlerFunc {
  return func(c *gin.Context) {
    rd := &requestdata.RequestData{}
    if tokenString := extractToken(c); tokenString != "" {
      userID, err := am.parseToken(tokenString)
      if err != nil {
        c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
        return
      }
      rd.TokenString = tokenString
      rd.UserID = userID
    } else {
      rd.SessionID = extractSessionID(c)
    }
    if rd.UserID == uuid.Nil && rd.SessionID == "" {
      c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing user token or session id"})
      return
    }
    c.Request = c.Request.WithContext(requestdata.WithRequestData(c.Request.Context(), rd))
    c.Next()
  }
}

func (am *AuthMiddleware) parseToken(tokenString string) (uuid.UUID, error) {
  parsedToken, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
    return []byte(am.jwtSecretKey), nil
  })
  if err != nil {
    am.log.Debug("token parse failed", "error", err)
    return uuid.Nil, errInvalidToken
  }
  claims, ok := parsedToken.Claims.(*jwt.RegisteredClaims)
  if !ok || !parsedToken.Valid {
    return uuid.Nil, errInvalidToken
  }
  userID, err := uuid.Parse(claims.Subject)
  if err != nil {
    return uuid.Nil, errInvalidToken
  }
  return userID, nil
}

var errInvalidToken = errors.New("invalid or expired token")

func extractToken(c *gin.Context) string {
  authHeader := c.GetHeader("Authorization")
  if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
    return authHeader[7:]
  }
  return ""
}

func extractSessionID(c *gin.Context) string {
  if sid := strings.TrimSpace(c.GetHeader("X-Session-ID")); sid != "" {
    return sid
  }
  if sid, err := c.Cookie("session_id"); err == nil {
    return strings.TrimSpace(sid)
  }
  return ""
}
