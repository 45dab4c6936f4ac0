package httpserver

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authsvc "storefront/internal/service/auth"
)

const headerRequestID = "X-Request-ID"

type ctxKey string

const userCtxKey ctxKey = "auth_claims"

// requestIDMiddleware echoes the caller's request id, or assigns one.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(headerRequestID, id)
		c.Next()
	}
}

// authMiddleware requires a valid bearer access token and stores its claims
// in the request context.
func authMiddleware(svc authService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Authentication credentials were not provided."})
			return
		}
		parts := strings.Fields(header)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Authorization header must be a bearer token."})
			return
		}
		claims, err := svc.Authenticate(c.Request.Context(), parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Given token not valid for any token type"})
			return
		}
		ctx := context.WithValue(c.Request.Context(), userCtxKey, claims)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// requireSeller must run after authMiddleware.
func requireSeller() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := claimsFrom(c)
		if claims == nil || claims.UserType != "seller" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": "Seller account required."})
			return
		}
		c.Next()
	}
}

func claimsFrom(c *gin.Context) *authsvc.Claims {
	claims, _ := c.Request.Context().Value(userCtxKey).(*authsvc.Claims)
	return claims
}
