package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ganliai/insight/pkg/auth"
)

const (
	ContextUserID   = "user_id"
	ContextTenantID = "tenant_id"
)

// Auth resolves the bearer token into {user, tenant} and rejects any request
// without a resolved tenant before it reaches a handler.
func Auth(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authorization := c.GetHeader("Authorization")
		if authorization == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization"})
			return
		}
		parts := strings.SplitN(authorization, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization"})
			return
		}

		claims, err := tokens.Validate(strings.TrimSpace(parts[1]))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		if claims.TenantID == 0 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "user has no tenant"})
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextTenantID, claims.TenantID)
		c.Next()
	}
}

// UserID reads the authenticated user from the request context.
func UserID(c *gin.Context) uint {
	value, _ := c.Get(ContextUserID)
	id, _ := value.(uint)
	return id
}

// TenantID reads the authenticated tenant from the request context.
func TenantID(c *gin.Context) uint {
	value, _ := c.Get(ContextTenantID)
	id, _ := value.(uint)
	return id
}
