package middleware

import (
	"net/http"
	"strings"

	"reward_platform/internal/service"

	"github.com/gin-gonic/gin"
)

// JWT extracts the bearer token and puts account_id and role into the
// request context.
func JWT() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		accountID, role, err := service.ParseJWT(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set("account_id", accountID)
		c.Set("role", role)
		c.Next()
	}
}

// AdminOnly must run after JWT.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("role") != "admin" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}

// AccountID reads the authenticated account id set by JWT.
func AccountID(c *gin.Context) int64 {
	return c.GetInt64("account_id")
}
