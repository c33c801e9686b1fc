package middleware

import (
	"net/http"
	"strings"

	"talaam-backend/internal/services"
	"talaam-backend/internal/workflow"

	"github.com/gin-gonic/gin"
)

func JWTAuth(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			return
		}

		userID, role, err := authService.ValidateToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set("user_id", userID)
		c.Set("role", string(role))
		c.Next()
	}
}

// RequireRole gates a route group to the given roles. Admins pass every gate.
func RequireRole(roles ...workflow.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		current := workflow.Role(c.GetString("role"))
		if current == workflow.RoleAdmin {
			c.Next()
			return
		}
		for _, r := range roles {
			if current == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
	}
}

// CronAuth guards scheduled endpoints with a static bearer token.
func CronAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "cron endpoint not configured"})
			return
		}
		header := c.GetHeader("Authorization")
		if header != "Bearer "+secret {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid cron token"})
			return
		}
		c.Next()
	}
}
