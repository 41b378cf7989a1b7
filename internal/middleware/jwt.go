package middleware

import (
	"net/http" // HTTP status codes
	"strings"  // Header parsing

	"brokerage_system/internal/utils" // JWT helpers

	"github.com/gin-gonic/gin" // Gin web framework
)

// JWTAuthMiddleware validates the bearer token and stores the
// request-scoped user identity in the gin context.
func JWTAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := utils.ParseJWT(tokenStr, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		c.Set("userID", claims.UserID) // Request-scoped identity, never ambient
		c.Next()
	}
}
