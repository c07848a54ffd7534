package utils

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// StaffMiddleware requires a valid access token. When roles are given the token's
// role must be one of them. The user id and role are stored as "user_id" and "user_role".
func StaffMiddleware(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Authorization header required"})
			return
		}

		claims, err := claimsFromHeader(authHeader)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": err.Error()})
			return
		}

		role, ok := claims["user_role"].(string)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "role not found in token"})
			return
		}
		if len(roles) > 0 && !contains(roles, role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "error": "Forbidden"})
			return
		}

		idFloat, ok := claims["id"].(float64)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid token ID"})
			return
		}

		c.Set("user_id", uint(idFloat))
		c.Set("user_role", role)
		c.Next()
	}
}

func claimsFromHeader(authHeader string) (map[string]interface{}, error) {
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return nil, errors.New("invalid token format")
	}
	return ValidateToken(strings.TrimPrefix(authHeader, "Bearer "))
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
