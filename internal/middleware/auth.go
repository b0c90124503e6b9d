package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/socialfeed/backend/internal/auth"
	"github.com/socialfeed/backend/internal/models"
)

// RequireAuth verifies the bearer token, resolves it to a user, and
// attaches the identity to the request context. Handlers behind it read
// "user" / "user_id" and never re-verify the token.
func RequireAuth(tokens *auth.TokenManager, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortUnauthorized(c)
			return
		}

		claims, err := tokens.Parse(parts[1])
		if err != nil {
			abortUnauthorized(c)
			return
		}

		var user models.User
		if err := db.First(&user, claims.UserID).Error; err != nil {
			abortUnauthorized(c)
			return
		}

		c.Set("user", user)
		c.Set("user_id", user.ID)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authorized"})
}
