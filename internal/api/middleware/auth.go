package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/inocenciorjr/MEDBRAVE.APP-sub007/internal/auth"
)

// ContextKeyMentorID holds the key for the mentor ID in Gin context.
const ContextKeyMentorID = "mentorID"

// AuthMiddleware creates a Gin middleware for JWT authentication. Every
// financial route runs behind it; handlers read the mentor ID from the
// context and never from request input.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}"})
			return
		}

		claims, err := auth.ValidateJWT(parts[1], jwtSecret)
		if err != nil {
			errMsg := fmt.Sprintf("Invalid or expired token: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errMsg})
			return
		}

		mentorID, err := uuid.Parse(claims.MentorID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid mentor ID in token"})
			return
		}

		c.Set(ContextKeyMentorID, mentorID)
		c.Next()
	}
}

// MentorID extracts the authenticated mentor's ID from the Gin context.
func MentorID(c *gin.Context) (uuid.UUID, bool) {
	val, exists := c.Get(ContextKeyMentorID)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := val.(uuid.UUID)
	return id, ok
}
