package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/okrhub/okrhub/backend/internal/services"
	"github.com/okrhub/okrhub/backend/internal/utils"
	"github.com/okrhub/okrhub/backend/pkg/logger"
)

const (
	ContextUID      = "uid"
	ContextUsername = "username"
	ContextEmail    = "email"
)

// AuthRequired verifies the bearer token issued by the external identity
// provider and provisions the profile row the first time an identity is
// seen. profiles may be nil in tests that only exercise token handling.
func AuthRequired(profiles *services.ProfileService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}

		claims, err := utils.ParseToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}

		username := claims.Username
		if username == "" {
			username = claims.UID
		}

		if profiles != nil {
			if _, err := profiles.EnsureProfile(claims.UID, claims.Email, username); err != nil {
				logger.Error().Err(err).Str("uid", claims.UID).Msg("profile provisioning failed")
				c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to complete"})
				c.Abort()
				return
			}
		}

		c.Set(ContextUID, claims.UID)
		c.Set(ContextUsername, username)
		c.Set(ContextEmail, claims.Email)

		c.Next()
	}
}

// GetUID gets the current user's uid from context
func GetUID(c *gin.Context) string {
	if uid, exists := c.Get(ContextUID); exists {
		return uid.(string)
	}
	return ""
}

// GetUsername gets the current username from context
func GetUsername(c *gin.Context) string {
	if username, exists := c.Get(ContextUsername); exists {
		return username.(string)
	}
	return ""
}

// GetEmail gets the current user's email from context
func GetEmail(c *gin.Context) string {
	if email, exists := c.Get(ContextEmail); exists {
		return email.(string)
	}
	return ""
}
