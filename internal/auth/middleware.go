package auth

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"groupsync/internal/logger"
	"groupsync/internal/services"

	"github.com/gin-gonic/gin"
)

const (
	actorKey = "actor"
	emailKey = "email"

	// InternalKeyHeader carries the shared secret for /internal routes
	InternalKeyHeader = "X-Internal-Key"
)

// Middleware verifies the bearer token and stores the actor in the context
func Middleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		claims, err := ValidateToken(secret, strings.TrimSpace(token))
		if err != nil {
			logger.Named("auth").Debugf("Rejected token: %v", err)
			message := "invalid token"
			if errors.Is(err, ErrExpiredToken) {
				message = "session expired, please log in again"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": message})
			return
		}

		c.Set(actorKey, services.Actor{UserID: claims.Subject})
		c.Set(emailKey, claims.Email)
		c.Next()
	}
}

// ActorFrom returns the actor stored by Middleware
func ActorFrom(c *gin.Context) (services.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return services.Actor{}, false
	}
	actor, ok := v.(services.Actor)
	return actor, ok && actor.UserID != ""
}

// EmailFrom returns the email claim of the token, if any
func EmailFrom(c *gin.Context) string {
	return c.GetString(emailKey)
}

// ServiceKey guards internal endpoints with a shared secret
func ServiceKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader(InternalKeyHeader)
		if key == "" || subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid service key"})
			return
		}
		c.Next()
	}
}
