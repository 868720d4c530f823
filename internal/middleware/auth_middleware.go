package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"feedbackhub/internal/model"
	"feedbackhub/internal/policy"
	"feedbackhub/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Context keys set by the authentication middlewares
const (
	UserIDKey = "user_id"
	UserKey   = "user"
	CallerKey = "caller"
)

// TokenParser validates a bearer token and returns its user id claim.
type TokenParser interface {
	ParseToken(tokenStr string) (string, error)
}

// UserLoader loads the current state of a user.
type UserLoader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// JWTAuthMiddleware requires a valid bearer token and stores the user id
// under UserIDKey.
func JWTAuthMiddleware(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}"})
			return
		}

		rawUserID, err := tokens.ParseToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		userID, err := uuid.Parse(rawUserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid user ID in token"})
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// LoadCaller resolves the authenticated user on every request so that role
// and identity are current, and stores it under UserKey and CallerKey.
func LoadCaller(users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := c.Get(UserIDKey)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}

		user, err := users.GetByID(c.Request.Context(), userID.(uuid.UUID))
		if errors.Is(err, repository.ErrUserNotFound) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User no longer exists"})
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
			return
		}

		c.Set(UserKey, user)
		c.Set(CallerKey, policy.CallerFrom(user))
		c.Next()
	}
}

// CallerFrom returns the caller stored by LoadCaller.
func CallerFrom(c *gin.Context) (policy.Caller, bool) {
	v, ok := c.Get(CallerKey)
	if !ok {
		return policy.Caller{}, false
	}
	caller, ok := v.(policy.Caller)
	return caller, ok
}
