package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pageza/foodgram/backend/internal/apperr"
	"github.com/pageza/foodgram/backend/internal/types"
)

// Context keys set by the auth middleware.
const (
	UserIDKey   = "user_id"
	UsernameKey = "username"
)

// TokenValidator is an interface for validating JWT tokens
type TokenValidator interface {
	ValidateToken(token string) (*types.TokenClaims, error)
}

// bearerToken extracts the token from "Bearer <token>" or "Token <token>".
// ok is false when the header is absent; err is set when it is malformed.
func bearerToken(c *gin.Context) (token string, ok bool, err error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false, nil
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || (parts[0] != "Bearer" && parts[0] != "Token") {
		return "", true, apperr.Unauthorized("invalid authorization header format")
	}
	return parts[1], true, nil
}

func authenticate(c *gin.Context, validator TokenValidator, required bool) bool {
	token, present, err := bearerToken(c)
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return false
	}
	if !present {
		if required {
			_ = c.Error(apperr.Unauthorized("authentication credentials were not provided"))
			c.Abort()
			return false
		}
		return true
	}

	claims, err := validator.ValidateToken(token)
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return false
	}

	c.Set(UserIDKey, claims.UserID)
	c.Set(UsernameKey, claims.Username)
	return true
}

// AuthMiddleware rejects requests without a valid token.
func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authenticate(c, validator, true) {
			c.Next()
		}
	}
}

// OptionalAuth identifies the caller when a token is sent and lets anonymous
// requests through. A malformed or invalid token is still rejected.
func OptionalAuth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authenticate(c, validator, false) {
			c.Next()
		}
	}
}

// CurrentUserID returns the authenticated user id, or zero for anonymous callers.
func CurrentUserID(c *gin.Context) uint {
	if v, ok := c.Get(UserIDKey); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}
