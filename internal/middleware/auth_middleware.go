package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"taskboard/internal/auth"
)

// UserIDKey holds the authenticated uuid.UUID in the gin context.
const UserIDKey = "userID"

func JWTAuthMiddleware(secret string) gin.HandlerFunc {
	return WithIssuer(auth.NewTokenIssuer(secret, 0))
}

// WithIssuer authenticates requests with "Authorization: Bearer <token>".
func WithIssuer(issuer *auth.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}
		token, ok := bearer(header)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}"})
			return
		}

		userID, err := issuer.Parse(token)
		if err != nil {
			msg := "Invalid or expired token"
			if errors.Is(err, auth.ErrInvalidUserID) {
				msg = "Invalid user ID in token"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// StreamUser authenticates an event stream request. Browsers cannot set
// headers on EventSource, so the token may also come as ?token=.
func StreamUser(issuer *auth.TokenIssuer) func(c *gin.Context) (uuid.UUID, bool) {
	return func(c *gin.Context) (uuid.UUID, bool) {
		token, ok := bearer(c.GetHeader("Authorization"))
		if !ok {
			token = c.Query("token")
		}
		if token == "" {
			return uuid.Nil, false
		}
		userID, err := issuer.Parse(token)
		if err != nil {
			return uuid.Nil, false
		}
		return userID, true
	}
}

func bearer(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
