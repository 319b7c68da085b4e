package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/recipe-creator/backend/config"
	"github.com/pageza/recipe-creator/backend/internal/types"
)

const (
	// CookieName is the cookie carrying the session token.
	CookieName = "token"

	userIDKey = "user_id"
	emailKey  = "email"
)

// TokenVerifier is an interface for validating session tokens
type TokenVerifier interface {
	Verify(token string) (*types.TokenClaims, error)
}

// AuthMiddleware creates a middleware that validates session tokens. The
// token is read from the cookie and the Authorization header, the source
// named by preferred first.
func AuthMiddleware(verifier TokenVerifier, preferred config.TokenTransport) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c, preferred)
		if token == "" {
			abortJSON(c, http.StatusUnauthorized, "token_invalid", "authentication required")
			return
		}

		claims, err := verifier.Verify(token)
		if err != nil {
			abortJSON(c, http.StatusUnauthorized, "token_invalid", "invalid or expired token")
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Set(emailKey, claims.Email)
		c.Next()
	}
}

func tokenFromRequest(c *gin.Context, preferred config.TokenTransport) string {
	fromCookie := func() string {
		v, err := c.Cookie(CookieName)
		if err != nil {
			return ""
		}
		return v
	}
	fromHeader := func() string {
		h := c.GetHeader("Authorization")
		if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
			return strings.TrimSpace(h[7:])
		}
		return ""
	}

	sources := []func() string{fromCookie, fromHeader}
	if preferred == config.TokenTransportHeader {
		sources = []func() string{fromHeader, fromCookie}
	}
	for _, src := range sources {
		if v := src(); v != "" {
			return v
		}
	}
	return ""
}

// UserID returns the authenticated user's id.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok && id != uuid.Nil
}

func abortJSON(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": code, "message": message})
}
