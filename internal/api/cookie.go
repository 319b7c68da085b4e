package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipe-creator/backend/internal/middleware"
)

// CookieConfig controls the session cookie.
type CookieConfig struct {
	Domain string
	Secure bool
	MaxAge time.Duration
}

func (cc CookieConfig) sameSite() http.SameSite {
	// Cross-site browsers only send SameSite=None cookies over TLS.
	if cc.Secure {
		return http.SameSiteNoneMode
	}
	return http.SameSiteStrictMode
}

func (cc CookieConfig) set(c *gin.Context, token string) {
	c.SetSameSite(cc.sameSite())
	c.SetCookie(middleware.CookieName, token, int(cc.MaxAge.Seconds()), "/", cc.Domain, cc.Secure, true)
}

func (cc CookieConfig) clear(c *gin.Context) {
	c.SetSameSite(cc.sameSite())
	c.SetCookie(middleware.CookieName, "", -1, "/", cc.Domain, cc.Secure, true)
}
