package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pageza/recipe-creator/backend/config"
	"github.com/pageza/recipe-creator/backend/internal/middleware"
	"github.com/pageza/recipe-creator/backend/internal/service"
)

// Services is everything the HTTP layer calls into.
type Services struct {
	DB        *gorm.DB
	Auth      *service.AuthService
	Tokens    middleware.TokenVerifier
	Recipes   *service.RecipeService
	Favorites *service.FavoriteService
	Profiles  *service.ProfileService
	// Limiter guards recipe generation; nil disables it.
	Limiter *middleware.RateLimiter
}

// Options carries the transport settings of the deployment.
type Options struct {
	Transport config.TokenTransport
	Cookie    CookieConfig
}

// SetupAPI registers every /api/v1 route on router.
func SetupAPI(router *gin.Engine, svc Services, opts Options, log *slog.Logger) {
	v1 := router.Group("/api/v1")

	NewAuthHandler(svc.Auth, opts.Cookie, log).RegisterRoutes(v1)

	protected := v1.Group("")
	protected.Use(
		middleware.AuthMiddleware(svc.Tokens, opts.Transport),
		middleware.RequireVerifiedAccount(svc.DB, log),
	)
	NewUserHandler(svc.Profiles, opts.Cookie, log).RegisterRoutes(protected)
	NewRecipeHandler(svc.Recipes, svc.Favorites, svc.Limiter, log).RegisterRoutes(protected)
	NewFavoriteHandler(svc.Favorites, log).RegisterRoutes(protected)
}
