package router

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pageza/recipe-creator/backend/internal/api"
	"github.com/pageza/recipe-creator/backend/internal/database"
	"github.com/pageza/recipe-creator/backend/internal/metrics"
	"github.com/pageza/recipe-creator/backend/internal/middleware"
)

// Config is what the router needs besides the services.
type Config struct {
	AllowedOrigins []string
	API            api.Options
	Metrics        metrics.Recorder
	// Gatherer backs /metrics; nil leaves the endpoint out.
	Gatherer prometheus.Gatherer
}

// SetupRouter configures the application routes
func SetupRouter(svc api.Services, cfg Config, log *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.Recovery(log),
		middleware.RequestLogger(log, cfg.Metrics),
		middleware.CORS(cfg.AllowedOrigins),
	)

	router.GET("/health", healthCheck(svc, log))
	if cfg.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(metrics.Handler(cfg.Gatherer)))
	}

	api.SetupAPI(router, svc, cfg.API, log)
	return router
}

func healthCheck(svc api.Services, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := database.HealthCheck(ctx, svc.DB); err != nil {
			log.Error("health check failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "database": "unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "database": "ok"})
	}
}
