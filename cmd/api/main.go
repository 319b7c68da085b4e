package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/pageza/recipe-creator/backend/config"
	"github.com/pageza/recipe-creator/backend/internal/api"
	"github.com/pageza/recipe-creator/backend/internal/database"
	"github.com/pageza/recipe-creator/backend/internal/logger"
	"github.com/pageza/recipe-creator/backend/internal/metrics"
	"github.com/pageza/recipe-creator/backend/internal/middleware"
	"github.com/pageza/recipe-creator/backend/internal/router"
	"github.com/pageza/recipe-creator/backend/internal/server"
	"github.com/pageza/recipe-creator/backend/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Setup(os.Stderr, "info").Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	log := logger.SetupDefault(os.Stdout, cfg.LogLevel)
	if err := run(cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Environment.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := database.Migrate(db, cfg.DatabaseURL(), log); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	var mailer service.Mailer
	if cfg.SMTPConfigured() {
		mailer = service.NewSMTPMailer(service.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		})
	} else {
		log.Warn("SMTP is not configured, OTP emails will be logged")
		mailer = service.NewLogMailer(log)
	}

	var images service.ImageStore
	s3Config, err := config.NewS3Config(ctx, cfg)
	if err != nil {
		return err
	}
	if s3Config != nil {
		images = service.NewS3ImageStore(s3Config)
	} else {
		log.Warn("S3_BUCKET_NAME is not set, profile image uploads are disabled")
	}

	var limiter *middleware.RateLimiter
	redisClient, err := database.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Warn("redis unavailable, recipe generation is not rate limited", "error", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
		if cfg.GenerateRateLimit > 0 {
			limiter = middleware.NewGenerationRateLimiter(redisClient, cfg.GenerateRateLimit, cfg.GenerateRateWindow, log)
		}
	}

	tokens := service.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	otp := service.NewOTPIssuer(db, mailer, cfg.OTPTTL, collector, log)
	svc := api.Services{
		DB:        db,
		Auth:      service.NewAuthService(db, service.NewBcryptHasher(0), tokens, otp, collector, log),
		Tokens:    tokens,
		Recipes:   service.NewRecipeService(db, service.NewLLMService(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel), service.NewTextSanitizer(), collector, log),
		Favorites: service.NewFavoriteService(db, log),
		Profiles:  service.NewProfileService(db, images, log),
		Limiter:   limiter,
	}

	handler := router.SetupRouter(svc, router.Config{
		AllowedOrigins: cfg.AllowedOrigins,
		API: api.Options{
			Transport: cfg.TokenTransport,
			Cookie: api.CookieConfig{
				Domain: cfg.CookieDomain,
				Secure: cfg.CookieSecure,
				MaxAge: cfg.TokenTTL,
			},
		},
		Metrics:  collector,
		Gatherer: reg,
	}, log)

	log.Info("starting server", "env", cfg.Environment, "addr", cfg.Addr(), "token_transport", cfg.TokenTransport)
	return server.New(cfg.Addr(), handler, cfg.ShutdownTimeout, log).Run(ctx)
}
