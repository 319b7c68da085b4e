package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipe-creator/backend/config"
	"github.com/pageza/recipe-creator/backend/internal/api"
	"github.com/pageza/recipe-creator/backend/internal/logger"
	"github.com/pageza/recipe-creator/backend/internal/metrics"
	"github.com/pageza/recipe-creator/backend/internal/service"
	"github.com/pageza/recipe-creator/backend/internal/testhelpers"
)

func TestSetupRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := testhelpers.SetupSQLite(t)
	log := logger.Discard()
	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	tokens := service.NewTokenService("test-secret", time.Hour)
	otp := service.NewOTPIssuer(db, &testhelpers.CaptureMailer{}, time.Minute, collector, log)
	r := SetupRouter(api.Services{
		DB:        db,
		Auth:      service.NewAuthService(db, service.NewBcryptHasher(0), tokens, otp, collector, log),
		Tokens:    tokens,
		Recipes:   service.NewRecipeService(db, &testhelpers.MockRecipeGenerator{}, service.NewTextSanitizer(), collector, log),
		Favorites: service.NewFavoriteService(db, log),
		Profiles:  service.NewProfileService(db, nil, log),
	}, Config{
		AllowedOrigins: []string{"http://localhost:5173"},
		API:            api.Options{Transport: config.TokenTransportCookie, Cookie: api.CookieConfig{MaxAge: time.Hour}},
		Metrics:        collector,
		Gatherer:       reg,
	}, log)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy","database":"ok"}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/recipes", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `recipe_http_requests_total{method="GET",route="/health",status_code="200"} 1`)
	assert.Contains(t, w.Body.String(), `route="/api/v1/recipes",status_code="401"`)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
