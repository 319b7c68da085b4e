package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipe-creator/backend/internal/logger"
	"github.com/pageza/recipe-creator/backend/internal/metrics"
)

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := logger.Setup(&buf, "debug")
	reg := prometheus.NewRegistry()

	r := gin.New()
	r.Use(RequestLogger(log, metrics.NewCollector(reg)))
	r.GET("/recipes/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/recipes/abc", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	assert.Contains(t, buf.String(), `"route":"/recipes/:id"`)
	assert.Contains(t, buf.String(), `"status":404`)
	assert.Contains(t, buf.String(), `"level":"WARN"`)

	count, err := testutil.GatherAndCount(reg, "recipe_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
