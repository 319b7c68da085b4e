package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordAuthEvent("login", "otp_required")
	c.RecordAuthEvent("login", "otp_required")
	c.RecordOTPDispatch(false)
	c.RecordGeneration(true, 2*time.Second)
	c.RecordHTTPRequest("GET", "/api/v1/recipes", 200, 10*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.authEvents.WithLabelValues("login", "otp_required")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.otpDispatch.WithLabelValues("failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.generations.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.httpRequests.WithLabelValues("GET", "/api/v1/recipes", "200")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordOTPDispatch(true)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `recipe_otp_dispatch_total{result="success"} 1`)
}

func TestNopSatisfiesRecorder(t *testing.T) {
	var r Recorder = Nop{}
	r.RecordGeneration(false, time.Second)
}
