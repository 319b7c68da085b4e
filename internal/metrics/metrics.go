// Package metrics exposes Prometheus counters for authentication, OTP
// delivery, recipe generation and HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what services and middleware report to.
type Recorder interface {
	RecordAuthEvent(event, outcome string)
	RecordOTPDispatch(success bool)
	RecordGeneration(success bool, duration time.Duration)
	RecordHTTPRequest(method, route string, status int, duration time.Duration)
}

// Collector is the Prometheus-backed Recorder.
type Collector struct {
	authEvents   *prometheus.CounterVec
	otpDispatch  *prometheus.CounterVec
	generations  *prometheus.CounterVec
	genLatency   prometheus.Histogram
	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
}

// NewCollector creates a Collector and registers it with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		authEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recipe_auth_events_total",
			Help: "Authentication workflow events by event and outcome.",
		}, []string{"event", "outcome"}),
		otpDispatch: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recipe_otp_dispatch_total",
			Help: "OTP emails handed to the mail transport.",
		}, []string{"result"}),
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recipe_generations_total",
			Help: "Recipe generation calls to the language model.",
		}, []string{"result"}),
		genLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "recipe_generation_latency_seconds",
			Help:    "Latency of recipe generation calls.",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80},
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recipe_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status_code"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "recipe_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		c.authEvents,
		c.otpDispatch,
		c.generations,
		c.genLatency,
		c.httpRequests,
		c.httpLatency,
	)
	return c
}

func (c *Collector) RecordAuthEvent(event, outcome string) {
	c.authEvents.WithLabelValues(event, outcome).Inc()
}

func (c *Collector) RecordOTPDispatch(success bool) {
	c.otpDispatch.WithLabelValues(result(success)).Inc()
}

func (c *Collector) RecordGeneration(success bool, duration time.Duration) {
	c.generations.WithLabelValues(result(success)).Inc()
	c.genLatency.Observe(duration.Seconds())
}

func (c *Collector) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpLatency.WithLabelValues(method, route).Observe(duration.Seconds())
}

func result(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordAuthEvent(string, string) {}
func (Nop) RecordOTPDispatch(bool) {}
func (Nop) RecordGeneration(bool, time.Duration) {}
func (Nop) RecordHTTPRequest(string, string, int, time.Duration) {}
