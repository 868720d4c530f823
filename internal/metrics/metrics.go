package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Feedback metrics
	UpvoteTogglesTotal *prometheus.CounterVec
	SummaryDuration    prometheus.Histogram
	RefreshRotations   *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "feedbackhub_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "feedbackhub_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		UpvoteTogglesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "feedbackhub_upvote_toggles_total",
				Help: "Total number of upvote toggles by resulting state",
			},
			[]string{"action"},
		),
		SummaryDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "feedbackhub_summary_duration_seconds",
				Help:    "Time spent computing feedback summaries",
				Buckets: prometheus.DefBuckets,
			},
		),
		RefreshRotations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "feedbackhub_refresh_rotations_total",
				Help: "Total number of refresh token rotations by outcome",
			},
			[]string{"outcome"},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.UpvoteTogglesTotal,
		m.SummaryDuration,
		m.RefreshRotations,
	)

	return m
}

// ObserveToggle records the state an upvote toggle left behind.
func (m *Metrics) ObserveToggle(upvoted bool) {
	action := "removed"
	if upvoted {
		action = "added"
	}
	m.UpvoteTogglesTotal.WithLabelValues(action).Inc()
}

// ObserveRefresh records the outcome of a refresh token rotation.
func (m *Metrics) ObserveRefresh(ok bool) {
	outcome := "rejected"
	if ok {
		outcome = "rotated"
	}
	m.RefreshRotations.WithLabelValues(outcome).Inc()
}

// ObserveSummary records how long a summary took since start.
func (m *Metrics) ObserveSummary(start time.Time) {
	m.SummaryDuration.Observe(time.Since(start).Seconds())
}

// GinMiddleware records request counts and latency. Paths are labelled by
// route template so ids do not blow up cardinality.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus exposition format.
func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
