// Package metrics provides Prometheus instrumentation for the catalog API.
//
// Metrics registered here:
//
//	catalog_http_requests_total            counter: requests by method/route/status
//	catalog_http_request_duration_seconds  histogram: latency by method/route
//	catalog_auth_events_total              counter: signup/login/refresh outcomes
//	catalog_movie_requests_total           counter: movie request lifecycle events
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "catalog_http_requests_total",
	Help: "Total HTTP requests handled.",
}, []string{"method", "route", "status"})

var HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "catalog_http_request_duration_seconds",
	Help:    "HTTP request latency in seconds.",
	Buckets: prometheus.DefBuckets,
}, []string{"method", "route"})

// AuthEvents counts auth events by type (signup, login, refresh) and result.
var AuthEvents = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "catalog_auth_events_total",
	Help: "Auth events by type.",
}, []string{"event", "result"})

// MovieRequestEvents counts created, approved and rejected movie requests.
var MovieRequestEvents = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "catalog_movie_requests_total",
	Help: "Movie request lifecycle events.",
}, []string{"event"})

// Middleware records request count and latency. The route label is the
// matched pattern, so ids do not blow up cardinality.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		HTTPRequests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler returns the Prometheus scrape handler for GET /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
