package server

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "antigravity_proxy_requests_total",
		Help: "HTTP requests handled, by route and status code.",
	}, []string{"path", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "antigravity_proxy_request_duration_seconds",
		Help:    "End-to-end request latency, streaming included.",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
	}, []string{"path"})

	activeStreams = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "antigravity_proxy_active_streams",
		Help: "SSE responses currently being relayed.",
	})
)

func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		c.Next()
		requestsTotal.WithLabelValues(path, strconv.Itoa(c.Writer.Status())).Inc()
		requestDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	}
}
