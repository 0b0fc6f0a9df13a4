package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpReqTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "fitness", Name: "http_requests_total", Help: "Count of HTTP requests"},
		[]string{"server", "path", "method", "status"},
	)
	httpLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fitness",
			Name:      "http_request_duration_seconds",
			Help:      "Latency of HTTP requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"server", "path", "method"},
	)
	httpInflight = prometheus.NewGauge(
		prometheus.GaugeOpts{Namespace: "fitness", Name: "http_inflight_requests", Help: "Requests currently being handled"},
	)
	// 被保护类中间件拒绝的请求：busy / timeout / too_large / rate_limited
	httpRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "fitness", Name: "http_rejected_total", Help: "Requests rejected by protective middleware"},
		[]string{"reason"},
	)
)

func init() { prometheus.MustRegister(httpReqTotal, httpLatency, httpInflight, httpRejected) }

// Metrics server 区分用户端 / 管理端
func Metrics(server string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpReqTotal.WithLabelValues(server, path, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		httpLatency.WithLabelValues(server, path, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}
