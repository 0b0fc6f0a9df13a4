package middleware

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"

	resp "fitness-tracker/internal/transport/http/response"
)

// ConcurrencyLimit 同时在处理的请求数上限（保护 DB 连接池），满了立即 503 不排队
func ConcurrencyLimit(max int64) gin.HandlerFunc {
	sem := semaphore.NewWeighted(max)
	return func(c *gin.Context) {
		if !sem.TryAcquire(1) {
			httpRejected.WithLabelValues("busy").Inc()
			resp.Abort(c, resp.CodeUnavailable, "server busy")
			return
		}
		httpInflight.Inc()
		defer func() {
			httpInflight.Dec()
			sem.Release(1)
		}()
		c.Next()
	}
}
