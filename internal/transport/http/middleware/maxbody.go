package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	resp "fitness-tracker/internal/transport/http/response"
)

// MaxBodyBytes 声明长度超限直接 413；未声明（chunked）的由 MaxBytesReader 截断，ez 绑定时报 413
func MaxBodyBytes(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body == nil || c.Request.Body == http.NoBody {
			c.Next()
			return
		}
		if c.Request.ContentLength > n {
			httpRejected.WithLabelValues("too_large").Inc()
			resp.Abort(c, resp.CodeTooLarge, "request body too large")
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}
