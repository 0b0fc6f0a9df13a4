package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	resp "fitness-tracker/internal/transport/http/response"
)

// Timeout 请求上下文截止时间；仓储层 WithContext 感知后返回 DeadlineExceeded，
// handler 未写响应时在此补 504
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
		if !errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return
		}
		httpRejected.WithLabelValues("timeout").Inc()
		if !c.Writer.Written() {
			resp.Abort(c, resp.CodeTimeout, "timeout")
		}
	}
}
