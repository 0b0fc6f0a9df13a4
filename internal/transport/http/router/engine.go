package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"fitness-tracker/internal/core/server"
	"fitness-tracker/internal/service"
	mdw "fitness-tracker/internal/transport/http/middleware"
	resp "fitness-tracker/internal/transport/http/response"
)

// Deps 构建 engine 所需依赖
type Deps struct {
	Log      *zap.Logger
	Services *service.Services
	Server   server.Options
	// Health 可选的就绪检查（如 DB ping），失败时 /health 返回 503
	Health func(ctx context.Context) error
}

func base(d Deps, name string) *gin.Engine {
	r := server.NewRouter(d.Server)
	r.Use(
		mdw.RequestID(),
		mdw.Recovery(d.Log),
		mdw.RateLimit(200, 400),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(1<<20),
		mdw.Timeout(10*time.Second),
		mdw.Metrics(name),
		mdw.AccessLog(d.Log),
	)

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		if d.Health != nil {
			if err := d.Health(c.Request.Context()); err != nil {
				d.Log.Warn("health check failed", zap.Error(err))
				resp.Abort(c, resp.CodeUnavailable, "unhealthy")
				return
			}
		}
		c.JSON(http.StatusOK, resp.OK(gin.H{"status": "healthy"}))
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.NoRoute(func(c *gin.Context) { resp.Abort(c, resp.CodeNotFound, "") })
	return r
}
