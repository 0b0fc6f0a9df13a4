package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	zlog "fitness-tracker/internal/core/logger"
	"fitness-tracker/internal/transport/http/middleware"
)

type Options struct {
	Name        string
	Mode        string // gin.ReleaseMode / gin.DebugMode / gin.TestMode
	CORSOrigins []string
	// TrustedProxies 为空时不信任任何代理头，ClientIP 取 RemoteAddr（按 IP 限速依赖它）
	TrustedProxies []string
}

// NewRouter 基础 engine：gin 模式、代理信任、CORS；其余中间件由各端自行挂载
func NewRouter(opt Options) *gin.Engine {
	if opt.Mode != "" {
		gin.SetMode(opt.Mode)
	}
	r := gin.New()
	_ = r.SetTrustedProxies(opt.TrustedProxies)
	r.Use(cors.New(corsConfig(opt.CORSOrigins)))
	return r
}

// corsConfig 未配置来源时放开所有来源但不带凭证
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.KeyRequestID},
		ExposeHeaders: []string{middleware.KeyRequestID},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

func BuildServer(addr string, handler http.Handler, rt, wt, it time.Duration, l *zap.Logger) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       rt,
		ReadHeaderTimeout: rt,
		WriteTimeout:      wt,
		IdleTimeout:       it,
		MaxHeaderBytes:    1 << 20,
	}
	if l != nil {
		if el, err := zlog.ToStdLogger(l, zapcore.ErrorLevel); err == nil {
			srv.ErrorLog = el
		}
	}
	return srv
}

func Addr(host string, port int) string { return fmt.Sprintf("%s:%d", host, port) }

// HumanURL 启动日志里打印可点击地址
func HumanURL(host string, port int) string {
	if host == "" || host == "0.0.0.0" {
		host = "127.0.0.1"
	}
	return fmt.Sprintf("http://%s:%d", host, port)
}
