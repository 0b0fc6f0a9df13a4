package router

import (
	"time"

	"github.com/gin-gonic/gin"

	mdw "fitness-tracker/internal/transport/http/middleware"
)

// NewAPIEngine 用户端：/api/v1
func NewAPIEngine(d Deps, reg *Registry) *gin.Engine {
	r := base(d, "api")

	api := r.Group("/api/v1")
	api.Use(mdw.RateLimitPerIP(20, 40, 10*time.Minute))

	// 鉴权分组（/me 等必须挂这里，才能拿到 caller）
	authed := api.Group("")
	authed.Use(mdw.AuthJWT(d.Services.Auth, ""))

	reg.MountAPI(api, authed)
	return r
}
