package router

import (
	"github.com/gin-gonic/gin"

	"fitness-tracker/internal/domain"
	mdw "fitness-tracker/internal/transport/http/middleware"
)

// NewAdminEngine 管理端：/admin/v1，统一要求 admin 角色
func NewAdminEngine(d Deps, reg *Registry) *gin.Engine {
	r := base(d, "admin")

	admin := r.Group("/admin/v1")
	admin.Use(mdw.AuthJWT(d.Services.Auth, domain.RoleAdmin))

	reg.MountAdmin(admin)
	return r
}
