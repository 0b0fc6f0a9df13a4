package router

import (
	"cmp"
	"slices"

	"github.com/gin-gonic/gin"
)

// APIModule 用户端模块：public 无需登录，authed 已挂鉴权中间件
type APIModule interface {
	MountAPI(public, authed *gin.RouterGroup)
}

// AdminModule 后台模块：组上已挂 admin 角色校验
type AdminModule interface{ MountAdmin(*gin.RouterGroup) }

// 可选：数值越小越先挂，不实现按 100
type prioritizer interface{ Priority() int }

// Registry 由 main 组装后只读；一个模块可同时实现两个接口
type Registry struct {
	api   []APIModule
	admin []AdminModule
}

func NewRegistry(mods ...any) *Registry {
	r := &Registry{}
	for _, m := range mods {
		r.Register(m)
	}
	return r
}

// Register 按实现的接口分别登记；两个都没实现的忽略
func (r *Registry) Register(mod any) {
	if m, ok := mod.(APIModule); ok {
		r.api = append(r.api, m)
	}
	if m, ok := mod.(AdminModule); ok {
		r.admin = append(r.admin, m)
	}
}

func (r *Registry) MountAPI(public, authed *gin.RouterGroup) {
	for _, m := range byPriority(r.api) {
		m.MountAPI(public, authed)
	}
}

func (r *Registry) MountAdmin(admin *gin.RouterGroup) {
	for _, m := range byPriority(r.admin) {
		m.MountAdmin(admin)
	}
}

// byPriority 稳定排序的副本，同优先级保持注册顺序
func byPriority[M any](mods []M) []M {
	out := slices.Clone(mods)
	slices.SortStableFunc(out, func(a, b M) int { return cmp.Compare(priorityOf(a), priorityOf(b)) })
	return out
}

func priorityOf(v any) int {
	if p, ok := v.(prioritizer); ok {
		return p.Priority()
	}
	return 100
}
