package ez

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fitness-tracker/internal/domain"
	mdw "fitness-tracker/internal/transport/http/middleware"
	resp "fitness-tracker/internal/transport/http/response"
)

// EZ 路由分组的轻封装，统一绑定 → 调用 → 错误映射 → 信封输出
type EZ struct {
	g   *gin.RouterGroup
	log *zap.Logger
}

func New(g *gin.RouterGroup, l *zap.Logger) EZ {
	if l == nil {
		l = zap.NewNop()
	}
	return EZ{g: g, log: l}
}

// 绑定方式
type Binder string

const (
	BindJSON  Binder = "json"  // 从 JSON 绑定
	BindQuery Binder = "query" // 从 URL ?a=b 绑定
	BindNone  Binder = "none"  // 不绑定，自己从 c.Param 取
)

// 动作定义：I 入参，O 出参
type Action[I any, O any] struct {
	Method  string   // "GET" | "POST" | "PUT" | "DELETE"
	Path    string   // 例："/auth/login"、"/workouts/:id/exercises"
	Binder  Binder   // 绑定方式
	Auth    bool     // 是否要求登录（检查 caller）
	Roles   []string // 限定角色（可选）
	Status  int      // 成功状态码，默认 200
	Handler func(c *gin.Context, in *I) (O, error)
}

// 在当前 EZ 下注册动作接口
func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	h := func(c *gin.Context) {
		// 1) 鉴权/角色
		if a.Auth {
			caller, ok := mdw.CallerFrom(c)
			if !ok {
				resp.Fail(c, resp.CodeUnauthorized, "unauthorized")
				return
			}
			if len(a.Roles) > 0 && !hasRole(caller.Role, a.Roles) {
				resp.Fail(c, resp.CodeForbidden, "forbidden")
				return
			}
		}

		// 2) 绑定入参
		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		default: // BindNone: 不绑定
		}
		if bindErr != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(bindErr, &tooLarge) {
				resp.Fail(c, resp.CodeTooLarge, "request body too large")
				return
			}
			resp.Fail(c, resp.CodeBadRequest, bindErr.Error())
			return
		}

		// 3) 执行
		out, err := a.Handler(c, &in)

		// 4) 统一错误映射
		if err != nil {
			code, msg := Map(err)
			if code >= resp.CodeServerError {
				e.log.Error("action failed",
					zap.String("rid", c.GetString(mdw.KeyRequestID)),
					zap.String("path", c.FullPath()),
					zap.Error(err),
				)
			}
			resp.Fail(c, code, msg)
			return
		}
		resp.Send(c, a.Status, out)
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, h)
	case http.MethodPut:
		e.g.PUT(a.Path, h)
	case http.MethodDelete:
		e.g.DELETE(a.Path, h)
	default: // 默认 POST
		e.g.POST(a.Path, h)
	}
}

// Map 业务错误类别 → 错误码 + 对外文案；Forbidden 与 NotFound 对外一致
func Map(err error) (int, string) {
	if errors.Is(err, context.DeadlineExceeded) {
		return resp.CodeTimeout, "timeout"
	}
	switch domain.KindOf(err) {
	case domain.KindValidation:
		return resp.CodeBadRequest, err.Error()
	case domain.KindAuth:
		return resp.CodeUnauthorized, err.Error()
	case domain.KindForbidden, domain.KindNotFound:
		return resp.CodeNotFound, err.Error()
	case domain.KindConflict:
		return resp.CodeConflict, err.Error()
	default:
		return resp.CodeServerError, "internal error"
	}
}

func hasRole(role string, roles []string) bool {
	for _, r := range roles {
		if role == r {
			return true
		}
	}
	return false
}

// Caller 受保护动作里取调用方（Auth=true 时必然存在）
func Caller(c *gin.Context) domain.Caller {
	caller, _ := mdw.CallerFrom(c)
	return caller
}
