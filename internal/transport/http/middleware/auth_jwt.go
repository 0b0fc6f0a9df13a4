package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"fitness-tracker/internal/domain"
	resp "fitness-tracker/internal/transport/http/response"
)

const (
	KeyUserID = "userId"
	KeyRole   = "role"
	keyCaller = "caller"
)

// TokenVerifier 把 bearer token 解析为调用方（由鉴权服务实现）
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (domain.Caller, error)
}

// AuthJWT 解析 Authorization: Bearer <token>；requireRole 非空时还要求角色匹配
func AuthJWT(v TokenVerifier, requireRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if !strings.HasPrefix(ah, "Bearer ") {
			resp.Abort(c, resp.CodeUnauthorized, "missing token")
			return
		}
		caller, err := v.Verify(c.Request.Context(), strings.TrimSpace(strings.TrimPrefix(ah, "Bearer ")))
		if err != nil {
			if domain.Is(err, domain.KindAuth) {
				resp.Abort(c, resp.CodeUnauthorized, "invalid token")
				return
			}
			_ = c.Error(err)
			resp.Abort(c, resp.CodeServerError, "internal error")
			return
		}
		if requireRole != "" && caller.Role != requireRole {
			resp.Abort(c, resp.CodeForbidden, "forbidden")
			return
		}
		SetCaller(c, caller)
		c.Next()
	}
}

func SetCaller(c *gin.Context, caller domain.Caller) {
	c.Set(keyCaller, caller)
	c.Set(KeyUserID, caller.UserID)
	c.Set(KeyRole, caller.Role)
}

func CallerFrom(c *gin.Context) (domain.Caller, bool) {
	v, ok := c.Get(keyCaller)
	if !ok {
		return domain.Caller{}, false
	}
	caller, ok := v.(domain.Caller)
	return caller, ok && caller.UserID != ""
}
