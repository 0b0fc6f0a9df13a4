package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fitness-tracker/internal/domain"
	"fitness-tracker/internal/service"
	httpez "fitness-tracker/internal/transport/http/ez"
)

// AuthHandler 注册、登录与 /me
type AuthHandler struct {
	auth  *service.AuthService
	users *service.UserService
	log   *zap.Logger
}

func NewAuthHandler(auth *service.AuthService, users *service.UserService, l *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, users: users, log: l}
}

func (h *AuthHandler) Priority() int { return 10 }

func (h *AuthHandler) MountAPI(public, authed *gin.RouterGroup) {
	ezPublic := httpez.New(public, h.log)

	httpez.RegisterAction(ezPublic, httpez.Action[service.RegisterInput, *service.Session]{
		Method: http.MethodPost,
		Path:   "/auth/register",
		Binder: httpez.BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *service.RegisterInput) (*service.Session, error) {
			return h.auth.Register(c.Request.Context(), *in)
		},
	})

	httpez.RegisterAction(ezPublic, httpez.Action[service.LoginInput, *service.Session]{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *service.LoginInput) (*service.Session, error) {
			return h.auth.Login(c.Request.Context(), *in)
		},
	})

	// /me 必须挂在带鉴权中间件的分组
	ezAuth := httpez.New(authed, h.log)

	httpez.RegisterAction(ezAuth, httpez.Action[struct{}, *domain.User]{
		Method: http.MethodGet,
		Path:   "/me",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.User, error) {
			return h.users.Get(c.Request.Context(), httpez.Caller(c).UserID)
		},
	})

	httpez.RegisterAction(ezAuth, httpez.Action[domain.UserPatch, *domain.User]{
		Method: http.MethodPut,
		Path:   "/me",
		Binder: httpez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *domain.UserPatch) (*domain.User, error) {
			return h.users.Update(c.Request.Context(), httpez.Caller(c).UserID, *in)
		},
	})

	httpez.RegisterAction(ezAuth, httpez.Action[struct{}, gin.H]{
		Method: http.MethodDelete,
		Path:   "/me",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			id := httpez.Caller(c).UserID
			if err := h.users.Delete(c.Request.Context(), id); err != nil {
				return nil, err
			}
			return gin.H{"id": id}, nil
		},
	})
}
