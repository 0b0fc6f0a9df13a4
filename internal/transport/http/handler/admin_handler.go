package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fitness-tracker/internal/domain"
	"fitness-tracker/internal/service"
	httpez "fitness-tracker/internal/transport/http/ez"
)

// AdminHandler 管理端用户管理；分组已要求 admin 角色，这里再按角色校验一次
type AdminHandler struct {
	users *service.UserService
	log   *zap.Logger
}

func NewAdminHandler(users *service.UserService, l *zap.Logger) *AdminHandler {
	return &AdminHandler{users: users, log: l}
}

var adminOnly = []string{domain.RoleAdmin}

func (h *AdminHandler) MountAdmin(admin *gin.RouterGroup) {
	ezAdmin := httpez.New(admin, h.log)

	type listOut struct {
		Total int           `json:"total"`
		Items []domain.User `json:"items"`
	}
	httpez.RegisterAction(ezAdmin, httpez.Action[struct{}, listOut]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: httpez.BindNone,
		Auth:   true,
		Roles:  adminOnly,
		Handler: func(c *gin.Context, _ *struct{}) (listOut, error) {
			us, err := h.users.List(c.Request.Context())
			if err != nil {
				return listOut{}, err
			}
			return listOut{Total: len(us), Items: us}, nil
		},
	})

	httpez.RegisterAction(ezAdmin, httpez.Action[struct{}, *domain.User]{
		Method: http.MethodGet,
		Path:   "/users/:id",
		Binder: httpez.BindNone,
		Auth:   true,
		Roles:  adminOnly,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.User, error) {
			return h.users.Get(c.Request.Context(), c.Param("id"))
		},
	})

	httpez.RegisterAction(ezAdmin, httpez.Action[domain.CreateUserInput, *domain.User]{
		Method: http.MethodPost,
		Path:   "/users",
		Binder: httpez.BindJSON,
		Auth:   true,
		Roles:  adminOnly,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *domain.CreateUserInput) (*domain.User, error) {
			return h.users.Create(c.Request.Context(), *in)
		},
	})

	httpez.RegisterAction(ezAdmin, httpez.Action[domain.UserPatch, *domain.User]{
		Method: http.MethodPut,
		Path:   "/users/:id",
		Binder: httpez.BindJSON,
		Auth:   true,
		Roles:  adminOnly,
		Handler: func(c *gin.Context, in *domain.UserPatch) (*domain.User, error) {
			return h.users.Update(c.Request.Context(), c.Param("id"), *in)
		},
	})

	httpez.RegisterAction(ezAdmin, httpez.Action[struct{}, gin.H]{
		Method: http.MethodDelete,
		Path:   "/users/:id",
		Binder: httpez.BindNone,
		Auth:   true,
		Roles:  adminOnly,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			id := c.Param("id")
			if err := h.users.Delete(c.Request.Context(), id); err != nil {
				return nil, err
			}
			return gin.H{"id": id}, nil
		},
	})
}
