package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fitness-tracker/internal/domain"
	"fitness-tracker/internal/service"
	httpez "fitness-tracker/internal/transport/http/ez"
)

// ExerciseHandler 动作库：读公开，写需登录；管理端同样可写
type ExerciseHandler struct {
	svc *service.ExerciseService
	log *zap.Logger
}

func NewExerciseHandler(svc *service.ExerciseService, l *zap.Logger) *ExerciseHandler {
	return &ExerciseHandler{svc: svc, log: l}
}

func (h *ExerciseHandler) MountAPI(public, authed *gin.RouterGroup) {
	ezPublic := httpez.New(public, h.log)

	httpez.RegisterAction(ezPublic, httpez.Action[struct{}, []domain.Exercise]{
		Method: http.MethodGet,
		Path:   "/exercises",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.Exercise, error) {
			return h.svc.List(c.Request.Context())
		},
	})

	httpez.RegisterAction(ezPublic, httpez.Action[struct{}, *domain.Exercise]{
		Method: http.MethodGet,
		Path:   "/exercises/:id",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Exercise, error) {
			return h.svc.Get(c.Request.Context(), c.Param("id"))
		},
	})

	h.mountWrites(httpez.New(authed, h.log), nil)
}

func (h *ExerciseHandler) MountAdmin(admin *gin.RouterGroup) {
	h.mountWrites(httpez.New(admin, h.log), adminOnly)
}

func (h *ExerciseHandler) mountWrites(e httpez.EZ, roles []string) {
	httpez.RegisterAction(e, httpez.Action[domain.CreateExerciseInput, *domain.Exercise]{
		Method: http.MethodPost,
		Path:   "/exercises",
		Binder: httpez.BindJSON,
		Auth:   true,
		Roles:  roles,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *domain.CreateExerciseInput) (*domain.Exercise, error) {
			return h.svc.Create(c.Request.Context(), *in)
		},
	})

	httpez.RegisterAction(e, httpez.Action[domain.ExercisePatch, *domain.Exercise]{
		Method: http.MethodPut,
		Path:   "/exercises/:id",
		Binder: httpez.BindJSON,
		Auth:   true,
		Roles:  roles,
		Handler: func(c *gin.Context, in *domain.ExercisePatch) (*domain.Exercise, error) {
			return h.svc.Update(c.Request.Context(), c.Param("id"), *in)
		},
	})

	httpez.RegisterAction(e, httpez.Action[struct{}, gin.H]{
		Method: http.MethodDelete,
		Path:   "/exercises/:id",
		Binder: httpez.BindNone,
		Auth:   true,
		Roles:  roles,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			id := c.Param("id")
			if err := h.svc.Delete(c.Request.Context(), id); err != nil {
				return nil, err
			}
			return gin.H{"id": id}, nil
		},
	})
}
