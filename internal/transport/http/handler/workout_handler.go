package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fitness-tracker/internal/domain"
	"fitness-tracker/internal/service"
	httpez "fitness-tracker/internal/transport/http/ez"
)

// WorkoutHandler 训练及其动作组合；全部需要登录且只能操作自己的训练
type WorkoutHandler struct {
	workouts     *service.WorkoutService
	compositions *service.CompositionService
	log          *zap.Logger
}

func NewWorkoutHandler(w *service.WorkoutService, comp *service.CompositionService, l *zap.Logger) *WorkoutHandler {
	return &WorkoutHandler{workouts: w, compositions: comp, log: l}
}

type attachIn struct {
	WorkoutID string `json:"workoutId"`
	domain.Attachment
}

type replaceIn struct {
	Exercises []domain.Attachment `json:"exercises"`
}

func (h *WorkoutHandler) MountAPI(_, authed *gin.RouterGroup) {
	e := httpez.New(authed, h.log)

	httpez.RegisterAction(e, httpez.Action[struct{}, []domain.Workout]{
		Method: http.MethodGet,
		Path:   "/workouts",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.Workout, error) {
			return h.workouts.List(c.Request.Context(), httpez.Caller(c).UserID)
		},
	})

	httpez.RegisterAction(e, httpez.Action[struct{}, *domain.Workout]{
		Method: http.MethodGet,
		Path:   "/workouts/:id",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Workout, error) {
			return h.workouts.Get(c.Request.Context(), httpez.Caller(c), c.Param("id"))
		},
	})

	httpez.RegisterAction(e, httpez.Action[domain.CreateWorkoutInput, *domain.Workout]{
		Method: http.MethodPost,
		Path:   "/workouts",
		Binder: httpez.BindJSON,
		Auth:   true,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *domain.CreateWorkoutInput) (*domain.Workout, error) {
			return h.workouts.Create(c.Request.Context(), httpez.Caller(c), *in)
		},
	})

	httpez.RegisterAction(e, httpez.Action[domain.WorkoutPatch, *domain.Workout]{
		Method: http.MethodPut,
		Path:   "/workouts/:id",
		Binder: httpez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *domain.WorkoutPatch) (*domain.Workout, error) {
			return h.workouts.Update(c.Request.Context(), httpez.Caller(c), c.Param("id"), *in)
		},
	})

	httpez.RegisterAction(e, httpez.Action[struct{}, gin.H]{
		Method: http.MethodDelete,
		Path:   "/workouts/:id",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			id := c.Param("id")
			if err := h.workouts.Delete(c.Request.Context(), httpez.Caller(c), id); err != nil {
				return nil, err
			}
			return gin.H{"id": id}, nil
		},
	})

	httpez.RegisterAction(e, httpez.Action[struct{}, []domain.WorkoutExercise]{
		Method: http.MethodGet,
		Path:   "/workouts/:id/exercises",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.WorkoutExercise, error) {
			return h.compositions.ListForWorkout(c.Request.Context(), httpez.Caller(c), c.Param("id"))
		},
	})

	httpez.RegisterAction(e, httpez.Action[replaceIn, []domain.WorkoutExercise]{
		Method: http.MethodPut,
		Path:   "/workouts/:id/exercises",
		Binder: httpez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *replaceIn) ([]domain.WorkoutExercise, error) {
			return h.compositions.ReplaceAll(c.Request.Context(), httpez.Caller(c), c.Param("id"), in.Exercises)
		},
	})

	httpez.RegisterAction(e, httpez.Action[attachIn, *domain.WorkoutExercise]{
		Method: http.MethodPost,
		Path:   "/workout-exercises",
		Binder: httpez.BindJSON,
		Auth:   true,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *attachIn) (*domain.WorkoutExercise, error) {
			if in.WorkoutID == "" {
				return nil, domain.Validation("workoutId is required")
			}
			return h.compositions.Attach(c.Request.Context(), httpez.Caller(c), in.WorkoutID, in.Attachment)
		},
	})

	httpez.RegisterAction(e, httpez.Action[domain.CompositionPatch, *domain.WorkoutExercise]{
		Method: http.MethodPut,
		Path:   "/workout-exercises/:id",
		Binder: httpez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *domain.CompositionPatch) (*domain.WorkoutExercise, error) {
			return h.compositions.Update(c.Request.Context(), httpez.Caller(c), c.Param("id"), *in)
		},
	})

	httpez.RegisterAction(e, httpez.Action[struct{}, gin.H]{
		Method: http.MethodDelete,
		Path:   "/workout-exercises/:id",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			id := c.Param("id")
			if err := h.compositions.Detach(c.Request.Context(), httpez.Caller(c), id); err != nil {
				return nil, err
			}
			return gin.H{"id": id}, nil
		},
	})
}

// MountAdmin 管理端按用户查看训练；不带 user_id 返回全部
func (h *WorkoutHandler) MountAdmin(admin *gin.RouterGroup) {
	type listQ struct {
		UserID string `form:"user_id"`
	}
	httpez.RegisterAction(httpez.New(admin, h.log), httpez.Action[listQ, []domain.Workout]{
		Method: http.MethodGet,
		Path:   "/workouts",
		Binder: httpez.BindQuery,
		Auth:   true,
		Roles:  adminOnly,
		Handler: func(c *gin.Context, in *listQ) ([]domain.Workout, error) {
			return h.workouts.List(c.Request.Context(), in.UserID)
		},
	})
}
