package service

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"fitness-tracker/internal/core/auth"
	"fitness-tracker/internal/core/cache"
	"fitness-tracker/internal/domain"
)

// Services 一个进程内的全部业务服务，由 main 组装后交给路由
type Services struct {
	Auth         *AuthService
	Users        *UserService
	Exercises    *ExerciseService
	Workouts     *WorkoutService
	Compositions *CompositionService
	Stats        *StatsService
}

// New 组装全部服务；c 为 nil 时动作库列表直接查库
func New(store domain.Store, c *cache.Cache, catalogTTL time.Duration, jwt *auth.JWTer, log *zap.Logger) *Services {
	users := NewUserService(store, log.Named("user"))
	return &Services{
		Auth:         NewAuthService(store, users, jwt, log.Named("auth")),
		Users:        users,
		Exercises:    NewExerciseService(store, c, catalogTTL, log.Named("exercise")),
		Workouts:     NewWorkoutService(store, log.Named("workout")),
		Compositions: NewCompositionService(store, log.Named("composition")),
		Stats:        NewStatsService(store),
	}
}

var validate = validator.New()

func validEmail(s string) bool { return validate.Var(s, "required,email") == nil }

// internal 业务错误原样返回，其余包装为 KindInternal
func internal(msg string, err error) error {
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	return domain.Internal(msg, err)
}

func trimPtr(p *string) *string {
	if p == nil {
		return nil
	}
	s := strings.TrimSpace(*p)
	return &s
}

const (
	msgWorkoutNotFound     = "workout not found"
	msgCompositionNotFound = "workout exercise not found"
	msgExerciseNotFound    = "exercise not found"
	msgUserNotFound        = "user not found"
)
