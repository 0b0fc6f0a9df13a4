package router

import (
	"go.uber.org/zap"

	"fitness-tracker/internal/service"
	"fitness-tracker/internal/transport/http/handler"
)

// Modules 用户端与管理端共用同一份模块表，各自只挂自己实现的接口
func Modules(s *service.Services, l *zap.Logger) *Registry {
	return NewRegistry(
		handler.NewAuthHandler(s.Auth, s.Users, l),
		handler.NewExerciseHandler(s.Exercises, l),
		handler.NewWorkoutHandler(s.Workouts, s.Compositions, l),
		handler.NewStatsHandler(s.Stats, l),
		handler.NewAdminHandler(s.Users, l),
	)
}
