package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"fitness-tracker/internal/core/cache"
	"fitness-tracker/internal/domain"
	"fitness-tracker/pkg/utils"
)

const catalogKey = "exercises:all"

// ExerciseService 动作库；列表可走 redis 读穿缓存，任何写操作都会失效该 key
type ExerciseService struct {
	store domain.Store
	cache *cache.Cache // 可为 nil
	ttl   time.Duration
	log   *zap.Logger
}

func NewExerciseService(store domain.Store, c *cache.Cache, ttl time.Duration, log *zap.Logger) *ExerciseService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ExerciseService{store: store, cache: c, ttl: ttl, log: log}
}

// List 按名称排序；配置了 redis 时走读穿缓存
func (s *ExerciseService) List(ctx context.Context) ([]domain.Exercise, error) {
	var (
		es  []domain.Exercise
		err error
	)
	if s.cache == nil {
		es, err = s.store.Exercises().List(ctx)
	} else {
		es, err = cache.GetOrLoadJSON(s.cache, ctx, catalogKey, s.ttl, s.store.Exercises().List)
	}
	if err != nil {
		return nil, internal("list exercises failed", err)
	}
	if es == nil {
		es = []domain.Exercise{}
	}
	return es, nil
}

func (s *ExerciseService) Get(ctx context.Context, id string) (*domain.Exercise, error) {
	e, err := s.store.Exercises().FindByID(ctx, id)
	if err != nil {
		return nil, internal("get exercise failed", err)
	}
	if e == nil {
		return nil, domain.NotFound(msgExerciseNotFound)
	}
	return e, nil
}

func validateExercise(e *domain.Exercise) error {
	if e.Name == "" || e.Category == "" {
		return domain.Validation("name and category are required")
	}
	return nil
}

func (s *ExerciseService) Create(ctx context.Context, in domain.CreateExerciseInput) (*domain.Exercise, error) {
	e := &domain.Exercise{
		ID:           utils.NewID(),
		Name:         strings.TrimSpace(in.Name),
		Category:     strings.TrimSpace(in.Category),
		MuscleGroups: domain.NormalizeMuscleGroups(in.MuscleGroups),
		Equipment:    strings.TrimSpace(in.Equipment),
		Instructions: in.Instructions,
	}
	if err := validateExercise(e); err != nil {
		return nil, err
	}
	if err := s.store.Exercises().Create(ctx, e); err != nil {
		return nil, internal("create exercise failed", err)
	}
	s.invalidate(ctx)
	return e, nil
}

func (s *ExerciseService) Update(ctx context.Context, id string, p domain.ExercisePatch) (*domain.Exercise, error) {
	e, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if v := trimPtr(p.Name); v != nil {
		e.Name = *v
	}
	if v := trimPtr(p.Category); v != nil {
		e.Category = *v
	}
	if p.MuscleGroups != nil {
		e.MuscleGroups = domain.NormalizeMuscleGroups(*p.MuscleGroups)
	}
	if v := trimPtr(p.Equipment); v != nil {
		e.Equipment = *v
	}
	if p.Instructions != nil {
		e.Instructions = *p.Instructions
	}
	if err := validateExercise(e); err != nil {
		return nil, err
	}
	if err := s.store.Exercises().Update(ctx, e); err != nil {
		return nil, internal("update exercise failed", err)
	}
	s.invalidate(ctx)
	return e, nil
}

// Delete 无级联、无引用检查；引用它的组合行保留，读取时动作名为空
func (s *ExerciseService) Delete(ctx context.Context, id string) error {
	ok, err := s.store.Exercises().Delete(ctx, id)
	if err != nil {
		return internal("delete exercise failed", err)
	}
	if !ok {
		return domain.NotFound(msgExerciseNotFound)
	}
	s.invalidate(ctx)
	return nil
}

func (s *ExerciseService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, catalogKey); err != nil {
		s.log.Warn("invalidate exercise cache failed", zap.Error(err))
	}
}
