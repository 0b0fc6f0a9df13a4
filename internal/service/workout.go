package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"fitness-tracker/internal/domain"
	"fitness-tracker/pkg/utils"
)

type WorkoutService struct {
	store domain.Store
	log   *zap.Logger
	now   func() time.Time
}

func NewWorkoutService(store domain.Store, log *zap.Logger) *WorkoutService {
	return &WorkoutService{store: store, log: log, now: func() time.Time { return time.Now().UTC() }}
}

// embed 一次查询取回全部组合行，按训练分组挂到 Exercises 上
func embed(ctx context.Context, tx domain.Store, ws []domain.Workout) error {
	if len(ws) == 0 {
		return nil
	}
	ids := make([]string, len(ws))
	for i := range ws {
		ids[i] = ws[i].ID
	}
	rows, err := tx.Compositions().ListByWorkouts(ctx, ids...)
	if err != nil {
		return err
	}
	byWorkout := make(map[string][]domain.WorkoutExercise, len(ws))
	for _, r := range rows {
		byWorkout[r.WorkoutID] = append(byWorkout[r.WorkoutID], r)
	}
	for i := range ws {
		if rs, ok := byWorkout[ws[i].ID]; ok {
			ws[i].Exercises = rs
		} else {
			ws[i].Exercises = []domain.WorkoutExercise{}
		}
	}
	return nil
}

// List userID 为空时返回全部（仅管理端使用）
func (s *WorkoutService) List(ctx context.Context, userID string) ([]domain.Workout, error) {
	ws, err := s.store.Workouts().ListByUser(ctx, userID)
	if err != nil {
		return nil, internal("list workouts failed", err)
	}
	if err := embed(ctx, s.store, ws); err != nil {
		return nil, internal("list workouts failed", err)
	}
	return ws, nil
}

func (s *WorkoutService) get(ctx context.Context, tx domain.Store, c domain.Caller, id string) (*domain.Workout, error) {
	w, err := tx.Workouts().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ownedWorkout(w, c); err != nil {
		return nil, err
	}
	return w, nil
}

func (s *WorkoutService) Get(ctx context.Context, c domain.Caller, id string) (*domain.Workout, error) {
	w, err := s.get(ctx, s.store, c, id)
	if err != nil {
		return nil, internal("get workout failed", err)
	}
	one := []domain.Workout{*w}
	if err := embed(ctx, s.store, one); err != nil {
		return nil, internal("get workout failed", err)
	}
	return &one[0], nil
}

// Create 训练与内嵌动作同一事务写入，任一动作失败整体回滚
func (s *WorkoutService) Create(ctx context.Context, c domain.Caller, in domain.CreateWorkoutInput) (*domain.Workout, error) {
	if c.UserID == "" {
		return nil, domain.Auth("unauthorized")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Validation("name is required")
	}
	date, err := domain.ParseDate(in.Date)
	if err != nil {
		return nil, err
	}
	if in.Duration != nil && *in.Duration < 0 {
		return nil, domain.Validation("duration must be >= 0")
	}

	w := &domain.Workout{
		ID:        utils.NewID(),
		UserID:    c.UserID,
		Name:      name,
		Date:      date,
		Notes:     in.Notes,
		Completed: in.Completed,
		Duration:  in.Duration,
	}
	if w.Completed {
		now := s.now()
		w.CompletedAt = &now
	}

	err = s.store.InTx(ctx, func(tx domain.Store) error {
		if err := tx.Workouts().Create(ctx, w); err != nil {
			return err
		}
		if err := insertAll(ctx, tx, w.ID, in.Exercises, 1); err != nil {
			return err
		}
		rows, err := tx.Compositions().ListByWorkouts(ctx, w.ID)
		w.Exercises = rows
		return err
	})
	if err != nil {
		return nil, internal("create workout failed", err)
	}
	s.log.Info("workout created",
		zap.String("workout_id", w.ID),
		zap.String("user_id", w.UserID),
		zap.Int("exercises", len(w.Exercises)),
	)
	return w, nil
}

// Update 部分更新；completed=true 未给时间则记当前时间，completed=false 清空完成时间
func (s *WorkoutService) Update(ctx context.Context, c domain.Caller, id string, p domain.WorkoutPatch) (*domain.Workout, error) {
	w, err := s.get(ctx, s.store, c, id)
	if err != nil {
		return nil, internal("update workout failed", err)
	}

	if v := trimPtr(p.Name); v != nil {
		if *v == "" {
			return nil, domain.Validation("name is required")
		}
		w.Name = *v
	}
	if p.Date != nil {
		d, err := domain.ParseDate(*p.Date)
		if err != nil {
			return nil, err
		}
		w.Date = d
	}
	if p.Notes != nil {
		w.Notes = *p.Notes
	}
	if p.Duration != nil {
		if *p.Duration < 0 {
			return nil, domain.Validation("duration must be >= 0")
		}
		w.Duration = p.Duration
	}
	if p.CompletedAt != nil {
		at := p.CompletedAt.UTC()
		w.CompletedAt = &at
	}
	if p.Completed != nil {
		w.Completed = *p.Completed
	}
	// 完成时间只属于已完成的训练
	if p.CompletedAt != nil && !w.Completed {
		return nil, domain.Validation("completedAt requires completed=true")
	}
	if p.Completed != nil {
		switch {
		case !w.Completed:
			w.CompletedAt = nil
		case w.CompletedAt == nil:
			now := s.now()
			w.CompletedAt = &now
		}
	}

	if err := s.store.Workouts().Update(ctx, w); err != nil {
		return nil, internal("update workout failed", err)
	}
	one := []domain.Workout{*w}
	if err := embed(ctx, s.store, one); err != nil {
		return nil, internal("update workout failed", err)
	}
	return &one[0], nil
}

// Delete 事务内先删组合行再删训练
func (s *WorkoutService) Delete(ctx context.Context, c domain.Caller, id string) error {
	var rows int64
	err := s.store.InTx(ctx, func(tx domain.Store) error {
		if _, err := s.get(ctx, tx, c, id); err != nil {
			return err
		}
		var err error
		if rows, err = tx.Compositions().DeleteByWorkouts(ctx, id); err != nil {
			return err
		}
		ok, err := tx.Workouts().Delete(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return domain.NotFound(msgWorkoutNotFound)
		}
		return nil
	})
	if err != nil {
		return internal("delete workout failed", err)
	}
	s.log.Info("workout deleted", zap.String("workout_id", id), zap.Int64("workout_exercises", rows))
	return nil
}
