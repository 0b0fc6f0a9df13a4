package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"fitness-tracker/internal/domain"
	"fitness-tracker/pkg/utils"
)

// CompositionService 训练内动作的有序增删改；position 始终保持 1..N 连续
type CompositionService struct {
	store domain.Store
	log   *zap.Logger
}

func NewCompositionService(store domain.Store, log *zap.Logger) *CompositionService {
	return &CompositionService{store: store, log: log}
}

// ownedWorkout 不存在 → NotFound；不是本人 → Forbidden（对外同一条 404）
func ownedWorkout(w *domain.Workout, c domain.Caller) error {
	if w == nil {
		return domain.NotFound(msgWorkoutNotFound)
	}
	if !c.Owns(w.UserID) && !c.IsAdmin() {
		return domain.Forbidden(msgWorkoutNotFound)
	}
	return nil
}

func validateSlot(sets, reps int, weight float64, rest int) error {
	switch {
	case sets < 0:
		return domain.Validation("sets must be >= 0")
	case reps < 0:
		return domain.Validation("reps must be >= 0")
	case weight < 0:
		return domain.Validation("weight must be >= 0")
	case rest < 0:
		return domain.Validation("restTime must be >= 0")
	}
	return nil
}

// newRow 校验入参并确认动作存在；position 由调用方决定
func newRow(ctx context.Context, tx domain.Store, workoutID string, a domain.Attachment, pos int) (*domain.WorkoutExercise, error) {
	exID := strings.TrimSpace(a.ExerciseID)
	if exID == "" {
		return nil, domain.Validation("exerciseId is required")
	}
	if a.Sets == nil || a.Reps == nil {
		return nil, domain.Validation("sets and reps are required")
	}
	row := &domain.WorkoutExercise{
		ID:         utils.NewID(),
		WorkoutID:  workoutID,
		ExerciseID: exID,
		Sets:       *a.Sets,
		Reps:       *a.Reps,
		RestTime:   domain.DefaultRestTime,
		Notes:      a.Notes,
		Position:   pos,
	}
	if a.Weight != nil {
		row.Weight = *a.Weight
	}
	if a.RestTime != nil {
		row.RestTime = *a.RestTime
	}
	if err := validateSlot(row.Sets, row.Reps, row.Weight, row.RestTime); err != nil {
		return nil, err
	}
	ex, err := tx.Exercises().FindByID(ctx, exID)
	if err != nil {
		return nil, err
	}
	if ex == nil {
		return nil, domain.NotFound(msgExerciseNotFound)
	}
	row.ExerciseName = ex.Name
	return row, nil
}

// insertAll 依次写入，position 从 start 开始递增；错误信息带上下标
func insertAll(ctx context.Context, tx domain.Store, workoutID string, list []domain.Attachment, start int) error {
	for i, a := range list {
		row, err := newRow(ctx, tx, workoutID, a, start+i)
		if err != nil {
			return atIndex(i, err)
		}
		if err := tx.Compositions().Create(ctx, row); err != nil {
			return err
		}
	}
	return nil
}

func atIndex(i int, err error) error {
	if de, ok := err.(*domain.Error); ok {
		return &domain.Error{Kind: de.Kind, Msg: fmt.Sprintf("exercises[%d]: %s", i, de.Msg), Err: de.Err}
	}
	return err
}

func (s *CompositionService) ListForWorkout(ctx context.Context, c domain.Caller, workoutID string) ([]domain.WorkoutExercise, error) {
	w, err := s.store.Workouts().FindByID(ctx, workoutID)
	if err != nil {
		return nil, internal("list workout exercises failed", err)
	}
	if err := ownedWorkout(w, c); err != nil {
		return nil, err
	}
	rows, err := s.store.Compositions().ListByWorkouts(ctx, workoutID)
	if err != nil {
		return nil, internal("list workout exercises failed", err)
	}
	return rows, nil
}

// Attach 追加到末尾；事务内先锁训练行，再取 max(position)+1
func (s *CompositionService) Attach(ctx context.Context, c domain.Caller, workoutID string, a domain.Attachment) (*domain.WorkoutExercise, error) {
	var row *domain.WorkoutExercise
	err := s.store.InTx(ctx, func(tx domain.Store) error {
		w, err := tx.Workouts().FindByIDForUpdate(ctx, workoutID)
		if err != nil {
			return err
		}
		if err := ownedWorkout(w, c); err != nil {
			return err
		}
		last, err := tx.Compositions().MaxPosition(ctx, workoutID)
		if err != nil {
			return err
		}
		if row, err = newRow(ctx, tx, workoutID, a, last+1); err != nil {
			return err
		}
		return tx.Compositions().Create(ctx, row)
	})
	if err != nil {
		return nil, internal("attach exercise failed", err)
	}
	s.log.Debug("exercise attached",
		zap.String("workout_id", workoutID),
		zap.String("exercise_id", row.ExerciseID),
		zap.Int("position", row.Position),
	)
	return row, nil
}

// ReplaceAll 整体替换：删除全部后按列表顺序写入 1..N
func (s *CompositionService) ReplaceAll(ctx context.Context, c domain.Caller, workoutID string, list []domain.Attachment) ([]domain.WorkoutExercise, error) {
	var rows []domain.WorkoutExercise
	err := s.store.InTx(ctx, func(tx domain.Store) error {
		w, err := tx.Workouts().FindByIDForUpdate(ctx, workoutID)
		if err != nil {
			return err
		}
		if err := ownedWorkout(w, c); err != nil {
			return err
		}
		if _, err := tx.Compositions().DeleteByWorkouts(ctx, workoutID); err != nil {
			return err
		}
		if err := insertAll(ctx, tx, workoutID, list, 1); err != nil {
			return err
		}
		rows, err = tx.Compositions().ListByWorkouts(ctx, workoutID)
		return err
	})
	if err != nil {
		return nil, internal("replace workout exercises failed", err)
	}
	return rows, nil
}

// load 组合行及其所属训练，并做归属检查
func (s *CompositionService) load(ctx context.Context, tx domain.Store, c domain.Caller, id string) (*domain.WorkoutExercise, error) {
	row, err := tx.Compositions().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, domain.NotFound(msgCompositionNotFound)
	}
	w, err := tx.Workouts().FindByID(ctx, row.WorkoutID)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, domain.NotFound(msgCompositionNotFound)
	}
	if !c.Owns(w.UserID) && !c.IsAdmin() {
		return nil, domain.Forbidden(msgCompositionNotFound)
	}
	return row, nil
}

// Update 部分更新 sets/reps/weight/restTime/notes，不改 position
func (s *CompositionService) Update(ctx context.Context, c domain.Caller, id string, p domain.CompositionPatch) (*domain.WorkoutExercise, error) {
	row, err := s.load(ctx, s.store, c, id)
	if err != nil {
		return nil, internal("update workout exercise failed", err)
	}
	if p.Sets != nil {
		row.Sets = *p.Sets
	}
	if p.Reps != nil {
		row.Reps = *p.Reps
	}
	if p.Weight != nil {
		row.Weight = *p.Weight
	}
	if p.RestTime != nil {
		row.RestTime = *p.RestTime
	}
	if p.Notes != nil {
		row.Notes = *p.Notes
	}
	if err := validateSlot(row.Sets, row.Reps, row.Weight, row.RestTime); err != nil {
		return nil, err
	}
	if err := s.store.Compositions().Update(ctx, row); err != nil {
		return nil, internal("update workout exercise failed", err)
	}
	return row, nil
}

// Detach 删除后把后续行前移，保持 position 连续。
// 先锁训练再在锁内重读该行，position 以锁内读到的为准
func (s *CompositionService) Detach(ctx context.Context, c domain.Caller, id string) error {
	err := s.store.InTx(ctx, func(tx domain.Store) error {
		first, err := tx.Compositions().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if first == nil {
			return domain.NotFound(msgCompositionNotFound)
		}
		if _, err := tx.Workouts().FindByIDForUpdate(ctx, first.WorkoutID); err != nil {
			return err
		}
		row, err := s.load(ctx, tx, c, id)
		if err != nil {
			return err
		}
		ok, err := tx.Compositions().Delete(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return domain.NotFound(msgCompositionNotFound)
		}
		return tx.Compositions().CloseGap(ctx, row.WorkoutID, row.Position)
	})
	if err != nil {
		return internal("detach exercise failed", err)
	}
	return nil
}
