package repo

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"fitness-tracker/internal/domain"
)

type WorkoutExerciseRepo struct{ db *gorm.DB }

func NewWorkoutExerciseRepo(db *gorm.DB) *WorkoutExerciseRepo { return &WorkoutExerciseRepo{db: db} }

// joined 带动作名的查询；LEFT JOIN 保留动作已被删除的组合行
func (r *WorkoutExerciseRepo) joined(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("workout_exercises AS we").
		Select("we.*, e.name AS exercise_name").
		Joins("LEFT JOIN exercises AS e ON e.id = we.exercise_id")
}

func (r *WorkoutExerciseRepo) Create(ctx context.Context, we *domain.WorkoutExercise) error {
	if err := r.db.WithContext(ctx).Create(we).Error; err != nil {
		return fmt.Errorf("create workout exercise: %w", err)
	}
	return nil
}

func (r *WorkoutExerciseRepo) FindByID(ctx context.Context, id string) (*domain.WorkoutExercise, error) {
	var rows []domain.WorkoutExercise
	if err := r.joined(ctx).Where("we.id = ?", id).Limit(1).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("find workout exercise: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (r *WorkoutExerciseRepo) ListByWorkouts(ctx context.Context, workoutIDs ...string) ([]domain.WorkoutExercise, error) {
	rows := make([]domain.WorkoutExercise, 0)
	if len(workoutIDs) == 0 {
		return rows, nil
	}
	err := r.joined(ctx).
		Where("we.workout_id IN ?", workoutIDs).
		Order("we.workout_id ASC").
		Order("we.position ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list workout exercises: %w", err)
	}
	return rows, nil
}

func (r *WorkoutExerciseRepo) MaxPosition(ctx context.Context, workoutID string) (int, error) {
	var pos int
	err := r.db.WithContext(ctx).
		Model(&domain.WorkoutExercise{}).
		Select("COALESCE(MAX(position), 0)").
		Where("workout_id = ?", workoutID).
		Scan(&pos).Error
	if err != nil {
		return 0, fmt.Errorf("max position: %w", err)
	}
	return pos, nil
}

func (r *WorkoutExerciseRepo) Update(ctx context.Context, we *domain.WorkoutExercise) error {
	err := r.db.WithContext(ctx).
		Model(&domain.WorkoutExercise{}).
		Where("id = ?", we.ID).
		Updates(map[string]any{
			"sets":      we.Sets,
			"reps":      we.Reps,
			"weight":    we.Weight,
			"rest_time": we.RestTime,
			"notes":     we.Notes,
		}).Error
	if err != nil {
		return fmt.Errorf("update workout exercise: %w", err)
	}
	return nil
}

func (r *WorkoutExerciseRepo) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.WorkoutExercise{})
	if res.Error != nil {
		return false, fmt.Errorf("delete workout exercise: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *WorkoutExerciseRepo) DeleteByWorkouts(ctx context.Context, workoutIDs ...string) (int64, error) {
	if len(workoutIDs) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Where("workout_id IN ?", workoutIDs).Delete(&domain.WorkoutExercise{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete workout exercises: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *WorkoutExerciseRepo) CloseGap(ctx context.Context, workoutID string, after int) error {
	err := r.db.WithContext(ctx).
		Model(&domain.WorkoutExercise{}).
		Where("workout_id = ? AND position > ?", workoutID, after).
		UpdateColumn("position", gorm.Expr("position - 1")).Error
	if err != nil {
		return fmt.Errorf("close position gap: %w", err)
	}
	return nil
}
