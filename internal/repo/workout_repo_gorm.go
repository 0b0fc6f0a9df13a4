package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fitness-tracker/internal/domain"
)

type WorkoutRepo struct{ db *gorm.DB }

func NewWorkoutRepo(db *gorm.DB) *WorkoutRepo { return &WorkoutRepo{db: db} }

func (r *WorkoutRepo) Create(ctx context.Context, w *domain.Workout) error {
	if err := r.db.WithContext(ctx).Create(w).Error; err != nil {
		return fmt.Errorf("create workout: %w", err)
	}
	return nil
}

func (r *WorkoutRepo) find(q *gorm.DB, id string) (*domain.Workout, error) {
	var w domain.Workout
	err := q.First(&w, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find workout: %w", err)
	}
	return &w, nil
}

func (r *WorkoutRepo) FindByID(ctx context.Context, id string) (*domain.Workout, error) {
	return r.find(r.db.WithContext(ctx), id)
}

// FindByIDForUpdate SQLite 方言会忽略 FOR UPDATE，此时依赖库级写锁串行化
func (r *WorkoutRepo) FindByIDForUpdate(ctx context.Context, id string) (*domain.Workout, error) {
	return r.find(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *WorkoutRepo) ListByUser(ctx context.Context, userID string) ([]domain.Workout, error) {
	workouts := make([]domain.Workout, 0)
	q := r.db.WithContext(ctx).Model(&domain.Workout{})
	if userID != "" {
		q = q.Where("user_id = ?", userID)
	}
	if err := q.Order("date DESC").Order("created_at DESC").Find(&workouts).Error; err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}
	return workouts, nil
}

func (r *WorkoutRepo) IDsByUser(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&domain.Workout{}).Where("user_id = ?", userID).Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("workout ids: %w", err)
	}
	return ids, nil
}

func (r *WorkoutRepo) Update(ctx context.Context, w *domain.Workout) error {
	if err := r.db.WithContext(ctx).Save(w).Error; err != nil {
		return fmt.Errorf("update workout: %w", err)
	}
	return nil
}

func (r *WorkoutRepo) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Workout{})
	if res.Error != nil {
		return false, fmt.Errorf("delete workout: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *WorkoutRepo) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.Workout{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete workouts of user: %w", res.Error)
	}
	return res.RowsAffected, nil
}
