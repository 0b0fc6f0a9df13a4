package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"fitness-tracker/internal/domain"
)

type ExerciseRepo struct{ db *gorm.DB }

func NewExerciseRepo(db *gorm.DB) *ExerciseRepo { return &ExerciseRepo{db: db} }

func (r *ExerciseRepo) Create(ctx context.Context, e *domain.Exercise) error {
	if err := r.db.WithContext(ctx).Create(e).Error; err != nil {
		return fmt.Errorf("create exercise: %w", err)
	}
	return nil
}

func (r *ExerciseRepo) FindByID(ctx context.Context, id string) (*domain.Exercise, error) {
	var e domain.Exercise
	err := r.db.WithContext(ctx).First(&e, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find exercise: %w", err)
	}
	return &e, nil
}

func (r *ExerciseRepo) List(ctx context.Context) ([]domain.Exercise, error) {
	exercises := make([]domain.Exercise, 0)
	if err := r.db.WithContext(ctx).Order("name ASC").Order("id ASC").Find(&exercises).Error; err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}
	return exercises, nil
}

func (r *ExerciseRepo) Update(ctx context.Context, e *domain.Exercise) error {
	if err := r.db.WithContext(ctx).Save(e).Error; err != nil {
		return fmt.Errorf("update exercise: %w", err)
	}
	return nil
}

// Delete 只删动作库条目，不处理引用它的组合行
func (r *ExerciseRepo) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Exercise{})
	if res.Error != nil {
		return false, fmt.Errorf("delete exercise: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}
