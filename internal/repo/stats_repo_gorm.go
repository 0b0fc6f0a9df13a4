package repo

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"fitness-tracker/internal/domain"
)

type volumeRow struct {
	RowCount int64
	Volume   float64
}

type StatsRepo struct{ db *gorm.DB }

func NewStatsRepo(db *gorm.DB) *StatsRepo { return &StatsRepo{db: db} }

// Summary 每次全量计算；weight 为 NULL 或 0 的行贡献 0
func (r *StatsRepo) Summary(ctx context.Context, userID string) (domain.Summary, error) {
	var s domain.Summary
	err := r.db.WithContext(ctx).
		Model(&domain.Workout{}).
		Where("user_id = ?", userID).
		Count(&s.TotalWorkouts).Error
	if err != nil {
		return domain.Summary{}, fmt.Errorf("count workouts: %w", err)
	}

	var agg volumeRow
	err = r.db.WithContext(ctx).
		Table("workout_exercises AS we").
		Select("COUNT(we.id) AS row_count, COALESCE(SUM(COALESCE(we.weight, 0) * we.reps * we.sets), 0) AS volume").
		Joins("JOIN workouts AS w ON w.id = we.workout_id").
		Where("w.user_id = ?", userID).
		Scan(&agg).Error
	if err != nil {
		return domain.Summary{}, fmt.Errorf("sum volume: %w", err)
	}
	s.TotalExercises = agg.RowCount
	s.TotalVolume = agg.Volume
	return s, nil
}
