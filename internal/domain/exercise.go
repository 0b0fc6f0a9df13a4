package domain

import (
	"context"
	"time"

	"gorm.io/datatypes"
)

// Exercise 动作库条目，与训练无所属关系
type Exercise struct {
	ID           string                      `gorm:"primaryKey;size:36" json:"id"`
	Name         string                      `gorm:"size:100;not null;index" json:"name"`
	Category     string                      `gorm:"size:64;not null" json:"category"`
	MuscleGroups datatypes.JSONSlice[string] `gorm:"type:text" json:"muscleGroups"`
	Equipment    string                      `gorm:"size:100" json:"equipment"`
	Instructions string                      `gorm:"type:text" json:"instructions"`
	CreatedAt    time.Time                   `json:"createdAt"`
	UpdatedAt    time.Time                   `json:"updatedAt"`
}

func (Exercise) TableName() string { return "exercises" }

type CreateExerciseInput struct {
	Name         string   `json:"name"`
	Category     string   `json:"category"`
	MuscleGroups []string `json:"muscleGroups"`
	Equipment    string   `json:"equipment"`
	Instructions string   `json:"instructions"`
}

type ExercisePatch struct {
	Name         *string   `json:"name"`
	Category     *string   `json:"category"`
	MuscleGroups *[]string `json:"muscleGroups"`
	Equipment    *string   `json:"equipment"`
	Instructions *string   `json:"instructions"`
}

type ExerciseRepository interface {
	Create(ctx context.Context, e *Exercise) error
	FindByID(ctx context.Context, id string) (*Exercise, error)
	List(ctx context.Context) ([]Exercise, error)
	Update(ctx context.Context, e *Exercise) error
	Delete(ctx context.Context, id string) (bool, error)
}

// NormalizeMuscleGroups 只把 nil 归一为空列表；内容与顺序原样保存
func NormalizeMuscleGroups(in []string) datatypes.JSONSlice[string] {
	out := make(datatypes.JSONSlice[string], len(in))
	copy(out, in)
	return out
}
