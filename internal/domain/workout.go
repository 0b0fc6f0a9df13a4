package domain

import (
	"context"
	"strings"
	"time"
)

const DefaultRestTime = 60 // 秒

type Workout struct {
	ID          string     `gorm:"primaryKey;size:36" json:"id"`
	UserID      string     `gorm:"size:36;not null;index" json:"userId"`
	Name        string     `gorm:"size:100;not null" json:"name"`
	Date        time.Time  `gorm:"not null;index" json:"date"`
	Notes       string     `gorm:"type:text" json:"notes"`
	Completed   bool       `gorm:"not null;default:false" json:"completed"`
	CompletedAt *time.Time `json:"completedAt"`
	Duration    *int       `json:"duration"` // 分钟
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`

	Exercises []WorkoutExercise `gorm:"-" json:"exercises"`
}

func (Workout) TableName() string { return "workouts" }

// WorkoutExercise 训练与动作的组合行
type WorkoutExercise struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	WorkoutID  string    `gorm:"size:36;not null;index:idx_we_workout_pos,priority:1" json:"workoutId"`
	ExerciseID string    `gorm:"size:36;not null;index" json:"exerciseId"`
	Sets       int       `gorm:"not null" json:"sets"`
	Reps       int       `gorm:"not null" json:"reps"`
	Weight     float64   `gorm:"not null;default:0" json:"weight"`
	RestTime   int       `gorm:"not null" json:"restTime"`
	Notes      string    `gorm:"type:text" json:"notes"`
	Position   int       `gorm:"not null;index:idx_we_workout_pos,priority:2" json:"position"`
	CreatedAt  time.Time `json:"createdAt"`

	// 只读：LEFT JOIN exercises 得到的动作名
	ExerciseName string `gorm:"->;-:migration" json:"name"`
}

func (WorkoutExercise) TableName() string { return "workout_exercises" }

// Attachment 组合行入参；Sets/Reps 用指针区分"未传"与 0
type Attachment struct {
	ExerciseID string   `json:"exerciseId"`
	Sets       *int     `json:"sets"`
	Reps       *int     `json:"reps"`
	Weight     *float64 `json:"weight"`
	RestTime   *int     `json:"restTime"`
	Notes      string   `json:"notes"`
}

type CompositionPatch struct {
	Sets     *int     `json:"sets"`
	Reps     *int     `json:"reps"`
	Weight   *float64 `json:"weight"`
	RestTime *int     `json:"restTime"`
	Notes    *string  `json:"notes"`
}

type CreateWorkoutInput struct {
	Name      string       `json:"name"`
	Date      string       `json:"date"`
	Notes     string       `json:"notes"`
	Completed bool         `json:"completed"`
	Duration  *int         `json:"duration"`
	Exercises []Attachment `json:"exercises"`
}

type WorkoutPatch struct {
	Name        *string    `json:"name"`
	Date        *string    `json:"date"`
	Notes       *string    `json:"notes"`
	Completed   *bool      `json:"completed"`
	CompletedAt *time.Time `json:"completedAt"`
	Duration    *int       `json:"duration"`
}

// Summary 仪表盘汇总
type Summary struct {
	TotalWorkouts  int64   `json:"total_workouts"`
	TotalExercises int64   `json:"total_exercises"`
	TotalVolume    float64 `json:"total_volume"`
}

type WorkoutRepository interface {
	Create(ctx context.Context, w *Workout) error
	FindByID(ctx context.Context, id string) (*Workout, error)
	// FindByIDForUpdate 在事务内锁定训练行（方言不支持时退化为普通读）
	FindByIDForUpdate(ctx context.Context, id string) (*Workout, error)
	// ListByUser userID 为空时返回全部
	ListByUser(ctx context.Context, userID string) ([]Workout, error)
	IDsByUser(ctx context.Context, userID string) ([]string, error)
	Update(ctx context.Context, w *Workout) error
	Delete(ctx context.Context, id string) (bool, error)
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}

type CompositionRepository interface {
	Create(ctx context.Context, we *WorkoutExercise) error
	FindByID(ctx context.Context, id string) (*WorkoutExercise, error)
	// ListByWorkouts 按 workout_id, position 升序，带动作名
	ListByWorkouts(ctx context.Context, workoutIDs ...string) ([]WorkoutExercise, error)
	MaxPosition(ctx context.Context, workoutID string) (int, error)
	Update(ctx context.Context, we *WorkoutExercise) error
	Delete(ctx context.Context, id string) (bool, error)
	DeleteByWorkouts(ctx context.Context, workoutIDs ...string) (int64, error)
	// CloseGap 把 position > after 的行整体前移一位
	CloseGap(ctx context.Context, workoutID string, after int) error
}

type StatsRepository interface {
	Summary(ctx context.Context, userID string) (Summary, error)
}

// Store 聚合所有仓储；InTx 内的 Store 共享同一事务
type Store interface {
	Users() UserRepository
	Exercises() ExerciseRepository
	Workouts() WorkoutRepository
	Compositions() CompositionRepository
	Stats() StatsRepository
	InTx(ctx context.Context, fn func(tx Store) error) error
}

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

// ParseDate 接受 RFC3339 或 YYYY-MM-DD
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, Validation("date is required")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, Validation("invalid date %q", s)
}
