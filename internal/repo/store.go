package repo

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"fitness-tracker/internal/domain"
)

// Store 持有 *gorm.DB；事务内通过 InTx 得到共享同一 tx 的 Store
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store { return &Store{db: db} }

func (s *Store) Users() domain.UserRepository               { return NewUserRepo(s.db) }
func (s *Store) Exercises() domain.ExerciseRepository       { return NewExerciseRepo(s.db) }
func (s *Store) Workouts() domain.WorkoutRepository         { return NewWorkoutRepo(s.db) }
func (s *Store) Compositions() domain.CompositionRepository { return NewWorkoutExerciseRepo(s.db) }
func (s *Store) Stats() domain.StatsRepository              { return NewStatsRepo(s.db) }

func (s *Store) InTx(ctx context.Context, fn func(tx domain.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// AutoMigrate 建表/补列
func (s *Store) AutoMigrate() error {
	return s.db.AutoMigrate(
		&domain.User{},
		&domain.Exercise{},
		&domain.Workout{},
		&domain.WorkoutExercise{},
	)
}

func isDupKey(err error) bool {
	// 不依赖 gorm.ErrDuplicatedKey（需开启 TranslateError），按驱动报错文本判断
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation")
}
