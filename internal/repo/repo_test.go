package repo_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitness-tracker/internal/domain"
	"fitness-tracker/internal/repo/repotest"
)

var ctx = context.Background()

func TestUserRepo(t *testing.T) {
	s := repotest.NewStore(t)
	users := s.Users()

	u := &domain.User{ID: "u1", Name: "serj", Email: "serj@example.com", Role: domain.RoleUser}
	require.NoError(t, users.Create(ctx, u))

	dup := &domain.User{ID: "u2", Name: "other", Email: "serj@example.com", Role: domain.RoleUser}
	err := users.Create(ctx, dup)
	assert.True(t, domain.Is(err, domain.KindConflict), "got %v", err)

	got, err := users.FindByName(ctx, "serj")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "u1", got.ID)

	missing, err := users.FindByID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	conflict, err := users.FindConflicting(ctx, "x", "serj@example.com", "u9")
	require.NoError(t, err)
	require.NotNil(t, conflict)
	conflict, err = users.FindConflicting(ctx, "serj", "serj@example.com", "u1")
	require.NoError(t, err)
	assert.Nil(t, conflict)

	deleted, err := users.Delete(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, deleted)
	deleted, err = users.Delete(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestExerciseRepo_ListSortedAndMuscleGroups(t *testing.T) {
	s := repotest.NewStore(t)
	ex := s.Exercises()

	require.NoError(t, ex.Create(ctx, &domain.Exercise{ID: "e1", Name: "Squats", Category: "Legs", MuscleGroups: domain.NormalizeMuscleGroups(nil)}))
	require.NoError(t, ex.Create(ctx, &domain.Exercise{ID: "e2", Name: "Bench Press", Category: "Chest", MuscleGroups: domain.NormalizeMuscleGroups([]string{"Chest", "Triceps"})}))

	list, err := ex.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Bench Press", list[0].Name)
	assert.Equal(t, "Squats", list[1].Name)

	got, err := ex.FindByID(ctx, "e2")
	require.NoError(t, err)
	assert.Equal(t, []string{"Chest", "Triceps"}, []string(got.MuscleGroups))

	got, err = ex.FindByID(ctx, "e1")
	require.NoError(t, err)
	assert.Empty(t, got.MuscleGroups)
}

func seedWorkout(t *testing.T, s interface {
	Workouts() domain.WorkoutRepository
}, id, userID string) {
	t.Helper()
	require.NoError(t, s.Workouts().Create(ctx, &domain.Workout{
		ID: id, UserID: userID, Name: "Push day", Date: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
	}))
}

func TestWorkoutExerciseRepo_JoinAndPositions(t *testing.T) {
	s := repotest.NewStore(t)
	require.NoError(t, s.Exercises().Create(ctx, &domain.Exercise{ID: "e1", Name: "Bench Press", Category: "Chest"}))
	seedWorkout(t, s, "w1", "u1")

	comp := s.Compositions()
	pos, err := comp.MaxPosition(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, 0, pos)

	for i, exID := range []string{"e1", "gone", "e1"} {
		require.NoError(t, comp.Create(ctx, &domain.WorkoutExercise{
			ID: string(rune('a' + i)), WorkoutID: "w1", ExerciseID: exID, Sets: 3, Reps: 10, RestTime: 60, Position: i + 1,
		}))
	}
	pos, err = comp.MaxPosition(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, 3, pos)

	rows, err := comp.ListByWorkouts(ctx, "w1")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Bench Press", rows[0].ExerciseName)
	assert.Equal(t, "", rows[1].ExerciseName, "dangling reference keeps the row with an empty name")

	ok, err := comp.Delete(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, comp.CloseGap(ctx, "w1", 1))

	rows, err = comp.ListByWorkouts(ctx, "w1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 1, rows[0].Position)
	assert.Equal(t, "b", rows[0].ID)
	assert.Equal(t, 2, rows[1].Position)

	one, err := comp.FindByID(ctx, "c")
	require.NoError(t, err)
	require.NotNil(t, one)
	assert.Equal(t, "Bench Press", one.ExerciseName)

	none, err := comp.ListByWorkouts(ctx)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStatsRepo_Summary(t *testing.T) {
	s := repotest.NewStore(t)
	seedWorkout(t, s, "w1", "u1")
	seedWorkout(t, s, "w2", "u1")
	seedWorkout(t, s, "w3", "u2")

	comp := s.Compositions()
	require.NoError(t, comp.Create(ctx, &domain.WorkoutExercise{ID: "a", WorkoutID: "w1", ExerciseID: "e1", Sets: 4, Reps: 10, Weight: 100, Position: 1}))
	require.NoError(t, comp.Create(ctx, &domain.WorkoutExercise{ID: "b", WorkoutID: "w2", ExerciseID: "e2", Sets: 3, Reps: 12, Weight: 0, Position: 1}))
	require.NoError(t, comp.Create(ctx, &domain.WorkoutExercise{ID: "c", WorkoutID: "w3", ExerciseID: "e1", Sets: 5, Reps: 5, Weight: 140, Position: 1}))

	sum, err := s.Stats().Summary(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.Summary{TotalWorkouts: 2, TotalExercises: 2, TotalVolume: 4000}, sum)

	empty, err := s.Stats().Summary(ctx, "nobody")
	require.NoError(t, err)
	assert.Equal(t, domain.Summary{}, empty)
}

func TestStore_InTxRollback(t *testing.T) {
	s := repotest.NewStore(t)
	boom := errors.New("boom")

	err := s.InTx(ctx, func(tx domain.Store) error {
		seedWorkout(t, tx, "w1", "u1")
		return boom
	})
	assert.ErrorIs(t, err, boom)

	w, err := s.Workouts().FindByID(ctx, "w1")
	require.NoError(t, err)
	assert.Nil(t, w)
}

func TestWorkoutRepo_ListAndDeleteByUser(t *testing.T) {
	s := repotest.NewStore(t)
	seedWorkout(t, s, "w1", "u1")
	seedWorkout(t, s, "w2", "u2")

	all, err := s.Workouts().ListByUser(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	ids, err := s.Workouts().IDsByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"w1"}, ids)

	n, err := s.Workouts().DeleteByUser(ctx, "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	locked, err := s.Workouts().FindByIDForUpdate(ctx, "w2")
	require.NoError(t, err)
	require.NotNil(t, locked)
	assert.Equal(t, "u2", locked.UserID)
}
