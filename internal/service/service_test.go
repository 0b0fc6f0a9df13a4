package service

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"fitness-tracker/internal/core/auth"
	"fitness-tracker/internal/core/cache"
	"fitness-tracker/internal/domain"
	"fitness-tracker/internal/repo"
	"fitness-tracker/internal/repo/repotest"
	"fitness-tracker/pkg/utils"
)

var ctx = context.Background()

func TestMain(m *testing.M) {
	utils.PasswordCost = bcrypt.MinCost
	os.Exit(m.Run())
}

type fixture struct {
	*Services
	store *repo.Store
	jwt   *auth.JWTer
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWithCache(t, nil)
}

func newFixtureWithCache(t *testing.T, c *cache.Cache) *fixture {
	t.Helper()
	store := repotest.NewStore(t)
	jwt := &auth.JWTer{Secret: []byte("test-secret"), Issuer: "fitness-tracker", TTL: 24 * time.Hour}
	return &fixture{
		Services: New(store, c, time.Minute, jwt, zap.NewNop()),
		store:    store,
		jwt:      jwt,
	}
}

// register 注册并返回调用方
func (f *fixture) register(t *testing.T, name string) domain.Caller {
	t.Helper()
	sess, err := f.Auth.Register(ctx, RegisterInput{Username: name, Email: name + "@example.com", Password: "123456"})
	require.NoError(t, err)
	return domain.Caller{UserID: sess.UserID, Role: domain.RoleUser}
}

func (f *fixture) exercise(t *testing.T, name string) string {
	t.Helper()
	e, err := f.Exercises.Create(ctx, domain.CreateExerciseInput{Name: name, Category: "Strength"})
	require.NoError(t, err)
	return e.ID
}

func (f *fixture) workout(t *testing.T, c domain.Caller, list ...domain.Attachment) *domain.Workout {
	t.Helper()
	w, err := f.Workouts.Create(ctx, c, domain.CreateWorkoutInput{Name: "Push day", Date: "2025-01-02", Exercises: list})
	require.NoError(t, err)
	return w
}

func ip(v int) *int         { return &v }
func fp(v float64) *float64 { return &v }
func sp(v string) *string   { return &v }
func bp(v bool) *bool       { return &v }

func slot(exID string, sets, reps int) domain.Attachment {
	return domain.Attachment{ExerciseID: exID, Sets: ip(sets), Reps: ip(reps)}
}

func requireKind(t *testing.T, kind domain.Kind, err error) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, domain.KindOf(err), "unexpected error: %v", err)
}
