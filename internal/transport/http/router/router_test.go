package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"fitness-tracker/internal/core/auth"
	"fitness-tracker/internal/core/server"
	"fitness-tracker/internal/domain"
	"fitness-tracker/internal/repo/repotest"
	"fitness-tracker/internal/service"
	"fitness-tracker/pkg/utils"
)

type env struct {
	api   *gin.Engine
	admin *gin.Engine
	svc   *service.Services
	jwt   *auth.JWTer
}

func newEnv(t *testing.T) *env {
	t.Helper()
	utils.PasswordCost = bcrypt.MinCost
	store := repotest.NewStore(t)
	jwt := &auth.JWTer{Secret: []byte("router-secret"), Issuer: "fitness-tracker", TTL: 24 * time.Hour}
	svc := service.New(store, nil, time.Minute, jwt, zap.NewNop())
	d := Deps{Log: zap.NewNop(), Services: svc, Server: server.Options{Mode: gin.TestMode}}
	reg := Modules(svc, zap.NewNop())
	return &env{api: NewAPIEngine(d, reg), admin: NewAdminEngine(d, reg), svc: svc, jwt: jwt}
}

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

func call(t *testing.T, h http.Handler, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func decode[T any](t *testing.T, e envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(e.Data, &out), string(e.Data))
	return out
}

func (e *env) register(t *testing.T, name string) service.Session {
	t.Helper()
	code, res := call(t, e.api, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username": name, "email": name + "@example.com", "password": "123456",
	})
	require.Equal(t, http.StatusCreated, code, res.Msg)
	return decode[service.Session](t, res)
}

func TestHealthAndMetrics(t *testing.T) {
	e := newEnv(t)
	code, res := call(t, e.api, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 0, res.Code)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	e.api.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "fitness_http_requests_total")
}

func TestHealth_Unhealthy(t *testing.T) {
	e := newEnv(t)
	d := Deps{
		Log:      zap.NewNop(),
		Services: e.svc,
		Health:   func(context.Context) error { return errors.New("db down") },
	}
	code, res := call(t, NewAPIEngine(d, NewRegistry()), http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, 503, res.Code)
}

func TestAuthFlow(t *testing.T) {
	e := newEnv(t)
	sess := e.register(t, "serj")
	assert.NotEmpty(t, sess.Token)

	code, res := call(t, e.api, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username": "other", "email": "serj@example.com", "password": "x",
	})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, 409, res.Code)

	code, _ = call(t, e.api, http.MethodPost, "/api/v1/auth/login", "", gin.H{"username": "serj", "password": "bad"})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, res = call(t, e.api, http.MethodPost, "/api/v1/auth/login", "", gin.H{"username": "serj", "password": "123456"})
	require.Equal(t, http.StatusOK, code)
	login := decode[service.Session](t, res)
	assert.Equal(t, sess.UserID, login.UserID)

	code, res = call(t, e.api, http.MethodGet, "/api/v1/me", login.Token, nil)
	require.Equal(t, http.StatusOK, code)
	me := decode[map[string]any](t, res)
	assert.Equal(t, "serj", me["name"])
	assert.NotContains(t, me, "passwordHash")
	assert.NotContains(t, me, "PasswordHash")

	code, res = call(t, e.api, http.MethodPut, "/api/v1/me", login.Token, gin.H{"goal": "marathon"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "marathon", decode[domain.User](t, res).Goal)

	code, _ = call(t, e.api, http.MethodGet, "/api/v1/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestExpiredToken(t *testing.T) {
	e := newEnv(t)
	sess := e.register(t, "serj")

	old := *e.jwt
	old.Now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	tok, err := old.Issue(sess.UserID, domain.RoleUser)
	require.NoError(t, err)

	code, res := call(t, e.api, http.MethodGet, "/api/v1/workouts", tok, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "invalid token", res.Msg)
}

func TestWorkoutLifecycle(t *testing.T) {
	e := newEnv(t)
	sess := e.register(t, "serj")
	tok := sess.Token

	code, res := call(t, e.api, http.MethodPost, "/api/v1/exercises", tok, gin.H{
		"name": "Bench Press", "category": "Chest", "muscleGroups": []string{"Chest", "Triceps"},
	})
	require.Equal(t, http.StatusCreated, code, res.Msg)
	bench := decode[domain.Exercise](t, res)

	code, res = call(t, e.api, http.MethodGet, "/api/v1/exercises/"+bench.ID, "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{"Chest", "Triceps"}, []string(decode[domain.Exercise](t, res).MuscleGroups))

	code, res = call(t, e.api, http.MethodPost, "/api/v1/workouts", tok, gin.H{
		"name": "Push day",
		"date": "2025-01-02",
		"exercises": []gin.H{
			{"exerciseId": bench.ID, "sets": 4, "reps": 10, "weight": 100},
		},
	})
	require.Equal(t, http.StatusCreated, code, res.Msg)
	w := decode[domain.Workout](t, res)
	require.Len(t, w.Exercises, 1)
	assert.Equal(t, "Bench Press", w.Exercises[0].ExerciseName)

	code, res = call(t, e.api, http.MethodPost, "/api/v1/workout-exercises", tok, gin.H{
		"workoutId": w.ID, "exerciseId": bench.ID, "sets": 3, "reps": 12,
	})
	require.Equal(t, http.StatusCreated, code, res.Msg)
	row := decode[domain.WorkoutExercise](t, res)
	assert.Equal(t, 2, row.Position)
	assert.Equal(t, 60, row.RestTime)

	code, res = call(t, e.api, http.MethodPost, "/api/v1/workout-exercises", tok, gin.H{
		"workoutId": w.ID, "exerciseId": bench.ID, "sets": -1, "reps": 12,
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, 400, res.Code)

	code, res = call(t, e.api, http.MethodGet, "/api/v1/dashboard/summary", tok, nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"total_workouts":1,"total_exercises":2,"total_volume":4000}`, string(res.Data))

	code, res = call(t, e.api, http.MethodPut, "/api/v1/workouts/"+w.ID+"/exercises", tok, gin.H{
		"exercises": []gin.H{{"exerciseId": bench.ID, "sets": 5, "reps": 5}},
	})
	require.Equal(t, http.StatusOK, code, res.Msg)
	assert.Len(t, decode[[]domain.WorkoutExercise](t, res), 1)

	code, res = call(t, e.api, http.MethodPut, "/api/v1/workouts/"+w.ID, tok, gin.H{"completed": true})
	require.Equal(t, http.StatusOK, code, res.Msg)
	updated := decode[domain.Workout](t, res)
	assert.True(t, updated.Completed)
	assert.NotNil(t, updated.CompletedAt)

	code, res = call(t, e.api, http.MethodGet, "/api/v1/workouts", tok, nil)
	require.Equal(t, http.StatusOK, code)
	list := decode[[]domain.Workout](t, res)
	require.Len(t, list, 1)
	assert.Len(t, list[0].Exercises, 1)

	code, _ = call(t, e.api, http.MethodDelete, "/api/v1/workouts/"+w.ID, tok, nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = call(t, e.api, http.MethodGet, "/api/v1/workouts/"+w.ID+"/exercises", tok, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestForeignWorkoutLooksMissing(t *testing.T) {
	e := newEnv(t)
	owner := e.register(t, "serj")
	other := e.register(t, "mallory")

	code, res := call(t, e.api, http.MethodPost, "/api/v1/workouts", owner.Token, gin.H{"name": "Legs", "date": "2025-01-03"})
	require.Equal(t, http.StatusCreated, code, res.Msg)
	w := decode[domain.Workout](t, res)

	code, foreign := call(t, e.api, http.MethodDelete, "/api/v1/workouts/"+w.ID, other.Token, nil)
	assert.Equal(t, http.StatusNotFound, code)
	_, missing := call(t, e.api, http.MethodDelete, "/api/v1/workouts/does-not-exist", other.Token, nil)
	assert.Equal(t, missing, foreign)

	code, _ = call(t, e.api, http.MethodGet, "/api/v1/workouts/"+w.ID, owner.Token, nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestBadJSON(t *testing.T) {
	e := newEnv(t)
	sess := e.register(t, "serj")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/workouts", bytes.NewBufferString("{"))
	req.Header.Set("Authorization", "Bearer "+sess.Token)
	w := httptest.NewRecorder()
	e.api.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminEngine(t *testing.T) {
	e := newEnv(t)
	user := e.register(t, "serj")

	code, _ := call(t, e.admin, http.MethodGet, "/admin/v1/users", user.Token, nil)
	assert.Equal(t, http.StatusForbidden, code)

	_, _, err := e.svc.Auth.EnsureAdmin(context.Background(), "root", "root@example.com", "s3cret")
	require.NoError(t, err)
	adminSess, err := e.svc.Auth.Login(context.Background(), service.LoginInput{Username: "root", Password: "s3cret"})
	require.NoError(t, err)
	tok := adminSess.Token

	code, res := call(t, e.admin, http.MethodGet, "/admin/v1/users", tok, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 2, decode[struct {
		Total int `json:"total"`
	}](t, res).Total)

	code, res = call(t, e.admin, http.MethodPost, "/admin/v1/users", tok, gin.H{"name": "ana", "email": "ana@example.com", "age": 30})
	require.Equal(t, http.StatusCreated, code, res.Msg)
	ana := decode[domain.User](t, res)

	code, res = call(t, e.admin, http.MethodPut, "/admin/v1/users/"+ana.ID, tok, gin.H{"height": 170.5})
	require.Equal(t, http.StatusOK, code, res.Msg)
	assert.Equal(t, 30, *decode[domain.User](t, res).Age)

	code, _ = call(t, e.admin, http.MethodPost, "/admin/v1/exercises", tok, gin.H{"name": "Deadlift", "category": "Back"})
	assert.Equal(t, http.StatusCreated, code)

	code, res = call(t, e.admin, http.MethodGet, "/admin/v1/workouts?user_id="+user.UserID, tok, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, decode[[]domain.Workout](t, res))

	code, _ = call(t, e.admin, http.MethodDelete, "/admin/v1/users/"+ana.ID, tok, nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = call(t, e.admin, http.MethodGet, "/admin/v1/users/"+ana.ID, tok, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestRegistryPriority(t *testing.T) {
	var order []string
	reg := NewRegistry(mod{name: "late", prio: 200, order: &order}, mod{name: "early", prio: 1, order: &order})
	r := gin.New()
	g := r.Group("/x")
	reg.MountAPI(g, g)
	reg.MountAdmin(g)
	assert.Equal(t, []string{"early", "late", "admin:early", "admin:late"}, order)
}

type mod struct {
	name  string
	prio  int
	order *[]string
}

func (m mod) Priority() int                  { return m.prio }
func (m mod) MountAPI(_, _ *gin.RouterGroup) { *m.order = append(*m.order, m.name) }
func (m mod) MountAdmin(_ *gin.RouterGroup)  { *m.order = append(*m.order, "admin:"+m.name) }
