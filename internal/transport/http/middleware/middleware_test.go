package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"fitness-tracker/internal/domain"
)

func init() { gin.SetMode(gin.TestMode) }

type fakeVerifier map[string]domain.Caller

func (f fakeVerifier) Verify(_ context.Context, token string) (domain.Caller, error) {
	if token == "boom" {
		return domain.Caller{}, domain.Internal("db down", nil)
	}
	c, ok := f[token]
	if !ok {
		return domain.Caller{}, domain.Auth("invalid token")
	}
	return c, nil
}

func do(r http.Handler, method, path string, hdr map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthJWT(t *testing.T) {
	v := fakeVerifier{
		"u": {UserID: "u1", Role: domain.RoleUser},
		"a": {UserID: "a1", Role: domain.RoleAdmin},
	}
	r := gin.New()
	r.GET("/me", AuthJWT(v, ""), func(c *gin.Context) {
		caller, ok := CallerFrom(c)
		require.True(t, ok)
		c.String(http.StatusOK, caller.UserID+"/"+c.GetString(KeyUserID))
	})
	r.GET("/admin", AuthJWT(v, domain.RoleAdmin), func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	w := do(r, http.MethodGet, "/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "missing token")

	w = do(r, http.MethodGet, "/me", map[string]string{"Authorization": "Bearer nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid token")

	w = do(r, http.MethodGet, "/me", map[string]string{"Authorization": "Bearer boom"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = do(r, http.MethodGet, "/me", map[string]string{"Authorization": "Bearer u"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1/u1", w.Body.String())

	w = do(r, http.MethodGet, "/admin", map[string]string{"Authorization": "Bearer u"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(r, http.MethodGet, "/admin", map[string]string{"Authorization": "Bearer a"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimit(t *testing.T) {
	r := gin.New()
	r.GET("/", RateLimit(0, 1), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(r, http.MethodGet, "/", nil).Code)
}

func TestRateLimitPerIP(t *testing.T) {
	r := gin.New()
	r.GET("/", RateLimitPerIP(0, 1, time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })

	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}
	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1"))
	assert.Equal(t, http.StatusOK, send("10.0.0.2"))
}

func TestConcurrencyLimit(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	r := gin.New()
	r.GET("/", ConcurrencyLimit(1), func(c *gin.Context) {
		if c.Query("hold") == "1" {
			close(entered)
			<-release
		}
		c.Status(http.StatusOK)
	})

	done := make(chan int)
	go func() { done <- do(r, http.MethodGet, "/?hold=1", nil).Code }()
	<-entered
	assert.Equal(t, http.StatusServiceUnavailable, do(r, http.MethodGet, "/", nil).Code)
	close(release)
	assert.Equal(t, http.StatusOK, <-done)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/", nil).Code)
}

func TestMaxBodyBytes(t *testing.T) {
	r := gin.New()
	r.POST("/", MaxBodyBytes(4), func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123456789"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("01"))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTimeout(t *testing.T) {
	r := gin.New()
	r.GET("/", Timeout(10*time.Millisecond), func(c *gin.Context) {
		<-c.Request.Context().Done()
	})
	w := do(r, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
}

func TestRecovery(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	r := gin.New()
	r.Use(Recovery(zap.New(core)))
	r.GET("/", func(c *gin.Context) { panic("kaboom") })

	w := do(r, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"code":500,"msg":"internal error","data":{}}`, w.Body.String())
	assert.Equal(t, 1, logs.Len())
}

func TestRequestIDAndAccessLog(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.Use(RequestID(), AccessLog(zap.New(core)))
	r.GET("/items", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	w := do(r, http.MethodGet, "/items?token=abc&q=x", map[string]string{KeyRequestID: "rid-1"})
	assert.Equal(t, "rid-1", w.Header().Get(KeyRequestID))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zap.WarnLevel, entry.Level)
	fields := entry.ContextMap()
	assert.Equal(t, "rid-1", fields["rid"])
	assert.Equal(t, "/items", fields["path"])
	assert.Equal(t, map[string][]string{"token": {"****"}, "q": {"x"}}, fields["query"])

	w = do(r, http.MethodGet, "/items", nil)
	assert.NotEmpty(t, w.Header().Get(KeyRequestID))
}

func TestRequestID_RejectsUnsafe(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(KeyRequestID)) })

	w := do(r, http.MethodGet, "/", map[string]string{KeyRequestID: "bad id\twith spaces"})
	rid := w.Header().Get(KeyRequestID)
	assert.NotEqual(t, "bad id\twith spaces", rid)
	assert.Equal(t, rid, w.Body.String())

	w = do(r, http.MethodGet, "/", map[string]string{KeyRequestID: strings.Repeat("a", 65)})
	assert.Len(t, w.Header().Get(KeyRequestID), 36)
}
