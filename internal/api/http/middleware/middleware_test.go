package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/planwerk/cockpit-backend/internal/platform/logger"
)

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c.Request.Context()))
	})
	r.GET("/boom", func(c *gin.Context) {
		c.Status(http.StatusInternalServerError)
	})
	return r
}

func do(r http.Handler, method, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestRequestID(t *testing.T) {
	r := newRouter(RequestID())

	rr := do(r, http.MethodGet, "/ping", nil)
	generated := rr.Header().Get(HeaderRequestID)
	assert.Len(t, generated, 32)
	assert.Equal(t, generated, rr.Body.String())

	rr = do(r, http.MethodGet, "/ping", map[string]string{HeaderRequestID: "abc-123"})
	assert.Equal(t, "abc-123", rr.Header().Get(HeaderRequestID))
	assert.Equal(t, "abc-123", rr.Body.String())
}

func TestAPIKey(t *testing.T) {
	r := newRouter(APIKey("s3cret"))

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/ping", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/ping", map[string]string{HeaderAPIKey: "wrong"}).Code)

	rr := do(r, http.MethodGet, "/ping", map[string]string{HeaderAPIKey: "s3cret"})
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = do(r, http.MethodGet, "/ping", nil)
	assert.JSONEq(t, `{"ok":false,"code":"unauthorized","error":"invalid API key"}`, rr.Body.String())
}

func TestAPIKey_DisabledWhenEmpty(t *testing.T) {
	r := newRouter(APIKey(""))
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/ping", nil).Code)
}

func TestRateLimiter(t *testing.T) {
	limiter := NewIPRateLimiter(0.001, 2)
	r := newRouter(limiter.Middleware())

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/ping", nil).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/ping", nil).Code)

	rr := do(r, http.MethodGet, "/ping", nil)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "1", rr.Header().Get("Retry-After"))

	other := httptest.NewRequest(http.MethodGet, "/ping", nil)
	other.RemoteAddr = "10.1.2.3:4567"
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, other)
	assert.Equal(t, http.StatusOK, rec.Code, "buckets are per client IP")
}

func TestRateLimiter_Cleanup(t *testing.T) {
	limiter := NewIPRateLimiter(1, 1)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	limiter.limiterFor("10.0.0.1")
	now = now.Add(10 * time.Minute)
	limiter.limiterFor("10.0.0.2")

	assert.Equal(t, 1, limiter.Cleanup(5*time.Minute))
	assert.Len(t, limiter.visitors, 1)
}

func TestRequestLogger_LevelByStatus(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := &logger.Logger{SugaredLogger: zap.New(core).Sugar()}
	r := newRouter(RequestID(), RequestLogger(log))

	do(r, http.MethodGet, "/ping", nil)
	do(r, http.MethodGet, "/boom", nil)
	do(r, http.MethodGet, "/missing", nil)

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.Equal(t, "/ping", entries[0].ContextMap()["path"])
	assert.NotEmpty(t, entries[0].ContextMap()["request_id"])
}

func TestCORS(t *testing.T) {
	r := newRouter(CORS([]string{"https://cockpit.example.at"}))

	rr := do(r, http.MethodGet, "/ping", map[string]string{"Origin": "https://cockpit.example.at"})
	assert.Equal(t, "https://cockpit.example.at", rr.Header().Get("Access-Control-Allow-Origin"))

	rr = do(r, http.MethodGet, "/ping", map[string]string{"Origin": "https://evil.example"})
	assert.Equal(t, http.StatusForbidden, rr.Code)

	open := newRouter(CORS(nil))
	rr = do(open, http.MethodGet, "/ping", map[string]string{"Origin": "https://anyone.example"})
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}
