package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func serveWithMiddleware(t *testing.T, status int, mw ...gin.HandlerFunc) (*observer.ObservedLogs, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	core, recorded := observer.New(zapcore.InfoLevel)
	log := zap.New(core)

	engine := gin.New()
	engine.Use(mw...)
	engine.Use(GinMiddleware(log))
	engine.GET("/probe", func(c *gin.Context) {
		if status >= http.StatusInternalServerError {
			c.JSON(status, gin.H{"error": "boom"})
			return
		}
		c.JSON(status, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	engine.ServeHTTP(w, req)
	return recorded, w
}

func TestGinMiddleware_LogsRequest(t *testing.T) {
	recorded, w := serveWithMiddleware(t, http.StatusOK)

	assert.Equal(t, http.StatusOK, w.Code)

	entries := recorded.FilterMessage("request completed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)

	fields := entries[0].ContextMap()
	assert.Equal(t, "/probe", fields["path"])
	assert.Equal(t, int64(http.StatusOK), fields["status"])
}

func TestGinMiddleware_ServerErrorLogsAtError(t *testing.T) {
	recorded, _ := serveWithMiddleware(t, http.StatusInternalServerError)

	entries := recorded.FilterMessage("request completed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
}

func TestGinMiddleware_PropagatesRequestID(t *testing.T) {
	setID := func(c *gin.Context) {
		c.Set("request_id", "req-123")
		c.Next()
	}
	recorded, _ := serveWithMiddleware(t, http.StatusOK, setID)

	entries := recorded.FilterMessage("request completed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "req-123", entries[0].ContextMap()["request_id"])
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	core, recorded := observer.New(zapcore.InfoLevel)
	log := zap.New(core)

	engine := gin.New()
	engine.Use(Recovery(log))
	engine.GET("/panic", func(c *gin.Context) {
		panic("unexpected")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	entries := recorded.FilterMessage("panic recovered").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "unexpected", entries[0].ContextMap()["panic"])
}

func TestGetGinLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.NotNil(t, GetGinLogger(c), "missing logger should yield a no-op logger")

	log := zap.NewNop().Named("req")
	c.Set("logger", log)
	assert.Same(t, log, GetGinLogger(c))
}
