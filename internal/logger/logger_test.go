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

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := map[string]zapcore.Level{
		"debug":   zap.DebugLevel,
		"info":    zap.InfoLevel,
		"warn":    zap.WarnLevel,
		"error":   zap.ErrorLevel,
		"":        zap.InfoLevel,
		"verbose": zap.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestTruncateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{name: "short", input: "tillage", maxLen: 50, want: "tillage"},
		{name: "exact", input: "abcde", maxLen: 5, want: "abcde"},
		{name: "long", input: "chisel plow in the fall", maxLen: 10, want: "chisel ..."},
		{name: "tiny limit", input: "abcdef", maxLen: 2, want: "..."},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, truncateString(tc.input, tc.maxLen))
		})
	}
}

func TestGinMiddlewareLevels(t *testing.T) {
	gin.SetMode(gin.TestMode)

	core, logs := observer.New(zap.DebugLevel)
	r := gin.New()
	r.Use(GinMiddleware(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	for _, path := range []string{"/ok", "/bad", "/boom"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	entries := logs.AllUntimed()
	require.Len(t, entries, 3)
	assert.Equal(t, zap.InfoLevel, entries[0].Level)
	assert.Equal(t, zap.WarnLevel, entries[1].Level)
	assert.Equal(t, zap.ErrorLevel, entries[2].Level)
	assert.Equal(t, "/boom", entries[2].ContextMap()["path"])
	assert.EqualValues(t, http.StatusInternalServerError, entries[2].ContextMap()["status"])
}

func TestGocronLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := NewGocronLogger(zap.New(core))

	l.Debug("tick", "job", "sql_maintenance")
	l.Error("job failed", "error", assert.AnError)

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)
	assert.Equal(t, "gocron", entries[0].LoggerName)
	assert.Equal(t, "sql_maintenance", entries[0].ContextMap()["job"])
	assert.Equal(t, zap.ErrorLevel, entries[1].Level)
	assert.Equal(t, assert.AnError.Error(), entries[1].ContextMap()["error"])
}
