package app

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/specialistvlad/lidarcore/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp() *App {
	reg := prometheus.NewRegistry()
	return &App{
		logger:       newLogger("debug", "text", &bytes.Buffer{}),
		promRegistry: reg,
		metrics:      metrics.New(reg),
	}
}

func TestHandler_Health(t *testing.T) {
	srv := httptest.NewServer(newTestApp().handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHandler_Metrics(t *testing.T) {
	a := newTestApp()
	a.metrics.StageDone("prepare_signals", "ok")

	rec := httptest.NewRecorder()
	a.handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "prepare_signals")
}

func TestMetricsServer_StartAndClose(t *testing.T) {
	a := newTestApp()
	require.NoError(t, a.startMetricsServer(0))
	require.NotNil(t, a.httpServer)
	require.NoError(t, a.closeMetricsServer(context.Background()))
	assert.Nil(t, a.httpServer)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger("warn", "json", &buf)
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.True(t, strings.HasPrefix(out, "{"))
	assert.Contains(t, out, `"k":"v"`)
	assert.Contains(t, out, `"service":"lidarcore"`)

	buf.Reset()
	newLogger("bogus", "text", &buf).Info("default level is info")
	assert.Contains(t, buf.String(), "level=INFO")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLevel("WARN"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
}

func TestNewConfig(t *testing.T) {
	_, err := NewConfig(Config{})
	assert.Error(t, err)

	cfg, err := NewConfig(Config{RunPaths: []string{"run.hcl"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"run.hcl"}, cfg.RunPaths)
}
