package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AgentOS/romd/internal/infrastructure/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config"), []byte("<config/>"), 0o644))

	cfg := config.Default()
	cfg.ROM.Root = dir
	cfg.Server.Port = "0"
	cfg.Logging.Level = "error"
	cfg.RateLimit.Enabled = false
	return cfg
}

func TestNewServerRequiresConfig(t *testing.T) {
	_, err := NewServer(nil)
	assert.Error(t, err)
}

func TestServerServesROM(t *testing.T) {
	srv, err := NewServer(testConfig(t))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/rom/sessions", strings.NewReader(`{"args":"label=\"init -> config\""}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"size":4096`)
	assert.Equal(t, 1, srv.capabilities.Len())

	require.NoError(t, srv.Close(context.Background()))
	assert.Equal(t, 0, srv.service.Count())
	assert.Equal(t, 0, srv.capabilities.Len())
}

func TestServerHealth(t *testing.T) {
	srv, err := NewServer(testConfig(t))
	require.NoError(t, err)
	defer srv.Close(context.Background())

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func waitRun(t *testing.T, done <-chan error) {
	t.Helper()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after Close")
	}
}

func TestRunStopsOnClose(t *testing.T) {
	srv, err := NewServer(testConfig(t))
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- srv.Run() }()

	require.NoError(t, srv.Close(context.Background()))
	waitRun(t, done)
}

func TestRunAfterCloseReturnsImmediately(t *testing.T) {
	srv, err := NewServer(testConfig(t))
	require.NoError(t, err)
	require.NoError(t, srv.Close(context.Background()))

	done := make(chan error, 1)
	go func() { done <- srv.Run() }()
	waitRun(t, done)
}
