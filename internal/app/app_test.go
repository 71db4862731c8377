package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"grandmaster/internal/config"
)

func testConfig(t *testing.T) config.Config {
	dir := t.TempDir()
	return config.Config{
		ListenAddr:     ":0",
		DataDir:        dir,
		GamesDBPath:    filepath.Join(dir, "grandmaster.sqlite"),
		ConfigPath:     filepath.Join(dir, "ai.json"),
		AllowedOrigins: []string{"https://chess-3d.app"},
		LogLevel:       "info",
	}
}

func TestNewServesAndPersistsToken(t *testing.T) {
	cfg := testConfig(t)

	a, err := New(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	token := a.AdminToken()
	require.Len(t, token, 64)

	rec := httptest.NewRecorder()
	a.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/games", strings.NewReader(`{"mode":"ai"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "https://chess-3d.app")
	rec = httptest.NewRecorder()
	a.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "https://chess-3d.app", rec.Header().Get("Access-Control-Allow-Origin"))
	a.Close()

	data, err := os.ReadFile(filepath.Join(cfg.DataDir, "admin.token"))
	require.NoError(t, err)
	require.Equal(t, token, strings.TrimSpace(string(data)))

	b, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer b.Close()
	require.Equal(t, token, b.AdminToken())
}

func TestCORSRejectsUnknownOrigin(t *testing.T) {
	a, err := New(context.Background(), testConfig(t), nil)
	require.NoError(t, err)
	defer a.Close()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec := httptest.NewRecorder()
	a.Router().ServeHTTP(rec, req)
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestConfiguredAdminTokenWins(t *testing.T) {
	dir := t.TempDir()
	token, created, err := loadOrInitAdminToken(dir, " from-env ")
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, "from-env", token)

	_, err = os.Stat(filepath.Join(dir, adminTokenFile))
	require.True(t, os.IsNotExist(err))

	token, created, err = loadOrInitAdminToken(dir, "")
	require.NoError(t, err)
	require.True(t, created)
	require.Len(t, token, 64)
}
