package configstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "ai.json")
	s, err := New(path)
	require.NoError(t, err)

	cfg, err := s.GetConfig(context.Background())
	require.NoError(t, err)
	require.Equal(t, DefaultModel, cfg.Model)
	require.InDelta(t, DefaultTemperature, cfg.Temperature, 1e-6)
	require.Zero(t, cfg.ThinkingBudget)
	require.Equal(t, 600*time.Millisecond, cfg.MoveDelay())
	require.Equal(t, DefaultShareBaseURL, cfg.ShareBaseURL)

	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestUpdatePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ai.json")
	s, err := New(path)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, s.UpdateConfig(ctx, Config{
		Model:       " gemini-2.5-flash ",
		Temperature: 0,
		MoveDelayMS: 0,
	}))

	reopened, err := New(path)
	require.NoError(t, err)
	cfg, err := reopened.GetConfig(ctx)
	require.NoError(t, err)
	require.Equal(t, "gemini-2.5-flash", cfg.Model)
	require.Zero(t, cfg.Temperature)
	require.Zero(t, cfg.MoveDelayMS)
	require.Equal(t, DefaultShareBaseURL, cfg.ShareBaseURL)
	require.False(t, cfg.UpdatedAt.IsZero())
}

func TestUpdateRejectsOutOfRange(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "ai.json"))
	require.NoError(t, err)
	ctx := context.Background()

	require.Error(t, s.UpdateConfig(ctx, Config{Temperature: 3}))
	require.Error(t, s.UpdateConfig(ctx, Config{ThinkingBudget: -1}))
	require.Error(t, s.UpdateConfig(ctx, Config{MoveDelayMS: -5}))

	cfg, err := s.GetConfig(ctx)
	require.NoError(t, err)
	require.Equal(t, DefaultMoveDelayMS, cfg.MoveDelayMS)
}

func TestCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ai.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err := New(path)
	require.ErrorContains(t, err, "parse config")
}
