package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 30*time.Second, cfg.Solver.TimeLimit)
	assert.Equal(t, 100, cfg.Solver.NoImprovementLimit)
	assert.Equal(t, 20, cfg.Solver.MaxWorkers)
	assert.Equal(t, 15, cfg.Solver.Tolerance)
	assert.Equal(t, float64(40), cfg.Solver.DrivingSpeedKmh)
	assert.Equal(t, int64(1_000_000), cfg.Solver.DropPenaltyBase)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("log_level: debug\nsolver:\n  time_limit: 10s\n  tolerance: 5\n")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 10*time.Second, cfg.Solver.TimeLimit)
	assert.Equal(t, 5, cfg.Solver.Tolerance)
	// unset fields still pick up defaults
	assert.Equal(t, 100, cfg.Solver.NoImprovementLimit)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("solver:\n  num_runs: 2\n"), 0o600))

	t.Setenv("SOLVER_NUM_RUNS", "7")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Solver.NumRuns)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
