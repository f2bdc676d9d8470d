package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"transport-planning-service/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "optimizer.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_PATH", "")
	t.Setenv("OPTIMIZER_CONFIG", "")
	t.Setenv("GLS_MAX_ITERATIONS", "")
	t.Setenv("GLS_ACCEPTANCE", "")
	t.Setenv("ENFORCE_MAINTENANCE_WINDOWS", "")
	t.Setenv("SIMULATION_START", "2023-03-01T08:00:00Z")
	t.Setenv("SIMULATION_END", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data/app.db", cfg.DBPath)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, time.Date(2023, 3, 1, 8, 0, 0, 0, time.UTC), cfg.SimulationStart)
	assert.True(t, cfg.SimulationEnd.IsZero())
	assert.Equal(t, services.DefaultOptions(), cfg.Optimizer)
}

func TestLoadOptimizerFileOverlaysDefaults(t *testing.T) {
	path := writeFile(t, "max_iterations: 250\nacceptance: Annealing\ncooling_rate: 0.9\nenforce_maintenance_windows: true\n")

	opts, err := LoadOptimizerFile(path, services.DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 250, opts.MaxIterations)
	assert.Equal(t, services.AcceptAnnealing, opts.Acceptance)
	assert.Equal(t, 0.9, opts.CoolingRate)
	assert.True(t, opts.EnforceMaintenanceWindows)
	assert.Equal(t, 10000.0, opts.LatenessWeight)
	assert.Equal(t, 1, opts.UsageThreshold)
}

func TestLoadOptimizerFileEmpty(t *testing.T) {
	opts, err := LoadOptimizerFile(writeFile(t, ""), services.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, services.DefaultOptions(), opts)
}

func TestLoadOptimizerFileRejectsUnknownKeys(t *testing.T) {
	_, err := LoadOptimizerFile(writeFile(t, "max_iteration: 5\n"), services.DefaultOptions())
	assert.Error(t, err)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	t.Setenv("SIMULATION_START", "")
	t.Setenv("OPTIMIZER_CONFIG", writeFile(t, "max_iterations: 250\n"))
	t.Setenv("GLS_MAX_ITERATIONS", "7")
	t.Setenv("GLS_ACCEPTANCE", "annealing")
	t.Setenv("ENFORCE_MAINTENANCE_WINDOWS", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Optimizer.MaxIterations)
	assert.Equal(t, services.AcceptAnnealing, cfg.Optimizer.Acceptance)
	assert.True(t, cfg.Optimizer.EnforceMaintenanceWindows)
	assert.False(t, cfg.SimulationStart.IsZero())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string][2]string{
		"bad start":      {"SIMULATION_START", "yesterday"},
		"bad iterations": {"GLS_MAX_ITERATIONS", "many"},
		"bad acceptance": {"GLS_ACCEPTANCE", "tabu"},
		"bad flag":       {"ENFORCE_MAINTENANCE_WINDOWS", "sometimes"},
	}

	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("OPTIMIZER_CONFIG", "")
			t.Setenv("SIMULATION_START", "")
			t.Setenv("GLS_MAX_ITERATIONS", "")
			t.Setenv("GLS_ACCEPTANCE", "")
			t.Setenv("ENFORCE_MAINTENANCE_WINDOWS", "")
			t.Setenv(kv[0], kv[1])

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
