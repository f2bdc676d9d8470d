package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"transport-planning-service/internal/services"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the runtime configuration of the planner and the db tool.
type Config struct {
	// DatabaseURL selects Postgres; when empty DBPath is opened with SQLite.
	DatabaseURL string
	DBPath      string
	SeedPath    string
	RedisURL    string
	LogLevel    string
	// Port is the listen port of the planner HTTP server.
	Port string
	// PlanRunsPerMinute caps POST /plans; zero disables the limit.
	PlanRunsPerMinute int

	SimulationStart time.Time
	// SimulationEnd only bounds the printed trace.
	SimulationEnd time.Time

	// MetricsFile receives the optimiser metrics in text format after a run.
	MetricsFile string

	OptimizerConfig string
	Optimizer       services.Options
}

// Get returns the environment value of key or fallback when unset or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// Load reads .env (when present), the environment and the optional
// optimiser YAML file, in increasing order of precedence for the optimiser:
// defaults, file, GLS_* environment overrides.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:     Get("DATABASE_URL", ""),
		DBPath:          Get("DB_PATH", "data/app.db"),
		SeedPath:        Get("SEED_PATH", "data/seeds/network.json"),
		RedisURL:        Get("REDIS_URL", ""),
		LogLevel:        Get("LOG_LEVEL", "info"),
		Port:            Get("PORT", "8080"),
		MetricsFile:     Get("METRICS_FILE", ""),
		OptimizerConfig: Get("OPTIMIZER_CONFIG", ""),
		Optimizer:       services.DefaultOptions(),
	}

	var err error
	if cfg.PlanRunsPerMinute, err = strconv.Atoi(Get("PLAN_RUNS_PER_MINUTE", "6")); err != nil || cfg.PlanRunsPerMinute < 0 {
		return nil, fmt.Errorf("config: PLAN_RUNS_PER_MINUTE must be a non-negative integer")
	}
	if cfg.SimulationStart, err = timeVar("SIMULATION_START"); err != nil {
		return nil, err
	}
	if cfg.SimulationStart.IsZero() {
		cfg.SimulationStart = time.Now().UTC().Truncate(time.Minute)
	}
	if cfg.SimulationEnd, err = timeVar("SIMULATION_END"); err != nil {
		return nil, err
	}

	if cfg.OptimizerConfig != "" {
		if cfg.Optimizer, err = LoadOptimizerFile(cfg.OptimizerConfig, cfg.Optimizer); err != nil {
			return nil, err
		}
	}

	if cfg.Optimizer, err = applyEnvOverrides(cfg.Optimizer); err != nil {
		return nil, err
	}

	if err := cfg.Optimizer.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

type optimizerFile struct {
	MaxIterations             int     `yaml:"max_iterations"`
	UsageThreshold            int     `yaml:"usage_threshold"`
	LambdaFactor              float64 `yaml:"lambda_factor"`
	LatenessWeight            float64 `yaml:"lateness_weight"`
	Acceptance                string  `yaml:"acceptance"`
	InitialTemperature        float64 `yaml:"initial_temperature"`
	CoolingRate               float64 `yaml:"cooling_rate"`
	MinTemperature            float64 `yaml:"min_temperature"`
	Seed                      int64   `yaml:"seed"`
	EnforceMaintenanceWindows bool    `yaml:"enforce_maintenance_windows"`
}

// LoadOptimizerFile overlays the keys present in a YAML file on base.
// Unknown keys are rejected.
func LoadOptimizerFile(path string, base services.Options) (services.Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("config: read optimizer file %q: %w", path, err)
	}

	f := optimizerFile{
		MaxIterations:             base.MaxIterations,
		UsageThreshold:            base.UsageThreshold,
		LambdaFactor:              base.LambdaFactor,
		LatenessWeight:            base.LatenessWeight,
		Acceptance:                base.Acceptance,
		InitialTemperature:        base.InitialTemperature,
		CoolingRate:               base.CoolingRate,
		MinTemperature:            base.MinTemperature,
		Seed:                      base.Seed,
		EnforceMaintenanceWindows: base.EnforceMaintenanceWindows,
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return base, fmt.Errorf("config: parse optimizer file %q: %w", path, err)
	}

	return services.Options{
		MaxIterations:             f.MaxIterations,
		UsageThreshold:            f.UsageThreshold,
		LambdaFactor:              f.LambdaFactor,
		LatenessWeight:            f.LatenessWeight,
		EnforceMaintenanceWindows: f.EnforceMaintenanceWindows,
		Acceptance:                strings.ToLower(strings.TrimSpace(f.Acceptance)),
		InitialTemperature:        f.InitialTemperature,
		CoolingRate:               f.CoolingRate,
		MinTemperature:            f.MinTemperature,
		Seed:                      f.Seed,
	}, nil
}

func applyEnvOverrides(o services.Options) (services.Options, error) {
	if v := Get("GLS_MAX_ITERATIONS", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return o, fmt.Errorf("config: GLS_MAX_ITERATIONS: %w", err)
		}
		o.MaxIterations = n
	}
	if v := Get("GLS_ACCEPTANCE", ""); v != "" {
		o.Acceptance = strings.ToLower(v)
	}
	if v := Get("ENFORCE_MAINTENANCE_WINDOWS", ""); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return o, fmt.Errorf("config: ENFORCE_MAINTENANCE_WINDOWS: %w", err)
		}
		o.EnforceMaintenanceWindows = b
	}
	return o, nil
}

func timeVar(key string) (time.Time, error) {
	v := Get(key, "")
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("config: %s: %w", key, err)
	}
	return t, nil
}
