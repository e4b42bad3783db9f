// Package config loads optimizer settings from an optional YAML file with
// environment variable overrides. Env vars win over the file so deployments
// can tweak a single knob without shipping a new config.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config carries every tunable the optimizer exposes. Zero values mean
// "use the built-in default"; Normalize fills them in.
type Config struct {
	LogLevel string `yaml:"log_level"`

	DatabaseURL string `yaml:"database_url"`
	RedisURL    string `yaml:"redis_url"`

	Solver SolverConfig `yaml:"solver"`
}

// SolverConfig holds the solver tunables.
type SolverConfig struct {
	TimeLimit          time.Duration `yaml:"time_limit"`
	NoImprovementLimit int           `yaml:"no_improvement_limit"`
	NumRuns            int           `yaml:"num_runs"`
	MaxWorkers         int           `yaml:"max_workers"`

	SlackAllow      int     `yaml:"slack_allow"`
	Tolerance       int     `yaml:"tolerance"`
	DrivingSpeedKmh float64 `yaml:"driving_speed_kmh"`
	WalkingSpeedKmh float64 `yaml:"walking_speed_kmh"`
	WalkingMaxM     float64 `yaml:"walking_max_m"`

	DropPenaltyBase  int64 `yaml:"drop_penalty_base"`
	FixedVehicleCost int64 `yaml:"fixed_vehicle_cost"`
}

// Defaults mirror the solver's built-in constants.
const (
	defaultSlackAllow      = 1000
	defaultTolerance       = 15
	defaultDrivingKmh      = 40
	defaultWalkingKmh      = 5
	defaultWalkingMaxM     = 200
	defaultDropPenaltyBase = 1_000_000
	defaultFixedCost       = 20_000
)

// Load reads the YAML file at path (if non-empty), then applies env
// overrides and defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	cfg.applyEnv()
	cfg.Normalize()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.RedisURL = v
	}
	if v := os.Getenv("SOLVER_TIME_LIMIT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			c.Solver.TimeLimit = d
		}
	}
	if n, ok := envInt("SOLVER_NO_IMPROVEMENT_LIMIT"); ok {
		c.Solver.NoImprovementLimit = n
	}
	if n, ok := envInt("SOLVER_NUM_RUNS"); ok {
		c.Solver.NumRuns = n
	}
	if n, ok := envInt("SOLVER_MAX_WORKERS"); ok {
		c.Solver.MaxWorkers = n
	}
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// Normalize fills zero values with defaults.
func (c *Config) Normalize() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	s := &c.Solver
	if s.TimeLimit <= 0 {
		s.TimeLimit = 30 * time.Second
	}
	if s.NoImprovementLimit <= 0 {
		s.NoImprovementLimit = 100
	}
	if s.NumRuns <= 0 {
		s.NumRuns = 1
	}
	if s.MaxWorkers <= 0 {
		s.MaxWorkers = 20
	}
	if s.SlackAllow <= 0 {
		s.SlackAllow = defaultSlackAllow
	}
	if s.Tolerance <= 0 {
		s.Tolerance = defaultTolerance
	}
	if s.DrivingSpeedKmh <= 0 {
		s.DrivingSpeedKmh = defaultDrivingKmh
	}
	if s.WalkingSpeedKmh <= 0 {
		s.WalkingSpeedKmh = defaultWalkingKmh
	}
	if s.WalkingMaxM <= 0 {
		s.WalkingMaxM = defaultWalkingMaxM
	}
	if s.DropPenaltyBase <= 0 {
		s.DropPenaltyBase = defaultDropPenaltyBase
	}
	if s.FixedVehicleCost <= 0 {
		s.FixedVehicleCost = defaultFixedCost
	}
}
