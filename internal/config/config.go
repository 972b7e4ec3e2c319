// Package config assembles service settings from defaults, an optional YAML
// file and the process environment, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"smart-calculator/internal/session"
	"smart-calculator/internal/solver"

	"gopkg.in/yaml.v3"
)

// FileEnv names the environment variable holding the YAML config path.
const FileEnv = "CALC_CONFIG"

type Config struct {
	Addr            string                  `yaml:"addr"`
	LogLevel        string                  `yaml:"log_level"`
	ShutdownTimeout time.Duration           `yaml:"shutdown_timeout"`
	MaxSessions     int                     `yaml:"max_sessions"`
	Solver          solver.Config           `yaml:"solver"`
	Protection      solver.ProtectionConfig `yaml:"protection"`
	// Telemetry turns on OTLP export of traces, metrics and logs.
	Telemetry bool `yaml:"telemetry"`
}

func Default() Config {
	return Config{
		Addr:            ":8080",
		LogLevel:        "info",
		ShutdownTimeout: 5 * time.Second,
		MaxSessions:     session.DefaultMaxSessions,
		Solver:          solver.DefaultConfig(),
		Protection:      solver.DefaultProtectionConfig(),
		Telemetry:       true,
	}
}

// Load returns Default overlaid with the file named by CALC_CONFIG (when set)
// and then with environment variables.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv(FileEnv); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse YAML config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Addr, "ADDR")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.Solver.BaseURL, "SOLVER_BASE_URL")
	setString(&c.Solver.Model, "SOLVER_MODEL")
	setString(&c.Solver.ExplainModel, "EXPLAIN_MODEL")

	// API_KEY wins over GEMINI_API_KEY when both are set.
	setString(&c.Solver.APIKey, "GEMINI_API_KEY")
	setString(&c.Solver.APIKey, "API_KEY")

	if v := os.Getenv("SOLVER_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("SOLVER_TIMEOUT: %w", err)
		}
		c.Solver.Timeout = d
	}
	if v := os.Getenv("SOLVER_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("SOLVER_RPS: %w", err)
		}
		c.Protection.RequestsPerSecond = f
	}
	if v := os.Getenv("MAX_SESSIONS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MAX_SESSIONS: %w", err)
		}
		c.MaxSessions = n
	}
	if v := os.Getenv("TELEMETRY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("TELEMETRY: %w", err)
		}
		c.Telemetry = b
	}
	return nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("addr must not be empty"))
	}
	if c.MaxSessions <= 0 {
		errs = append(errs, fmt.Errorf("max_sessions must be positive, got %d", c.MaxSessions))
	}
	if c.Solver.Model == "" {
		errs = append(errs, errors.New("solver.model must not be empty"))
	}
	if c.Solver.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("solver.timeout must be positive, got %s", c.Solver.Timeout))
	}
	if c.Protection.RequestsPerSecond < 0 {
		errs = append(errs, fmt.Errorf("protection.requests_per_second must not be negative, got %g", c.Protection.RequestsPerSecond))
	}
	return errors.Join(errs...)
}

// SolverConfigured reports whether model credentials are present.
func (c Config) SolverConfigured() bool {
	return c.Solver.APIKey != ""
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
