package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"smart-calculator/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	FileEnv, "ADDR", "LOG_LEVEL", "SOLVER_BASE_URL", "SOLVER_MODEL", "EXPLAIN_MODEL",
	"GEMINI_API_KEY", "API_KEY", "SOLVER_TIMEOUT", "SOLVER_RPS", "MAX_SESSIONS", "TELEMETRY",
}

// clearEnv blanks every variable Load reads; an empty value counts as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "calc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, session.DefaultMaxSessions, cfg.MaxSessions)
	assert.Equal(t, "gemini-3-pro-preview", cfg.Solver.Model)
	assert.False(t, cfg.SolverConfigured())
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	t.Setenv(FileEnv, writeFile(t, `
addr: ":9090"
log_level: debug
max_sessions: 16
telemetry: false
solver:
  model: local-model
  timeout: 45s
protection:
  requests_per_second: 0.5
  burst: 2
`))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 16, cfg.MaxSessions)
	assert.False(t, cfg.Telemetry)
	assert.Equal(t, "local-model", cfg.Solver.Model)
	assert.Equal(t, 45*time.Second, cfg.Solver.Timeout)
	assert.Equal(t, 0.5, cfg.Protection.RequestsPerSecond)
	assert.Equal(t, 2, cfg.Protection.Burst)

	// Untouched keys keep their defaults.
	assert.Equal(t, Default().Solver.ExplainModel, cfg.Solver.ExplainModel)
	assert.Equal(t, Default().ShutdownTimeout, cfg.ShutdownTimeout)
}

func TestLoadFileCannotCarryAPIKey(t *testing.T) {
	clearEnv(t)
	t.Setenv(FileEnv, writeFile(t, "solver:\n  apikey: secret\n  api_key: secret\n"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.Solver.APIKey)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv(FileEnv, writeFile(t, "addr: \":9090\"\nmax_sessions: 16\n"))
	t.Setenv("ADDR", ":7070")
	t.Setenv("MAX_SESSIONS", "32")
	t.Setenv("SOLVER_TIMEOUT", "5s")
	t.Setenv("SOLVER_RPS", "10")
	t.Setenv("TELEMETRY", "false")
	t.Setenv("SOLVER_BASE_URL", "http://localhost:11434/v1")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Addr)
	assert.Equal(t, 32, cfg.MaxSessions)
	assert.Equal(t, 5*time.Second, cfg.Solver.Timeout)
	assert.Equal(t, 10.0, cfg.Protection.RequestsPerSecond)
	assert.False(t, cfg.Telemetry)
	assert.Equal(t, "http://localhost:11434/v1", cfg.Solver.BaseURL)
}

func TestLoadAPIKeyPrecedence(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "gemini")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "gemini", cfg.Solver.APIKey)
	assert.True(t, cfg.SolverConfigured())

	t.Setenv("API_KEY", "primary")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "primary", cfg.Solver.APIKey)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "bad timeout", env: map[string]string{"SOLVER_TIMEOUT": "soon"}},
		{name: "bad rps", env: map[string]string{"SOLVER_RPS": "fast"}},
		{name: "bad sessions", env: map[string]string{"MAX_SESSIONS": "many"}},
		{name: "bad telemetry", env: map[string]string{"TELEMETRY": "maybe"}},
		{name: "missing file", env: map[string]string{FileEnv: "/nonexistent/calc.yaml"}},
		{name: "zero sessions", env: map[string]string{"MAX_SESSIONS": "0"}},
		{name: "negative timeout", env: map[string]string{"SOLVER_TIMEOUT": "-1s"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadRejectsInvalidYAML(t *testing.T) {
	clearEnv(t)
	t.Setenv(FileEnv, writeFile(t, "addr: [unterminated\n"))

	_, err := Load()
	assert.ErrorContains(t, err, "failed to parse YAML config")
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Addr = ""
	cfg.MaxSessions = -1
	cfg.Solver.Model = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorContains(t, err, "addr must not be empty")
	assert.ErrorContains(t, err, "max_sessions must be positive")
	assert.ErrorContains(t, err, "solver.model must not be empty")
}
