package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupEnv sets up environment variables for testing
func setupEnv(t *testing.T, envVars map[string]string) {
	t.Helper()
	for name, value := range envVars {
		t.Setenv(name, value)
	}
}

// chdirTemp moves the test into an empty directory so no stray config.yaml is read.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

// TestLoadDefaults verifies that Load applies the built-in defaults when nothing is configured.
func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()

	require.NoError(t, err, "Load() should not return an error with default values")
	require.NotNil(t, cfg)
	assert.Equal(t, 3001, cfg.Server.Port, "Default server port should be 3001")
	assert.Equal(t, "info", cfg.Server.LogLevel, "Default log level should be 'info'")
	assert.Equal(t, "test-api-key", cfg.Auth.APIKey)
	assert.Equal(t, "snapshot", cfg.Storage.Backend)
	assert.Equal(t, "data/image-submissions.json", cfg.Storage.SnapshotPath)
	assert.Equal(t, 5*time.Second, cfg.Processing.CompletionDelay)
	assert.Equal(t, time.Second, cfg.Processing.StaggerInterval)
	assert.Equal(t, 2, cfg.Processing.ResultItems)
	assert.Equal(t, 10, cfg.Pagination.DefaultLimit)
	assert.Equal(t, 100, cfg.Pagination.MaxLimit)
	assert.False(t, cfg.Processing.RecoverPending)
}

// TestLoadFromEnv verifies that Load correctly reads values from environment variables.
func TestLoadFromEnv(t *testing.T) {
	chdirTemp(t)
	setupEnv(t, map[string]string{
		"IRMOCK_SERVER_PORT":                 "9090",
		"IRMOCK_SERVER_LOG_LEVEL":            "debug",
		"IRMOCK_AUTH_API_KEY":                "another-key",
		"IRMOCK_AUTH_JWT_SECRET":             "thisisasecretkeythatis32charslong!!",
		"IRMOCK_PROCESSING_COMPLETION_DELAY": "250ms",
		"IRMOCK_PROCESSING_RECOVER_PENDING":  "true",
		"IRMOCK_PAGINATION_DEFAULT_LIMIT":    "50",
	})

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, "another-key", cfg.Auth.APIKey)
	assert.Equal(t, "thisisasecretkeythatis32charslong!!", cfg.Auth.JWTSecret)
	assert.Equal(t, 250*time.Millisecond, cfg.Processing.CompletionDelay)
	assert.True(t, cfg.Processing.RecoverPending)
	assert.Equal(t, 50, cfg.Pagination.DefaultLimit)
}

// TestLoadFromFile verifies that a YAML file is read and env vars still win.
func TestLoadFromFile(t *testing.T) {
	dir := chdirTemp(t)
	path := filepath.Join(dir, "custom.yaml")
	content := []byte(`
server:
  port: 4000
storage:
  fixtures_dir: fixtures
processing:
  stagger_interval: 2s
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))
	setupEnv(t, map[string]string{"IRMOCK_SERVER_PORT": "4001"})

	cfg, err := LoadFrom(path)

	require.NoError(t, err)
	assert.Equal(t, 4001, cfg.Server.Port, "environment should override file values")
	assert.Equal(t, "fixtures", cfg.Storage.FixturesDir)
	assert.Equal(t, 2*time.Second, cfg.Processing.StaggerInterval)
}

// TestLoadMissingExplicitFile verifies that an explicit but absent file is an error.
func TestLoadMissingExplicitFile(t *testing.T) {
	dir := chdirTemp(t)

	cfg, err := LoadFrom(filepath.Join(dir, "nope.yaml"))

	assert.Error(t, err)
	assert.Nil(t, cfg)
}

// TestLoadValidationErrors verifies that the Load function correctly validates the configuration.
func TestLoadValidationErrors(t *testing.T) {
	testCases := []struct {
		name    string
		envVars map[string]string
	}{
		{
			name:    "Invalid port number",
			envVars: map[string]string{"IRMOCK_SERVER_PORT": "999999"},
		},
		{
			name:    "Invalid log level",
			envVars: map[string]string{"IRMOCK_SERVER_LOG_LEVEL": "invalid-level"},
		},
		{
			name:    "Short JWT secret",
			envVars: map[string]string{"IRMOCK_AUTH_JWT_SECRET": "tooshort"},
		},
		{
			name:    "Unknown backend",
			envVars: map[string]string{"IRMOCK_STORAGE_BACKEND": "mongo"},
		},
		{
			name:    "Postgres without URL",
			envVars: map[string]string{"IRMOCK_STORAGE_BACKEND": "postgres"},
		},
		{
			name: "Default limit above max",
			envVars: map[string]string{
				"IRMOCK_PAGINATION_DEFAULT_LIMIT": "500",
				"IRMOCK_PAGINATION_MAX_LIMIT":     "100",
			},
		},
		{
			name:    "Zero workers",
			envVars: map[string]string{"IRMOCK_PROCESSING_WORKER_COUNT": "0"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			chdirTemp(t)
			setupEnv(t, tc.envVars)

			cfg, err := Load()

			require.Error(t, err, "Load() should return an error with invalid configuration")
			assert.Contains(t, err.Error(), "validation failed")
			assert.Nil(t, cfg, "Config should be nil when an error occurs")
		})
	}
}
