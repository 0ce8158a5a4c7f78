package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Config Loading Tests
// =============================================================================

func TestLoadConfig_DefaultValues(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "./data/shipyard.db", cfg.Database.DSN)
	assert.Empty(t, cfg.Database.SeedFile)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 10, cfg.Projects.ItemsPerPage)
	assert.Equal(t, 2, cfg.Setup.Workers)
	assert.Equal(t, 100, cfg.Setup.QueueSize)
	assert.Equal(t, 2*time.Minute, cfg.Setup.TaskTimeout)
	assert.Empty(t, cfg.Keys.EncryptionKey)
}

func TestLoadConfig_FromFile(t *testing.T) {
	clearEnv(t)

	configContent := `
server:
  host: "127.0.0.1"
  port: 9000
  read_timeout: 60s
  write_timeout: 60s
  shutdown_timeout: 15s

database:
  dsn: "/tmp/test.db"
  seed_file: "/etc/shipyard/seed.yaml"

log:
  level: "debug"
  format: "text"

projects:
  items_per_page: 25

setup:
  workers: 4
  queue_size: 10
  task_timeout: 30s
`
	tmpFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(tmpFile, []byte(configContent), 0644))

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 60*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 15*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "/tmp/test.db", cfg.Database.DSN)
	assert.Equal(t, "/etc/shipyard/seed.yaml", cfg.Database.SeedFile)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, 25, cfg.Projects.ItemsPerPage)
	assert.Equal(t, 4, cfg.Setup.Workers)
	assert.Equal(t, 10, cfg.Setup.QueueSize)
	assert.Equal(t, 30*time.Second, cfg.Setup.TaskTimeout)
}

func TestLoadConfig_EnvironmentOverride(t *testing.T) {
	clearEnv(t)

	t.Setenv("SHIPYARD_SERVER_PORT", "9999")
	t.Setenv("SHIPYARD_LOG_LEVEL", "warn")
	t.Setenv("SHIPYARD_PROJECTS_ITEMS_PER_PAGE", "50")
	t.Setenv("SHIPYARD_KEYS_ENCRYPTION_KEY", strings.Repeat("k", 32))

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 50, cfg.Projects.ItemsPerPage)
	assert.Len(t, cfg.Keys.EncryptionKey, 32)
}

func TestLoadConfig_FileNotFound_UsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadConfig_InvalidFile(t *testing.T) {
	clearEnv(t)

	tmpFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(tmpFile, []byte("server: [port"), 0644))

	_, err := LoadConfig(tmpFile)
	assert.Error(t, err)
}

func TestLoadConfig_BadEncryptionKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("SHIPYARD_KEYS_ENCRYPTION_KEY", "too-short")

	_, err := LoadConfig("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "keys.encryption_key")
}

func TestConfig_Validate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"zero port", func(c *Config) { c.Server.Port = 0 }, true},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }, true},
		{"empty dsn", func(c *Config) { c.Database.DSN = "" }, true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &Config{
				Server:   ServerConfig{Port: 8080},
				Database: DatabaseConfig{DSN: ":memory:"},
			}
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestServerConfig_Address(t *testing.T) {
	assert.Equal(t, "127.0.0.1:8080", ServerConfig{Host: "127.0.0.1", Port: 8080}.Address())
}

// =============================================================================
// Logger Tests
// =============================================================================

func TestSetupLogger_Levels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "warning", "error", "bogus"} {
		for _, format := range []string{"json", "text"} {
			logger := SetupLogger(&Config{Log: LogConfig{Level: level, Format: format}})
			assert.NotNil(t, logger)
		}
	}
}

func clearEnv(t *testing.T) {
	t.Helper()
	envVars := []string{
		"SHIPYARD_SERVER_HOST",
		"SHIPYARD_SERVER_PORT",
		"SHIPYARD_DATABASE_DSN",
		"SHIPYARD_DATABASE_SEED_FILE",
		"SHIPYARD_LOG_LEVEL",
		"SHIPYARD_LOG_FORMAT",
		"SHIPYARD_PROJECTS_ITEMS_PER_PAGE",
		"SHIPYARD_KEYS_ENCRYPTION_KEY",
	}
	for _, v := range envVars {
		os.Unsetenv(v)
	}
}
