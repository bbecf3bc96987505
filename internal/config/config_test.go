package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, DefaultRemindctlPath, cfg.Remindctl.Path)
	assert.Equal(t, 0, cfg.Remindctl.TimeoutSeconds)
	assert.False(t, cfg.Remindctl.CancelOnDisconnect)
	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.Equal(t, DefaultPIDFile, cfg.Server.PIDFile)
	assert.Empty(t, cfg.Admin.Address)
	assert.Empty(t, cfg.Journal.SQLitePath)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestRemindctlTimeout(t *testing.T) {
	cfg := NewConfig()
	assert.Equal(t, time.Duration(0), cfg.RemindctlTimeout())

	cfg.Remindctl.TimeoutSeconds = -5
	assert.Equal(t, time.Duration(0), cfg.RemindctlTimeout())

	cfg.Remindctl.TimeoutSeconds = 30
	assert.Equal(t, 30*time.Second, cfg.RemindctlTimeout())
}

func TestListenAddress(t *testing.T) {
	cfg := NewConfig()
	assert.Equal(t, ":6371", cfg.ListenAddress())

	cfg.Server.Port = 8080
	assert.Equal(t, ":8080", cfg.ListenAddress())
}

func TestLoadConfigWithPathMissingFile(t *testing.T) {
	t.Setenv("PORT", "")

	cfg, err := LoadConfigWithPath(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Equal(t, DefaultRemindctlPath, cfg.Remindctl.Path)
	assert.Equal(t, DefaultPort, cfg.Server.Port)
}

func TestLoadConfigWithPathFile(t *testing.T) {
	t.Setenv("PORT", "")

	path := filepath.Join(t.TempDir(), "config.json")
	content := `{
  "remindctl": {"path": "/opt/bin/remindctl", "timeout_seconds": 15},
  "server": {"port": 7000, "pid_file": "run/remindersmcp.pid"},
  "journal": {"sqlite_path": "calls.db"},
  "logging": {"level": "debug", "format": "json"}
}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfigWithPath(path)
	require.NoError(t, err)

	assert.Equal(t, "/opt/bin/remindctl", cfg.Remindctl.Path)
	assert.Equal(t, 15*time.Second, cfg.RemindctlTimeout())
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "run/remindersmcp.pid", cfg.Server.PIDFile)
	assert.Equal(t, "calls.db", cfg.Journal.SQLitePath)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, path, cfg.GetConfigPath())
}

func TestLoadConfigPortEnv(t *testing.T) {
	t.Setenv("PORT", "9123")

	cfg, err := LoadConfigWithPath(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Equal(t, 9123, cfg.Server.Port)
}

func TestLoadConfigInvalidPortEnv(t *testing.T) {
	t.Setenv("PORT", "not-a-port")

	_, err := LoadConfigWithPath(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid PORT")
}

func TestSaveToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	cfg := NewConfig()
	cfg.Admin.Address = "127.0.0.1:6372"
	require.NoError(t, cfg.SaveToFile(path))

	assert.FileExists(t, path)
	assert.Equal(t, path, cfg.GetConfigPath())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "127.0.0.1:6372")
}

func TestNewLoggerWritesToGivenOutput(t *testing.T) {
	cfg := NewConfig()
	cfg.Logging.Format = "json"

	var out bytes.Buffer
	log := cfg.NewLogger(&out)
	log.Info("configured")

	assert.Contains(t, out.String(), `"msg":"configured"`)
}
