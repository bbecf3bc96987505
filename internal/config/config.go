package config

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/localrivet/configurator"
	"github.com/localrivet/remindersmcp/internal/logger"
)

// Config represents the reminders MCP server configuration
type Config struct {
	// Remindctl configures the external reminders executable.
	Remindctl struct {
		// Path is the executable to run. A bare name is looked up on PATH.
		Path string `json:"path" env:"REMINDCTL_PATH" default:"remindctl" validate:"required"`

		// TimeoutSeconds bounds a single remindctl run. 0 disables the timeout.
		TimeoutSeconds int `json:"timeout_seconds" env:"REMINDCTL_TIMEOUT_SECONDS" validate:"min:0"`

		// CancelOnDisconnect kills remindctl when the requesting client goes away.
		CancelOnDisconnect bool `json:"cancel_on_disconnect" env:"REMINDCTL_CANCEL_ON_DISCONNECT"`
	} `json:"remindctl"`

	// Server contains network transport configuration.
	Server struct {
		// Port is the HTTP+SSE listen port when not running over stdio.
		Port int `json:"port" env:"PORT" default:"6371" validate:"min:1"`

		// PIDFile is written on network start and removed on shutdown.
		PIDFile string `json:"pid_file" env:"PID_FILE" default:"server.pid"`
	} `json:"server"`

	// Admin contains the optional admin HTTP surface configuration.
	Admin struct {
		// Address to listen on, e.g. "127.0.0.1:6372". Empty disables it.
		Address string `json:"address" env:"ADMIN_ADDRESS"`
	} `json:"admin"`

	// Journal contains the optional tool call journal configuration.
	Journal struct {
		// SQLitePath is the journal database file. Empty disables the journal.
		SQLitePath string `json:"sqlite_path" env:"JOURNAL_SQLITE_PATH"`
	} `json:"journal"`

	// Logging contains logging-related configuration.
	Logging struct {
		// Level is the minimum log level to display ("debug", "info", "warn", "error").
		Level string `json:"level" env:"LOG_LEVEL" default:"info" validate:"required"`

		// Format is the log format to use ("text", "json").
		Format string `json:"format" env:"LOG_FORMAT" default:"text"`
	} `json:"logging"`

	// Internal state (not saved to config file)
	configPath     string       `json:"-"`
	mutex          sync.RWMutex `json:"-"`
	lastModifiedAt time.Time    `json:"-"`
}

// Default configuration values
const (
	DefaultConfigFilename = ".remindersmcpconfig"
	DefaultRemindctlPath  = "remindctl"
	DefaultPort           = 6371
	DefaultPIDFile        = "server.pid"
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"

	// EnvPrefix prefixes every environment override, e.g. REMINDERSMCP_LOG_LEVEL.
	EnvPrefix = "REMINDERSMCP"
)

// NewConfig creates a new Config instance with default values
func NewConfig() *Config {
	config := &Config{}
	config.Remindctl.Path = DefaultRemindctlPath
	config.Server.Port = DefaultPort
	config.Server.PIDFile = DefaultPIDFile
	config.Logging.Level = DefaultLogLevel
	config.Logging.Format = DefaultLogFormat
	return config
}

// LoadConfig loads the configuration from the default path
func LoadConfig() (*Config, error) {
	return LoadConfigWithPath(DefaultConfigFilename)
}

// LoadConfigWithPath loads the configuration from a specific path.
// A missing file is not an error: defaults and environment overrides apply.
func LoadConfigWithPath(configPath string) (*Config, error) {
	// Stderr only: in stdio mode stdout is the MCP stream.
	stdLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	cfg := NewConfig()

	if configPath == "" {
		configPath = DefaultConfigFilename
	}
	if configPath == DefaultConfigFilename {
		foundPath, err := configurator.FindConfigFile(configPath)
		if err == nil {
			configPath = foundPath
			stdLogger.Debug("Found config file at " + foundPath)
		}
	}

	loader := configurator.New(stdLogger).
		WithProvider(configurator.NewDefaultProvider())

	if _, err := os.Stat(configPath); err == nil {
		stdLogger.Info("Loading configuration", "path", configPath)
		loader = loader.WithProvider(configurator.NewFileProvider(configPath))
	} else if os.IsNotExist(err) {
		stdLogger.Info("Config file not found, using defaults and environment", "path", configPath)
	} else {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}

	loader = loader.
		WithProvider(configurator.NewEnvProvider(EnvPrefix)).
		WithValidator(configurator.NewDefaultValidator())

	if err := loader.Load(context.Background(), cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// The bare PORT variable is honoured for compatibility with existing launchers.
	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil || p <= 0 {
			return nil, fmt.Errorf("invalid PORT %q", port)
		}
		cfg.Server.Port = p
	}

	cfg.configPath = configPath
	cfg.lastModifiedAt = time.Now()

	return cfg, nil
}

// SaveToFile saves the configuration to the specified file
func (c *Config) SaveToFile(path string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := configurator.SaveToFile(c, path, configurator.FormatJSON); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	c.configPath = path
	c.lastModifiedAt = time.Now()

	return nil
}

// Save saves the configuration to the last used file path
func (c *Config) Save() error {
	if c.configPath == "" {
		c.configPath = DefaultConfigFilename
	}
	return c.SaveToFile(c.configPath)
}

// GetConfigPath returns the path of the currently loaded configuration file
func (c *Config) GetConfigPath() string {
	return c.configPath
}

// RemindctlTimeout returns the configured per-run timeout; zero means none.
func (c *Config) RemindctlTimeout() time.Duration {
	if c.Remindctl.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Remindctl.TimeoutSeconds) * time.Second
}

// ListenAddress returns the HTTP+SSE listen address.
func (c *Config) ListenAddress() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// NewLogger creates a slog logger from the logging section, writing to out
// (stderr when nil).
func (c *Config) NewLogger(out io.Writer) *slog.Logger {
	return logger.FromStrings(c.Logging.Level, c.Logging.Format, out)
}
