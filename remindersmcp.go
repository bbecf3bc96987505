// Package remindersmcp exposes macOS reminders to MCP clients by delegating
// every operation to the remindctl command-line tool.
package remindersmcp

import (
	"context"
	"log/slog"

	gomcpserver "github.com/localrivet/gomcp/server"

	"github.com/localrivet/remindersmcp/internal/config"
	"github.com/localrivet/remindersmcp/internal/dispatcher"
	"github.com/localrivet/remindersmcp/internal/errortypes"
	"github.com/localrivet/remindersmcp/internal/journal"
	"github.com/localrivet/remindersmcp/internal/reminders"
	"github.com/localrivet/remindersmcp/internal/remindctl"
	"github.com/localrivet/remindersmcp/internal/server"
	"github.com/localrivet/remindersmcp/internal/telemetry"
	"github.com/localrivet/remindersmcp/internal/tools"
)

// Config represents the configuration for the reminders MCP service.
type Config = config.Config

// Reminder is one reminder as reported by remindctl.
type Reminder = reminders.Reminder

// Transport names accepted in ServerOptions.
const (
	TransportStdio = dispatcher.TransportStdio
	TransportSSE   = dispatcher.TransportSSE
)

// Components are the pieces a Server is assembled from. They are returned
// by CreateComponents for callers that wire their own transport.
type Components struct {
	Dispatcher *dispatcher.Dispatcher
	Metrics    *telemetry.MetricsCollector

	// Journal is nil when journalling is disabled.
	Journal journal.Journal
}

// RegisterTools adds the five reminder tools to a caller-owned gomcp server.
// Calls arriving through it are attributed to one session on transport.
func (c *Components) RegisterTools(srv gomcpserver.Server, transport string) gomcpserver.Server {
	return server.Register(srv, c.Dispatcher, dispatcher.NewSession(transport), nil)
}

// Close releases the journal, if any.
func (c *Components) Close() error {
	if c.Journal == nil {
		return nil
	}
	return c.Journal.Close()
}

// Server represents the reminders MCP service.
type Server struct {
	config     *config.Config
	components *Components
	toolServer server.ToolServer
	transport  string
	logger     *slog.Logger
}

// ServerOptions defines the options for creating a new Server.
type ServerOptions struct {
	Config     *Config      // Pre-filled config. If nil, ConfigPath is used.
	ConfigPath string       // Path to config file. Used if Config is nil. If both are empty, DefaultConfig() is used.
	Logger     *slog.Logger // External logger. If nil, slog.Default() is used.

	// Transport is TransportStdio (default) or TransportSSE.
	Transport string
}

// NewServer creates a new reminders MCP Server with the given options.
// If opts.Config is provided, it will be used directly.
// Otherwise, if opts.ConfigPath is provided, configuration will be loaded from that path.
// If neither is provided, DefaultConfig() will be used.
func NewServer(opts ServerOptions) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var cfg *Config
	var err error

	if opts.Config != nil {
		cfg = opts.Config
		logger.Debug("Using provided Config object for server initialization")
	} else if opts.ConfigPath != "" {
		logger.Info("Loading configuration for server initialization", "path", opts.ConfigPath)
		cfg, err = config.LoadConfigWithPath(opts.ConfigPath)
		if err != nil {
			return nil, errortypes.ConfigError(err, "Failed to load configuration from path: "+opts.ConfigPath)
		}
	} else {
		logger.Debug("No Config object or ConfigPath provided, using default configuration")
		cfg = DefaultConfig()
	}

	transport := opts.Transport
	if transport == "" {
		transport = TransportStdio
	}

	components, err := CreateComponents(cfg, logger)
	if err != nil {
		return nil, err
	}

	toolServer := server.NewToolServer(server.Options{
		Dispatcher: components.Dispatcher,
		Logger:     logger,
		Transport:  transport,
		Address:    cfg.ListenAddress(),
	})
	if err := toolServer.Initialize(); err != nil {
		components.Close()
		return nil, errortypes.ConfigError(err, "Failed to initialize MCP tool server")
	}

	logger.Info("Reminders MCP server successfully initialized", "transport", transport)
	return &Server{
		config:     cfg,
		components: components,
		toolServer: toolServer,
		transport:  transport,
		logger:     logger,
	}, nil
}

// DefaultConfig returns the default configuration for the reminders MCP service.
func DefaultConfig() *Config {
	return config.NewConfig()
}

// CreateComponents builds the dispatcher and its collaborators from cfg
// without creating a transport.
func CreateComponents(cfg *Config, logger *slog.Logger) (*Components, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}

	metrics := telemetry.NewMetricsCollector()

	runner := remindctl.NewCommandRunner(remindctl.Options{
		Executable:         cfg.Remindctl.Path,
		Timeout:            cfg.RemindctlTimeout(),
		CancelOnDisconnect: cfg.Remindctl.CancelOnDisconnect,
		Logger:             logger,
		Observer:           metrics,
	})

	components := &Components{Metrics: metrics}

	opts := dispatcher.Options{
		Runner:  runner,
		Logger:  logger,
		Metrics: metrics,
	}

	if cfg.Journal.SQLitePath != "" {
		logger.Info("Initializing SQLite call journal", "path", cfg.Journal.SQLitePath)
		j := journal.NewSQLiteJournal()
		if err := j.Initialize(cfg.Journal.SQLitePath); err != nil {
			return nil, errortypes.DatabaseError(err, "Failed to initialize SQLite call journal").
				WithField("path", cfg.Journal.SQLitePath)
		}
		components.Journal = j
		opts.Journal = j
	}

	d, err := dispatcher.New(opts)
	if err != nil {
		components.Close()
		return nil, err
	}
	components.Dispatcher = d

	logger.Debug("Components successfully initialized", "remindctl", runner.Executable())
	return components, nil
}

// Start runs the MCP transport. It blocks until the transport stops.
func (s *Server) Start() error {
	s.logger.Info("Starting reminders MCP service", "transport", s.transport)
	return s.toolServer.Start()
}

// Stop stops the service and closes the journal.
func (s *Server) Stop() error {
	s.logger.Info("Stopping reminders MCP service")
	if err := s.toolServer.Stop(); err != nil {
		s.logger.Error("Error stopping tool server", "error", err)
		return err
	}

	if err := s.components.Close(); err != nil {
		s.logger.Error("Failed to close call journal", "error", err)
		return err
	}

	s.logger.Info("Reminders MCP service stopped")
	return nil
}

// Config returns the configuration the server was built with.
func (s *Server) Config() *Config {
	return s.config
}

// Components returns the dispatcher, metrics and journal behind the server.
func (s *Server) Components() *Components {
	return s.components
}

// Tools returns the descriptors of the five reminder tools.
func (s *Server) Tools() []tools.Descriptor {
	return s.components.Dispatcher.Tools()
}

func (s *Server) execute(ctx context.Context, req tools.Request) (*dispatcher.Result, error) {
	return s.components.Dispatcher.Execute(ctx, dispatcher.NewSession(dispatcher.TransportLocal), req)
}

// ListReminders returns the reminders on list. Failures degrade to an empty slice.
func (s *Server) ListReminders(ctx context.Context, list string) ([]Reminder, error) {
	result, err := s.execute(ctx, tools.ListRequest{ListName: list})
	if err != nil {
		return nil, err
	}
	return result.Reminders, nil
}

// CreateReminder adds a reminder and returns the confirmation text.
func (s *Server) CreateReminder(ctx context.Context, title, list, due, notes string) (string, error) {
	return s.text(s.execute(ctx, tools.CreateRequest{Title: title, List: list, Due: tools.Optional(due), Notes: tools.Optional(notes)}))
}

// EditReminder changes the non-empty fields of reminder id.
func (s *Server) EditReminder(ctx context.Context, id, title, due, notes string) (string, error) {
	return s.text(s.execute(ctx, tools.EditRequest{ID: id, Title: tools.Optional(title), Due: tools.Optional(due), Notes: tools.Optional(notes)}))
}

// CompleteReminder marks reminder id as completed.
func (s *Server) CompleteReminder(ctx context.Context, id string) (string, error) {
	return s.text(s.execute(ctx, tools.CompleteRequest{ID: id}))
}

// DeleteReminder deletes reminder id without prompting.
func (s *Server) DeleteReminder(ctx context.Context, id string) (string, error) {
	return s.text(s.execute(ctx, tools.DeleteRequest{ID: id}))
}

func (s *Server) text(result *dispatcher.Result, err error) (string, error) {
	if err != nil {
		return "", err
	}
	return result.Text, nil
}
