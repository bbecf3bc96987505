// Package server provides the MCP server implementation for the reminders service.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/localrivet/gomcp/server"
	"github.com/localrivet/remindersmcp/internal/dispatcher"
	"github.com/localrivet/remindersmcp/internal/errortypes"
	"github.com/localrivet/remindersmcp/internal/tools"
)

// Common server error types
var (
	ErrServerNotInitialized = errors.New("server not initialized")
	ErrMissingDispatcher    = errors.New("dispatcher is nil")
	ErrUnknownTransport     = errors.New("unknown transport")
)

// Options configures an MCPToolServer.
type Options struct {
	Dispatcher *dispatcher.Dispatcher
	Logger     *slog.Logger

	// Transport is dispatcher.TransportStdio or dispatcher.TransportSSE.
	// It is fixed for the lifetime of the server.
	Transport string

	// Address is the HTTP+SSE listen address, e.g. ":6371".
	Address string
}

// MCPToolServer implements the ToolServer interface
// for handling MCP tool calls related to reminders.
type MCPToolServer struct {
	dispatcher *dispatcher.Dispatcher
	logger     *slog.Logger
	transport  string
	address    string
	session    *dispatcher.Session
	mcpServer  server.Server

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

// NewToolServer creates a new MCPToolServer instance.
func NewToolServer(opts Options) *MCPToolServer {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	transport := opts.Transport
	if transport == "" {
		transport = dispatcher.TransportStdio
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &MCPToolServer{
		dispatcher: opts.Dispatcher,
		logger:     logger.With("component", "server"),
		transport:  transport,
		address:    opts.Address,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Transport returns the transport the server was built for.
func (s *MCPToolServer) Transport() string {
	return s.transport
}

// Initialize creates the MCP server and registers the reminder tools.
func (s *MCPToolServer) Initialize() error {
	s.logger.Info("Initializing MCP reminders tool server", "transport", s.transport)

	if s.dispatcher == nil {
		return errortypes.ConfigError(ErrMissingDispatcher, "server initialization failed")
	}
	if s.transport != dispatcher.TransportStdio && s.transport != dispatcher.TransportSSE {
		return errortypes.ConfigError(ErrUnknownTransport, "server initialization failed").
			WithField("transport", s.transport)
	}

	s.session = dispatcher.NewSession(s.transport)
	s.mcpServer = Register(server.NewServer("remindersmcp"), s.dispatcher, s.session, s.callContext)

	s.logger.Info("MCP reminders tool server initialized successfully",
		"tool_count", len(tools.Names()), "session", s.session.ID)
	return nil
}

// Start runs the MCP server on its transport. It blocks until the
// transport stops.
func (s *MCPToolServer) Start() error {
	if s.mcpServer == nil {
		return errortypes.ConfigError(ErrServerNotInitialized, "cannot start server")
	}

	switch s.transport {
	case dispatcher.TransportSSE:
		s.logger.Info("Starting MCP reminders tool server", "transport", s.transport, "address", s.address)
		return s.mcpServer.AsSSE(s.address).Run()
	default:
		s.logger.Info("Starting MCP reminders tool server", "transport", s.transport)
		return s.mcpServer.AsStdio().Run()
	}
}

// Stop cancels the server context. Calls running with cancellation
// enabled are interrupted; the stdio transport exits when stdin closes.
func (s *MCPToolServer) Stop() error {
	s.logger.Info("Stopping MCP reminders tool server")
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancel()
	return nil
}

func (s *MCPToolServer) callContext() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx
}

// Register adds the five reminder tools to srv. Every handler hands the
// client's arguments to d, so MCP calls go through the same validation as
// any other caller. ctxFn supplies the context for each call
// and may be nil.
func Register(srv server.Server, d *dispatcher.Dispatcher, sess *dispatcher.Session, ctxFn func() context.Context) server.Server {
	h := &handlers{dispatcher: d, session: sess, ctxFn: ctxFn}

	descriptions := make(map[string]string, len(tools.Names()))
	for _, desc := range tools.Descriptors() {
		descriptions[desc.Name] = desc.Description
	}

	return srv.
		Tool(tools.ToolListReminders, descriptions[tools.ToolListReminders], h.handleList).
		Tool(tools.ToolCreateReminder, descriptions[tools.ToolCreateReminder], h.handleCreate).
		Tool(tools.ToolEditReminder, descriptions[tools.ToolEditReminder], h.handleEdit).
		Tool(tools.ToolCompleteReminder, descriptions[tools.ToolCompleteReminder], h.handleComplete).
		Tool(tools.ToolDeleteReminder, descriptions[tools.ToolDeleteReminder], h.handleDelete)
}

type handlers struct {
	dispatcher *dispatcher.Dispatcher
	session    *dispatcher.Session
	ctxFn      func() context.Context
}

// handleList handles the reminders_list MCP tool call.
func (h *handlers) handleList(ctx *server.Context, req tools.ListRequest) (string, error) {
	return h.call(ctx, req)
}

// handleCreate handles the reminders_create MCP tool call.
func (h *handlers) handleCreate(ctx *server.Context, req tools.CreateRequest) (string, error) {
	return h.call(ctx, req)
}

// handleEdit handles the reminders_edit MCP tool call.
func (h *handlers) handleEdit(ctx *server.Context, req tools.EditRequest) (string, error) {
	return h.call(ctx, req)
}

// handleComplete handles the reminders_complete MCP tool call.
func (h *handlers) handleComplete(ctx *server.Context, req tools.CompleteRequest) (string, error) {
	return h.call(ctx, req)
}

// handleDelete handles the reminders_delete MCP tool call.
func (h *handlers) handleDelete(ctx *server.Context, req tools.DeleteRequest) (string, error) {
	return h.call(ctx, req)
}

// call forwards the client's arguments to the dispatcher. gomcp hands the
// handler a weakly converted struct, so when the raw arguments are available
// they are validated instead of req.
func (h *handlers) call(mcpCtx *server.Context, req tools.Request) (string, error) {
	var args interface{} = req
	if mcpCtx != nil && mcpCtx.Request != nil {
		args = mcpCtx.Request.ToolArgs
		if mcpCtx.Request.ToolArgs == nil {
			args = map[string]interface{}{}
		}
	}

	raw, err := json.Marshal(args)
	if err != nil {
		return "", errortypes.InternalError(err, "failed to encode tool arguments")
	}

	ctx := context.Background()
	if h.ctxFn != nil {
		ctx = h.ctxFn()
	}

	result, err := h.dispatcher.Call(ctx, h.session, req.Tool(), raw)
	if err != nil {
		return "", err
	}
	return result.Content()
}
