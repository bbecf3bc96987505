package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/localrivet/remindersmcp/internal/dispatcher"
	"github.com/localrivet/remindersmcp/internal/errortypes"
)

// maxArgumentsBytes bounds the argument bag accepted by POST /tools/{name}.
const maxArgumentsBytes = 1 << 20

// AdminOptions configures the admin HTTP surface.
type AdminOptions struct {
	Dispatcher *dispatcher.Dispatcher
	Logger     *slog.Logger

	// Metrics serves GET /metrics. The route is omitted when nil.
	Metrics http.Handler
}

// NewAdminRouter builds the admin routes:
//
//	GET  /healthz
//	GET  /metrics
//	GET  /tools
//	POST /tools/{name}
func NewAdminRouter(opts AdminOptions) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	a := &admin{dispatcher: opts.Dispatcher, logger: logger.With("component", "admin")}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", a.health)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}
	r.Get("/tools", a.listTools)
	r.Post("/tools/{name}", a.callTool)

	return r
}

type admin struct {
	dispatcher *dispatcher.Dispatcher
	logger     *slog.Logger
}

func (a *admin) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *admin) listTools(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.dispatcher.Tools())
}

func (a *admin) callTool(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	body, err := io.ReadAll(io.LimitReader(r.Body, maxArgumentsBytes+1))
	if err != nil {
		HandleBadRequest(w, "Failed to read request body", err)
		return
	}
	if len(body) > maxArgumentsBytes {
		writeErrorResponse(w, http.StatusRequestEntityTooLarge, ErrorCodeInvalidRequest, "Request body too large",
			errortypes.InvalidArguments(errors.New("request body too large"), "").
				WithField("limit_bytes", maxArgumentsBytes))
		return
	}
	if len(body) > 0 && !json.Valid(body) {
		HandleBadRequest(w, "Request body is not valid JSON",
			errortypes.InvalidArguments(errors.New("malformed JSON body"), ""))
		return
	}

	sess := &dispatcher.Session{
		ID:        middleware.GetReqID(r.Context()),
		Transport: dispatcher.TransportHTTP,
	}
	result, err := a.dispatcher.Call(r.Context(), sess, name, body)
	if err != nil {
		HandleError(w, err)
		return
	}

	content, err := result.Content()
	if err != nil {
		HandleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"tool":    result.Tool,
		"content": content,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode admin response", "error", err)
	}
}

// AdminServer is the optional admin HTTP listener.
type AdminServer struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewAdminServer creates an admin listener on addr serving handler.
func NewAdminServer(addr string, handler http.Handler, logger *slog.Logger) *AdminServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminServer{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger.With("component", "admin"),
	}
}

// Start listens until Stop is called. A clean shutdown returns nil.
func (s *AdminServer) Start() error {
	s.logger.Info("Starting admin HTTP server", "address", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop shuts the listener down, waiting for in-flight requests until ctx ends.
func (s *AdminServer) Stop(ctx context.Context) error {
	s.logger.Info("Stopping admin HTTP server")
	return s.httpServer.Shutdown(ctx)
}
