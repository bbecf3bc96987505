// Package dispatcher routes MCP tool calls to remindctl.
//
// A call is decoded and validated completely before remindctl is started;
// invalid or unknown calls never spawn a process. Reads degrade to an empty
// result when remindctl fails, writes return the failure to the caller.
package dispatcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/localrivet/remindersmcp/internal/errortypes"
	"github.com/localrivet/remindersmcp/internal/journal"
	"github.com/localrivet/remindersmcp/internal/remindctl"
	"github.com/localrivet/remindersmcp/internal/reminders"
	"github.com/localrivet/remindersmcp/internal/telemetry"
	"github.com/localrivet/remindersmcp/internal/tools"
)

// ErrMissingRunner is returned by New when no remindctl runner is supplied.
var ErrMissingRunner = errors.New("dispatcher requires a remindctl runner")

// Confirmation prefixes for the mutating tools.
const (
	createdPrefix   = "Reminder created: "
	updatedPrefix   = "Reminder updated: "
	completedPrefix = "Reminder completed: "
	deletedPrefix   = "Reminder deleted: "
)

// Options configures a Dispatcher. Only Runner is required.
type Options struct {
	Runner  remindctl.Runner
	Logger  *slog.Logger
	Journal journal.Journal
	Metrics telemetry.Recorder
}

// Dispatcher validates tool calls and runs them through remindctl.
// It keeps no per-call state and is safe for concurrent use.
type Dispatcher struct {
	runner  remindctl.Runner
	logger  *slog.Logger
	journal journal.Journal
	metrics telemetry.Recorder
}

// New creates a Dispatcher.
func New(opts Options) (*Dispatcher, error) {
	if opts.Runner == nil {
		return nil, errortypes.ConfigError(ErrMissingRunner, "cannot create dispatcher")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Dispatcher{
		runner:  opts.Runner,
		logger:  logger.With("component", "dispatcher"),
		journal: opts.Journal,
		metrics: opts.Metrics,
	}, nil
}

// Result is the successful outcome of one tool call.
type Result struct {
	Tool string `json:"tool"`

	// Reminders is set for reminders_list only and is never nil there.
	Reminders []reminders.Reminder `json:"reminders,omitempty"`

	// Text is the confirmation for the mutating tools.
	Text string `json:"text,omitempty"`
}

// Content renders the result as the text payload returned to MCP clients:
// an indented JSON array for reminders_list, the confirmation otherwise.
func (r *Result) Content() (string, error) {
	if r.Tool != tools.ToolListReminders {
		return r.Text, nil
	}

	items := r.Reminders
	if items == nil {
		items = []reminders.Reminder{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return "", errortypes.InternalError(err, "failed to encode reminders")
	}
	return string(data), nil
}

// Tools returns the descriptors of every tool the dispatcher serves.
func (d *Dispatcher) Tools() []tools.Descriptor {
	return tools.Descriptors()
}

// Call decodes raw for the named tool and executes it.
func (d *Dispatcher) Call(ctx context.Context, sess *Session, name string, raw json.RawMessage) (*Result, error) {
	start := time.Now()

	req, err := tools.Decode(name, raw)
	if err != nil {
		d.logger.Warn("Rejected tool call", "tool", name, "session", sess.id(), "error", err)
		d.record(sess, name, nil, telemetry.StatusError, start, err)
		return nil, err
	}

	return d.execute(ctx, sess, req, start)
}

// Execute runs a typed request. It goes through the same validation as
// Call, so a request built in code cannot bypass the schema.
func (d *Dispatcher) Execute(ctx context.Context, sess *Session, req tools.Request) (*Result, error) {
	if req == nil {
		return nil, errortypes.InvalidArguments(errors.New("nil request"), "")
	}
	raw, err := json.Marshal(req)
	if err != nil {
		return nil, errortypes.InternalError(err, "failed to encode request")
	}
	return d.Call(ctx, sess, req.Tool(), raw)
}

func (d *Dispatcher) execute(ctx context.Context, sess *Session, req tools.Request, start time.Time) (*Result, error) {
	argv := req.Argv()
	d.logger.Info("Processing tool call", "tool", req.Tool(), "session", sess.id(), "transport", sess.transport())

	switch req.(type) {
	case tools.ListRequest:
		items, err := d.list(ctx, argv)
		status := telemetry.StatusSuccess
		if err != nil {
			status = telemetry.StatusDegraded
		}
		d.record(sess, req.Tool(), argv, status, start, err)
		return &Result{Tool: req.Tool(), Reminders: items}, nil

	case tools.CreateRequest, tools.EditRequest, tools.CompleteRequest, tools.DeleteRequest:
		out, err := d.runner.Run(ctx, argv)
		if err != nil {
			d.record(sess, req.Tool(), argv, telemetry.StatusError, start, err)
			return nil, err
		}
		d.record(sess, req.Tool(), argv, telemetry.StatusSuccess, start, nil)
		return &Result{Tool: req.Tool(), Text: confirmation(req.Tool()) + strings.TrimSpace(out)}, nil
	}

	err := errortypes.UnknownOperation(req.Tool())
	d.record(sess, req.Tool(), nil, telemetry.StatusError, start, err)
	return nil, err
}

// list never fails the call. The returned error only reports what was
// swallowed so it can be logged and counted.
func (d *Dispatcher) list(ctx context.Context, argv []string) ([]reminders.Reminder, error) {
	out, err := d.runner.Run(ctx, argv)
	if err == nil {
		var items []reminders.Reminder
		items, err = reminders.DecodeList([]byte(out))
		if err == nil {
			return items, nil
		}
		err = errortypes.InternalError(err, "remindctl returned malformed list output")
	}

	var appErr *errortypes.AppError
	if errors.As(err, &appErr) {
		appErr.WithField("list", listName(argv)).WithField("degraded", true)
	}
	d.logger.Warn("Error listing reminders, returning empty list", "list", listName(argv))
	errortypes.LogError(d.logger, err)
	return []reminders.Reminder{}, err
}

func (d *Dispatcher) record(sess *Session, tool string, argv []string, status string, start time.Time, callErr error) {
	elapsed := time.Since(start)
	if d.metrics != nil {
		d.metrics.RecordToolCall(tool, status, elapsed, callErr)
	}
	if d.journal == nil {
		return
	}

	entry := journal.Entry{
		SessionID: sess.id(),
		Tool:      tool,
		Argv:      argv,
		Status:    status,
		Duration:  elapsed,
		CreatedAt: start,
	}
	if entry.Argv == nil {
		entry.Argv = []string{}
	}
	if callErr != nil {
		entry.Error = callErr.Error()
	}
	if err := d.journal.Record(entry); err != nil {
		errortypes.LogError(d.logger, errortypes.DatabaseError(err, "failed to journal tool call").
			WithField("tool", tool))
	}
}

func confirmation(tool string) string {
	switch tool {
	case tools.ToolCreateReminder:
		return createdPrefix
	case tools.ToolEditReminder:
		return updatedPrefix
	case tools.ToolCompleteReminder:
		return completedPrefix
	case tools.ToolDeleteReminder:
		return deletedPrefix
	}
	return fmt.Sprintf("%s: ", tool)
}

func listName(argv []string) string {
	if len(argv) < 2 {
		return ""
	}
	return argv[1]
}
