// Package remindctl runs the external remindctl executable that owns the
// reminders store.
package remindctl

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/localrivet/remindersmcp/internal/errortypes"
)

// DefaultExecutable is the command name looked up on PATH when no path is configured.
const DefaultExecutable = "remindctl"

// Runner executes one remindctl invocation and returns its standard output.
type Runner interface {
	Run(ctx context.Context, args []string) (string, error)
}

// ExecObserver is notified after every run. telemetry.MetricsCollector implements it.
type ExecObserver interface {
	RecordExec(subcommand string, duration time.Duration, err error)
}

// Options configures a CommandRunner.
type Options struct {
	// Executable is the program to run. Empty means DefaultExecutable.
	Executable string

	// Timeout bounds a single run. Zero means no timeout.
	Timeout time.Duration

	// CancelOnDisconnect kills the process when the caller's context is done.
	// When false a started process always runs to completion.
	CancelOnDisconnect bool

	Logger   *slog.Logger
	Observer ExecObserver
}

// CommandRunner runs remindctl as a child process without a shell.
type CommandRunner struct {
	executable         string
	timeout            time.Duration
	cancelOnDisconnect bool
	logger             *slog.Logger
	observer           ExecObserver
}

// NewCommandRunner creates a CommandRunner from opts.
func NewCommandRunner(opts Options) *CommandRunner {
	executable := opts.Executable
	if executable == "" {
		executable = DefaultExecutable
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &CommandRunner{
		executable:         executable,
		timeout:            opts.Timeout,
		cancelOnDisconnect: opts.CancelOnDisconnect,
		logger:             logger.With("component", "remindctl"),
		observer:           opts.Observer,
	}
}

// Executable returns the program name or path the runner invokes.
func (r *CommandRunner) Executable() string {
	return r.executable
}

// Run executes remindctl with args and blocks until it exits.
//
// A zero exit status returns stdout verbatim. A non-zero exit with stderr
// output returns an external tool error whose message is the trimmed stderr.
// Any other failure, such as a missing executable, is returned as an
// execution error wrapping the original error.
func (r *CommandRunner) Run(ctx context.Context, args []string) (string, error) {
	if !r.cancelOnDisconnect {
		ctx = context.WithoutCancel(ctx)
	}
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.executable, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.logger.Debug("Running remindctl", "args", args)
	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if err != nil {
		err = classify(err, stderr.String())
	}
	if r.observer != nil {
		r.observer.RecordExec(subcommand(args), elapsed, err)
	}
	if err != nil {
		r.logger.Debug("remindctl failed", "args", args, "duration", elapsed, "error", err)
		return "", err
	}

	r.logger.Debug("remindctl finished", "args", args, "duration", elapsed, "stdout_bytes", stdout.Len())
	return stdout.String(), nil
}

func classify(runErr error, stderr string) error {
	if msg := strings.TrimSpace(stderr); msg != "" {
		return errortypes.ExternalToolError(msg).WithField("cause", runErr.Error())
	}
	return errortypes.ExecutionError(runErr)
}

func subcommand(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
