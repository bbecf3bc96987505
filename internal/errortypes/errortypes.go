// Package errortypes provides error types and handling for the reminders MCP server.
package errortypes

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
)

// ErrorType represents the type of error that occurred
type ErrorType string

// Error types
const (
	// ErrorTypeInvalidArguments means a tool argument bag failed schema validation.
	ErrorTypeInvalidArguments ErrorType = "invalid_arguments"
	// ErrorTypeUnknownOperation means the tool name is not one of the exposed tools.
	ErrorTypeUnknownOperation ErrorType = "unknown_operation"
	// ErrorTypeExternalTool means remindctl exited non-zero and reported why on stderr.
	ErrorTypeExternalTool ErrorType = "external_tool"
	// ErrorTypeExecution means remindctl could not be run at all.
	ErrorTypeExecution ErrorType = "execution"

	ErrorTypeConfig   ErrorType = "config"
	ErrorTypeDatabase ErrorType = "database"
	ErrorTypeInternal ErrorType = "internal"
)

// AppError represents an application error with context
type AppError struct {
	Err       error
	Type      ErrorType
	Message   string
	StackInfo string
	Fields    map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Err.Error()
}

// Unwrap unwraps the error to support errors.Is and errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithField adds a field to the error for additional context
func (e *AppError) WithField(key string, value interface{}) *AppError {
	if e.Fields == nil {
		e.Fields = make(map[string]interface{})
	}
	e.Fields[key] = value
	return e
}

// WithFields adds multiple fields to the error for additional context
func (e *AppError) WithFields(fields map[string]interface{}) *AppError {
	if e.Fields == nil {
		e.Fields = make(map[string]interface{})
	}
	for k, v := range fields {
		e.Fields[k] = v
	}
	return e
}

// captureStack captures the stack trace at the call site
func captureStack() string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(4, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	var builder strings.Builder
	for {
		frame, more := frames.Next()
		// Skip testing and standard library frames
		if !strings.Contains(frame.File, "testing/") && !strings.Contains(frame.File, "/go/src/") {
			fmt.Fprintf(&builder, "%s:%d %s\n", frame.File, frame.Line, frame.Function)
		}
		if !more {
			break
		}
	}
	return builder.String()
}

// newAppError creates a new AppError with the given type, underlying error, and message
func newAppError(errType ErrorType, err error, message string) *AppError {
	if err == nil {
		err = errors.New("unknown error")
	}

	return &AppError{
		Err:       err,
		Type:      errType,
		Message:   message,
		StackInfo: captureStack(),
		Fields:    make(map[string]interface{}),
	}
}

// InvalidArguments creates an error for a tool call whose arguments failed validation.
func InvalidArguments(err error, message string) *AppError {
	return newAppError(ErrorTypeInvalidArguments, err, message)
}

// UnknownOperation creates an error for a tool name that is not exposed.
func UnknownOperation(name string) *AppError {
	return newAppError(ErrorTypeUnknownOperation, fmt.Errorf("unknown tool: %s", name), "").
		WithField("tool", name)
}

// ExternalToolError creates an error carrying remindctl's stderr text.
// The message is the text itself, trimmed, so callers see exactly what the
// external tool reported.
func ExternalToolError(stderr string) *AppError {
	return newAppError(ErrorTypeExternalTool, errors.New(strings.TrimSpace(stderr)), "")
}

// ExecutionError wraps a failure to run remindctl at all. The underlying error
// is kept unchanged so errors.Is still matches it.
func ExecutionError(err error) *AppError {
	return newAppError(ErrorTypeExecution, err, "")
}

// ConfigError creates a new configuration error
func ConfigError(err error, message string) *AppError {
	return newAppError(ErrorTypeConfig, err, message)
}

// DatabaseError creates a new database error
func DatabaseError(err error, message string) *AppError {
	return newAppError(ErrorTypeDatabase, err, message)
}

// InternalError creates a new internal error
func InternalError(err error, message string) *AppError {
	return newAppError(ErrorTypeInternal, err, message)
}

// LogError logs an AppError using the provided slog.Logger or the default slog logger.
// It logs the error message, type, stack trace, and any associated fields.
func LogError(logger *slog.Logger, err error) {
	if logger == nil {
		logger = slog.Default()
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		args := []any{
			"type", string(appErr.Type),
			"original_error", appErr.Err.Error(),
		}
		if appErr.StackInfo != "" {
			args = append(args, "stack", appErr.StackInfo)
		}
		for k, v := range appErr.Fields {
			args = append(args, k, v)
		}
		msg := appErr.Message
		if msg == "" {
			msg = appErr.Err.Error()
		}
		logger.Error(msg, args...)
	} else {
		logger.Error(err.Error(), "error", err)
	}
}

// TypeOf returns the ErrorType of err, or "" when err is not an AppError.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}

// IsInvalidArguments checks if an error is an argument validation error
func IsInvalidArguments(err error) bool {
	return TypeOf(err) == ErrorTypeInvalidArguments
}

// IsUnknownOperation checks if an error is an unknown tool error
func IsUnknownOperation(err error) bool {
	return TypeOf(err) == ErrorTypeUnknownOperation
}

// IsExternalToolError checks if an error came from remindctl's stderr
func IsExternalToolError(err error) bool {
	return TypeOf(err) == ErrorTypeExternalTool
}

// IsExecutionError checks if an error means remindctl could not be run
func IsExecutionError(err error) bool {
	return TypeOf(err) == ErrorTypeExecution
}

// IsDatabaseError checks if an error is a database error
func IsDatabaseError(err error) bool {
	return TypeOf(err) == ErrorTypeDatabase
}
