package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/localrivet/remindersmcp/internal/errortypes"
)

// ErrorResponse represents the structure of error responses sent by the admin API
type ErrorResponse struct {
	Status  string                 `json:"status"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Common error codes
const (
	// ErrorCodeInvalidRequest indicates the client sent invalid tool arguments
	ErrorCodeInvalidRequest = "INVALID_ARGUMENTS"

	// ErrorCodeUnknownTool indicates the requested tool does not exist
	ErrorCodeUnknownTool = "UNKNOWN_TOOL"

	// ErrorCodeExternalTool indicates remindctl reported a failure
	ErrorCodeExternalTool = "EXTERNAL_TOOL_ERROR"

	// ErrorCodeExecution indicates remindctl could not be run
	ErrorCodeExecution = "EXECUTION_ERROR"

	// ErrorCodeInternalError indicates an internal server error
	ErrorCodeInternalError = "INTERNAL_ERROR"
)

// writeErrorResponse writes a structured error response to the HTTP response writer
func writeErrorResponse(w http.ResponseWriter, status int, code, message string, err error) {
	errResp := ErrorResponse{
		Status:  "error",
		Code:    code,
		Message: message,
	}

	if err != nil {
		errResp.Details = map[string]interface{}{
			"error": err.Error(),
		}

		var appErr *errortypes.AppError
		if errors.As(err, &appErr) {
			for k, v := range appErr.Fields {
				errResp.Details[k] = v
			}
		}

		slog.Warn(fmt.Sprintf("Admin API error (%s)", code),
			"status_code", status,
			"error_code", code,
			"client_message", message,
			"error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(errResp); err != nil {
		slog.Error("Failed to encode error response", "error", err)
	}
}

// HandleBadRequest handles 400 Bad Request errors
func HandleBadRequest(w http.ResponseWriter, message string, err error) {
	writeErrorResponse(w, http.StatusBadRequest, ErrorCodeInvalidRequest, message, err)
}

// HandleNotFound handles 404 Not Found errors
func HandleNotFound(w http.ResponseWriter, message string, err error) {
	writeErrorResponse(w, http.StatusNotFound, ErrorCodeUnknownTool, message, err)
}

// HandleInternalError handles 500 Internal Server Error errors
func HandleInternalError(w http.ResponseWriter, message string, err error) {
	writeErrorResponse(w, http.StatusInternalServerError, ErrorCodeInternalError, message, err)
}

// HandleBadGateway handles 502 Bad Gateway errors
func HandleBadGateway(w http.ResponseWriter, message string, err error) {
	writeErrorResponse(w, http.StatusBadGateway, ErrorCodeExternalTool, message, err)
}

// HandleUnavailable handles 503 Service Unavailable errors
func HandleUnavailable(w http.ResponseWriter, message string, err error) {
	writeErrorResponse(w, http.StatusServiceUnavailable, ErrorCodeExecution, message, err)
}

// HandleError inspects the error kind to determine the appropriate HTTP response
func HandleError(w http.ResponseWriter, err error) {
	switch errortypes.TypeOf(err) {
	case errortypes.ErrorTypeInvalidArguments:
		HandleBadRequest(w, "Invalid tool arguments", err)
	case errortypes.ErrorTypeUnknownOperation:
		HandleNotFound(w, "Unknown tool", err)
	case errortypes.ErrorTypeExternalTool:
		HandleBadGateway(w, "remindctl reported an error", err)
	case errortypes.ErrorTypeExecution:
		HandleUnavailable(w, "remindctl could not be run", err)
	default:
		HandleInternalError(w, "An unexpected error occurred", err)
	}
}
