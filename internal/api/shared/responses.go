package shared

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/phrazzld/recruiter-api/internal/platform/logger"
	"github.com/phrazzld/recruiter-api/internal/redact"
)

// ErrorResponse defines the standard error response structure.
type ErrorResponse struct {
	Error    string   `json:"error"`
	Category string   `json:"category"`
	Details  []string `json:"details,omitempty"`
	Detail   string   `json:"detail,omitempty"`
	Code     int      `json:"-"` // Not serialized to JSON, used for logging
	TraceID  string   `json:"trace_id,omitempty"`
}

// ResponseOption defines a function to customize response behavior.
type ResponseOption func(*responseOptions)

// responseOptions holds configurable options for error responses.
type responseOptions struct {
	elevateLogLevel bool
	details         []string
	exposeDetail    bool
}

// WithElevatedLogLevel raises 4xx errors to WARN level instead of the
// default DEBUG level.
func WithElevatedLogLevel() ResponseOption {
	return func(opts *responseOptions) {
		opts.elevateLogLevel = true
	}
}

// WithDetails attaches per-field messages to the response.
func WithDetails(details []string) ResponseOption {
	return func(opts *responseOptions) {
		opts.details = details
	}
}

// WithErrorDetail controls whether the redacted error text is included in
// the response body.
func WithErrorDetail(expose bool) ResponseOption {
	return func(opts *responseOptions) {
		opts.exposeDetail = expose
	}
}

// RespondWithJSON writes a JSON response with the given status code and data.
func RespondWithJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.FromContextOrDefault(r.Context(), slog.Default()).
			Error("failed to encode JSON response", "error", err)
	}
}

// NewErrorResponse builds an error body carrying the request's trace ID.
func NewErrorResponse(r *http.Request, status int, category, message string) ErrorResponse {
	return ErrorResponse{
		Error:    message,
		Category: category,
		Code:     status,
		TraceID:  GetTraceID(r.Context()),
	}
}

// RespondWithError writes a JSON error response with the given status code,
// category and message.
func RespondWithError(w http.ResponseWriter, r *http.Request, status int, category, message string) {
	RespondWithErrorAndLog(w, r, status, category, message, nil)
}

// RespondWithErrorAndLog writes a JSON error response and also logs the
// redacted error.
//
// Log level strategy:
// - 5xx errors: ERROR
// - 429 Too Many Requests: WARN
// - other 4xx: DEBUG, or WARN with WithElevatedLogLevel
func RespondWithErrorAndLog(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	category string,
	userMessage string,
	err error,
	opts ...ResponseOption,
) {
	responseOpts := responseOptions{}
	for _, opt := range opts {
		opt(&responseOpts)
	}

	resp := NewErrorResponse(r, status, category, userMessage)
	resp.Details = responseOpts.details

	logAttrs := []slog.Attr{
		slog.String("trace_id", resp.TraceID),
		slog.String("path", r.URL.Path),
		slog.String("method", r.Method),
		slog.Int("status_code", status),
		slog.String("category", category),
		slog.String("user_message", userMessage),
	}
	if len(resp.Details) > 0 {
		logAttrs = append(logAttrs, slog.Any("details", resp.Details))
	}
	if err != nil {
		redacted := redact.Error(err)
		logAttrs = append(logAttrs,
			slog.String("error", redacted),
			slog.String("error_type", fmt.Sprintf("%T", err)))
		if responseOpts.exposeDetail {
			resp.Detail = redacted
		}
	}

	logLevel := LogLevelForStatus(status, responseOpts.elevateLogLevel)
	logger.FromContextOrDefault(r.Context(), slog.Default()).
		LogAttrs(r.Context(), logLevel, "API error response", logAttrs...)

	RespondWithJSON(w, r, status, resp)
}

// LogLevelForStatus picks the log level for an error response.
func LogLevelForStatus(status int, elevate bool) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status == http.StatusTooManyRequests:
		return slog.LevelWarn
	case elevate && status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelDebug
	}
}
