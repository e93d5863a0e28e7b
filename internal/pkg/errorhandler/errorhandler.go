package errorhandler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rently/rently-api/internal/pkg/logger"
	"github.com/rently/rently-api/internal/pkg/response"
)

// HandleError handles an error response with full logging.
// It logs the error details and sends a formatted error response.
func HandleError(ctx context.Context, w http.ResponseWriter, status int, code, message string, err error) {
	event := logger.FromContext(ctx).Error().
		Str("request_id", getRequestID(ctx)).
		Str("error_code", code).
		Str("error_message", message).
		Int("status_code", status)

	if err != nil {
		event.Err(err)
	}

	event.Msg("Request error")

	response.Error(w, status, code, message)
}

// Report is the shared error-reporting path for failures that happen outside
// a request/response cycle (mutation rollbacks, push-channel handlers).
// Every gateway failure is reported exactly once, through here.
func Report(ctx context.Context, err error, msg string) {
	logger.FromContext(ctx).Error().
		Str("request_id", getRequestID(ctx)).
		Err(err).
		Msg(msg)
}

// HandlePanicError logs and handles panics with full stack trace
func HandlePanicError(ctx context.Context, w http.ResponseWriter, panicErr interface{}, stackTrace string) {
	logger.FromContext(ctx).Error().
		Str("request_id", getRequestID(ctx)).
		Interface("panic_error", panicErr).
		Str("panic_stack", stackTrace).
		Msg("Request panic error")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)

	resp := response.Response{
		Success: false,
		Error: &response.ErrorInfo{
			Code:    "PANIC_ERROR",
			Message: "Internal server panic",
		},
	}

	json.NewEncoder(w).Encode(resp)
}

func getRequestID(ctx context.Context) string {
	if reqID := ctx.Value("request_id"); reqID != nil {
		if id, ok := reqID.(string); ok {
			return id
		}
	}
	return "unknown"
}
