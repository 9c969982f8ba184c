package errors

import (
	"encoding/json"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// ErrorResponse is the API error body. The web client reads the "error" field.
type ErrorResponse struct {
	Error     string                 `json:"error"`
	Type      string                 `json:"type"`
	Code      string                 `json:"code,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

const genericMessage = "An internal error occurred"

// ErrorHandler turns errors into JSON responses. In debug mode unknown errors
// expose their message and AppErrors include their stack trace.
type ErrorHandler struct {
	logger *zap.Logger
	debug  bool
}

func NewErrorHandler(logger *zap.Logger, debug bool) *ErrorHandler {
	return &ErrorHandler{logger: logger, debug: debug}
}

// Handle logs err and writes the response for it. A nil err writes nothing.
func (h *ErrorHandler) Handle(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	status, body := h.describe(err)
	body.RequestID = requestID(r)

	fields := []zap.Field{
		zap.Error(err),
		zap.String("error_type", body.Type),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("request_id", body.RequestID),
		zap.Int("status", status),
	}
	switch {
	case status >= http.StatusInternalServerError:
		h.logger.Error("Request failed", fields...)
	default:
		h.logger.Warn("Request rejected", fields...)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(body); encErr != nil {
		h.logger.Error("Failed to encode error response", zap.Error(encErr))
	}
}

func (h *ErrorHandler) describe(err error) (int, ErrorResponse) {
	appErr := GetAppError(err)
	if appErr == nil {
		body := ErrorResponse{Error: genericMessage, Type: string(ErrorTypeInternal)}
		if h.debug {
			body.Error = err.Error()
		}
		return http.StatusInternalServerError, body
	}

	body := ErrorResponse{
		Error:   appErr.Message,
		Type:    string(appErr.Type),
		Code:    appErr.Code,
		Details: appErr.Details,
	}
	if h.debug && appErr.StackTrace != "" {
		details := map[string]interface{}{"stack_trace": appErr.StackTrace}
		for k, v := range appErr.Details {
			details[k] = v
		}
		body.Details = details
	}
	return HTTPStatus(appErr), body
}

// requestID prefers the caller's X-Request-ID over the one chi generated
func requestID(r *http.Request) string {
	if id := r.Header.Get("X-Request-ID"); id != "" {
		return id
	}
	return chimiddleware.GetReqID(r.Context())
}
