// File: internal/response/response.go
package response

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"meritboard/internal/middleware"
	"meritboard/internal/models"
	"meritboard/internal/services"

	"go.uber.org/zap"
)

// Envelope is the standard success wrapper for API responses.
type Envelope struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// ErrorEnvelope is the standard error wrapper for API responses.
type ErrorEnvelope struct {
	Success   bool       `json:"success"`
	Error     *ErrorBody `json:"error"`
	RequestID string     `json:"request_id,omitempty"`
}

// ErrorBody carries the error details in an error response.
type ErrorBody struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Builder writes JSON responses in a uniform shape.
type Builder struct {
	logger *zap.Logger
}

// NewBuilder creates a response builder
func NewBuilder(logger *zap.Logger) *Builder {
	return &Builder{logger: logger}
}

// WriteJSON writes a success envelope with the given status.
func (b *Builder) WriteJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	envelope := Envelope{
		Success:   true,
		Data:      data,
		RequestID: middleware.GetRequestID(r.Context()),
	}
	if err := json.NewEncoder(w).Encode(envelope); err != nil {
		b.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// WriteCreated writes a 201 success envelope.
func (b *Builder) WriteCreated(w http.ResponseWriter, r *http.Request, data interface{}) {
	b.WriteJSON(w, r, http.StatusCreated, data)
}

// WriteError writes the error in the standard error shape. Service
// errors keep their status and code; anything else becomes an opaque
// 500 so internals never leak to clients.
func (b *Builder) WriteError(w http.ResponseWriter, r *http.Request, err error) {
	requestLogger := middleware.GetRequestLogger(r.Context())

	body := &ErrorBody{
		Type:    "INTERNAL_ERROR",
		Message: "internal server error",
	}
	status := http.StatusInternalServerError

	if svcErr, ok := services.AsServiceError(err); ok {
		body.Type = svcErr.Type
		body.Message = svcErr.Message
		body.Code = svcErr.Code
		status = svcErr.GetStatusCode()
	}

	if status >= 500 {
		requestLogger.Error("Request failed", zap.Error(err))
	} else {
		requestLogger.Warn("Request rejected", zap.Error(err))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	envelope := ErrorEnvelope{
		Success:   false,
		Error:     body,
		RequestID: middleware.GetRequestID(r.Context()),
	}
	if encodeErr := json.NewEncoder(w).Encode(envelope); encodeErr != nil {
		b.logger.Error("Failed to encode error response", zap.Error(encodeErr))
	}
}

// WriteValidationError writes a 400 with a validation error body.
func (b *Builder) WriteValidationError(w http.ResponseWriter, r *http.Request, message string) {
	b.WriteError(w, r, services.NewValidationError(message, nil))
}

// ParsePagination reads limit/offset/sort/order query parameters.
func ParsePagination(r *http.Request) models.PaginationParams {
	params := models.PaginationParams{}

	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		params.Limit = limit
	}
	if offset, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil {
		params.Offset = offset
	}
	params.Sort = strings.TrimSpace(r.URL.Query().Get("sort"))
	params.Order = strings.ToLower(strings.TrimSpace(r.URL.Query().Get("order")))

	params.Normalize()
	return params
}
