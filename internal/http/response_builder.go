// Package http provides HTTP server and handler implementations.
//
// This file implements the Builder Pattern for JSON responses. Notices from
// the command layer are echoed in an HX-Trigger "show-notification" event so
// a browser front end can toast them without parsing the body.

package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"fintrack/internal/app"
	"fintrack/internal/core"
	"fintrack/internal/transfer"
)

// Notification display durations in milliseconds.
const (
	successNotificationMs = 3000
	errorNotificationMs   = 5000
)

// ResponseBuilder provides a fluent API for building responses.
type ResponseBuilder struct {
	triggers   map[string]any
	statusCode int
	body       []byte
	headers    map[string]string
	err        error
}

// NewResponse creates a new response builder with default 200 status.
func NewResponse() *ResponseBuilder {
	return &ResponseBuilder{
		triggers:   make(map[string]any),
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *ResponseBuilder) Status(code int) *ResponseBuilder {
	b.statusCode = code
	return b
}

// Trigger adds a named event to the HX-Trigger header.
func (b *ResponseBuilder) Trigger(name string, data any) *ResponseBuilder {
	b.triggers[name] = data
	return b
}

// TriggerLedgerChanged tells clients to refresh their ledger view.
func (b *ResponseBuilder) TriggerLedgerChanged() *ResponseBuilder {
	return b.Trigger("ledger:changed", struct{}{})
}

// Notice adds a show-notification trigger for n. A nil notice is ignored.
func (b *ResponseBuilder) Notice(n *app.Notice) *ResponseBuilder {
	if n == nil {
		return b
	}
	duration := successNotificationMs
	if n.Kind == app.NoticeError || n.Kind == app.NoticeWarning {
		duration = errorNotificationMs
	}
	return b.Trigger("show-notification", map[string]any{
		"type":     string(n.Kind),
		"message":  n.Message,
		"duration": duration,
	})
}

// Header adds a custom header to the response.
func (b *ResponseBuilder) Header(name, value string) *ResponseBuilder {
	b.headers[name] = value
	return b
}

// JSON encodes v as the response body.
func (b *ResponseBuilder) JSON(v any) *ResponseBuilder {
	data, err := json.Marshal(v)
	if err != nil {
		b.err = err
		return b
	}
	b.headers["Content-Type"] = "application/json"
	b.body = append(data, '\n')
	return b
}

// Attachment sends data as a file download.
func (b *ResponseBuilder) Attachment(name, contentType string, data []byte) *ResponseBuilder {
	b.headers["Content-Type"] = contentType
	b.headers["Content-Disposition"] = `attachment; filename="` + name + `"`
	b.headers["Content-Length"] = strconv.Itoa(len(data))
	b.body = data
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *ResponseBuilder) Write(w http.ResponseWriter) {
	if b.err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if len(b.triggers) > 0 {
		if triggerJSON, err := json.Marshal(b.triggers); err == nil {
			w.Header().Set("HX-Trigger", string(triggerJSON))
		}
	}
	w.WriteHeader(b.statusCode)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
	Codes  map[string]string `json:"codes,omitempty"`
	Notice *app.Notice       `json:"notice,omitempty"`
}

// ErrorResponse creates a JSON error response.
func ErrorResponse(statusCode int, message string) *ResponseBuilder {
	return NewResponse().Status(statusCode).JSON(ErrorBody{Error: message})
}

// BadRequestError creates a 400 Bad Request error response.
func BadRequestError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

// NotFoundError creates a 404 Not Found error response.
func NotFoundError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

// InternalServerError creates a 500 Internal Server Error response.
func InternalServerError(message string) *ResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}

// CommandError maps a command failure to a status code and a body carrying
// the field errors and the user notice.
func CommandError(err error, notice *app.Notice) *ResponseBuilder {
	body := ErrorBody{Error: err.Error(), Notice: notice}
	if v, ok := core.AsValidation(err); ok {
		body.Fields = v.Fields()
		body.Codes = make(map[string]string, len(v))
		for _, fe := range v {
			body.Codes[fe.Field] = fe.Code()
		}
	}
	return NewResponse().Status(StatusFor(err)).Notice(notice).JSON(body)
}

// StatusFor maps domain errors to HTTP status codes.
func StatusFor(err error) int {
	if _, ok := core.AsValidation(err); ok {
		return http.StatusUnprocessableEntity
	}
	switch {
	case errors.Is(err, core.ErrInvalidCap):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrTransactionNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrUnknownSortKey),
		errors.Is(err, transfer.ErrNotAnArray),
		errors.Is(err, transfer.ErrParseFailure),
		errors.Is(err, transfer.ErrUnsupportedFormat):
		return http.StatusBadRequest
	case errors.Is(err, transfer.ErrEmptyExport):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
