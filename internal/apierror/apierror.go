// Package apierror provides standardized error response structures for the API
// and the typed workflow errors the service layer raises. All errors returned
// to clients go through this package to ensure consistency and to prevent
// leaking internal details (stack traces, DB errors, etc.).
package apierror

import "fmt"

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// FieldErrors wraps multiple field-level errors into a single envelope.
type FieldErrors struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewFieldErrors(fields map[string]string) *FieldErrors {
	return &FieldErrors{Detail: "Dados inválidos", Fields: fields}
}

// ── Workflow error taxonomy ──────────────────────────────────────────────────
// Services raise these; handlers translate them to HTTP status codes without
// inspecting message text.

// ValidationError marks malformed or out-of-range input. Field names the
// offending field in the caller's language ("Preço", "Quantidade", …).
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func Validationf(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// NotFoundError marks a referenced entity that does not exist.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

func NotFound(msg string) *NotFoundError { return &NotFoundError{Message: msg} }

// InsufficientStockError names the product whose on-hand quantity cannot cover
// the requested amount.
type InsufficientStockError struct {
	ProductName string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Estoque insuficiente para %s", e.ProductName)
}

// InvalidStateError marks an operation attempted against an order that is not
// in a compatible lifecycle state.
type InvalidStateError struct {
	Message string
}

func (e *InvalidStateError) Error() string { return e.Message }

func InvalidState(msg string) *InvalidStateError { return &InvalidStateError{Message: msg} }

// PrecheckoutError marks a checkout attempted while items are not yet ready.
type PrecheckoutError struct {
	Message string
}

func (e *PrecheckoutError) Error() string { return e.Message }

func Precheckout(msg string) *PrecheckoutError { return &PrecheckoutError{Message: msg} }
