package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions.
var (
	// ErrInvalidInput indicates that the request parameters are invalid.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidCursor indicates that an offset-paged provider received a
	// cursor that is not a non-negative decimal integer.
	ErrInvalidCursor = errors.New("invalid cursor")

	// ErrUpstreamHTTP indicates that a provider answered with a non-success status.
	ErrUpstreamHTTP = errors.New("upstream http error")

	// ErrUpstream indicates a transport, timeout or decode failure talking to a provider.
	ErrUpstream = errors.New("upstream failure")

	// ErrSourceDisabled indicates that the requested provider is disabled by configuration.
	ErrSourceDisabled = errors.New("source disabled")
)

// ValidationError represents a validation error for a specific field.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// InvalidCursorError carries the rejected cursor value.
type InvalidCursorError struct {
	Cursor string
}

// Error implements the error interface.
func (e *InvalidCursorError) Error() string {
	return fmt.Sprintf("invalid cursor %q: must be a non-negative integer offset", e.Cursor)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *InvalidCursorError) Unwrap() error {
	return ErrInvalidCursor
}

// UpstreamHTTPError is a non-2xx answer from a provider.
// Body holds the provider's response text, possibly truncated.
type UpstreamHTTPError struct {
	Source     string
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *UpstreamHTTPError) Error() string {
	return fmt.Sprintf("%s API error (status %d)", e.Source, e.StatusCode)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *UpstreamHTTPError) Unwrap() error {
	return ErrUpstreamHTTP
}

// UpstreamError wraps a failure that produced no usable HTTP answer.
type UpstreamError struct {
	Source string
	Cause  error
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s upstream failure", e.Source)
	}
	return fmt.Sprintf("%s upstream failure: %v", e.Source, e.Cause)
}

// Unwrap exposes both the sentinel and the cause, so errors.Is matches
// ErrUpstream as well as context.Canceled or a net error.
func (e *UpstreamError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrUpstream}
	}
	return []error{ErrUpstream, e.Cause}
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// NewInvalidCursorError creates a new InvalidCursorError.
func NewInvalidCursorError(cursor string) *InvalidCursorError {
	return &InvalidCursorError{Cursor: cursor}
}

// NewUpstreamHTTPError creates a new UpstreamHTTPError.
func NewUpstreamHTTPError(source string, statusCode int, body string) *UpstreamHTTPError {
	return &UpstreamHTTPError{
		Source:     source,
		StatusCode: statusCode,
		Body:       body,
	}
}

// NewUpstreamError creates a new UpstreamError.
func NewUpstreamError(source string, cause error) *UpstreamError {
	return &UpstreamError{
		Source: source,
		Cause:  cause,
	}
}
