// Package errors provides custom error types for the placement system.
// These errors enable programmatic error checking across the workflow,
// eligibility and publish packages, and keep the HTTP status of a failed
// backend call recoverable after it has been wrapped.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors for the placement system
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrNetwork indicates a transport-level failure talking to the backend
	ErrNetwork = errors.New("network failure")

	// ErrStaleState indicates that local state no longer matches the backend
	ErrStaleState = errors.New("stale state")

	// ErrBackendUnavailable indicates the backend answered with a 5xx status
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrActionInFlight indicates a mutating action was requested while
	// another one is still pending on the same session
	ErrActionInFlight = errors.New("action already in flight")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")
)

// NotFoundError represents an error when a resource is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError represents a validation failure, either detected locally
// or reported by the backend as a rejected payload.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// NetworkError represents a failed round trip to the backend (DNS, refused
// connection, timeout, truncated body).
type NetworkError struct {
	Method   string
	Endpoint string
	Err      error
}

// Error implements the error interface
func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s %s: %v", e.Method, e.Endpoint, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *NetworkError) Is(target error) bool {
	return target == ErrNetwork
}

// NewNetworkError creates a new NetworkError
func NewNetworkError(method, endpoint string, err error) *NetworkError {
	return &NetworkError{Method: method, Endpoint: endpoint, Err: err}
}

// StaleStateError represents an operation against an entity whose local
// copy no longer matches what the backend holds.
type StaleStateError struct {
	Resource string
	ID       string
	Message  string
}

// Error implements the error interface
func (e *StaleStateError) Error() string {
	return fmt.Sprintf("stale %s %s: %s", e.Resource, e.ID, e.Message)
}

// Is implements errors.Is support
func (e *StaleStateError) Is(target error) bool {
	return target == ErrStaleState
}

// NewStaleStateError creates a new StaleStateError
func NewStaleStateError(resource, id, message string) *StaleStateError {
	return &StaleStateError{Resource: resource, ID: id, Message: message}
}

// APIError represents a non-2xx answer from the PMS backend that has no
// more specific mapping.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
	Err        error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("API error from %s (status %d): %s", e.Endpoint, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error from %s: %s", e.Endpoint, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *APIError) Is(target error) bool {
	if e.StatusCode >= 500 {
		return target == ErrBackendUnavailable
	}
	return false
}

// NewAPIError creates a new APIError
func NewAPIError(endpoint string, statusCode int, message string) *APIError {
	return &APIError{
		Endpoint:   endpoint,
		StatusCode: statusCode,
		Message:    message,
	}
}

// PublishError represents a failed publish commit for a drive. The
// eligibility overlay is left untouched so the commit can be retried.
type PublishError struct {
	DriveID string
	Jobs    int
	Err     error
}

// Error implements the error interface
func (e *PublishError) Error() string {
	return fmt.Sprintf("failed to publish drive %s (%d jobs): %v", e.DriveID, e.Jobs, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *PublishError) Unwrap() error {
	return e.Err
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "json", "yaml"
	Source  string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("parse error in %s from %s: %s", e.Format, e.Source, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(format, source string, message string, err error) *ParseError {
	return &ParseError{
		Format:  format,
		Source:  source,
		Message: message,
		Err:     err,
	}
}

// ResourceError represents an error during resource operations
type ResourceError struct {
	Operation string // "create", "update", "delete", "fetch"
	Resource  string // "drive", "company", "job", "requirement"
	ID        string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ResourceError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("failed to %s %s %s: %s", e.Operation, e.Resource, e.ID, e.Message)
	}
	return fmt.Sprintf("failed to %s %s: %s", e.Operation, e.Resource, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ResourceError) Unwrap() error {
	return e.Err
}

// NewResourceError creates a new ResourceError
func NewResourceError(operation, resource, id string, err error) *ResourceError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ResourceError{
		Operation: operation,
		Resource:  resource,
		ID:        id,
		Message:   message,
		Err:       err,
	}
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsNetwork checks if an error is a transport failure
func IsNetwork(err error) bool {
	return errors.Is(err, ErrNetwork)
}

// IsStaleState checks if an error reports stale local state
func IsStaleState(err error) bool {
	return errors.Is(err, ErrStaleState)
}

// IsActionInFlight checks if an error was caused by a busy session
func IsActionInFlight(err error) bool {
	return errors.Is(err, ErrActionInFlight)
}

// IsCanceled checks if an error is a cancellation error
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}

// Helper wrapping functions for common patterns

// WrapResource wraps an error as a ResourceError
func WrapResource(operation, resource, id string, err error) error {
	if err == nil {
		return nil
	}
	return NewResourceError(operation, resource, id, err)
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, source string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, source, err.Error(), err)
}

// Message returns the human-readable message stored in scoped error slots.
// Typed errors keep their own text; wrapped resource errors surface the
// innermost backend message.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var re *ResourceError
	if errors.As(err, &re) && re.Err != nil {
		return Message(re.Err)
	}
	return err.Error()
}
