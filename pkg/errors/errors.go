package errors

import (
	"fmt"
)

// Error types
const (
	// ErrInvalidArgument is returned when an invalid argument is provided
	ErrInvalidArgument = "invalid_argument"

	// ErrLocationService is returned when the identity location service
	// for a target deployment could not be resolved
	ErrLocationService = "location_service"

	// ErrTransport is returned when there is an error with the transport
	ErrTransport = "transport"

	// ErrSecretStore is returned when there is an error with the secret store
	ErrSecretStore = "secret_store"

	// ErrInternal is returned when there is an internal error
	ErrInternal = "internal"
)

// Error represents an error in the application
type Error struct {
	// Type is the error type
	Type string

	// Message is the error message
	Message string

	// Cause is the underlying error
	Cause error
}

// Error returns the error message
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %s", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new error
func NewError(errorType, message string, cause error) *Error {
	return &Error{
		Type:    errorType,
		Message: message,
		Cause:   cause,
	}
}

// NewInvalidArgumentError creates a new invalid argument error
func NewInvalidArgumentError(message string, cause error) *Error {
	return NewError(ErrInvalidArgument, message, cause)
}

// NewLocationServiceError creates a new location service error for the
// given target. The target is recorded in the message so callers can report
// which deployment failed resolution.
func NewLocationServiceError(target string, cause error) *Error {
	return NewError(ErrLocationService, fmt.Sprintf("failed to resolve the identity service for %q", target), cause)
}

// NewTransportError creates a new transport error
func NewTransportError(message string, cause error) *Error {
	return NewError(ErrTransport, message, cause)
}

// NewSecretStoreError creates a new secret store error
func NewSecretStoreError(message string, cause error) *Error {
	return NewError(ErrSecretStore, message, cause)
}

// NewInternalError creates a new internal error
func NewInternalError(message string, cause error) *Error {
	return NewError(ErrInternal, message, cause)
}

// IsInvalidArgument checks if the error is an invalid argument error
func IsInvalidArgument(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Type == ErrInvalidArgument
}

// IsLocationService checks if the error is a location service error
func IsLocationService(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Type == ErrLocationService
}

// IsTransport checks if the error is a transport error
func IsTransport(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Type == ErrTransport
}

// IsSecretStore checks if the error is a secret store error
func IsSecretStore(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Type == ErrSecretStore
}

// IsInternal checks if the error is an internal error
func IsInternal(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Type == ErrInternal
}
