// Package errors provides error types and handling for Vantage Server API operations.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a failed client operation with context about what was
// being done when it failed. It wraps the underlying transport or server
// error for inspection with errors.Is / errors.As.
type Error struct {
	// Op is the operation that failed (e.g., "list", "publish", "delete")
	Op string

	// Resource is the REST resource involved (e.g., "datasources", "fileUploads")
	Resource string

	// ID is the server identifier of the item involved, if any
	ID string

	// Err is the underlying error
	Err error
}

// Error implements the error interface by providing a formatted error message.
func (e *Error) Error() string {
	if e.Resource != "" && e.ID != "" {
		return fmt.Sprintf("vantage.%s %s/%s: %v", e.Op, e.Resource, e.ID, e.Err)
	}
	if e.Resource != "" {
		return fmt.Sprintf("vantage.%s %s: %v", e.Op, e.Resource, e.Err)
	}
	return fmt.Sprintf("vantage.%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error chaining support.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithResource adds resource context to an existing error.
func (e *Error) WithResource(resource string) *Error {
	e.Resource = resource
	return e
}

// WithID adds item identifier context to an existing error.
func (e *Error) WithID(id string) *Error {
	e.ID = id
	return e
}

// WithMessage wraps the underlying error with a custom message.
func (e *Error) WithMessage(message string) *Error {
	e.Err = fmt.Errorf("%s: %w", message, e.Err)
	return e
}

// NewError creates a new Error with the given operation and underlying error.
func NewError(op string, err error) *Error {
	return &Error{
		Op:  op,
		Err: err,
	}
}

// APIError is an error response returned by the server. The server reports
// failures as an XML error element carrying a numeric code plus a summary
// and detail message.
type APIError struct {
	// StatusCode is the HTTP status of the response
	StatusCode int

	// Code is the server's error code (e.g., "404007")
	Code string

	// Summary is the short error description
	Summary string

	// Detail is the long error description
	Detail string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("server error %s: %s: %s", e.Code, e.Summary, e.Detail)
	}
	return fmt.Sprintf("server error %s: %s", e.Code, e.Summary)
}

// Unwrap maps the HTTP status to a sentinel error so callers can branch
// with errors.Is without inspecting status codes.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusBadRequest:
		return ErrInvalidRequest
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrPermissionDenied
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	}
	if e.StatusCode >= 500 {
		return ErrServerError
	}
	return ErrRequestFailed
}

// Sentinel errors for common operation failures.
// These can be used with errors.Is() for error checking.
var (
	// ErrInvalidInput indicates that a parameter failed client-side validation
	ErrInvalidInput = errors.New("vantage: invalid input")

	// ErrMissingID indicates an item without a server identifier was passed
	// to an operation that requires one
	ErrMissingID = errors.New("vantage: item is missing an ID; it must be retrieved from the server first")

	// ErrNotSignedIn indicates that no session has been established
	ErrNotSignedIn = errors.New("vantage: not signed in")

	// ErrInvalidRequest indicates the server rejected the request as malformed
	ErrInvalidRequest = errors.New("vantage: invalid request")

	// ErrNotFound indicates that the requested item does not exist
	ErrNotFound = errors.New("vantage: not found")

	// ErrUnauthorized indicates missing or expired credentials
	ErrUnauthorized = errors.New("vantage: unauthorized")

	// ErrPermissionDenied indicates the session lacks permission for the operation
	ErrPermissionDenied = errors.New("vantage: permission denied")

	// ErrConflict indicates the request conflicts with existing server state
	ErrConflict = errors.New("vantage: conflict")

	// ErrServerError indicates an internal server failure
	ErrServerError = errors.New("vantage: server error")

	// ErrRequestFailed indicates a non-2xx response with no more specific mapping
	ErrRequestFailed = errors.New("vantage: request failed")

	// ErrInvalidFileType indicates a publish with a file extension that is
	// not an accepted datasource format
	ErrInvalidFileType = errors.New("vantage: invalid datasource file type")

	// ErrInvalidPublishMode indicates an unknown publish mode
	ErrInvalidPublishMode = errors.New("vantage: invalid publish mode")
)

// IsNotFound checks if an error indicates that an item was not found.
// This is a convenience function that handles both sentinel errors and wrapped errors.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidInput checks if an error indicates invalid input.
// This is a convenience function that handles both sentinel errors and wrapped errors.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsUnauthorized checks if an error indicates missing or expired credentials.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsPermissionDenied checks if an error indicates insufficient permission.
func IsPermissionDenied(err error) bool {
	return errors.Is(err, ErrPermissionDenied)
}
