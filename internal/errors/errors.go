package errors

import "errors"

// This package defines the sentinel errors shared by the service and API layers.
// Services wrap them with context (`fmt.Errorf("%w: ...", ErrValidation)`) and the
// API layer maps them to HTTP status codes with `errors.Is()`, so no service ever
// has to know about HTTP.

var (
	// ErrNotFound signifies that a requested session could not be located.
	// Mapped to 404 Not Found.
	ErrNotFound = errors.New("resource not found")

	// ErrValidation signifies that user input was rejected before any network
	// call was made (for example, a blank question).
	// Mapped to 400 Bad Request.
	ErrValidation = errors.New("validation failed")

	// ErrConflict signifies that a session changed between the moment it was read
	// and the moment an exchange was applied to it.
	// Mapped to 409 Conflict.
	ErrConflict = errors.New("resource conflict")

	// ErrPermission signifies that the remote API rejected the configured key
	// (HTTP 401 or 403). It is always wrapped together with ErrUpstream.
	// Mapped to 403 Forbidden.
	ErrPermission = errors.New("permission denied")

	// ErrUpstream signifies that the remote chat-completion API could not be reached
	// or answered with a non-success status. The wrapped error carries the details
	// (transport failure or status code plus body) and is shown to the user.
	// Mapped to 502 Bad Gateway.
	ErrUpstream = errors.New("upstream request failed")

	// ErrInternal signifies an unexpected error. Its details are logged, never
	// returned to the client.
	// Mapped to 500 Internal Server Error.
	ErrInternal = errors.New("internal server error")
)
