package llm

import (
	"errors"
	"fmt"
)

// TransportError reports that a request never produced an HTTP response:
// DNS failure, refused or reset connection, timeout, or an unreadable body.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StatusError reports that the server answered with anything other than 200 OK.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: HTTP %d: %s", e.Op, e.StatusCode, e.Body)
}

// DecodeError reports a 200 OK response whose body is not the expected JSON.
type DecodeError struct {
	Op   string
	Body string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: could not decode response: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// IsTransport reports whether err is, or wraps, a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// AsStatus returns the StatusError wrapped by err, if any.
func AsStatus(err error) (*StatusError, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
