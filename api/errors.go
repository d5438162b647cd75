package api

import (
	"errors"
	"fmt"
)

// ErrUnauthorized is returned for HTTP 401 responses. Callers must treat the
// current token as dead and send the user back to login; retrying with the
// same token is not allowed.
var ErrUnauthorized = errors.New("unauthorized")

// APIError is any non-401 error response from the backend. The backend
// reports failures as a 4xx/5xx status with a JSON {"detail": "..."} body;
// Detail carries that message verbatim for display.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("api error %d", e.StatusCode)
}

// NetworkError means no usable response was received: connection refused,
// DNS failure, timeout. These are the only errors eligible for caller-side
// retry; the client itself never retries.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network failure during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsNetworkError reports whether err is (or wraps) a NetworkError.
func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}
