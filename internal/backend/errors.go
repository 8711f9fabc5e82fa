package backend

import (
	"errors"
	"fmt"
)

// ErrMalformedResponse indicates a 2xx response whose body could not be decoded.
var ErrMalformedResponse = errors.New("malformed backend response")

// StatusError is a non-2xx backend response.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: backend error (status %d): %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// TimeoutError indicates the backend did not answer within the client timeout.
type TimeoutError struct {
	Method string
	Path   string
	Err    error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s %s: backend timed out: %v", e.Method, e.Path, e.Err)
}

func (e *TimeoutError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == 404
}
