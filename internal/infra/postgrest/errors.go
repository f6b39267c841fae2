package postgrest

import (
	"errors"
	"fmt"
	"net/http"
)

// TransportError means the request never produced an HTTP response.
type TransportError struct {
	Method string
	Table  string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("postgrest %s %s: %v", e.Method, e.Table, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// APIError is a non-2xx answer from PostgREST.
type APIError struct {
	Method     string
	Table      string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("postgrest %s %s: status %d: %s", e.Method, e.Table, e.StatusCode, e.Body)
}

// Retryable reports whether repeating the request may succeed.
func (e *APIError) Retryable() bool {
	return e.StatusCode >= http.StatusInternalServerError || e.StatusCode == http.StatusTooManyRequests
}

// IsRetryable reports whether err is a transport failure or a retryable API error.
func IsRetryable(err error) bool {
	var terr *TransportError
	if errors.As(err, &terr) {
		return true
	}
	var aerr *APIError
	if errors.As(err, &aerr) {
		return aerr.Retryable()
	}
	return false
}
