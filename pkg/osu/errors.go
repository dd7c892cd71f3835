package osu

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrAuth means no usable bearer token could be obtained, or the API
	// rejected the one we sent.
	ErrAuth = errors.New("osu: authentication failed")
	// ErrNotFound is returned for a 404 from the API.
	ErrNotFound = errors.New("osu: not found")
	// ErrTransport covers failures below HTTP: refused, reset, timeout.
	ErrTransport = errors.New("osu: transport error")
	// ErrMalformed is a 2xx response whose body is not valid JSON.
	ErrMalformed = errors.New("osu: malformed response")
)

// APIError is a response with status >= 400.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("osu api status %d: %s", e.StatusCode, e.Body)
}

// Is lets errors.Is(err, ErrNotFound) and errors.Is(err, ErrAuth) see
// through an APIError.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrAuth:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	}
	return false
}

func (e *APIError) retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}
