package gd2

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput indicates a request was rejected before reaching glusterd2.
	ErrInvalidInput = errors.New("invalid input")
	// ErrPeerNotFound indicates the host could not be matched to a peer in the pool.
	ErrPeerNotFound = errors.New("peer not found in pool")
	// ErrNoSecret indicates no signing secret or secret provider is configured.
	ErrNoSecret = errors.New("no signing secret configured")
)

// APIError is returned when glusterd2 responds with an unexpected status code.
type APIError struct {
	// StatusCode is the HTTP status glusterd2 returned.
	StatusCode int
	// Expected is the status code the operation expected.
	Expected int
	// Method and Path identify the request.
	Method string
	Path   string
	// Body is the raw error body returned by glusterd2, if any.
	Body string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("glusterd2: %s %s: status %d (expected %d): %s",
		e.Method, e.Path, e.StatusCode, e.Expected, e.Body)
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 404
}
