package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for backend and navigation operations
var (
	// ErrBackendUnreachable covers connection failures, timeouts, an open
	// circuit and unparseable responses. Usually the backend is cold starting.
	ErrBackendUnreachable = errors.New("backend unreachable")

	// ErrEmptyResponse indicates the backend answered successfully with no data
	ErrEmptyResponse = errors.New("empty response from backend")

	// ErrInvalidTarget indicates a navigation target that is not a movie id
	ErrInvalidTarget = errors.New("invalid navigation target")
)

// HTTPStatusError is returned when the backend answers with a status >= 400
type HTTPStatusError struct {
	Code int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("HTTP %d", e.Code)
}

// StatusCode extracts the HTTP status from err, or 0 if err is not a status error
func StatusCode(err error) int {
	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code
	}
	return 0
}
