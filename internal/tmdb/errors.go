package tmdb

import (
	"errors"
	"fmt"
	"net/http"
)

// StatusError is returned for any upstream response with status >= 400.
type StatusError struct {
	Status   int
	Endpoint string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("tmdb %s: status %d %s", e.Endpoint, e.Status, http.StatusText(e.Status))
}

// IsUnauthorized reports whether TMDB rejected the configured credentials.
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}

// StatusCode returns the upstream HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Status
	}
	return 0
}
