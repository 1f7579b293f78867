package tracker

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthenticated means no credential is available.
	ErrUnauthenticated = errors.New("not authenticated: no tracker token configured")
	// ErrAuthExpired means the tracker refused the credential (401/403).
	ErrAuthExpired = errors.New("tracker credential rejected")
)

// RemoteError is a non-success response from the tracker.
type RemoteError struct {
	Op         string
	StatusCode int
	Message    string
	// RateLimited marks a 403/429 caused by an exhausted rate limit rather
	// than a rejected credential.
	RateLimited bool
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: tracker returned status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: tracker returned status %d: %s", e.Op, e.StatusCode, e.Message)
}

// Unwrap lets errors.Is(err, ErrAuthExpired) match 401 and 403 responses
// that are not rate limits.
func (e *RemoteError) Unwrap() error {
	if e.AuthFailure() {
		return ErrAuthExpired
	}
	return nil
}

func (e *RemoteError) AuthFailure() bool {
	if e.RateLimited {
		return false
	}
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var re *RemoteError
	if errors.As(err, &re) {
		return re.StatusCode
	}
	return 0
}
