package github

import (
	"errors"
	"fmt"
	"time"
)

// ErrStatsPending is returned when GitHub answers 202 Accepted because it
// is still computing contributor statistics. Retrying later succeeds.
var ErrStatsPending = errors.New("GitHub is still computing statistics, try again shortly")

// RateLimitError reports an HTTP 403 from the API, which for anonymous
// clients means the rate limit was exhausted.
type RateLimitError struct {
	// Reset is when the limit resets, if the API reported it.
	Reset time.Time
}

func (e *RateLimitError) Error() string {
	msg := "GitHub API rate limit reached, cached data will be used where available"
	if !e.Reset.IsZero() {
		msg += fmt.Sprintf(" (resets at %s)", e.Reset.Format(time.RFC3339))
	}
	return msg
}

// StatusError reports any other non-2xx response.
type StatusError struct {
	Code    int
	Status  string
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("GitHub API error %d %s: %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("GitHub API error %d %s", e.Code, e.Status)
}

// IsRateLimit checks if an error is a rate limit error.
func IsRateLimit(err error) bool {
	var rl *RateLimitError
	return errors.As(err, &rl)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	if IsRateLimit(err) {
		return 403
	}
	return 0
}
