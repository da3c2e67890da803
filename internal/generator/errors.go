package generator

import (
	"fmt"
	"strconv"
	"time"
)

// Providers that omit Retry-After get this backoff.
const defaultRetryAfterSecs = 60

// RateLimitError reports an HTTP 429 from a generation provider. Provider
// names the offending provider, or "all" when the whole fallback chain is
// exhausted; callers treat the latter as a service-wide outage and stop
// submitting work until RetryAfter has passed.
type RateLimitError struct {
	Err        error
	RetryAfter time.Duration
	Provider   string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limited (retry after %s): %v", e.Provider, e.RetryAfter, e.Err)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// NewRateLimitError wraps err as a RateLimitError for provider. A
// non-positive retryAfterSecs falls back to the default backoff.
func NewRateLimitError(provider string, err error, retryAfterSecs int) *RateLimitError {
	if retryAfterSecs <= 0 {
		retryAfterSecs = defaultRetryAfterSecs
	}
	return &RateLimitError{
		Err:        err,
		RetryAfter: time.Duration(retryAfterSecs) * time.Second,
		Provider:   provider,
	}
}

// ParseRetryAfterHeader reads a Retry-After value as whole seconds. Empty
// or non-integer values (some providers send an HTTP date) yield 0, which
// NewRateLimitError turns into the default backoff.
func ParseRetryAfterHeader(val string) int {
	if val == "" {
		return 0
	}
	secs, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return secs
}
