package core

import (
	"errors"
	"fmt"
)

// ValidationError marks classifier output that failed schema validation.
// Never retried: the completion call is cost- and latency-sensitive.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "intent validation: " + e.Reason
}

// UpstreamError is a transient failure of an external capability: a 5xx
// status, a timeout, or a transport-level error. Status is zero when no
// HTTP status was received.
type UpstreamError struct {
	Upstream string
	Status   int
	Cause    error
}

func (e *UpstreamError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s unavailable: %v", e.Upstream, e.Cause)
	}
	return fmt.Sprintf("%s unavailable: http %d", e.Upstream, e.Status)
}

func (e *UpstreamError) Unwrap() error { return e.Cause }

func (e *UpstreamError) Retryable() bool { return true }

// RateLimitedError is a 429 from any upstream. Same backoff policy as
// UpstreamError, kept distinct for observability.
type RateLimitedError struct {
	Upstream string
}

func (e *RateLimitedError) Error() string {
	return e.Upstream + ": rate limited"
}

func (e *RateLimitedError) Retryable() bool { return true }

// IsRetryable reports whether the bounded-backoff policy applies to err.
func IsRetryable(err error) bool {
	var r interface{ Retryable() bool }
	if errors.As(err, &r) {
		return r.Retryable()
	}
	return false
}
