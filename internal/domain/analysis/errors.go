package analysis

import (
	"errors"
	"fmt"
)

// ErrQuotaExceeded is returned when the remote model rejects a request for
// rate or quota reasons. Not retried; the pipeline degrades instead.
var ErrQuotaExceeded = errors.New("inference quota exceeded")

// ValidationError covers rejected inputs before any work happens.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// InferenceError wraps transient model-call failures. Eligible for one retry.
type InferenceError struct {
	Op  string
	Err error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("inference %s: %v", e.Op, e.Err)
}

func (e *InferenceError) Unwrap() error { return e.Err }

// MalformedResponseError means the model answered but the payload failed
// schema validation. Never retried; the same prompt would misbehave again.
type MalformedResponseError struct {
	Reason string
	Raw    string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed model response: %s", e.Reason)
}

// CacheError wraps storage failures on the cache path. Always swallowed by
// the caller; the cache is an optimization, never a dependency.
type CacheError struct {
	Op  string
	Err error
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("cache %s: %v", e.Op, e.Err)
}

func (e *CacheError) Unwrap() error { return e.Err }
