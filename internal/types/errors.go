package types

import (
	"errors"
	"fmt"
)

var (
	ErrCacheMiss          = errors.New("inkwell: key not found")
	ErrCacheUnavailable   = errors.New("inkwell: durable cache unavailable")
	ErrServiceUnavailable = errors.New("inkwell: service unavailable, circuit open")
	ErrInvalidTTL         = errors.New("inkwell: cache entry TTL must be positive")
	ErrUnknownOperation   = errors.New("inkwell: unknown operation")
	ErrClosed             = errors.New("inkwell: processor closed")
)

// CacheError wraps a cache-layer failure with its operation, key, and layer.
type CacheError struct {
	Op    string
	Key   string
	Layer string
	Err   error
}

func (e *CacheError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("cache %s on %s [%s]: %v", e.Op, e.Layer, e.Key, e.Err)
	}
	return fmt.Sprintf("cache %s on %s: %v", e.Op, e.Layer, e.Err)
}

func (e *CacheError) Unwrap() error {
	return e.Err
}

func NewCacheError(op, key, layer string, err error) *CacheError {
	return &CacheError{Op: op, Key: key, Layer: layer, Err: err}
}

// TransientError marks a failure as retry-worthy regardless of its shape.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return "transient: " + e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// PermanentError marks a failure as not worth retrying (validation, auth,
// malformed requests).
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return "permanent: " + e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// MarkTransient wraps err so the classifier treats it as transient.
func MarkTransient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

// MarkPermanent wraps err so the classifier treats it as permanent.
func MarkPermanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// IsMarkedTransient reports whether err carries an explicit transient mark.
func IsMarkedTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// IsMarkedPermanent reports whether err carries an explicit permanent mark.
func IsMarkedPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}

// FailureCategory is the general failure class surfaced to callers in place
// of raw internal errors.
type FailureCategory int

const (
	// FailureUnavailable covers circuit-open rejections and cancelled work.
	FailureUnavailable FailureCategory = iota + 1
	// FailureInvalidInput covers permanent failures: validation, auth,
	// malformed requests.
	FailureInvalidInput
	// FailureExhaustedRetries covers transient failures that outlived the
	// retry budget.
	FailureExhaustedRetries
)

func (c FailureCategory) String() string {
	switch c {
	case FailureUnavailable:
		return "unavailable"
	case FailureInvalidInput:
		return "invalid_input"
	case FailureExhaustedRetries:
		return "exhausted_retries"
	default:
		return "unknown"
	}
}

// ProcessingError is the single structured failure a caller sees from
// Process. It names the operation and a general category, never an internal
// stack trace.
type ProcessingError struct {
	Operation Operation
	Category  FailureCategory
	Err       error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("inkwell: %s failed (%s): %v", e.Operation, e.Category, e.Err)
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}

// IsCacheMiss reports whether err indicates a missing cache key.
func IsCacheMiss(err error) bool {
	return errors.Is(err, ErrCacheMiss)
}

// IsCacheUnavailable reports whether err indicates the durable tier is
// unreachable.
func IsCacheUnavailable(err error) bool {
	return errors.Is(err, ErrCacheUnavailable)
}

// IsServiceUnavailable reports whether err is a circuit-open rejection.
func IsServiceUnavailable(err error) bool {
	return errors.Is(err, ErrServiceUnavailable)
}
