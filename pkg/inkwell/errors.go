package inkwell

import "github.com/tildesmith/inkwell/internal/types"

// Sentinel errors callers can test with errors.Is.
var (
	ErrCacheMiss          = types.ErrCacheMiss
	ErrCacheUnavailable   = types.ErrCacheUnavailable
	ErrServiceUnavailable = types.ErrServiceUnavailable
	ErrUnknownOperation   = types.ErrUnknownOperation
	ErrClosed             = types.ErrClosed
)

// Failure taxonomy surfaced by ProcessingError.
type (
	ProcessingError = types.ProcessingError
	FailureCategory = types.FailureCategory
)

const (
	FailureUnavailable      = types.FailureUnavailable
	FailureInvalidInput     = types.FailureInvalidInput
	FailureExhaustedRetries = types.FailureExhaustedRetries
)

// MarkTransient flags an error as retryable for the resilience classifier.
// LLM client implementations use this to pass through what they know.
func MarkTransient(err error) error { return types.MarkTransient(err) }

// MarkPermanent flags an error as not worth retrying.
func MarkPermanent(err error) error { return types.MarkPermanent(err) }

// IsServiceUnavailable reports whether err is a circuit-open rejection.
func IsServiceUnavailable(err error) bool { return types.IsServiceUnavailable(err) }

// IsCacheUnavailable reports whether err is a durable-tier outage.
func IsCacheUnavailable(err error) bool { return types.IsCacheUnavailable(err) }
