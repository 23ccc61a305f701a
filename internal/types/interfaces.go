package types

import (
	"context"
	"time"
)

// LLMClient is the external language-model service this core wraps. The
// client is treated as an opaque, possibly slow, possibly failing function.
// Implementations should mark errors with MarkTransient or MarkPermanent
// where they can tell; unmarked errors fall through to inspection by the
// resilience classifier.
type LLMClient interface {
	Call(ctx context.Context, req *Request) ([]byte, error)
}

// LLMClientFunc adapts a function to the LLMClient interface.
type LLMClientFunc func(ctx context.Context, req *Request) ([]byte, error)

func (f LLMClientFunc) Call(ctx context.Context, req *Request) ([]byte, error) {
	return f(ctx, req)
}

// ResultValidator is the external output-validation hook invoked after a
// successful LLM call and before the result is cached. A non-nil error
// rejects the result as invalid input; the failure is never retried.
type ResultValidator func(ctx context.Context, req *Request, payload []byte) error

// DurableLayer is the networked key-value tier behind the hot tier.
// Implementations must distinguish a missing key (ErrCacheMiss) from
// connection failures (any other error).
type DurableLayer interface {
	Name() string
	IsAvailable() bool
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeleteByPattern(ctx context.Context, pattern string) error
	Close() error
}

// MetricsRecorder receives timing, size, and hit/miss observations.
// Implementations must be best-effort: never block and never fail callers.
type MetricsRecorder interface {
	RecordHit(layer string, op Operation, latency time.Duration)
	RecordMiss(layer string, op Operation, latency time.Duration)
	RecordSet(layer string, op Operation, size int, latency time.Duration)
	RecordKeyGen(op Operation, textBytes int, latency time.Duration)
	RecordLLMCall(op Operation, latency time.Duration, failed bool)
	RecordRetry(op Operation)
	RecordFallback(op Operation)
	RecordError(layer string, operation string, err error)
	RecordBreakerStateChange(op Operation, from, to string)
}

// Logger provides logging operations for callers that bring their own
// logging framework.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}
