package inkwell

import (
	"log/slog"

	"github.com/tildesmith/inkwell/internal/config"
	"github.com/tildesmith/inkwell/internal/resilience"
	"github.com/tildesmith/inkwell/internal/types"
)

// processorOptions collects construction-time settings.
type processorOptions struct {
	logger    *slog.Logger
	metrics   types.MetricsRecorder
	validator types.ResultValidator
	fallbacks map[types.Operation]resilience.FallbackFunc

	redisAddress  string
	redisPassword string
	disableRedis  bool
}

// applyConfig folds the convenience options into the config.
func (o *processorOptions) applyConfig(cfg *config.Config) {
	if o.redisAddress != "" {
		cfg.Redis.Enabled = true
		cfg.Redis.Address = o.redisAddress
	}
	if o.redisPassword != "" {
		cfg.Redis.Password = config.NewSecret(o.redisPassword)
	}
	if o.disableRedis {
		cfg.Redis.Enabled = false
	}
}

// ProcessorOption customizes a processor during construction.
type ProcessorOption func(*processorOptions)

// WithLogger installs a caller-supplied logger. The internals log through
// slog, so the logger is wrapped in an adapting handler.
func WithLogger(logger Logger) ProcessorOption {
	return func(o *processorOptions) {
		o.logger = slog.New(slogAdapter{logger: logger})
	}
}

// WithSlog sets a *slog.Logger directly.
func WithSlog(logger *slog.Logger) ProcessorOption {
	return func(o *processorOptions) {
		o.logger = logger
	}
}

// WithMetrics sets a custom metrics recorder. The built-in tracker is
// bypassed entirely when this is set.
func WithMetrics(metrics MetricsRecorder) ProcessorOption {
	return func(o *processorOptions) {
		o.metrics = metrics
	}
}

// WithValidator installs a result-validation hook run after each successful
// LLM call. Rejected results are never cached and never retried.
func WithValidator(v ResultValidator) ProcessorOption {
	return func(o *processorOptions) {
		o.validator = v
	}
}

// WithFallback registers a degraded-result producer for one operation,
// consulted when that operation's call has failed for good.
func WithFallback(op Operation, fn FallbackFunc) ProcessorOption {
	return func(o *processorOptions) {
		if o.fallbacks == nil {
			o.fallbacks = make(map[types.Operation]resilience.FallbackFunc)
		}
		o.fallbacks[op] = resilience.FallbackFunc(fn)
	}
}

// WithRedisAddress enables the durable tier at the given address.
func WithRedisAddress(addr string) ProcessorOption {
	return func(o *processorOptions) {
		o.redisAddress = addr
	}
}

// WithRedisPassword sets the durable tier password.
func WithRedisPassword(password string) ProcessorOption {
	return func(o *processorOptions) {
		o.redisPassword = password
	}
}

// WithoutRedis disables the durable tier regardless of config.
func WithoutRedis() ProcessorOption {
	return func(o *processorOptions) {
		o.disableRedis = true
	}
}
