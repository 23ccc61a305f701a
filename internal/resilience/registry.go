package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tildesmith/inkwell/internal/config"
	"github.com/tildesmith/inkwell/internal/metrics"
	"github.com/tildesmith/inkwell/internal/types"
)

// FallbackFunc produces a degraded result when an operation's call has
// failed for good. It receives the cause so it can tailor the response.
type FallbackFunc func(ctx context.Context, cause error) ([]byte, error)

// opState bundles everything owned per operation.
type opState struct {
	breaker *Breaker
	retry   *retryer
	metrics *OperationMetrics
}

// Registry orchestrates breaker, retry, and fallback per operation. States
// are created lazily on first use and reused for the registry's lifetime;
// reconfiguration means building a new Registry.
type Registry struct {
	strategies map[types.Operation]Strategy
	classifier *Classifier
	fallbacks  map[types.Operation]FallbackFunc

	mu     sync.RWMutex
	states map[types.Operation]*opState

	logger  *slog.Logger
	metrics types.MetricsRecorder
}

// NewRegistry resolves strategies from config and builds an empty registry.
func NewRegistry(cfg config.ResilienceConfig, ops config.OperationsConfig, logger *slog.Logger, recorder types.MetricsRecorder) (*Registry, error) {
	strategies, err := ResolveStrategies(cfg, ops)
	if err != nil {
		return nil, fmt.Errorf("resolving resilience strategies: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.NewNoOp()
	}
	return &Registry{
		strategies: strategies,
		classifier: NewClassifier(cfg.UnknownErrorPolicy),
		fallbacks:  make(map[types.Operation]FallbackFunc),
		states:     make(map[types.Operation]*opState),
		logger:     logger.With("component", "resilience"),
		metrics:    recorder,
	}, nil
}

// RegisterFallback installs a fallback for op. Must be called before the
// registry serves traffic; fallbacks are not synchronized after that.
func (r *Registry) RegisterFallback(op types.Operation, fn FallbackFunc) {
	r.fallbacks[op] = fn
}

// Execute runs fn for op under that operation's breaker and retry schedule.
// The breaker is consulted once per call and charged once per call: a call
// that exhausts its retries or hits a permanent error counts as a single
// breaker failure regardless of how many attempts it burned.
func (r *Registry) Execute(ctx context.Context, op types.Operation, fn func(ctx context.Context) ([]byte, error)) ([]byte, error) {
	state := r.stateFor(op)
	state.metrics.totalCalls.Add(1)

	if !state.breaker.Allow() {
		state.metrics.rejected.Add(1)
		r.logger.Debug("circuit open, rejecting call", "operation", op)
		return r.tryFallback(ctx, op, state, &ExecuteError{
			Op:    op,
			Class: ClassTransient,
			Err:   types.ErrServiceUnavailable,
		})
	}

	result, class, attempts, err := state.retry.do(ctx, fn, func(attempt int, attemptErr error) {
		state.metrics.retries.Add(1)
		r.record(func(m types.MetricsRecorder) { m.RecordRetry(op) })
		r.logger.Debug("retrying after transient failure",
			"operation", op, "attempt", attempt, "error", attemptErr)
	})
	if err == nil {
		state.breaker.RecordSuccess()
		state.metrics.markSuccess()
		return result, nil
	}

	// Caller cancellation says nothing about service health, so it never
	// charges the breaker.
	if !errors.Is(err, context.Canceled) {
		state.breaker.RecordFailure()
	}
	state.metrics.markFailure()
	r.logger.Warn("operation failed",
		"operation", op, "attempts", attempts, "class", class.String(), "error", err)

	return r.tryFallback(ctx, op, state, &ExecuteError{
		Op:       op,
		Class:    class,
		Attempts: attempts,
		Err:      err,
	})
}

// tryFallback returns the fallback's result when one is registered and it
// succeeds; otherwise the original error stands.
func (r *Registry) tryFallback(ctx context.Context, op types.Operation, state *opState, execErr *ExecuteError) ([]byte, error) {
	fb, ok := r.fallbacks[op]
	if !ok {
		return nil, execErr
	}

	result, err := fb(ctx, execErr)
	if err != nil {
		r.logger.Warn("fallback failed", "operation", op, "error", err)
		return nil, execErr
	}

	state.metrics.fallbacks.Add(1)
	r.record(func(m types.MetricsRecorder) { m.RecordFallback(op) })
	r.logger.Info("served fallback result", "operation", op, "cause", execErr.Err)
	return result, nil
}

// stateFor returns the op's state, creating it on first use.
func (r *Registry) stateFor(op types.Operation) *opState {
	r.mu.RLock()
	state, ok := r.states[op]
	r.mu.RUnlock()
	if ok {
		return state
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if state, ok := r.states[op]; ok {
		return state
	}

	strategy, ok := r.strategies[op]
	if !ok {
		strategy = strategyFromConfig(config.StrategyBalanced, config.DefaultConfig().Resilience.Strategies[config.StrategyBalanced])
	}

	breaker := NewBreaker(op.String(), strategy.FailureThreshold, strategy.RecoveryTimeout)
	state = &opState{
		breaker: breaker,
		retry:   &retryer{strategy: strategy, classifier: r.classifier},
		metrics: &OperationMetrics{},
	}
	breaker.SetOnStateChange(func(from, to State) {
		switch to {
		case StateOpen:
			state.metrics.circuitOpens.Add(1)
		case StateHalfOpen:
			state.metrics.circuitHalfOpens.Add(1)
		case StateClosed:
			state.metrics.circuitCloses.Add(1)
		}
		r.record(func(m types.MetricsRecorder) { m.RecordBreakerStateChange(op, from.String(), to.String()) })
		r.logger.Info("circuit breaker state change",
			"operation", op, "from", from.String(), "to", to.String())
	})
	r.states[op] = state
	return state
}

// BreakerState reports op's current breaker state without creating state
// for operations that never ran.
func (r *Registry) BreakerState(op types.Operation) State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if state, ok := r.states[op]; ok {
		return state.breaker.State()
	}
	return StateClosed
}

// Snapshot returns per-operation health for every operation that has run.
func (r *Registry) Snapshot() map[string]types.OperationHealth {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]types.OperationHealth, len(r.states))
	for op, state := range r.states {
		h := state.metrics.Snapshot()
		h.BreakerState = state.breaker.State().String()
		out[op.String()] = h
	}
	return out
}

func (r *Registry) record(fn func(types.MetricsRecorder)) {
	if r.metrics != nil {
		fn(r.metrics)
	}
}
