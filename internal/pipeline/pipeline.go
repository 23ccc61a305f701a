// Package pipeline ties key generation, the cache engine, and the
// resilience registry into the request path.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/tildesmith/inkwell/internal/cache"
	"github.com/tildesmith/inkwell/internal/config"
	"github.com/tildesmith/inkwell/internal/keygen"
	"github.com/tildesmith/inkwell/internal/metrics"
	"github.com/tildesmith/inkwell/internal/metrics/datadog"
	"github.com/tildesmith/inkwell/internal/resilience"
	"github.com/tildesmith/inkwell/internal/tier"
	"github.com/tildesmith/inkwell/internal/types"
)

// Pipeline is the cache-aside request path: key, cache lookup, orchestrated
// LLM call, classification, write-through.
type Pipeline struct {
	keys     *keygen.Generator
	engine   *cache.Engine
	policy   *tier.Policy
	registry *resilience.Registry
	llm      types.LLMClient
	validate types.ResultValidator

	batchLimit int64

	logger  *slog.Logger
	metrics types.MetricsRecorder
	tracker *metrics.Tracker

	publisher   metrics.Publisher
	bgPublisher *metrics.BackgroundPublisher

	sf     singleflight.Group
	closed atomic.Bool
}

// Options carries the optional collaborators a Pipeline accepts.
type Options struct {
	Logger    *slog.Logger
	Metrics   types.MetricsRecorder
	Tracker   *metrics.Tracker
	Validator types.ResultValidator
	Fallbacks map[types.Operation]resilience.FallbackFunc
}

// New assembles a pipeline from configuration. The LLM client is required;
// everything else has a default.
func New(cfg *config.Config, llm types.LLMClient, opts Options) (*Pipeline, error) {
	if llm == nil {
		return nil, errors.New("inkwell: LLM client is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	recorder := opts.Metrics
	tracker := opts.Tracker
	if recorder == nil {
		if tracker == nil {
			tracker = metrics.NewTracker()
		}
		recorder = tracker
	}

	engine, err := cache.NewEngine(cfg, logger, recorder)
	if err != nil {
		return nil, err
	}

	policy, err := tier.NewPolicy(cfg.Tiers, cfg.Operations)
	if err != nil {
		engine.Close()
		return nil, err
	}

	registry, err := resilience.NewRegistry(cfg.Resilience, cfg.Operations, logger, recorder)
	if err != nil {
		engine.Close()
		return nil, err
	}
	for op, fb := range opts.Fallbacks {
		registry.RegisterFallback(op, fb)
	}

	p := &Pipeline{
		keys:       keygen.New(cfg.Keys, recorder),
		engine:     engine,
		policy:     policy,
		registry:   registry,
		llm:        llm,
		validate:   opts.Validator,
		batchLimit: int64(cfg.Batch.MaxConcurrency),
		logger:     logger.With("component", "pipeline"),
		metrics:    recorder,
		tracker:    tracker,
	}

	if cfg.Metrics.Enabled && tracker != nil {
		publisher, err := datadog.NewPublisher(&cfg.Metrics.DataDog, logger)
		if err != nil {
			engine.Close()
			return nil, err
		}
		p.publisher = publisher
		p.bgPublisher = metrics.NewBackgroundPublisher(publisher, cfg.Metrics.PublishInterval, tracker.Snapshot, logger)
		p.bgPublisher.Start(context.Background())
	}

	return p, nil
}

// Process runs one request through the cache-aside path. A cache hit
// returns immediately with FromCache set; a miss calls the LLM under the
// operation's resilience strategy and writes the result through both cache
// tiers. Identical concurrent requests share a single LLM call.
func (p *Pipeline) Process(ctx context.Context, req *types.Request) (*types.Response, error) {
	if p.closed.Load() {
		return nil, types.ErrClosed
	}
	if req == nil {
		return nil, &types.ProcessingError{
			Category: types.FailureInvalidInput,
			Err:      errors.New("nil request"),
		}
	}
	if !req.Operation.Valid() {
		return nil, &types.ProcessingError{
			Operation: req.Operation,
			Category:  types.FailureInvalidInput,
			Err:       types.ErrUnknownOperation,
		}
	}

	key := p.keys.KeyFor(req)

	if entry, err := p.engine.Get(ctx, key, req.Operation); err == nil {
		return &types.Response{
			Operation: req.Operation,
			Key:       key,
			Payload:   entry.Payload,
			FromCache: true,
		}, nil
	}

	// Coalesce identical misses onto one LLM call. Every waiter gets the
	// same payload; only the leader pays for the call and the cache write.
	v, err, _ := p.sf.Do(key, func() (any, error) {
		// The leader may have raced a concurrent fill; check once more
		// before going to the LLM.
		if entry, err := p.engine.Get(ctx, key, req.Operation); err == nil {
			return entry.Payload, nil
		}
		return p.fetchAndStore(ctx, key, req)
	})
	if err != nil {
		return nil, p.asProcessingError(req.Operation, err)
	}

	return &types.Response{
		Operation: req.Operation,
		Key:       key,
		Payload:   v.([]byte),
		FromCache: false,
	}, nil
}

// fetchAndStore calls the LLM under the resilience registry, validates the
// result, and writes it through the cache. A failed cache write degrades to
// an uncached success.
func (p *Pipeline) fetchAndStore(ctx context.Context, key string, req *types.Request) ([]byte, error) {
	payload, err := p.registry.Execute(ctx, req.Operation, func(ctx context.Context) ([]byte, error) {
		start := time.Now()
		result, callErr := p.llm.Call(ctx, req)
		p.record(func(m types.MetricsRecorder) {
			m.RecordLLMCall(req.Operation, time.Since(start), callErr != nil)
		})
		return result, callErr
	})
	if err != nil {
		return nil, err
	}

	if p.validate != nil {
		if verr := p.validate(ctx, req, payload); verr != nil {
			// A rejected result is not retried and never cached.
			return nil, types.MarkPermanent(verr)
		}
	}

	cls := p.policy.Classify(req.Operation, len(req.Text))
	entry := &types.CacheEntry{
		Payload:   payload,
		Operation: req.Operation,
		CreatedAt: time.Now(),
	}
	if serr := p.engine.Set(ctx, key, entry, cls); serr != nil {
		p.logger.Warn("cache write failed, serving uncached result",
			"operation", req.Operation, "key", key, "error", serr)
	}

	return payload, nil
}

// asProcessingError maps an orchestrator failure to the caller-facing
// taxonomy.
func (p *Pipeline) asProcessingError(op types.Operation, err error) error {
	var pe *types.ProcessingError
	if errors.As(err, &pe) {
		return err
	}

	category := types.FailureExhaustedRetries
	switch {
	case errors.Is(err, types.ErrServiceUnavailable), errors.Is(err, context.Canceled):
		category = types.FailureUnavailable
	default:
		var execErr *resilience.ExecuteError
		if errors.As(err, &execErr) && execErr.Class == resilience.ClassPermanent {
			category = types.FailureInvalidInput
		} else if types.IsMarkedPermanent(err) {
			category = types.FailureInvalidInput
		}
	}

	return &types.ProcessingError{
		Operation: op,
		Category:  category,
		Err:       err,
	}
}

// Invalidate removes one request's cached result from both tiers.
func (p *Pipeline) Invalidate(ctx context.Context, req *types.Request) error {
	if p.closed.Load() {
		return types.ErrClosed
	}
	return p.engine.Invalidate(ctx, p.keys.KeyFor(req))
}

// InvalidateOperation removes every cached result for one operation.
func (p *Pipeline) InvalidateOperation(ctx context.Context, op types.Operation) error {
	if p.closed.Load() {
		return types.ErrClosed
	}
	return p.engine.InvalidatePattern(ctx, keygen.OperationPrefix(op)+"*")
}

// Health assembles the current health view across tiers and breakers.
func (p *Pipeline) Health() types.Health {
	h := types.Health{
		Timestamp:  time.Now(),
		Status:     types.HealthStatusHealthy,
		Operations: p.registry.Snapshot(),
	}

	stats := p.engine.HotStats()
	h.HotTier = types.HotTierHealth{
		Enabled:    p.engine.HotEnabled(),
		Entries:    p.engine.HotLen(),
		MaxEntries: p.engine.HotCap(),
		Hits:       stats.Hits,
		Misses:     stats.Misses,
		Evictions:  stats.Evictions,
		HitRatio:   p.engine.HotHitRatio(),
	}

	h.Durable = types.DurableHealth{
		Enabled:   p.engine.DurableEnabled(),
		Available: p.engine.DurableAvailable(),
	}
	if lastErr, at := p.engine.DurableLastError(); lastErr != nil {
		h.Durable.LastError = lastErr.Error()
		h.Durable.LastErrorTime = at
	}

	if p.engine.DurableEnabled() && !p.engine.DurableAvailable() {
		h.Status = types.HealthStatusDegraded
	}
	for _, opHealth := range h.Operations {
		if opHealth.BreakerState != resilience.StateClosed.String() {
			h.Status = types.HealthStatusDegraded
			break
		}
	}

	return h
}

// MetricsSnapshot returns the tracker's current counters. Zero-valued when
// the caller supplied its own MetricsRecorder.
func (p *Pipeline) MetricsSnapshot() types.MetricsSnapshot {
	if p.tracker == nil {
		return types.MetricsSnapshot{Timestamp: time.Now()}
	}
	return p.tracker.Snapshot()
}

func (p *Pipeline) record(fn func(types.MetricsRecorder)) {
	if p.metrics != nil {
		fn(p.metrics)
	}
}

// Close shuts the pipeline down. In-flight Process calls may still finish;
// new calls fail with ErrClosed.
func (p *Pipeline) Close() error {
	if p.closed.Swap(true) {
		return nil
	}
	if p.bgPublisher != nil {
		p.bgPublisher.Stop()
	}
	var errs []error
	if p.publisher != nil {
		if err := p.publisher.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := p.engine.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
