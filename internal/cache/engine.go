package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tildesmith/inkwell/internal/config"
	"github.com/tildesmith/inkwell/internal/metrics"
	"github.com/tildesmith/inkwell/internal/tier"
	"github.com/tildesmith/inkwell/internal/types"
)

const (
	// DefaultShutdownTimeout bounds how long Close waits for background
	// promotions before closing the tiers anyway.
	DefaultShutdownTimeout = 10 * time.Second

	// DefaultBackgroundOpTimeout bounds each background promotion.
	DefaultBackgroundOpTimeout = 5 * time.Second
)

// ErrShutdownTimeout is returned when background work did not finish before
// the shutdown deadline. Tiers are still closed.
var ErrShutdownTimeout = errors.New("inkwell: shutdown timeout exceeded waiting for background operations")

// Engine is the two-tier cache: a bounded in-process hot tier in front of a
// durable tier. Reads degrade to misses when the durable tier fails; writes
// are durable-first, so the hot tier never holds an entry the durable tier
// rejected.
type Engine struct {
	hot        *HotTier
	hotEnabled bool

	durable        types.DurableLayer
	durableEnabled bool

	logger  *slog.Logger
	metrics types.MetricsRecorder

	// bgMu serializes runBackground against Close so no WaitGroup Add can
	// race a Wait already in progress.
	bgMu           sync.Mutex
	bgWg           sync.WaitGroup
	closed         atomic.Bool
	shutdownCtx    context.Context
	shutdownCancel context.CancelFunc

	degradedReads atomic.Int64
	promotions    atomic.Int64
}

// NewEngine builds the engine from configuration. When Redis is disabled the
// durable tier is a no-op that always misses.
func NewEngine(cfg *config.Config, logger *slog.Logger, recorder types.MetricsRecorder) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.NewNoOp()
	}

	e := &Engine{
		hotEnabled:     cfg.HotTier.Enabled,
		durableEnabled: cfg.Redis.Enabled,
		logger:         logger.With("component", "cache-engine"),
		metrics:        recorder,
	}
	e.shutdownCtx, e.shutdownCancel = context.WithCancel(context.Background())

	if cfg.HotTier.Enabled {
		hot, err := NewHotTier(cfg.HotTier.MaxEntries)
		if err != nil {
			return nil, fmt.Errorf("creating hot tier: %w", err)
		}
		e.hot = hot
	}

	if cfg.Redis.Enabled {
		durable, err := NewRedisTier(cfg.Redis, logger)
		if err != nil {
			return nil, fmt.Errorf("creating durable tier: %w", err)
		}
		e.durable = durable
	} else {
		e.durable = NewDisabledDurable()
	}

	return e, nil
}

// Get looks up key, hot tier first. It returns types.ErrCacheMiss when the
// key is in neither tier; durable tier failures also surface as misses so a
// Redis outage never fails a read path, only slows it down.
func (e *Engine) Get(ctx context.Context, key string, op types.Operation) (*types.CacheEntry, error) {
	if e.closed.Load() {
		return nil, types.ErrClosed
	}

	start := time.Now()

	if e.hotEnabled {
		if entry, ok := e.hot.Get(key); ok {
			e.record(func(m types.MetricsRecorder) { m.RecordHit("hot", op, time.Since(start)) })
			return entry, nil
		}
	}

	data, err := e.durable.Get(ctx, key)
	if err != nil {
		if types.IsCacheMiss(err) {
			e.record(func(m types.MetricsRecorder) { m.RecordMiss("durable", op, time.Since(start)) })
			return nil, types.ErrCacheMiss
		}
		// Degrade: a failing durable tier reads as a miss.
		e.degradedReads.Add(1)
		e.logger.Warn("durable tier read failed, treating as miss", "key", key, "error", err)
		e.record(func(m types.MetricsRecorder) { m.RecordError("durable", "get", err) })
		return nil, types.ErrCacheMiss
	}

	entry, err := decodeEntry(data)
	if err != nil {
		e.logger.Warn("corrupt cache entry, treating as miss", "key", key, "error", err)
		e.record(func(m types.MetricsRecorder) { m.RecordError("durable", "decode", err) })
		return nil, types.ErrCacheMiss
	}

	if entry.Compressed {
		payload, err := decompressPayload(entry.Payload)
		if err != nil {
			e.logger.Warn("cache entry decompression failed, treating as miss", "key", key, "error", err)
			e.record(func(m types.MetricsRecorder) { m.RecordError("durable", "decompress", err) })
			return nil, types.ErrCacheMiss
		}
		entry.Payload = payload
		entry.Compressed = false
	}

	e.record(func(m types.MetricsRecorder) { m.RecordHit("durable", op, time.Since(start)) })

	if e.hotEnabled && entry.HotEligible {
		promoted := *entry
		e.runBackground(func(ctx context.Context) {
			e.hot.Set(key, &promoted)
			e.promotions.Add(1)
		})
	}

	return entry, nil
}

// Set writes the entry durable-first. The classification decides compression
// and hot-tier placement; a durable write failure returns an error wrapping
// types.ErrCacheUnavailable and leaves the hot tier untouched.
func (e *Engine) Set(ctx context.Context, key string, entry *types.CacheEntry, cls tier.Classification) error {
	if e.closed.Load() {
		return types.ErrClosed
	}
	if cls.TTL <= 0 {
		return fmt.Errorf("%w: got %v", types.ErrInvalidTTL, cls.TTL)
	}

	start := time.Now()

	entry.TTLSeconds = int64(cls.TTL / time.Second)
	entry.HotEligible = cls.HotEligible
	entry.OriginalSize = len(entry.Payload)
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	stored := *entry
	if cls.Compress {
		compressed, err := compressPayload(entry.Payload)
		if err != nil {
			return fmt.Errorf("compressing cache entry: %w", err)
		}
		stored.Payload = compressed
		stored.Compressed = true
		stored.CompressedSize = len(compressed)
	}

	data, err := encodeEntry(&stored)
	if err != nil {
		return fmt.Errorf("encoding cache entry: %w", err)
	}

	if e.durableEnabled {
		if err := e.durable.Set(ctx, key, data, cls.TTL); err != nil {
			e.record(func(m types.MetricsRecorder) { m.RecordError("durable", "set", err) })
			return fmt.Errorf("%w: %w", types.ErrCacheUnavailable, err)
		}
		e.record(func(m types.MetricsRecorder) { m.RecordSet("durable", entry.Operation, len(data), time.Since(start)) })
	}

	if e.hotEnabled && cls.HotEligible {
		e.hot.Set(key, entry)
		e.record(func(m types.MetricsRecorder) {
			m.RecordSet("hot", entry.Operation, len(entry.Payload), time.Since(start))
		})
	}

	return nil
}

// Invalidate removes a key from both tiers. Removing an absent key succeeds.
func (e *Engine) Invalidate(ctx context.Context, key string) error {
	if e.closed.Load() {
		return types.ErrClosed
	}

	if e.hotEnabled {
		e.hot.Delete(key)
	}
	if e.durableEnabled {
		if err := e.durable.Delete(ctx, key); err != nil && !types.IsCacheUnavailable(err) {
			return err
		}
	}
	return nil
}

// InvalidatePattern removes matching keys from both tiers.
func (e *Engine) InvalidatePattern(ctx context.Context, pattern string) error {
	if e.closed.Load() {
		return types.ErrClosed
	}

	if e.hotEnabled {
		removed := e.hot.DeleteByPattern(pattern)
		e.logger.Debug("hot tier pattern invalidation", "pattern", pattern, "removed", removed)
	}
	if e.durableEnabled {
		if err := e.durable.DeleteByPattern(ctx, pattern); err != nil && !types.IsCacheUnavailable(err) {
			return err
		}
	}
	return nil
}

// HotStats reports hot tier counters; zero-valued when the tier is disabled.
func (e *Engine) HotStats() types.HotTierStats {
	if !e.hotEnabled {
		return types.HotTierStats{}
	}
	return e.hot.Stats()
}

// HotLen returns the hot tier's current entry count.
func (e *Engine) HotLen() int {
	if !e.hotEnabled {
		return 0
	}
	return e.hot.Len()
}

// HotCap returns the hot tier's entry ceiling.
func (e *Engine) HotCap() int {
	if !e.hotEnabled {
		return 0
	}
	return e.hot.Cap()
}

// HotEnabled reports whether the in-process tier is configured.
func (e *Engine) HotEnabled() bool { return e.hotEnabled }

// HotHitRatio returns the hot tier hit ratio over its lifetime.
func (e *Engine) HotHitRatio() float64 {
	if !e.hotEnabled {
		return 0
	}
	return e.hot.HitRatio()
}

// DurableLastError reports the durable tier's most recent connection error,
// when the tier tracks one.
func (e *Engine) DurableLastError() (error, time.Time) {
	if rt, ok := e.durable.(*RedisTier); ok {
		return rt.LastError()
	}
	return nil, time.Time{}
}

// DurableAvailable reports whether the durable tier is currently reachable.
func (e *Engine) DurableAvailable() bool {
	return e.durableEnabled && e.durable.IsAvailable()
}

// DurableEnabled reports whether a durable tier was configured at all.
func (e *Engine) DurableEnabled() bool { return e.durableEnabled }

// DegradedReads is the count of reads served as misses because the durable
// tier failed.
func (e *Engine) DegradedReads() int64 { return e.degradedReads.Load() }

// Promotions is the count of durable hits copied into the hot tier.
func (e *Engine) Promotions() int64 { return e.promotions.Load() }

func (e *Engine) runBackground(fn func(ctx context.Context)) {
	e.bgMu.Lock()
	if e.closed.Load() {
		e.bgMu.Unlock()
		return
	}
	e.bgWg.Add(1)
	e.bgMu.Unlock()

	go func() {
		defer e.bgWg.Done()
		ctx, cancel := context.WithTimeout(e.shutdownCtx, DefaultBackgroundOpTimeout)
		defer cancel()
		fn(ctx)
	}()
}

// record invokes fn when a metrics recorder is configured.
func (e *Engine) record(fn func(types.MetricsRecorder)) {
	if e.metrics != nil {
		fn(e.metrics)
	}
}

// Close waits for background work, then closes both tiers.
func (e *Engine) Close() error {
	return e.CloseWithTimeout(DefaultShutdownTimeout)
}

// CloseWithTimeout waits up to timeout for background promotions, then closes
// the tiers regardless. A timed-out wait returns ErrShutdownTimeout joined
// with any tier close errors.
func (e *Engine) CloseWithTimeout(timeout time.Duration) error {
	e.bgMu.Lock()
	if e.closed.Swap(true) {
		e.bgMu.Unlock()
		return nil
	}
	e.shutdownCancel()
	e.bgMu.Unlock()

	done := make(chan struct{})
	go func() {
		e.bgWg.Wait()
		close(done)
	}()

	var timedOut bool
	select {
	case <-done:
	case <-time.After(timeout):
		e.logger.Warn("shutdown timeout exceeded, closing tiers anyway", "timeout", timeout)
		timedOut = true
	}

	var errs []error
	if e.hotEnabled {
		e.hot.Purge()
	}
	if err := e.durable.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing durable tier: %w", err))
	}
	if timedOut {
		errs = append(errs, ErrShutdownTimeout)
	}
	return errors.Join(errs...)
}
