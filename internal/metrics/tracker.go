// Package metrics collects pipeline and cache observations and publishes
// them to a metrics backend.
package metrics

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tildesmith/inkwell/internal/types"
)

const defaultLatencyBufferSize = 10000

// Tracker is the in-process metrics recorder. Counters are atomic; cache
// latencies go into a fixed circular buffer so snapshots can compute
// percentiles without unbounded memory.
type Tracker struct {
	hotHits       atomic.Int64
	hotMisses     atomic.Int64
	durableHits   atomic.Int64
	durableMisses atomic.Int64

	setCount     atomic.Int64
	errorCount   atomic.Int64
	llmCalls     atomic.Int64
	llmFailures  atomic.Int64
	retries      atomic.Int64
	fallbacks    atomic.Int64
	keyGenCount  atomic.Int64
	bytesWritten atomic.Int64

	breakerChanges atomic.Int64

	latencyMu     sync.RWMutex
	latencyBuffer []time.Duration
	latencyIndex  int
	latencyCount  int
}

func NewTracker() *Tracker {
	return &Tracker{
		latencyBuffer: make([]time.Duration, defaultLatencyBufferSize),
	}
}

func (t *Tracker) RecordHit(layer string, op types.Operation, latency time.Duration) {
	switch layer {
	case "hot":
		t.hotHits.Add(1)
	case "durable":
		t.durableHits.Add(1)
	}
	t.recordLatency(latency)
}

func (t *Tracker) RecordMiss(layer string, op types.Operation, latency time.Duration) {
	switch layer {
	case "hot":
		t.hotMisses.Add(1)
	case "durable":
		t.durableMisses.Add(1)
	}
	t.recordLatency(latency)
}

func (t *Tracker) RecordSet(layer string, op types.Operation, size int, latency time.Duration) {
	t.setCount.Add(1)
	t.bytesWritten.Add(int64(size))
	t.recordLatency(latency)
}

func (t *Tracker) RecordKeyGen(op types.Operation, textBytes int, latency time.Duration) {
	t.keyGenCount.Add(1)
}

func (t *Tracker) RecordLLMCall(op types.Operation, latency time.Duration, failed bool) {
	t.llmCalls.Add(1)
	if failed {
		t.llmFailures.Add(1)
	}
	t.recordLatency(latency)
}

func (t *Tracker) RecordRetry(op types.Operation) {
	t.retries.Add(1)
}

func (t *Tracker) RecordFallback(op types.Operation) {
	t.fallbacks.Add(1)
}

func (t *Tracker) RecordError(layer string, operation string, err error) {
	t.errorCount.Add(1)
}

func (t *Tracker) RecordBreakerStateChange(op types.Operation, from, to string) {
	t.breakerChanges.Add(1)
}

// recordLatency writes into the circular buffer. O(1), no allocations.
func (t *Tracker) recordLatency(latency time.Duration) {
	t.latencyMu.Lock()
	t.latencyBuffer[t.latencyIndex] = latency
	t.latencyIndex = (t.latencyIndex + 1) % len(t.latencyBuffer)
	if t.latencyCount < len(t.latencyBuffer) {
		t.latencyCount++
	}
	t.latencyMu.Unlock()
}

// Snapshot returns a point-in-time view of all counters plus latency
// percentiles over the buffered window.
func (t *Tracker) Snapshot() types.MetricsSnapshot {
	t.latencyMu.RLock()
	count := t.latencyCount
	latencyCopy := make([]time.Duration, count)
	if count > 0 {
		if count < len(t.latencyBuffer) {
			copy(latencyCopy, t.latencyBuffer[:count])
		} else {
			firstPart := len(t.latencyBuffer) - t.latencyIndex
			copy(latencyCopy[:firstPart], t.latencyBuffer[t.latencyIndex:])
			copy(latencyCopy[firstPart:], t.latencyBuffer[:t.latencyIndex])
		}
	}
	t.latencyMu.RUnlock()

	snapshot := types.MetricsSnapshot{
		Timestamp:     time.Now(),
		HotHits:       t.hotHits.Load(),
		HotMisses:     t.hotMisses.Load(),
		DurableHits:   t.durableHits.Load(),
		DurableMisses: t.durableMisses.Load(),
		SetCount:      t.setCount.Load(),
		ErrorCount:    t.errorCount.Load(),
		LLMCalls:      t.llmCalls.Load(),
		LLMFailures:   t.llmFailures.Load(),
		Retries:       t.retries.Load(),
		Fallbacks:     t.fallbacks.Load(),
		KeyGenCount:   t.keyGenCount.Load(),
		BytesWritten:  t.bytesWritten.Load(),

		BreakerStateChanges: t.breakerChanges.Load(),
	}

	if len(latencyCopy) > 0 {
		snapshot.AvgLatencyMs = durationMs(avgDuration(latencyCopy))
		snapshot.P50LatencyMs = durationMs(percentile(latencyCopy, 50))
		snapshot.P95LatencyMs = durationMs(percentile(latencyCopy, 95))
		snapshot.P99LatencyMs = durationMs(percentile(latencyCopy, 99))
	}

	return snapshot
}

// Reset clears all counters and the latency buffer.
func (t *Tracker) Reset() {
	t.hotHits.Store(0)
	t.hotMisses.Store(0)
	t.durableHits.Store(0)
	t.durableMisses.Store(0)
	t.setCount.Store(0)
	t.errorCount.Store(0)
	t.llmCalls.Store(0)
	t.llmFailures.Store(0)
	t.retries.Store(0)
	t.fallbacks.Store(0)
	t.keyGenCount.Store(0)
	t.bytesWritten.Store(0)
	t.breakerChanges.Store(0)

	t.latencyMu.Lock()
	t.latencyIndex = 0
	t.latencyCount = 0
	t.latencyMu.Unlock()
}

func durationMs(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func avgDuration(durations []time.Duration) time.Duration {
	if len(durations) == 0 {
		return 0
	}
	var total time.Duration
	for _, d := range durations {
		total += d
	}
	return total / time.Duration(len(durations))
}

func percentile(durations []time.Duration, p int) time.Duration {
	if len(durations) == 0 {
		return 0
	}

	sorted := make([]time.Duration, len(durations))
	copy(sorted, durations)
	slices.Sort(sorted)

	idx := (len(sorted) - 1) * p / 100
	return sorted[idx]
}

var _ types.MetricsRecorder = (*Tracker)(nil)
