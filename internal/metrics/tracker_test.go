package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/tildesmith/inkwell/internal/types"
)

func TestTrackerCounters(t *testing.T) {
	tr := NewTracker()

	tr.RecordHit("hot", types.OpSummarize, time.Millisecond)
	tr.RecordHit("durable", types.OpSummarize, 2*time.Millisecond)
	tr.RecordMiss("durable", types.OpSummarize, time.Millisecond)
	tr.RecordSet("durable", types.OpSummarize, 100, time.Millisecond)
	tr.RecordLLMCall(types.OpSummarize, 50*time.Millisecond, false)
	tr.RecordLLMCall(types.OpSummarize, 50*time.Millisecond, true)
	tr.RecordRetry(types.OpSummarize)
	tr.RecordFallback(types.OpSummarize)
	tr.RecordKeyGen(types.OpSummarize, 1000, time.Microsecond)
	tr.RecordError("durable", "get", errors.New("boom"))
	tr.RecordBreakerStateChange(types.OpSummarize, "closed", "open")

	s := tr.Snapshot()
	if s.HotHits != 1 || s.DurableHits != 1 || s.DurableMisses != 1 {
		t.Errorf("hits/misses = %d/%d/%d, want 1/1/1", s.HotHits, s.DurableHits, s.DurableMisses)
	}
	if s.SetCount != 1 || s.BytesWritten != 100 {
		t.Errorf("sets=%d bytes=%d, want 1/100", s.SetCount, s.BytesWritten)
	}
	if s.LLMCalls != 2 || s.LLMFailures != 1 {
		t.Errorf("llm calls/failures = %d/%d, want 2/1", s.LLMCalls, s.LLMFailures)
	}
	if s.Retries != 1 || s.Fallbacks != 1 || s.KeyGenCount != 1 || s.ErrorCount != 1 {
		t.Error("auxiliary counters wrong")
	}
	if s.BreakerStateChanges != 1 {
		t.Errorf("breaker changes = %d, want 1", s.BreakerStateChanges)
	}
}

func TestTrackerHitRatios(t *testing.T) {
	tr := NewTracker()

	tr.RecordHit("hot", types.OpSummarize, time.Millisecond)
	tr.RecordHit("hot", types.OpSummarize, time.Millisecond)
	tr.RecordHit("durable", types.OpSummarize, time.Millisecond)
	tr.RecordMiss("durable", types.OpSummarize, time.Millisecond)

	s := tr.Snapshot()
	if got := s.TotalHitRatio(); got != 0.75 {
		t.Errorf("total hit ratio = %v, want 0.75", got)
	}
}

func TestTrackerLatencyPercentiles(t *testing.T) {
	tr := NewTracker()

	for i := 1; i <= 100; i++ {
		tr.RecordHit("hot", types.OpSummarize, time.Duration(i)*time.Millisecond)
	}

	s := tr.Snapshot()
	if s.P50LatencyMs < 45 || s.P50LatencyMs > 55 {
		t.Errorf("p50 = %v, want around 50", s.P50LatencyMs)
	}
	if s.P99LatencyMs < 95 {
		t.Errorf("p99 = %v, want near 100", s.P99LatencyMs)
	}
	if s.AvgLatencyMs < 45 || s.AvgLatencyMs > 55 {
		t.Errorf("avg = %v, want around 50.5", s.AvgLatencyMs)
	}
}

func TestTrackerReset(t *testing.T) {
	tr := NewTracker()

	tr.RecordHit("hot", types.OpSummarize, time.Millisecond)
	tr.Reset()

	s := tr.Snapshot()
	if s.HotHits != 0 || s.AvgLatencyMs != 0 {
		t.Error("reset did not clear counters")
	}
}

func TestTrackerConcurrentAccess(t *testing.T) {
	tr := NewTracker()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				tr.RecordHit("hot", types.OpSummarize, time.Millisecond)
				tr.RecordMiss("durable", types.OpQA, time.Millisecond)
				_ = tr.Snapshot()
			}
		}()
	}
	wg.Wait()

	s := tr.Snapshot()
	if s.HotHits != 8*500 {
		t.Errorf("hot hits = %d, want %d", s.HotHits, 8*500)
	}
}
