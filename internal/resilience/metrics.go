package resilience

import (
	"sync/atomic"
	"time"

	"github.com/tildesmith/inkwell/internal/types"
)

// OperationMetrics tracks per-operation resilience counters. All fields are
// updated atomically; Snapshot gives a consistent-enough read for health
// reporting.
type OperationMetrics struct {
	totalCalls       atomic.Int64
	successes        atomic.Int64
	failures         atomic.Int64
	retries          atomic.Int64
	fallbacks        atomic.Int64
	rejected         atomic.Int64
	circuitOpens     atomic.Int64
	circuitHalfOpens atomic.Int64
	circuitCloses    atomic.Int64

	lastSuccessUnixNano atomic.Int64
	lastFailureUnixNano atomic.Int64
}

func (m *OperationMetrics) markSuccess() {
	m.successes.Add(1)
	m.lastSuccessUnixNano.Store(time.Now().UnixNano())
}

func (m *OperationMetrics) markFailure() {
	m.failures.Add(1)
	m.lastFailureUnixNano.Store(time.Now().UnixNano())
}

// Snapshot returns the counters as a health view.
func (m *OperationMetrics) Snapshot() types.OperationHealth {
	h := types.OperationHealth{
		TotalCalls:       m.totalCalls.Load(),
		SuccessfulCalls:  m.successes.Load(),
		FailedCalls:      m.failures.Load(),
		RetriesAttempted: m.retries.Load(),
		Fallbacks:        m.fallbacks.Load(),
		RejectedCalls:    m.rejected.Load(),
		CircuitOpens:     m.circuitOpens.Load(),
		CircuitHalfOpens: m.circuitHalfOpens.Load(),
		CircuitCloses:    m.circuitCloses.Load(),
	}
	if ns := m.lastSuccessUnixNano.Load(); ns > 0 {
		h.LastSuccessTime = time.Unix(0, ns)
	}
	if ns := m.lastFailureUnixNano.Load(); ns > 0 {
		h.LastFailureTime = time.Unix(0, ns)
	}
	return h
}
