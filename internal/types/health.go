package types

import "time"

// HealthStatus represents the overall health state.
type HealthStatus int

const (
	// HealthStatusHealthy indicates all tiers operating normally.
	HealthStatusHealthy HealthStatus = iota + 1
	// HealthStatusDegraded indicates partial functionality (durable tier
	// down, or at least one breaker open).
	HealthStatusDegraded
	// HealthStatusUnhealthy indicates critical failure.
	HealthStatusUnhealthy
)

func (s HealthStatus) String() string {
	switch s {
	case HealthStatusHealthy:
		return "healthy"
	case HealthStatusDegraded:
		return "degraded"
	case HealthStatusUnhealthy:
		return "unhealthy"
	default:
		return "unknown"
	}
}

// Health is a point-in-time view of the processor's tiers and breakers.
type Health struct {
	Timestamp  time.Time
	Status     HealthStatus
	HotTier    HotTierHealth
	Durable    DurableHealth
	Operations map[string]OperationHealth
}

// HotTierHealth contains in-process tier health details.
type HotTierHealth struct {
	Enabled    bool
	Entries    int
	MaxEntries int
	Hits       int64
	Misses     int64
	Evictions  int64
	HitRatio   float64
}

// DurableHealth contains durable tier health details.
type DurableHealth struct {
	Enabled       bool
	Available     bool
	LastError     string
	LastErrorTime time.Time
}

// OperationHealth contains per-operation resilience state.
type OperationHealth struct {
	BreakerState     string
	TotalCalls       int64
	SuccessfulCalls  int64
	FailedCalls      int64
	RetriesAttempted int64
	Fallbacks        int64
	RejectedCalls    int64
	CircuitOpens     int64
	CircuitHalfOpens int64
	CircuitCloses    int64
	LastSuccessTime  time.Time
	LastFailureTime  time.Time
}

// MetricsSnapshot contains a point-in-time view of pipeline metrics.
type MetricsSnapshot struct {
	Timestamp time.Time

	// Hit/miss counters per tier
	HotHits       int64
	HotMisses     int64
	DurableHits   int64
	DurableMisses int64

	// Operation counters
	SetCount            int64
	ErrorCount          int64
	LLMCalls            int64
	LLMFailures         int64
	Retries             int64
	Fallbacks           int64
	KeyGenCount         int64
	BytesWritten        int64
	BreakerStateChanges int64

	// Latency metrics (milliseconds)
	AvgLatencyMs float64
	P50LatencyMs float64
	P95LatencyMs float64
	P99LatencyMs float64
}

// HotHitRatio calculates the hot-tier hit ratio.
func (s *MetricsSnapshot) HotHitRatio() float64 {
	total := s.HotHits + s.HotMisses
	if total == 0 {
		return 0
	}
	return float64(s.HotHits) / float64(total)
}

// TotalHitRatio calculates the overall cache hit ratio.
func (s *MetricsSnapshot) TotalHitRatio() float64 {
	hits := s.HotHits + s.DurableHits
	total := hits + s.DurableMisses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}
