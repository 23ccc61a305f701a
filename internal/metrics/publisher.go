package metrics

import (
	"time"

	"github.com/tildesmith/inkwell/internal/types"
)

// Publisher sends metrics to an external backend.
type Publisher interface {
	Gauge(name string, value float64, tags ...string)
	Incr(name string, tags ...string)
	Count(name string, value int64, tags ...string)
	Histogram(name string, value float64, tags ...string)
	Timing(name string, duration time.Duration, tags ...string)

	// PublishSnapshot emits the snapshot as a batch of gauges.
	PublishSnapshot(s *types.MetricsSnapshot)

	Close() error
}
