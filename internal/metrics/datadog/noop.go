package datadog

import (
	"time"

	"github.com/tildesmith/inkwell/internal/metrics"
	"github.com/tildesmith/inkwell/internal/types"
)

// NoOpPublisher discards all metrics. Returned when DataDog is disabled.
type NoOpPublisher struct{}

func (n *NoOpPublisher) Gauge(name string, value float64, tags ...string)           {}
func (n *NoOpPublisher) Incr(name string, tags ...string)                           {}
func (n *NoOpPublisher) Count(name string, value int64, tags ...string)             {}
func (n *NoOpPublisher) Histogram(name string, value float64, tags ...string)       {}
func (n *NoOpPublisher) Timing(name string, duration time.Duration, tags ...string) {}
func (n *NoOpPublisher) PublishSnapshot(s *types.MetricsSnapshot)                   {}
func (n *NoOpPublisher) Close() error                                               { return nil }

var _ metrics.Publisher = (*NoOpPublisher)(nil)
