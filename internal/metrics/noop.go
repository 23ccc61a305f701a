package metrics

import (
	"time"

	"github.com/tildesmith/inkwell/internal/types"
)

// NoOp discards every observation. Used when metrics are disabled.
type NoOp struct{}

func NewNoOp() *NoOp { return &NoOp{} }

func (n *NoOp) RecordHit(layer string, op types.Operation, latency time.Duration)  {}
func (n *NoOp) RecordMiss(layer string, op types.Operation, latency time.Duration) {}
func (n *NoOp) RecordSet(layer string, op types.Operation, size int, latency time.Duration) {
}
func (n *NoOp) RecordKeyGen(op types.Operation, textBytes int, latency time.Duration) {}
func (n *NoOp) RecordLLMCall(op types.Operation, latency time.Duration, failed bool)  {}
func (n *NoOp) RecordRetry(op types.Operation)                                        {}
func (n *NoOp) RecordFallback(op types.Operation)                                     {}
func (n *NoOp) RecordError(layer string, operation string, err error)                 {}
func (n *NoOp) RecordBreakerStateChange(op types.Operation, from, to string)          {}

var _ types.MetricsRecorder = (*NoOp)(nil)
