// Package resilience provides fault tolerance for LLM calls: per-operation
// circuit breakers, retry with exponential backoff, and fallbacks.
package resilience

import (
	"context"
	"errors"
	"net"
	"os"
	"syscall"

	"github.com/tildesmith/inkwell/internal/config"
	"github.com/tildesmith/inkwell/internal/types"
)

// Class is the retry classification of a failure.
type Class int

const (
	// ClassTransient failures may succeed on retry.
	ClassTransient Class = iota
	// ClassPermanent failures will not succeed on retry.
	ClassPermanent
)

func (c Class) String() string {
	switch c {
	case ClassTransient:
		return "transient"
	case ClassPermanent:
		return "permanent"
	default:
		return "unknown"
	}
}

// Classifier decides whether a failure is worth retrying. Explicit marks
// win; then known network and timeout shapes; unrecognized errors fall to
// the configured unknown-error policy.
type Classifier struct {
	optimistic bool
}

// NewClassifier builds a classifier for the given unknown-error policy.
// Anything other than the optimistic policy is treated as strict.
func NewClassifier(policy string) *Classifier {
	return &Classifier{optimistic: policy == config.UnknownPolicyOptimistic}
}

// Classify maps an error to its retry class.
func (c *Classifier) Classify(err error) Class {
	if err == nil {
		return ClassPermanent
	}

	if types.IsMarkedPermanent(err) {
		return ClassPermanent
	}
	if types.IsMarkedTransient(err) {
		return ClassTransient
	}

	// Caller gave up; retrying on their behalf would be wrong.
	if errors.Is(err, context.Canceled) {
		return ClassPermanent
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return ClassTransient
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ClassTransient
	}

	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ETIMEDOUT) ||
		errors.Is(err, syscall.EPIPE) {
		return ClassTransient
	}

	if c.optimistic {
		return ClassTransient
	}
	return ClassPermanent
}
