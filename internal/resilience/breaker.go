package resilience

import (
	"sync"
	"sync/atomic"
	"time"
)

// State is a circuit breaker state.
type State int32

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Breaker is a per-operation circuit breaker. It counts call-level failures
// while closed, fails fast while open, and after the recovery timeout admits
// a single trial call: success closes the circuit, failure reopens it.
type Breaker struct {
	name string

	failureThreshold int
	recoveryTimeout  time.Duration

	state atomic.Int32

	mu            sync.Mutex
	failureCount  int
	openedAt      time.Time
	trialInFlight bool

	onStateChange func(from, to State)
}

// stateTransition carries a callback out of the mutex so it can be invoked
// without risking deadlock against callers that read breaker state.
type stateTransition struct {
	from     State
	to       State
	callback func(from, to State)
}

func (t *stateTransition) invoke() {
	if t != nil && t.callback != nil {
		t.callback(t.from, t.to)
	}
}

// NewBreaker creates a closed breaker.
func NewBreaker(name string, failureThreshold int, recoveryTimeout time.Duration) *Breaker {
	b := &Breaker{
		name:             name,
		failureThreshold: failureThreshold,
		recoveryTimeout:  recoveryTimeout,
	}
	if b.failureThreshold <= 0 {
		b.failureThreshold = 5
	}
	if b.recoveryTimeout <= 0 {
		b.recoveryTimeout = 30 * time.Second
	}
	b.state.Store(int32(StateClosed))
	return b
}

// Allow reports whether a call may proceed. While open it transitions to
// half-open once the recovery timeout has elapsed and admits that one call
// as the trial; further calls are rejected until the trial resolves.
func (b *Breaker) Allow() bool {
	if State(b.state.Load()) == StateClosed {
		return true
	}

	var transition *stateTransition
	var allowed bool

	// Re-read the state under the mutex: a concurrent Allow may have
	// already moved open to half-open and claimed the trial.
	b.mu.Lock()
	switch State(b.state.Load()) {
	case StateOpen:
		if time.Since(b.openedAt) >= b.recoveryTimeout {
			transition = b.transitionTo(StateHalfOpen)
			b.trialInFlight = true
			allowed = true
		}
	case StateHalfOpen:
		if !b.trialInFlight {
			b.trialInFlight = true
			allowed = true
		}
	default:
		allowed = true
	}
	b.mu.Unlock()

	transition.invoke()
	return allowed
}

// RecordSuccess records a successful call. A half-open success closes the
// circuit and resets the failure count.
func (b *Breaker) RecordSuccess() {
	var transition *stateTransition

	b.mu.Lock()
	switch State(b.state.Load()) {
	case StateClosed:
		b.failureCount = 0
	case StateHalfOpen:
		transition = b.transitionTo(StateClosed)
	}
	b.mu.Unlock()

	transition.invoke()
}

// RecordFailure records a failed call. Crossing the threshold while closed
// opens the circuit; a half-open trial failure reopens it and restarts the
// recovery clock.
func (b *Breaker) RecordFailure() {
	var transition *stateTransition

	b.mu.Lock()
	switch State(b.state.Load()) {
	case StateClosed:
		b.failureCount++
		if b.failureCount >= b.failureThreshold {
			transition = b.transitionTo(StateOpen)
		}
	case StateHalfOpen:
		transition = b.transitionTo(StateOpen)
	}
	b.mu.Unlock()

	transition.invoke()
}

// transitionTo changes state while the mutex is held. The caller must invoke
// the returned transition after releasing the mutex.
func (b *Breaker) transitionTo(newState State) *stateTransition {
	oldState := State(b.state.Load())
	if oldState == newState {
		return nil
	}

	switch newState {
	case StateClosed:
		b.failureCount = 0
		b.trialInFlight = false
	case StateOpen:
		b.openedAt = time.Now()
		b.trialInFlight = false
	case StateHalfOpen:
		b.trialInFlight = false
	}

	b.state.Store(int32(newState))

	if b.onStateChange != nil {
		return &stateTransition{from: oldState, to: newState, callback: b.onStateChange}
	}
	return nil
}

// State returns the current state.
func (b *Breaker) State() State {
	return State(b.state.Load())
}

// SetOnStateChange registers a callback invoked synchronously after each
// transition, outside the breaker mutex. Keep it fast.
func (b *Breaker) SetOnStateChange(fn func(from, to State)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onStateChange = fn
}

// Stats returns a snapshot of the breaker's counters.
func (b *Breaker) Stats() BreakerStats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return BreakerStats{
		State:         State(b.state.Load()),
		FailureCount:  b.failureCount,
		OpenedAt:      b.openedAt,
		TrialInFlight: b.trialInFlight,
	}
}

// BreakerStats is a point-in-time view of a breaker.
type BreakerStats struct {
	State         State
	FailureCount  int
	OpenedAt      time.Time
	TrialInFlight bool
}
