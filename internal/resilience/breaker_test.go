package resilience

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestBreakerStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateClosed, "closed"},
		{StateOpen, "open"},
		{StateHalfOpen, "half-open"},
		{State(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.state.String(); got != tt.want {
				t.Errorf("State.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBreakerOpensAtThreshold(t *testing.T) {
	b := NewBreaker("test", 3, time.Minute)

	if b.State() != StateClosed {
		t.Fatalf("initial state = %v, want closed", b.State())
	}

	b.RecordFailure()
	b.RecordFailure()
	if b.State() != StateClosed {
		t.Errorf("state after 2 failures = %v, want still closed", b.State())
	}

	b.RecordFailure()
	if b.State() != StateOpen {
		t.Errorf("state after 3 failures = %v, want open", b.State())
	}
	if b.Allow() {
		t.Error("open breaker allowed a call")
	}
}

func TestBreakerSuccessResetsFailureCount(t *testing.T) {
	b := NewBreaker("test", 3, time.Minute)

	b.RecordFailure()
	b.RecordFailure()
	b.RecordSuccess()
	b.RecordFailure()
	b.RecordFailure()

	if b.State() != StateClosed {
		t.Errorf("state = %v, want closed: success should reset the count", b.State())
	}
}

func TestBreakerHalfOpenSingleTrial(t *testing.T) {
	b := NewBreaker("test", 1, 10*time.Millisecond)

	b.RecordFailure()
	if b.State() != StateOpen {
		t.Fatalf("state = %v, want open", b.State())
	}

	time.Sleep(15 * time.Millisecond)

	if !b.Allow() {
		t.Fatal("expected trial call to be admitted after recovery timeout")
	}
	if b.State() != StateHalfOpen {
		t.Errorf("state = %v, want half-open", b.State())
	}
	if b.Allow() {
		t.Error("second call admitted while trial in flight")
	}
}

func TestBreakerTrialSuccessCloses(t *testing.T) {
	b := NewBreaker("test", 1, 10*time.Millisecond)

	b.RecordFailure()
	time.Sleep(15 * time.Millisecond)

	if !b.Allow() {
		t.Fatal("trial not admitted")
	}
	b.RecordSuccess()

	if b.State() != StateClosed {
		t.Errorf("state = %v, want closed after trial success", b.State())
	}
	if b.Stats().FailureCount != 0 {
		t.Errorf("failure count = %d, want reset to 0", b.Stats().FailureCount)
	}
	if !b.Allow() {
		t.Error("closed breaker rejected a call")
	}
}

func TestBreakerTrialFailureReopens(t *testing.T) {
	b := NewBreaker("test", 1, 10*time.Millisecond)

	b.RecordFailure()
	time.Sleep(15 * time.Millisecond)

	if !b.Allow() {
		t.Fatal("trial not admitted")
	}
	b.RecordFailure()

	if b.State() != StateOpen {
		t.Errorf("state = %v, want open after trial failure", b.State())
	}
	if b.Allow() {
		t.Error("reopened breaker admitted a call before recovery timeout")
	}

	// The cycle repeats: another recovery window, another trial.
	time.Sleep(15 * time.Millisecond)
	if !b.Allow() {
		t.Error("expected a new trial after the second recovery timeout")
	}
}

func TestBreakerStateChangeCallback(t *testing.T) {
	b := NewBreaker("test", 1, 10*time.Millisecond)

	var mu sync.Mutex
	var transitions []string
	b.SetOnStateChange(func(from, to State) {
		mu.Lock()
		transitions = append(transitions, from.String()+">"+to.String())
		mu.Unlock()
		// Reading state inside the callback must not deadlock.
		_ = b.State()
	})

	b.RecordFailure()
	time.Sleep(15 * time.Millisecond)
	b.Allow()
	b.RecordSuccess()

	mu.Lock()
	defer mu.Unlock()
	want := []string{"closed>open", "open>half-open", "half-open>closed"}
	if len(transitions) != len(want) {
		t.Fatalf("transitions = %v, want %v", transitions, want)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Errorf("transition[%d] = %q, want %q", i, transitions[i], want[i])
		}
	}
}

func TestBreakerConcurrentRecoveryAdmitsOneTrial(t *testing.T) {
	b := NewBreaker("test", 1, time.Millisecond)

	for iter := 0; iter < 200; iter++ {
		// Open the circuit (first pass) or fail the previous trial
		// to reopen it and restart the recovery clock.
		b.RecordFailure()
		if b.State() != StateOpen {
			t.Fatalf("iteration %d: state = %v, want open", iter, b.State())
		}
		time.Sleep(2 * time.Millisecond)

		var admitted atomic.Int32
		start := make(chan struct{})
		var wg sync.WaitGroup
		for g := 0; g < 4; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				if b.Allow() {
					admitted.Add(1)
				}
			}()
		}
		close(start)
		wg.Wait()

		if n := admitted.Load(); n != 1 {
			t.Fatalf("iteration %d: %d calls admitted as the half-open trial, want exactly 1", iter, n)
		}
	}
}

func TestBreakerConcurrentAccess(t *testing.T) {
	b := NewBreaker("test", 100, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if b.Allow() {
					if j%2 == 0 {
						b.RecordSuccess()
					} else {
						b.RecordFailure()
					}
				}
				_ = b.State()
			}
		}(i)
	}
	wg.Wait()
}
