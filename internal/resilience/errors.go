package resilience

import (
	"fmt"

	"github.com/tildesmith/inkwell/internal/types"
)

// ExecuteError is the failure of one orchestrated call after the breaker,
// retries, and any fallback have all been exhausted.
type ExecuteError struct {
	Op       types.Operation
	Class    Class
	Attempts int
	Err      error
}

func (e *ExecuteError) Error() string {
	return fmt.Sprintf("%s failed after %d attempt(s) (%s): %v", e.Op, e.Attempts, e.Class, e.Err)
}

func (e *ExecuteError) Unwrap() error {
	return e.Err
}
