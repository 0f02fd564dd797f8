package kernel

import (
	"errors"
	"fmt"
)

// ErrDensityEvaluation is matched by every DensityError.
var ErrDensityEvaluation = errors.New("density evaluation failed")

// DensityError reports a log-density function that panicked.
// Step is -1 when the failure happened on the initial position.
type DensityError struct {
	Chain int
	Step  int
	Cause error
}

func (e *DensityError) Error() string {
	return fmt.Sprintf("chain %d step %d: %v: %v", e.Chain, e.Step, ErrDensityEvaluation, e.Cause)
}

func (e *DensityError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is ErrDensityEvaluation.
func (e *DensityError) Is(target error) bool {
	return target == ErrDensityEvaluation
}

// panicError converts a recovered value into an error.
func panicError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("panic: %v", r)
}
