package metropolis

import (
	"errors"

	"github.com/nozzle/metropolis/kernel"
)

// Validation errors. They are returned wrapped with the offending value and
// can be matched with errors.Is.
var (
	ErrInvalidDimension   = errors.New("invalid dimension")
	ErrInvalidChainCount  = errors.New("invalid chain count")
	ErrInvalidSampleCount = errors.New("invalid sample count")
	ErrInvalidStepScale   = errors.New("invalid step scale")
	ErrDimensionMismatch  = errors.New("dimension mismatch")
	ErrNilDensity         = errors.New("nil log-density")
	ErrInvalidChainIndex  = errors.New("invalid chain index")
)

// ErrDensityEvaluation is matched by errors returned when the log-density
// panics. Use errors.As with *DensityError for the chain and step.
var ErrDensityEvaluation = kernel.ErrDensityEvaluation

// DensityError reports the chain and step at which the log-density failed.
type DensityError = kernel.DensityError
