package kernel

import (
	"context"
	"iter"

	"github.com/nozzle/metropolis/density"
	"github.com/nozzle/metropolis/internal/rand"
)

// cancelCheckInterval is the number of steps between context checks.
const cancelCheckInterval = 64

// StepKey returns the key consumed by step i of the chain rooted at chainKey.
func StepKey(chainKey rand.Key, i int) rand.Key {
	return rand.Derive(chainKey, uint64(i))
}

// Run applies nSamples transitions starting from initial and returns only
// the final state. Intermediate states are not retained.
//
// The context is checked between steps. A panic raised by logpdf is
// returned as a *DensityError with Chain set to -1; callers running many
// chains fill it in.
func Run(
	ctx context.Context,
	chainKey rand.Key,
	nSamples int,
	logpdf density.LogDensity,
	initial []float64,
	stepScale float64,
) (state ChainState, err error) {
	step := -1
	defer func() {
		if r := recover(); r != nil {
			state = ChainState{}
			err = &DensityError{Chain: -1, Step: step, Cause: panicError(r)}
		}
	}()

	state = NewChainState(logpdf, initial)

	// The proposal buffer and the state position swap on acceptance, so
	// positions are never reallocated. The random draws still build a
	// fresh source per key.
	proposal := make([]float64, len(initial))
	for step = 0; step < nSamples; step++ {
		if step%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return ChainState{}, err
			}
		}

		logDensity, ok := propose(StepKey(chainKey, step), logpdf, state, stepScale, proposal)
		if ok {
			state.Position, proposal = proposal, state.Position
			state.LogDensity = logDensity
		}
	}
	return state, nil
}

// Trajectory lazily yields the initial state followed by the state after
// every one of the nSamples transitions. Its last element equals the
// result of Run with the same arguments.
//
// The sequence is finite. Ranging over it again replays it from the start
// because every step key is derived from chainKey. Yielded states are
// never modified afterwards. A panic in logpdf propagates to the caller.
func Trajectory(
	chainKey rand.Key,
	nSamples int,
	logpdf density.LogDensity,
	initial []float64,
	stepScale float64,
) iter.Seq[ChainState] {
	return func(yield func(ChainState) bool) {
		state := NewChainState(logpdf, initial)
		if !yield(state) {
			return
		}
		for i := range nSamples {
			state = Step(StepKey(chainKey, i), logpdf, state, stepScale)
			if !yield(state) {
				return
			}
		}
	}
}
