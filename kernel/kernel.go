// Package kernel implements the Random Walk Metropolis transition for a
// single chain and the driver that folds it over a fixed number of steps.
package kernel

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/nozzle/metropolis/density"
	"github.com/nozzle/metropolis/internal/rand"
)

// ChainState is the state of one chain.
// LogDensity always equals the target log-density at Position.
type ChainState struct {
	Position   []float64
	LogDensity float64
}

// NewChainState evaluates logpdf at a copy of position.
func NewChainState(logpdf density.LogDensity, position []float64) ChainState {
	p := make([]float64, len(position))
	copy(p, position)
	return ChainState{Position: p, LogDensity: logpdf(p)}
}

// Step applies one Metropolis transition. The key is split in two: the
// first half draws the Normal(0, stepScale^2) offset for every dimension,
// the second half draws the acceptance uniform.
//
// The input state is never modified. On rejection the same state is
// returned.
func Step(key rand.Key, logpdf density.LogDensity, state ChainState, stepScale float64) ChainState {
	proposal := make([]float64, len(state.Position))
	logDensity, ok := propose(key, logpdf, state, stepScale, proposal)
	if !ok {
		return state
	}
	return ChainState{Position: proposal, LogDensity: logDensity}
}

// propose writes the proposal for state into dst and reports whether it is
// accepted, along with its log-density.
func propose(key rand.Key, logpdf density.LogDensity, state ChainState, stepScale float64, dst []float64) (float64, bool) {
	keyA, keyB := rand.Split(key)

	rand.Normal(keyA, stepScale, dst)
	floats.Add(dst, state.Position)
	logDensity := logpdf(dst)

	return logDensity, accept(rand.LogUniform(keyB), logDensity, state.LogDensity)
}

// accept is the Metropolis test log(u) < proposed - current.
//
// A NaN proposal never passes. A NaN current value makes the difference NaN,
// so a chain started at an undefined point never moves.
func accept(logU, proposed, current float64) bool {
	if math.IsNaN(proposed) {
		return false
	}
	// -Inf - -Inf is NaN; the comparison below is false for it.
	return logU < proposed-current
}
