package metropolis_test

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nozzle/metropolis"
	"github.com/nozzle/metropolis/density"
)

func TestValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		cfg     metropolis.Config
		initial []float64
		logpdf  density.LogDensity
		want    error
	}{
		{"zero dims", newConfig(0, 10, 2, 0.1), []float64{}, density.StdNormal, metropolis.ErrInvalidDimension},
		{"zero chains", newConfig(1, 10, 0, 0.1), []float64{0}, density.StdNormal, metropolis.ErrInvalidChainCount},
		{"negative samples", newConfig(1, -1, 2, 0.1), []float64{0}, density.StdNormal, metropolis.ErrInvalidSampleCount},
		{"zero step scale", newConfig(1, 10, 2, 0), []float64{0}, density.StdNormal, metropolis.ErrInvalidStepScale},
		{"negative step scale", newConfig(2, 3, 2, -1), []float64{0, 0}, density.StdNormal, metropolis.ErrInvalidStepScale},
		{"nan step scale", newConfig(1, 10, 2, math.NaN()), []float64{0}, density.StdNormal, metropolis.ErrInvalidStepScale},
		{"inf step scale", newConfig(1, 10, 2, math.Inf(1)), []float64{0}, density.StdNormal, metropolis.ErrInvalidStepScale},
		{"short initial", newConfig(2, 10, 2, 0.1), []float64{0}, density.StdNormal, metropolis.ErrDimensionMismatch},
		{"long initial", newConfig(1, 10, 2, 0.1), []float64{0, 1}, density.StdNormal, metropolis.ErrDimensionMismatch},
		{"nil density", newConfig(1, 10, 2, 0.1), []float64{0}, nil, metropolis.ErrNilDensity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			logpdf := tt.logpdf
			if logpdf != nil {
				logpdf = func(x []float64) float64 {
					called = true
					return tt.logpdf(x)
				}
			}

			s := metropolis.New(tt.cfg)
			out, err := s.Run(context.Background(), 1, logpdf, tt.initial)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, out)

			seq, err := s.Trajectory(1, 0, logpdf, tt.initial)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, seq)

			assert.False(t, called, "density evaluated before validation finished")
		})
	}
}

func TestTrajectoryChainIndex(t *testing.T) {
	s := metropolis.New(newConfig(1, 3, 2, 0.1))

	for _, chain := range []int{-7, -1, 2, 10} {
		seq, err := s.Trajectory(1, chain, density.StdNormal, []float64{0})
		assert.ErrorIs(t, err, metropolis.ErrInvalidChainIndex, "chain=%d", chain)
		assert.Nil(t, seq)
	}

	for _, chain := range []int{0, 1} {
		seq, err := s.Trajectory(1, chain, density.StdNormal, []float64{0})
		require.NoError(t, err, "chain=%d", chain)
		n := 0
		for state := range seq {
			assert.Len(t, state.Position, 1)
			n++
		}
		assert.Equal(t, 4, n)
	}
}

func TestDensityPanicAbortsBatch(t *testing.T) {
	boom := errors.New("boom")
	logpdf := func(x []float64) float64 {
		if x[0] != 0 {
			panic(boom)
		}
		return 0
	}

	cfg := newConfig(1, 100, 8, 0.1)
	cfg.NumWorkers = 4

	// Every chain fails; the lowest chain index is always the one reported.
	for range 10 {
		out, err := metropolis.New(cfg).Run(context.Background(), 3, logpdf, []float64{0})
		require.Error(t, err)
		assert.Nil(t, out)
		assert.ErrorIs(t, err, metropolis.ErrDensityEvaluation)
		assert.ErrorIs(t, err, boom)

		var de *metropolis.DensityError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, 0, de.Step)
		assert.Equal(t, 0, de.Chain)
	}
}

func TestNonFiniteDensityIsNotAnError(t *testing.T) {
	// Only the half-line x > 0 has support.
	logpdf := func(x []float64) float64 {
		if x[0] <= 0 {
			return math.Inf(-1)
		}
		if x[0] > 10 {
			return math.NaN()
		}
		return -x[0]
	}

	out, err := metropolis.Sample(8, 1, 2000, 4, 0.5, []float64{1}, logpdf)
	require.NoError(t, err)
	requireFinite(t, out)
	for j := range 4 {
		v := out.At(0, j)
		assert.True(t, v > 0 && v <= 10, "chain %d left the support: %v", j, v)
	}
}

func TestCancelledMidRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int64
	logpdf := func(x []float64) float64 {
		if calls.Add(1) == 500 {
			cancel()
		}
		return density.StdNormal(x)
	}

	cfg := newConfig(1, 1_000_000, 4, 0.1)
	cfg.NumWorkers = 2
	out, err := metropolis.New(cfg).Run(ctx, 1, logpdf, []float64{0})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, out)
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := metropolis.New(newConfig(1, 100, 4, 0.1)).Run(ctx, 1, density.StdNormal, []float64{0})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, out)
}
