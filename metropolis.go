// Package metropolis implements Random Walk Metropolis sampling with many
// independent chains run in parallel.
//
// Every chain draws its randomness from a key derived from the root seed
// and the chain index, and every step from a key derived from the chain key
// and the step index. Results therefore depend only on the seed and the
// configuration, never on how chains are scheduled across goroutines.
//
// Basic usage:
//
//	cfg := metropolis.DefaultConfig()
//	cfg.NDims = 1
//	cfg.NChains = 4
//	samples, err := metropolis.New(cfg).Run(ctx, 42, density.StdNormal, []float64{0})
package metropolis

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"math"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/nozzle/metropolis/density"
	"github.com/nozzle/metropolis/internal/parallel"
	"github.com/nozzle/metropolis/internal/rand"
	"github.com/nozzle/metropolis/kernel"
)

// Config configures the sampler.
type Config struct {
	// NDims is the dimension of the target density.
	// Default: 1
	NDims int

	// NSamples is the number of Metropolis steps applied to every chain.
	// Zero returns the initial position unchanged.
	// Default: 1000
	NSamples int

	// NChains is the number of independent chains.
	// Default: 4
	NChains int

	// StepScale is the standard deviation of the Gaussian proposal.
	// Default: 0.1
	StepScale float64

	// NumWorkers for parallel processing.
	// 0 = auto-detect based on CPU cores. The result does not depend on it.
	// Default: 0
	NumWorkers int

	// Verbose enables progress output.
	// Default: false
	Verbose bool

	// ProgressCallback is called after each chain finishes with
	// (finished, totalChains). Calls are serialized.
	// Default: nil
	ProgressCallback func(done, total int)
}

// DefaultConfig returns the default sampler configuration.
func DefaultConfig() Config {
	return Config{
		NDims:      1,
		NSamples:   1000,
		NChains:    4,
		StepScale:  0.1,
		NumWorkers: 0,
		Verbose:    false,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.NDims <= 0 {
		return fmt.Errorf("%w: n_dims=%d", ErrInvalidDimension, c.NDims)
	}
	if c.NChains <= 0 {
		return fmt.Errorf("%w: n_chains=%d", ErrInvalidChainCount, c.NChains)
	}
	if c.NSamples < 0 {
		return fmt.Errorf("%w: n_samples=%d", ErrInvalidSampleCount, c.NSamples)
	}
	if !(c.StepScale > 0) || math.IsInf(c.StepScale, 1) {
		return fmt.Errorf("%w: step_scale=%v", ErrInvalidStepScale, c.StepScale)
	}
	return nil
}

// Sampler runs batches of Metropolis chains.
type Sampler struct {
	Config Config
}

// New creates a new sampler with the given configuration.
func New(config Config) *Sampler {
	return &Sampler{Config: config}
}

// Run samples every chain from initial and returns an NDims x NChains
// matrix whose column j is the final position of chain j.
//
// All arguments are validated before any chain starts. If logpdf panics
// or ctx is cancelled, the whole batch fails and no matrix is returned.
func (s *Sampler) Run(ctx context.Context, seed uint64, logpdf density.LogDensity, initial []float64) (*mat.Dense, error) {
	cfg := s.Config
	if err := s.validate(logpdf, initial); err != nil {
		return nil, err
	}

	numWorkers := cfg.NumWorkers
	if numWorkers <= 0 {
		numWorkers = parallel.NumWorkers()
	}
	numWorkers = min(numWorkers, cfg.NChains)

	if cfg.Verbose {
		fmt.Printf("Sampling %d chains x %d steps in %d dims with %d workers\n",
			cfg.NChains, cfg.NSamples, cfg.NDims, numWorkers)
	}

	progress := s.progress()
	root := rand.NewKey(seed)

	finals, err := parallel.Map(ctx, cfg.NChains, numWorkers, func(ctx context.Context, j int) ([]float64, error) {
		state, err := kernel.Run(ctx, ChainKey(root, j), cfg.NSamples, logpdf, initial, cfg.StepScale)
		if err != nil {
			var de *kernel.DensityError
			if errors.As(err, &de) {
				de.Chain = j
			}
			return nil, err
		}
		progress()
		return state.Position, nil
	})
	if err != nil {
		return nil, err
	}

	result := mat.NewDense(cfg.NDims, cfg.NChains, nil)
	for j, position := range finals {
		result.SetCol(j, position)
	}
	return result, nil
}

// Trajectory returns the lazy sequence of states of chain j, starting with
// the initial state. Its last element is the state Run reports for chain j
// with the same seed. Arguments are validated as in Run, and chain must be
// in [0, NChains).
func (s *Sampler) Trajectory(seed uint64, chain int, logpdf density.LogDensity, initial []float64) (iter.Seq[kernel.ChainState], error) {
	cfg := s.Config
	if err := s.validate(logpdf, initial); err != nil {
		return nil, err
	}
	if chain < 0 || chain >= cfg.NChains {
		return nil, fmt.Errorf("%w: chain=%d, n_chains=%d", ErrInvalidChainIndex, chain, cfg.NChains)
	}
	return kernel.Trajectory(ChainKey(rand.NewKey(seed), chain), cfg.NSamples, logpdf, initial, cfg.StepScale), nil
}

// validate checks the configuration and the call arguments.
func (s *Sampler) validate(logpdf density.LogDensity, initial []float64) error {
	cfg := s.Config
	if err := cfg.Validate(); err != nil {
		return err
	}
	if logpdf == nil {
		return ErrNilDensity
	}
	if len(initial) != cfg.NDims {
		return fmt.Errorf("%w: initial position has length %d, want %d",
			ErrDimensionMismatch, len(initial), cfg.NDims)
	}
	return nil
}

// progress returns a function that reports one finished chain.
func (s *Sampler) progress() func() {
	cfg := s.Config
	if cfg.ProgressCallback == nil && !cfg.Verbose {
		return func() {}
	}

	var (
		mu   sync.Mutex
		done int
	)
	return func() {
		mu.Lock()
		defer mu.Unlock()
		done++
		if cfg.ProgressCallback != nil {
			cfg.ProgressCallback(done, cfg.NChains)
		}
		if cfg.Verbose && (done%10 == 0 || done == cfg.NChains) {
			fmt.Printf("Chain %d/%d\n", done, cfg.NChains)
		}
	}
}

// ChainKey returns the root key of chain j.
func ChainKey(root Key, j int) Key {
	return rand.Derive(root, uint64(j))
}

// Sample is the one-call entry point: it runs nChains chains of nSamples
// steps each from initial and returns the nDims x nChains matrix of final
// positions.
func Sample(
	seed uint64,
	nDims, nSamples, nChains int,
	stepScale float64,
	initial []float64,
	logpdf density.LogDensity,
) (*mat.Dense, error) {
	cfg := DefaultConfig()
	cfg.NDims = nDims
	cfg.NSamples = nSamples
	cfg.NChains = nChains
	cfg.StepScale = stepScale
	return New(cfg).Run(context.Background(), seed, logpdf, initial)
}
