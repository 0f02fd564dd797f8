package density

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// Mixture is a one-dimensional Gaussian mixture applied independently to
// every coordinate of the position.
//
//	log p(x) = sum_d logsumexp_k(log w_k + log N(x_d; loc_k, scale_k^2))
type Mixture struct {
	logWeights []float64
	components []distuv.Normal
}

// NewMixture builds a mixture from component weights, locations and scales.
// Weights are normalized to sum to one.
func NewMixture(weights, locs, scales []float64) (*Mixture, error) {
	k := len(weights)
	if k == 0 {
		return nil, errors.New("density: mixture needs at least one component")
	}
	if len(locs) != k || len(scales) != k {
		return nil, fmt.Errorf("density: mixture length mismatch: %d weights, %d locs, %d scales",
			k, len(locs), len(scales))
	}

	total := floats.Sum(weights)
	if !(total > 0) || math.IsInf(total, 0) {
		return nil, fmt.Errorf("density: mixture weights must have a positive finite sum, got %v", total)
	}

	m := &Mixture{
		logWeights: make([]float64, k),
		components: make([]distuv.Normal, k),
	}
	for i := range k {
		if weights[i] < 0 {
			return nil, fmt.Errorf("density: negative weight %v for component %d", weights[i], i)
		}
		if !(scales[i] > 0) {
			return nil, fmt.Errorf("density: non-positive scale %v for component %d", scales[i], i)
		}
		m.logWeights[i] = math.Log(weights[i] / total)
		m.components[i] = distuv.Normal{Mu: locs[i], Sigma: scales[i]}
	}
	return m, nil
}

// DefaultMixture returns the four-component benchmark mixture.
func DefaultMixture() *Mixture {
	m, err := NewMixture(
		[]float64{0.2, 0.3, 0.1, 0.4},
		[]float64{-2, 0, 3.2, 2.5},
		[]float64{1.2, 1, 5, 2.8},
	)
	if err != nil {
		panic(err)
	}
	return m
}

// Len returns the number of components.
func (m *Mixture) Len() int {
	return len(m.components)
}

// LogProb returns the log-density at x. It is safe for concurrent use.
func (m *Mixture) LogProb(x []float64) float64 {
	terms := make([]float64, len(m.components))
	var sum float64
	for _, v := range x {
		for i, c := range m.components {
			terms[i] = m.logWeights[i] + c.LogProb(v)
		}
		sum += floats.LogSumExp(terms)
	}
	return sum
}
