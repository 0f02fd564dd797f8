package density

import (
	"gonum.org/v1/gonum/stat/distuv"
)

// StdNormal is the isotropic standard normal log-density.
func StdNormal(x []float64) float64 {
	return stdNormal.LogProb(x)
}

var stdNormal = Normal{Mu: 0, Sigma: 1}

// Normal is an isotropic normal distribution: every coordinate is an
// independent Normal(Mu, Sigma^2).
type Normal struct {
	Mu    float64
	Sigma float64
}

// LogProb returns the normalized log-density at x.
func (n Normal) LogProb(x []float64) float64 {
	d := distuv.Normal{Mu: n.Mu, Sigma: n.Sigma}
	var sum float64
	for _, v := range x {
		sum += d.LogProb(v)
	}
	return sum
}
