package rand

import (
	"math"
	mrand "math/rand/v2"

	"gonum.org/v1/gonum/mathext/prng"
	"gonum.org/v1/gonum/stat/distuv"
)

// Source returns a fresh generator whose whole 256-bit state is a
// function of k. Callers own the returned source; it must not be shared
// between goroutines.
func Source(k Key) mrand.Source {
	seed := child(tagStream, k, 0)

	src := prng.NewXoshiro256starstar(0)
	// UnmarshalBinary only fails on short input.
	_ = src.UnmarshalBinary(seed[:])
	if isZero(seed) {
		// xoshiro has a single invalid all-zero state.
		src.Seed(k.Uint64())
	}
	return src
}

// Normal fills dst with i.i.d. draws from Normal(0, sigma^2) using k.
// The values equal successive distuv.Normal{Sigma: sigma, Src: Source(k)}
// draws; one generator is built for the whole vector.
func Normal(k Key, sigma float64, dst []float64) {
	rng := mrand.New(Source(k))
	for i := range dst {
		dst[i] = rng.NormFloat64() * sigma
	}
}

// Uniform returns one draw from Uniform[0, 1) using k.
func Uniform(k Key) float64 {
	dist := distuv.Uniform{Min: 0, Max: 1, Src: Source(k)}
	return dist.Rand()
}

// LogUniform returns ln(u) for u drawn by Uniform. A zero draw maps to -Inf.
func LogUniform(k Key) float64 {
	return math.Log(Uniform(k))
}

func isZero(b Key) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}
