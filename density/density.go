// Package density provides log-density functions for the Metropolis sampler.
//
// A LogDensity is evaluated concurrently by every chain of a batch, so
// implementations must be pure: no shared mutable state and no dependence
// on call order. Returning NaN or -Inf is allowed and is treated by the
// sampler as a rejected proposal.
package density

import (
	"fmt"
	"sort"
)

// LogDensity returns the natural log of a (possibly unnormalized) target
// density at x.
type LogDensity func(x []float64) float64

// Registry maps density names to their implementations.
var Registry = map[string]LogDensity{
	"normal":   StdNormal,
	"gaussian": StdNormal,
	"mixture":  DefaultMixture().LogProb,
	"gmm":      DefaultMixture().LogProb,
}

// Get returns the log-density function for the given name.
func Get(name string) (LogDensity, bool) {
	f, ok := Registry[name]
	return f, ok
}

// MustGet is like Get but panics on an unknown name.
func MustGet(name string) LogDensity {
	f, ok := Get(name)
	if !ok {
		panic(fmt.Sprintf("density: unknown density %q (known: %v)", name, Names()))
	}
	return f
}

// Names returns the registered density names in sorted order.
func Names() []string {
	names := make([]string, 0, len(Registry))
	for name := range Registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
