package metropolis

import "github.com/nozzle/metropolis/internal/rand"

// Key is an opaque pseudo-random substream key.
type Key = rand.Key

// NewKey returns the root key for a seed.
func NewKey(seed uint64) Key {
	return rand.NewKey(seed)
}

// Split derives two independent children of k.
func Split(k Key) (Key, Key) {
	return rand.Split(k)
}

// Derive derives the child of k at index.
func Derive(k Key, index uint64) Key {
	return rand.Derive(k, index)
}
