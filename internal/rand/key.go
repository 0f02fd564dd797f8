// Package rand provides splittable, counter-based pseudo-random keys.
//
// A Key never carries mutable state. Every key is a pure function of the
// root seed and the integer coordinates used to reach it, so chains and
// steps can be evaluated in any order, on any number of goroutines, and
// still observe exactly the same random numbers.
package rand

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2b"
)

// KeySize is the size of a Key in bytes.
const KeySize = blake2b.Size256

// Key is an opaque substream key.
type Key [KeySize]byte

// Domain separation tags. Each derivation path hashes a distinct tag so that
// Split children, Derive children and stream seeds never collide.
const (
	tagRoot byte = iota + 1
	tagSplit
	tagDerive
	tagStream
)

// NewKey creates the root key for a seed.
func NewKey(seed uint64) Key {
	var buf [1 + 8]byte
	buf[0] = tagRoot
	binary.LittleEndian.PutUint64(buf[1:], seed)
	return blake2b.Sum256(buf[:])
}

// Split derives two independent children from k.
// This matches the two-way split used by the Metropolis kernel.
func Split(k Key) (Key, Key) {
	return child(tagSplit, k, 0), child(tagSplit, k, 1)
}

// Derive derives the child of k at the given index.
// Derive(k, i) and Derive(k, j) are independent for i != j.
func Derive(k Key, index uint64) Key {
	return child(tagDerive, k, index)
}

// child hashes (tag, parent, index) into a new key.
func child(tag byte, k Key, index uint64) Key {
	var buf [1 + KeySize + 8]byte
	buf[0] = tag
	copy(buf[1:], k[:])
	binary.LittleEndian.PutUint64(buf[1+KeySize:], index)
	return blake2b.Sum256(buf[:])
}

// Uint64 returns the first word of the key. Source falls back to it as a
// 64-bit seed when the stream hash is all zeros.
func (k Key) Uint64() uint64 {
	return binary.LittleEndian.Uint64(k[:8])
}
