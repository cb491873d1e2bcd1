// Package dice implements the seeded dice-rolling logic for the almanac engine.
//
// All randomness in the engine flows through RNG so that chain-event
// progression can be persisted and replayed. RNG state is explicit data:
// State returns the current position in the stream and Restore resumes
// from a persisted position, never a hidden global generator.
package dice

import (
	"fmt"
	"hash/fnv"
)

// RNG is a deterministic pseudo-random generator with exportable state.
//
// The generator is a splitmix64 stream. Two generators with equal state
// produce identical output forever, which is what makes chain-event
// replay a structural property rather than incidental behavior.
type RNG struct {
	state uint64
}

// NewRNG creates a generator from a campaign seed.
// Non-cryptographic PRNG is intentional for deterministic simulation behavior.
func NewRNG(seed int64) *RNG {
	return &RNG{state: seedWord(seed, "almanac")}
}

// Restore resumes a generator from a persisted state.
func Restore(state uint64) *RNG {
	return &RNG{state: state}
}

// State returns the current generator state for persistence.
func (r *RNG) State() uint64 {
	return r.state
}

// next advances the splitmix64 stream by one step.
func (r *RNG) next() uint64 {
	r.state += 0x9e3779b97f4a7c15
	z := r.state
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// IntN returns a value in [0, n). It panics when n <= 0, matching the
// contract of math/rand.
func (r *RNG) IntN(n int) int {
	if n <= 0 {
		panic("dice: IntN called with non-positive n")
	}
	return int(r.next() % uint64(n))
}

// IntBetween returns a value in [min, max] inclusive.
// When max < min the bounds are swapped.
func (r *RNG) IntBetween(min, max int) int {
	if max < min {
		min, max = max, min
	}
	return min + r.IntN(max-min+1)
}

// Float64 returns a value in [0, 1).
func (r *RNG) Float64() float64 {
	return float64(r.next()>>11) / (1 << 53)
}

// seedWord hashes a seed with a salt into an initial generator state.
func seedWord(seed int64, salt string) uint64 {
	h := fnv.New64a()
	_, _ = fmt.Fprintf(h, "%d:%s", seed, salt)
	return h.Sum64()
}
