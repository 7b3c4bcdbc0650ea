// Package entropy provides the single random source a mission draws from.
// Every stochastic step (scenario rolls, training, reward noise, movement,
// banter) consumes the same Source in a fixed order, so a seeded Source
// replays a mission exactly.
package entropy

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand"
)

// Source is a seeded pseudo-random generator. It is not safe for concurrent
// use; each mission owns its own Source.
type Source struct {
	seed int64
	rng  *rand.Rand
}

// New returns a Source seeded with seed. A zero seed is replaced by one
// drawn from crypto/rand, retrievable afterwards via Seed.
func New(seed int64) *Source {
	if seed == 0 {
		seed = CryptoSeed()
	}
	return &Source{
		seed: seed,
		rng:  rand.New(rand.NewSource(seed)),
	}
}

// Seed returns the seed the Source was built with.
func (s *Source) Seed() int64 {
	return s.seed
}

// Float returns a float64 in [0, 1).
func (s *Source) Float() float64 {
	return s.rng.Float64()
}

// Uniform returns a float64 in [lo, hi).
func (s *Source) Uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*s.rng.Float64()
}

// Intn returns an int in [0, n). It panics if n <= 0.
func (s *Source) Intn(n int) int {
	return s.rng.Intn(n)
}

// IntRange returns an int in the closed interval [lo, hi].
func (s *Source) IntRange(lo, hi int) int {
	return lo + s.rng.Intn(hi-lo+1)
}

// Pick returns a uniformly chosen element of items. It panics on an empty slice.
func Pick[T any](s *Source, items []T) T {
	return items[s.rng.Intn(len(items))]
}

// CryptoSeed returns a non-zero seed read from crypto/rand.
func CryptoSeed() int64 {
	var buf [8]byte
	if _, err := crand.Read(buf[:]); err != nil {
		// crypto/rand does not fail on supported platforms.
		return 1
	}
	// Keep 53 bits so the seed survives a round trip through JSON numbers.
	seed := int64(binary.LittleEndian.Uint64(buf[:]) >> 11)
	if seed == 0 {
		return 1
	}
	return seed
}
