// Package rng provides the randomness abstraction used by loot rolls so that
// production code draws from crypto/rand while tests inject a seeded source.
package rng

import (
	crand "crypto/rand"
	"math/big"
	mrand "math/rand/v2"
)

// Source is the randomness provider for probability rolls.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
	// Float64 returns a random float in [0, 1).
	Float64() float64
}

// cryptoSource implements Source using crypto/rand.
//
// Invariant: all values are uniformly distributed and safe for concurrent use.
type cryptoSource struct{}

// NewCryptoSource returns a Source backed by crypto/rand.
func NewCryptoSource() Source {
	return &cryptoSource{}
}

// Intn returns a cryptographically secure random int in [0, n).
//
// Precondition: n > 0. Panics with "rng: Intn called with n <= 0" if n <= 0.
func (c *cryptoSource) Intn(n int) int {
	if n <= 0 {
		panic("rng: Intn called with n <= 0")
	}
	val, err := crand.Int(crand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("rng: crypto/rand failure: " + err.Error())
	}
	return int(val.Int64())
}

// Float64 returns a cryptographically secure random float in [0, 1).
func (c *cryptoSource) Float64() float64 {
	// 53 random bits scaled into [0, 1), matching math/rand semantics.
	const denom = 1 << 53
	val, err := crand.Int(crand.Reader, big.NewInt(denom))
	if err != nil {
		panic("rng: crypto/rand failure: " + err.Error())
	}
	return float64(val.Int64()) / denom
}

// seededSource implements Source using a deterministic PCG generator.
// Not safe for concurrent use; intended for tests and the simulator.
type seededSource struct {
	r *mrand.Rand
}

// NewSeededSource returns a deterministic Source seeded with seed.
//
// Postcondition: two sources with equal seeds produce identical sequences.
func NewSeededSource(seed uint64) Source {
	return &seededSource{r: mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Intn returns a deterministic random int in [0, n).
//
// Precondition: n > 0. Panics with "rng: Intn called with n <= 0" if n <= 0.
func (s *seededSource) Intn(n int) int {
	if n <= 0 {
		panic("rng: Intn called with n <= 0")
	}
	return s.r.IntN(n)
}

// Float64 returns a deterministic random float in [0, 1).
func (s *seededSource) Float64() float64 {
	return s.r.Float64()
}
