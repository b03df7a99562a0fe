// Package rng provides the deterministic seeded pseudo-random source used
// by the simulation. It exists only so that ball resets are reproducible
// given (seed, call sequence), built on math/rand.
package rng

import "math/rand"

// Source is a deterministic PRNG. It is a thin wrapper around math/rand
// rather than the package-level functions so two independent simulations
// (server and client predictor) can each own an unshared stream.
type Source struct {
	r    *rand.Rand
	seed int64
}

// New creates a Source seeded with seed. Two Sources created with the same
// seed produce identical call sequences.
func New(seed int64) *Source {
	return &Source{r: rand.New(rand.NewSource(seed)), seed: seed}
}

// Seed returns the seed this Source was constructed with.
func (s *Source) Seed() int64 {
	return s.seed
}

// Float32 returns a pseudo-random number in [0.0, 1.0).
func (s *Source) Float32() float32 {
	return s.r.Float32()
}

// Bool returns a pseudo-random boolean, 50/50.
func (s *Source) Bool() bool {
	return s.r.Float32() < 0.5
}
