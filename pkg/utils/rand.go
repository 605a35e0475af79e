package utils

import (
	"math/rand"
	"time"

	"github.com/MichaelTJones/pcg"
)

// pcgStream selects the PCG output sequence; any odd constant works.
const pcgStream = 0xda3e39cb94b95bdb

// pcgSource adapts a PCG32 generator to math/rand.Source64 so the usual
// distribution helpers of *rand.Rand can be layered on top of it.
type pcgSource struct {
	p *pcg.PCG32
}

func newPCGSource(seed int64) *pcgSource {
	s := &pcgSource{p: pcg.NewPCG32()}
	s.Seed(seed)
	return s
}

func (s *pcgSource) Seed(seed int64) {
	s.p.Seed(uint64(seed), pcgStream)
}

func (s *pcgSource) Uint64() uint64 {
	return uint64(s.p.Random())<<32 | uint64(s.p.Random())
}

func (s *pcgSource) Int63() int64 {
	return int64(s.Uint64() >> 1)
}

// RandSource is a seeded random number generator. It is not safe for
// concurrent use; give each goroutine its own source.
type RandSource struct {
	seed int64
	rng  *rand.Rand
}

// NewRandSource creates a new random source with the given seed.
// A zero seed is replaced by the current time.
func NewRandSource(seed int64) *RandSource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandSource{
		seed: seed,
		rng:  rand.New(newPCGSource(seed)),
	}
}

// Seed returns the seed the source was created with
func (r *RandSource) Seed() int64 {
	return r.seed
}

// Float64 returns a random float64 in [0.0, 1.0)
func (r *RandSource) Float64() float64 {
	return r.rng.Float64()
}

// Intn returns a random int in [0, n)
func (r *RandSource) Intn(n int) int {
	return r.rng.Intn(n)
}

// NormFloat64 returns a normally distributed random number with mean and stddev
func (r *RandSource) NormFloat64(mean, stddev float64) float64 {
	return r.rng.NormFloat64()*stddev + mean
}

// UniformFloat64 returns a uniformly distributed random number in [min, max)
func (r *RandSource) UniformFloat64(min, max float64) float64 {
	return min + r.rng.Float64()*(max-min)
}

// Perm returns a random permutation of [0, n)
func (r *RandSource) Perm(n int) []int {
	return r.rng.Perm(n)
}
