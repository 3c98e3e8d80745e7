// ABOUTME: Injectable uniform random sources
// ABOUTME: Seeded Mulberry32 for reproducible output and a system source for production
package synth

import "math/rand/v2"

// Random produces uniform values in [0,1)
type Random interface {
	Float64() float64
}

// SeededRNG implements a Mulberry32 seeded pseudo-random number generator.
// Not safe for concurrent use.
type SeededRNG struct {
	state       uint32
	initialSeed uint32
}

// NewSeededRNG creates a new seeded random number generator.
func NewSeededRNG(seed uint32) *SeededRNG {
	return &SeededRNG{
		state:       seed,
		initialSeed: seed,
	}
}

// Reset rewinds the generator to its initial seed.
func (r *SeededRNG) Reset() {
	r.state = r.initialSeed
}

// Float64 returns the next value of the Mulberry32 sequence in [0,1).
func (r *SeededRNG) Float64() float64 {
	r.state += 0x6D2B79F5
	t := r.state
	t = (t ^ (t >> 15)) * (t | 1)
	t ^= t + (t^(t>>7))*(t|61)
	return float64(t^(t>>14)) / 4294967296.0
}

type systemRandom struct{}

func (systemRandom) Float64() float64 { return rand.Float64() }

// SystemRandom returns the process-wide random source. Safe for concurrent use.
func SystemRandom() Random {
	return systemRandom{}
}

// Uniform returns a value in [lo, hi)
func Uniform(r Random, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}

// Bipolar returns a value in [-1, 1)
func Bipolar(r Random) float64 {
	return r.Float64()*2 - 1
}
