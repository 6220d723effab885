package neat

import "math/rand"

// RNG is the seeded random source shared by the mutator and the evolver.
// It is not safe for concurrent use; only the coordinating goroutine draws from it.
type RNG struct {
	src *rand.Rand
}

// NewRNG returns a generator seeded with seed.
func NewRNG(seed int64) *RNG {
	return &RNG{src: rand.New(rand.NewSource(seed))}
}

// SetSeed restarts the sequence from seed.
func (r *RNG) SetSeed(seed int64) {
	r.src.Seed(seed)
}

// GetUnder returns a uniform value in [0, max).
func (r *RNG) GetUnder(max float64) float64 {
	return r.src.Float64() * max
}

// GetRange returns a uniform value in [min, max).
func (r *RNG) GetRange(min, max float64) float64 {
	return min + r.GetUnder(max-min)
}

// GetFullRange returns a uniform value in [-width, width).
func (r *RNG) GetFullRange(width float64) float64 {
	return r.GetRange(-width, width)
}

// Proba returns true with probability p.
func (r *RNG) Proba(p float64) bool {
	return r.GetUnder(1.0) < p
}

// Index returns a uniform index in [0, n). n must be positive.
func (r *RNG) Index(n int) int {
	i := int(r.GetUnder(float64(n)))
	if i >= n {
		i = n - 1
	}
	return i
}
