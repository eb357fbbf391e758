package distinct

import (
	cryptorand "crypto/rand"
	"math/rand/v2"
)

// Source supplies the randomness a single Estimator consumes: a Bernoulli
// trial with arbitrary success probability for the insertion gate, and a
// fair coin flip for thinning. Every Estimator owns its own Source so that
// two instances never observe correlated randomness.
type Source interface {
	// Bernoulli reports success with probability p.
	Bernoulli(p float64) bool
	// Flip reports heads on a fair coin.
	Flip() bool
}

type randSource struct {
	rng *rand.Rand
}

// NewSource returns a Source backed by a ChaCha8 generator seeded from the
// operating system. This is the default used when no Source is injected.
func NewSource() Source {
	var seed [32]byte
	// crypto/rand.Read cannot fail on supported platforms.
	_, _ = cryptorand.Read(seed[:])
	return &randSource{rng: rand.New(rand.NewChaCha8(seed))}
}

// NewSeededSource returns a deterministic Source. Two sources built from the
// same seed produce identical draw sequences, which makes estimator runs
// reproducible in tests.
func NewSeededSource(seed uint64) Source {
	return &randSource{rng: rand.New(rand.NewPCG(seed, seed))}
}

func (s *randSource) Bernoulli(p float64) bool {
	if p >= 1 {
		return true
	}
	if p <= 0 {
		return false
	}
	return s.rng.Float64() < p
}

func (s *randSource) Flip() bool {
	return s.rng.Uint64()&1 == 0
}
