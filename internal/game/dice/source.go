package dice

import (
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand/v2"
	"sync"
)

// cryptoSource implements Source using crypto/rand.
type cryptoSource struct{}

// NewCryptoSource returns a Source backed by crypto/rand.
//
// Postcondition: Every value returned by Float64 is in [0, 1).
func NewCryptoSource() Source {
	return &cryptoSource{}
}

// Float64 returns a cryptographically secure value in [0, 1).
//
// Panics with "dice: crypto/rand failure: <err>" if crypto/rand fails.
func (c *cryptoSource) Float64() float64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic("dice: crypto/rand failure: " + err.Error())
	}
	// 53 bits fill a float64 mantissa exactly.
	return float64(binary.LittleEndian.Uint64(buf[:])>>11) / (1 << 53)
}

// seededSource is a deterministic Source for reproducible runs and tests.
type seededSource struct {
	mu  sync.Mutex
	rng *mrand.Rand
}

// NewSeededSource returns a deterministic Source seeded with seed.
//
// Postcondition: two sources built from the same seed yield the same sequence.
func NewSeededSource(seed uint64) Source {
	return &seededSource{rng: mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Float64 returns the next deterministic value in [0, 1).
func (s *seededSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

// FixedSource returns the same value on every call. It is intended for tests
// that need a specific outcome.
type FixedSource float64

// Float64 returns f.
func (f FixedSource) Float64() float64 { return float64(f) }
