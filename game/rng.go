package game

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// RandomSource abstracts the outcome draw so engines can be seeded in tests
type RandomSource interface {
	Float64() float64 // [0, 1)
}

// crypto random is the default generation method
type cryptoRNG struct{}

func (cryptoRNG) Float64() float64 {
	var buf [8]byte
	if _, err := cryptoRand.Read(buf[:]); err != nil {
		return rand.Float64()
	}

	// 53 bits of mantissa
	u := binary.BigEndian.Uint64(buf[:]) >> 11
	return float64(u) / (1 << 53)
}

// DefaultRNG returns the production random source
func DefaultRNG() RandomSource { return cryptoRNG{} }

// Replicable RNG for tests and simulations
type seededRNG struct{ r *rand.Rand }

// NewSeededRNG returns a deterministic random source
func NewSeededRNG(seed uint64) RandomSource {
	return &seededRNG{r: rand.New(rand.NewPCG(seed, 0))}
}

func (s *seededRNG) Float64() float64 { return s.r.Float64() }
