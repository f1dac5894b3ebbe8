// Package rng provides the injectable random source used by every
// probabilistic engine. Production code uses the crypto-backed default;
// tests and simulations supply seeded or scripted sources.
package rng

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// Source yields uniform random values in [0, 1).
type Source interface {
	Float64() float64
}

type cryptoSource struct{}

func (cryptoSource) Float64() float64 {
	var buf [8]byte
	if _, err := cryptorand.Read(buf[:]); err != nil {
		return rand.Float64()
	}
	u := binary.BigEndian.Uint64(buf[:]) >> 11 // 53 bits
	return float64(u) / (1 << 53)
}

// Default returns the crypto-backed source.
func Default() Source { return cryptoSource{} }

type seededSource struct{ r *rand.Rand }

// NewSeeded returns a reproducible PCG-based source for tests and
// Monte Carlo runs.
func NewSeeded(seed uint64) Source {
	return &seededSource{r: rand.New(rand.NewPCG(seed, 0))}
}

func (s *seededSource) Float64() float64 { return s.r.Float64() }

// RollPercent draws an integer in [1, 100].
func RollPercent(src Source) int {
	roll := int(src.Float64()*100) + 1
	if roll > 100 {
		roll = 100
	}
	return roll
}
