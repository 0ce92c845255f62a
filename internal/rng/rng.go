// Package rng provides the re-seedable random sources used by recombination.
package rng

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math"
	"math/rand/v2"

	"lukechampine.com/frand"
)

// Source supplies the two draws recombination needs.
type Source interface {
	// IntN returns a uniform integer in [0,n). n must be positive.
	IntN(n int) int
	// Float64 returns a uniform real in [0,1).
	Float64() float64
}

const (
	KindPCG    = "pcg"
	KindChaCha = "chacha"
)

// New builds a source of the given kind from a 64-bit seed.
func New(kind string, seed uint64) (Source, error) {
	switch kind {
	case "", KindPCG:
		return NewPCG(seed), nil
	case KindChaCha:
		var key [32]byte
		binary.LittleEndian.PutUint64(key[:], seed)
		return NewChaCha(key), nil
	default:
		return nil, fmt.Errorf("unsupported rng kind: %s", kind)
	}
}

// PCG is a math/rand/v2 PCG source.
type PCG struct {
	seed uint64
	r    *rand.Rand
}

func NewPCG(seed uint64) *PCG {
	p := &PCG{}
	p.Reseed(seed)
	return p
}

func (p *PCG) Reseed(seed uint64) {
	p.seed = seed
	p.r = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func (p *PCG) Seed() uint64     { return p.seed }
func (p *PCG) IntN(n int) int   { return p.r.IntN(n) }
func (p *PCG) Float64() float64 { return p.r.Float64() }

// ChaCha is a deterministic frand stream keyed by a 32-byte seed.
type ChaCha struct {
	seed [32]byte
	r    *frand.RNG
}

func NewChaCha(seed [32]byte) *ChaCha {
	c := &ChaCha{}
	c.Reseed(seed)
	return c
}

func (c *ChaCha) Reseed(seed [32]byte) {
	c.seed = seed
	c.r = frand.NewCustom(seed[:], 1024, 12)
}

func (c *ChaCha) Seed() [32]byte { return c.seed }
func (c *ChaCha) IntN(n int) int { return c.r.Intn(n) }

func (c *ChaCha) Float64() float64 {
	return float64(c.r.Uint64n(1<<53)) / (1 << 53)
}

// SeedFromString derives a ChaCha seed from arbitrary text.
func SeedFromString(s string) [32]byte {
	return sha256.Sum256([]byte(s))
}

// Entropy returns a fresh seed from the system CSPRNG.
func Entropy() uint64 {
	return frand.Uint64n(math.MaxUint64)
}

// Derive returns the seed of trial i in a sequence started from base.
func Derive(base uint64, i int) uint64 {
	x := base + uint64(i)*0x9e3779b97f4a7c15
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	return x ^ x>>31
}
