package domain

import (
	"hash/fnv"
	"math/rand/v2"
)

// Generator is the pseudo-random source for fallback series. It is not safe for
// concurrent use; create one per analysis.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator returns a generator whose output is fully determined by seed.
func NewGenerator(seed uint64) *Generator {
	return &Generator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// SeedFor mixes a base seed with a region key so each region gets a stable,
// independent stream.
func SeedFor(base uint64, key string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	return base ^ h.Sum64()
}

// between returns a value in [lo, hi).
func (g *Generator) between(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}
