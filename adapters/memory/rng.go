package memory

import (
	"hash/fnv"
	"math/rand/v2"
)

// RNG derives PCG sources from a seed and an operation name, so distinct
// operations sharing a seed draw independent streams.
type RNG struct{}

// NewRNG creates an RNG port.
func NewRNG() *RNG {
	return &RNG{}
}

func (RNG) Source(name string, seed uint64) rand.Source {
	h := fnv.New64a()
	h.Write([]byte(name))
	return rand.NewPCG(seed, h.Sum64())
}
