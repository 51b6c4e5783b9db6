package ports

import "math/rand/v2"

// RNGPort provides seeded random sources so simulations are reproducible.
type RNGPort interface {
	// Source returns a deterministic source for a named operation.
	Source(name string, seed uint64) rand.Source
}
