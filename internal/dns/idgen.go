package dns

import (
	"math/rand/v2"
	"sync"
)

// IDGenerator hands out transaction IDs from a monotonically increasing
// 16-bit sequence. After 65535 it wraps back to 1, so 0 is only ever
// produced if the generator was seeded with it.
//
// A generator is safe for concurrent use.
type IDGenerator struct {
	mu   sync.Mutex
	last uint32
}

// NewIDGenerator returns a generator whose first ID is seed+1.
func NewIDGenerator(seed uint16) *IDGenerator {
	return &IDGenerator{last: uint32(seed)}
}

// NewRandomIDGenerator returns a generator seeded from a random value.
func NewRandomIDGenerator() *IDGenerator {
	return NewIDGenerator(uint16(rand.N(65536)))
}

// Next returns the next transaction ID.
func (g *IDGenerator) Next() uint16 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.last++
	if g.last > 0xFFFF {
		g.last = 1
	}
	return uint16(g.last)
}
