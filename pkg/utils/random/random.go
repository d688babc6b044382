package random

import (
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand"
	"time"
)

// Seed draws a non-zero seed from crypto/rand, falling back to the clock.
func Seed() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return time.Now().UnixNano()
	}
	seed := int64(binary.LittleEndian.Uint64(buf[:]) >> 1)
	if seed == 0 {
		seed = 1
	}
	return seed
}

// New returns a math/rand source seeded by Seed.
func New() *mrand.Rand {
	return mrand.New(mrand.NewSource(Seed()))
}
