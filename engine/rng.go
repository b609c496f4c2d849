package engine

import (
	"encoding/binary"

	"github.com/google/uuid"
)

// RNG is an xorshift64 generator. Its state is part of the game snapshot, so a game
// replays identically from the same seed.
type RNG uint64

// NewRNG seeds a generator. Seed 0 is replaced with 1 since xorshift can't leave 0.
func NewRNG(seed uint64) RNG {
	if seed == 0 {
		seed = 1
	}
	return RNG(seed)
}

// Uint64 advances the generator.
func (r *RNG) Uint64() uint64 {
	x := uint64(*r)
	if x == 0 {
		x = 1
	}
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	*r = RNG(x)
	return x
}

// Intn returns a number in [0, n). n must be positive.
func (r *RNG) Intn(n int) int {
	return int(r.Uint64() % uint64(n))
}

// Read fills p with generator output. It never fails.
func (r *RNG) Read(p []byte) (int, error) {
	var buf [8]byte
	for i := 0; i < len(p); i += 8 {
		binary.LittleEndian.PutUint64(buf[:], r.Uint64())
		copy(p[i:], buf[:])
	}
	return len(p), nil
}

// NewID returns a version 4 UUID drawn from the generator.
func (r *RNG) NewID() string {
	id, err := uuid.NewRandomFromReader(r)
	if err != nil {
		// Read never fails.
		panic(err)
	}
	return id.String()
}

// shuffle is an in-place Fisher-Yates shuffle.
func shuffle[T any](r *RNG, s []T) {
	for i := len(s) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}
