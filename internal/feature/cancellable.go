package feature

import (
	"math/rand/v2"
	"time"
)

// ClockSeed derives a transform seed from wall-clock milliseconds reduced mod 2^32.
func ClockSeed(now time.Time) uint32 {
	return uint32(now.UnixMilli())
}

// Transform returns a uniformly random permutation of m's cells, reshaped to
// m's dimensions. The result depends only on m and seed; revoking a
// transformed template means re-running with a new seed.
func Transform(m Matrix, seed uint32) Matrix {
	out := m.Clone()
	rng := rand.New(rand.NewPCG(uint64(seed), 0))
	rng.Shuffle(len(out.Data), func(i, j int) {
		out.Data[i], out.Data[j] = out.Data[j], out.Data[i]
	})
	return out
}
