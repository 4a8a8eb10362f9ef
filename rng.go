package simrt

import (
	"math/rand/v2"
	"time"
)

// rng is the seedable random source (C1). It is deterministic given its
// seed, not thread-safe, and has exactly one consumer: the fault
// injector, which runs only on whichever task goroutine currently holds
// the executor's baton. It is never called concurrently, so it needs no
// locking.
//
// Algorithm choice: PCG (math/rand/v2's rand.PCG), seeded from the two
// 64-bit halves produced by spreading the single configured seed with a
// fixed splitmix64-style odd constant. PCG alone is unsuitable seeded
// with (seed, seed) — its two state words being equal correlates the
// low bits of the stream for nearby seeds — so the second half is
// always seed^0x9E3779B97F4A7C15. This choice is permanent: per spec
// §4.1, the PRNG algorithm is fixed forever for a given codebase to
// preserve reproducibility of pinned regression seeds across versions.
type rng struct {
	r *rand.Rand
}

// newRNG constructs a seeded rng. The same seed always produces the
// same sequence of draws (invariant I4).
func newRNG(seed uint64) *rng {
	src := rand.NewPCG(seed, seed^0x9E3779B97F4A7C15)
	return &rng{r: rand.New(src)}
}

// nextBool draws a Bernoulli(p) outcome. p is clamped to [0, 1].
func (g *rng) nextBool(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return g.r.Float64() < p
}

// nextDuration draws a uniform duration in [lo, hi). If hi <= lo, lo is
// returned without consuming a draw.
func (g *rng) nextDuration(lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	span := int64(hi - lo)
	return lo + time.Duration(g.r.Int64N(span))
}

// nextUint64 draws a raw 64-bit value, for callers that need an opaque
// identifier rather than a bounded draw.
func (g *rng) nextUint64() uint64 {
	return g.r.Uint64()
}

// randomSeed draws a non-deterministic seed for New, using the runtime
// package-level source (math/rand/v2's top-level functions), which is
// itself seeded from the OS entropy pool. Never used for anything that
// must reproduce — only to pick a fresh seed when the caller hasn't.
func randomSeed() uint64 {
	return rand.Uint64()
}
