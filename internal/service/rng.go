package service

import "hash/fnv"

// rng is a deterministic mulberry32 stream. Every synthetic-data path draws
// from an explicit seeded instance; the ambient random source is never used,
// which is what makes repeated fallback/demo calls reproducible.
type rng struct {
	state uint32
}

func newRng(seed uint32) *rng {
	return &rng{state: seed}
}

// seedFromString hashes an identity string into a 32-bit seed (FNV-1a).
func seedFromString(value string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(value))
	return h.Sum32()
}

// Float64 yields the next value in [0, 1).
func (r *rng) Float64() float64 {
	r.state += 0x6D2B79F5
	t := r.state
	t = (t ^ (t >> 15)) * (t | 1)
	t ^= t + (t^(t>>7))*(t|61)
	return float64(t^(t>>14)) / 4294967296.0
}

// IntBetween yields an integer in [min, max], inclusive on both ends.
func (r *rng) IntBetween(min, max int) int {
	return int(r.Float64()*float64(max-min+1)) + min
}

func pick[T any](r *rng, values []T) T {
	return values[int(r.Float64()*float64(len(values)))]
}

func shuffle[T any](r *rng, values []T) {
	for i := len(values) - 1; i > 0; i-- {
		j := int(r.Float64() * float64(i+1))
		values[i], values[j] = values[j], values[i]
	}
}
