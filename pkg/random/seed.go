package random

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
)

// modulus is the Park–Miller prime 2^31-1.
const modulus = 2147483647

// multiplier is the Park–Miller "minimal standard" multiplier.
const multiplier = 16807

// Seed is an immutable generator state.
//
// The zero value is not a valid seed; construct seeds with [NewSeed]. The raw
// integer returned by [Seed.Value] is part of the export contract: the
// receiving side re-seeds from it, so NewSeed(s.Value()) == s always holds.
type Seed struct {
	v int64
}

// NewSeed normalizes v into the generator range [1, 2^31-2].
// Non-positive residues are shifted by 2^31-2 so that negative inputs stay
// distinct from their absolute values.
func NewSeed(v int64) Seed {
	v %= modulus
	if v <= 0 {
		v += modulus - 1
	}
	if v == 0 {
		v = 1
	}
	return Seed{v: v}
}

// Value returns the normalized seed integer.
func (s Seed) Value() int64 {
	return s.v
}

// IsZero reports whether s was never initialized.
func (s Seed) IsZero() bool {
	return s.v == 0
}

// Float draws one uniform value in [0,1). It performs a single Park–Miller
// step, so the same seed always yields the same draw. The zero Seed draws
// like NewSeed(0).
func (s Seed) Float() float64 {
	v := s.v
	if v == 0 {
		v = NewSeed(0).v
	}
	next := (v * multiplier) % modulus
	return float64(next-1) / float64(modulus-1)
}

// Intn draws a uniform integer in [0,n). n must be positive.
func (s Seed) Intn(n int) int {
	i := int(s.Float() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}

// Derive returns the seed for sub-evaluation index. The result depends only
// on s and index, so siblings never influence each other's draws.
func (s Seed) Derive(index uint64) Seed {
	h := mix64(uint64(s.v)*0x9e3779b97f4a7c15 ^ mix64(index+0x632be59bd9b4e019))
	return Seed{v: int64(h%(modulus-1)) + 1}
}

// DeriveKey derives a seed from a stable name, e.g. an option name.
func (s Seed) DeriveKey(name string) Seed {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	return s.Derive(h.Sum64())
}

// String implements fmt.Stringer.
func (s Seed) String() string {
	return fmt.Sprintf("seed(%d)", s.v)
}

// MarshalJSON encodes the seed as its raw integer.
func (s Seed) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.v)
}

// UnmarshalJSON decodes a raw integer and normalizes it.
func (s *Seed) UnmarshalJSON(data []byte) error {
	var v int64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("decode seed: %w", err)
	}
	*s = NewSeed(v)
	return nil
}

// mix64 is the splitmix64 finalizer.
func mix64(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
