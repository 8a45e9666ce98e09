package random

import (
	"math"

	werrors "github.com/matzehuels/worksite/pkg/errors"
)

// Constant always yields Value.
type Constant[T any] struct {
	Value T `json:"value"`
}

// Const returns a Constant yielding v.
func Const[T any](v T) Constant[T] {
	return Constant[T]{Value: v}
}

// Kind implements Random.
func (Constant[T]) Kind() string { return KindConstant }

// Seeded implements Random.
func (c Constant[T]) Seeded(Seed) (T, error) { return c.Value, nil }

// MarshalJSON implements json.Marshaler.
func (c Constant[T]) MarshalJSON() ([]byte, error) {
	return tag(KindConstant, struct {
		Value T `json:"value"`
	}{c.Value})
}

// Range draws uniformly between Min and Max.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Kind implements Random.
func (Range) Kind() string { return KindRange }

// Seeded implements Random.
func (r Range) Seeded(seed Seed) (float64, error) {
	return r.Min + seed.Float()*(r.Max-r.Min), nil
}

// MarshalJSON implements json.Marshaler.
func (r Range) MarshalJSON() ([]byte, error) {
	type body Range
	return tag(KindRange, body(r))
}

// MaxStepCount bounds the number of grid values a Step may have.
const MaxStepCount = 1 << 30

// Step draws uniformly among Min, Min+Step, ... up to and including Max.
type Step struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Step float64 `json:"step"`
}

// Kind implements Random.
func (Step) Kind() string { return KindStep }

// Seeded implements Random.
func (s Step) Seeded(seed Seed) (float64, error) {
	if s.Step <= 0 {
		return 0, werrors.New(werrors.ErrCodeInvalidRandom, "step must be positive, got %v", s.Step)
	}
	if s.Max < s.Min {
		return 0, werrors.New(werrors.ErrCodeInvalidRandom, "step range is empty: min %v > max %v", s.Min, s.Max)
	}
	n := math.Floor((s.Max - s.Min) / s.Step)
	if math.IsNaN(n) || n >= MaxStepCount {
		return 0, werrors.New(werrors.ErrCodeInvalidRandom,
			"step %v over [%v, %v] yields more than %d values", s.Step, s.Min, s.Max, MaxStepCount)
	}
	count := int(n) + 1
	return s.Min + float64(seed.Intn(count))*s.Step, nil
}

// MarshalJSON implements json.Marshaler.
func (s Step) MarshalJSON() ([]byte, error) {
	type body Step
	return tag(KindStep, body(s))
}

// Chance is true with the given Probability.
type Chance struct {
	Probability float64 `json:"probability"`
}

// Kind implements Random.
func (Chance) Kind() string { return KindChance }

// Seeded implements Random.
func (c Chance) Seeded(seed Seed) (bool, error) {
	return seed.Float() < c.Probability, nil
}

// MarshalJSON implements json.Marshaler.
func (c Chance) MarshalJSON() ([]byte, error) {
	type body Chance
	return tag(KindChance, body(c))
}
