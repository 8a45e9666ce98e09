package random

import (
	werrors "github.com/matzehuels/worksite/pkg/errors"
)

// Entry is one weighted choice.
type Entry[T any] struct {
	ID     T       `json:"id"`
	Weight float64 `json:"weight"`
}

// Weighted picks one entry with probability proportional to its weight.
//
// The draw is u*total for a uniform u in [0,1); the first entry, in declaration
// order, whose cumulative weight is at least the draw wins. Zero-weight entries
// are never picked.
type Weighted[T any] struct {
	Entries []Entry[T] `json:"entries"`
}

// Weights builds a Weighted from entries in declaration order.
func Weights[T any](entries ...Entry[T]) Weighted[T] {
	return Weighted[T]{Entries: entries}
}

// Uniform builds a Weighted giving every id weight 1.
func Uniform[T any](ids ...T) Weighted[T] {
	w := Weighted[T]{Entries: make([]Entry[T], len(ids))}
	for i, id := range ids {
		w.Entries[i] = Entry[T]{ID: id, Weight: 1}
	}
	return w
}

// Kind implements Random.
func (Weighted[T]) Kind() string { return KindWeighted }

// Seeded implements Random. It fails with ErrEmptyDistribution when there is
// nothing to choose from.
func (w Weighted[T]) Seeded(seed Seed) (T, error) {
	var zero T

	total := 0.0
	for _, e := range w.Entries {
		if e.Weight < 0 {
			return zero, werrors.New(werrors.ErrCodeInvalidRandom, "negative weight %v", e.Weight)
		}
		total += e.Weight
	}
	if len(w.Entries) == 0 || total <= 0 {
		return zero, werrors.Wrap(werrors.ErrCodeEmptyDistribution, werrors.ErrEmptyDistribution,
			"weighted list has %d entries and total weight %v", len(w.Entries), total)
	}

	draw := seed.Float() * total
	cumulative := 0.0
	last := -1
	for i, e := range w.Entries {
		if e.Weight == 0 {
			continue
		}
		cumulative += e.Weight
		if draw <= cumulative {
			return e.ID, nil
		}
		last = i
	}
	// Rounding can leave the draw at the very top of the range.
	return w.Entries[last].ID, nil
}

// MarshalJSON implements json.Marshaler.
func (w Weighted[T]) MarshalJSON() ([]byte, error) {
	entries := w.Entries
	if entries == nil {
		entries = []Entry[T]{}
	}
	return tag(KindWeighted, struct {
		Entries []Entry[T] `json:"entries"`
	}{entries})
}
