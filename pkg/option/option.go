// Package option implements builder parameters that are either an inline
// random source or a named reference into a style's option table.
//
// An [Option] holds exactly one of the two at any time. The zero Option holds
// neither and fails to resolve; construct options with [Inline] or [Ref].
//
// Persisted form:
//
//	{"random": {"type": "constant", "value": 5}}
//	{"ref": "wall_height"}
//
// Objects carrying both fields are rejected with ErrAmbiguousOption, objects
// carrying neither with ErrUnderspecifiedOption.
package option

import (
	"bytes"
	"encoding/json"

	werrors "github.com/matzehuels/worksite/pkg/errors"
	"github.com/matzehuels/worksite/pkg/random"
)

// Table resolves option references. Values are Random sources of the
// referenced slot's type.
type Table interface {
	Lookup(name string) (any, bool)
}

// Option is a one-of: an inline Random or a reference name.
type Option[T any] struct {
	inline random.Random[T]
	ref    string
}

// Inline returns an Option owning r.
func Inline[T any](r random.Random[T]) Option[T] {
	return Option[T]{inline: r}
}

// Ref returns an Option referring to the style slot name.
func Ref[T any](name string) Option[T] {
	return Option[T]{ref: name}
}

// Const is shorthand for Inline(random.Const(v)).
func Const[T any](v T) Option[T] {
	return Inline[T](random.Const(v))
}

// IsRef reports whether the option refers to a style slot.
func (o Option[T]) IsRef() bool {
	return o.ref != ""
}

// IsZero reports whether neither form is set.
func (o Option[T]) IsZero() bool {
	return o.inline == nil && o.ref == ""
}

// SetRandom makes the option inline, clearing any reference.
func (o *Option[T]) SetRandom(r random.Random[T]) {
	o.inline = r
	o.ref = ""
}

// SetRef makes the option a reference, clearing any inline random.
func (o *Option[T]) SetRef(name string) {
	o.ref = name
	o.inline = nil
}

// Defined returns the inline random, if any.
func (o Option[T]) Defined() (random.Random[T], bool) {
	return o.inline, o.inline != nil
}

// RefName returns the referenced slot name, if any.
func (o Option[T]) RefName() (string, bool) {
	return o.ref, o.ref != ""
}

// Random returns the source the option resolves to under table.
func (o Option[T]) Random(table Table) (random.Random[T], error) {
	if o.inline != nil {
		return o.inline, nil
	}
	if o.ref == "" {
		return nil, werrors.Wrap(werrors.ErrCodeInvalidOption, werrors.ErrUnderspecifiedOption, "option has neither random nor ref")
	}
	if table == nil {
		return nil, werrors.MissingOptionReference(o.ref)
	}
	v, ok := table.Lookup(o.ref)
	if !ok {
		return nil, werrors.MissingOptionReference(o.ref)
	}
	r, ok := v.(random.Random[T])
	if !ok {
		var zero T
		return nil, werrors.Wrap(werrors.ErrCodeTypeMismatch, werrors.ErrTypeMismatch,
			"style option %q is %T, want a source of %T", o.ref, v, zero)
	}
	return r, nil
}

// Get resolves the option and draws from it.
func (o Option[T]) Get(table Table, seed random.Seed) (T, error) {
	r, err := o.Random(table)
	if err != nil {
		var zero T
		return zero, err
	}
	return r.Seeded(seed)
}

// Resolve implements Param.
func (o Option[T]) Resolve(table Table, seed random.Seed) (any, error) {
	return o.Get(table, seed)
}

type wire struct {
	Random json.RawMessage `json:"random,omitempty"`
	Ref    *string         `json:"ref,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (o Option[T]) MarshalJSON() ([]byte, error) {
	if o.ref != "" {
		return json.Marshal(wire{Ref: &o.ref})
	}
	if o.inline == nil {
		return nil, werrors.Wrap(werrors.ErrCodeInvalidOption, werrors.ErrUnderspecifiedOption, "cannot encode empty option")
	}
	raw, err := json.Marshal(o.inline)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wire{Random: raw})
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *Option[T]) UnmarshalJSON(data []byte) error {
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return werrors.Wrap(werrors.ErrCodeInvalidOption, err, "decode option")
	}
	hasRandom := len(w.Random) > 0 && !bytes.Equal(w.Random, []byte("null"))
	hasRef := w.Ref != nil

	switch {
	case hasRandom && hasRef:
		return werrors.Wrap(werrors.ErrCodeInvalidOption, werrors.ErrAmbiguousOption, "option sets both random and ref")
	case !hasRandom && !hasRef:
		return werrors.Wrap(werrors.ErrCodeInvalidOption, werrors.ErrUnderspecifiedOption, "option sets neither random nor ref")
	case hasRef:
		if *w.Ref == "" {
			return werrors.New(werrors.ErrCodeInvalidOption, "option ref cannot be empty")
		}
		o.SetRef(*w.Ref)
		return nil
	}

	r, err := random.Decode[T](w.Random)
	if err != nil {
		return err
	}
	o.SetRandom(r)
	return nil
}
