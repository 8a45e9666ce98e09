// Package random provides seeded, deterministic value sources.
//
// A [Random] produces a value of type T from a [Seed]. Drawing is pure: the
// same Random seeded with the same Seed always returns the same value, and no
// Random keeps state between draws. This is what makes builder evaluation
// reproducible across processes and machines.
//
// # Variants
//
//   - [Constant]: always the same value
//   - [Range]: uniform number between min and max
//   - [Step]: uniform number on a grid of steps between min and max
//   - [Chance]: boolean that is true with a given probability
//   - [Weighted]: weighted choice among entries (symbolic enums, ids, materials)
//   - [Vec2], [Vec3], [Vec4]: vectors composed of scalar number sources
//
// # Serialization
//
// Every variant serializes as a JSON object tagged by "type":
//
//	{"type": "range", "min": 1, "max": 3}
//	{"type": "weighted", "entries": [{"id": "A", "weight": 1}, {"id": "B", "weight": 3}]}
//
// Use [Decode] to parse the tagged form back into a typed Random.
package random

import (
	"encoding/json"
	"fmt"

	werrors "github.com/matzehuels/worksite/pkg/errors"
)

// Random is a deterministic value source.
type Random[T any] interface {
	// Kind returns the JSON type tag of the variant.
	Kind() string
	// Seeded draws a value. It must be a pure function of the seed.
	Seeded(seed Seed) (T, error)
}

// Variant tags.
const (
	KindConstant = "constant"
	KindRange    = "range"
	KindStep     = "step"
	KindChance   = "chance"
	KindWeighted = "weighted"
	KindVec2     = "vec2"
	KindVec3     = "vec3"
	KindVec4     = "vec4"
)

// decoders holds the non-generic variants. Generic variants (constant and
// weighted) are decoded directly into the requested type by Decode.
// Filled in init because the vector decoders recurse into Decode.
var decoders map[string]func([]byte) (any, error)

func init() {
	decoders = map[string]func([]byte) (any, error){
		KindRange:  decodeAs[Range],
		KindStep:   decodeAs[Step],
		KindChance: decodeAs[Chance],
		KindVec2:   decodeVec2,
		KindVec3:   decodeVec3,
		KindVec4:   decodeVec4,
	}
}

func decodeAs[R any](data []byte) (any, error) {
	var r R
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return r, nil
}

// Decode parses the tagged JSON form of a Random producing T.
func Decode[T any](data []byte) (Random[T], error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, werrors.Wrap(werrors.ErrCodeInvalidRandom, err, "decode random")
	}

	switch head.Type {
	case KindConstant:
		var c Constant[T]
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, werrors.Wrap(werrors.ErrCodeInvalidRandom, err, "decode constant")
		}
		return c, nil
	case KindWeighted:
		var w Weighted[T]
		if err := json.Unmarshal(data, &w); err != nil {
			return nil, werrors.Wrap(werrors.ErrCodeInvalidRandom, err, "decode weighted")
		}
		return w, nil
	}

	decode, ok := decoders[head.Type]
	if !ok {
		return nil, werrors.Wrap(werrors.ErrCodeInvalidRandom, werrors.ErrUnknownRandom, "type %q", head.Type)
	}
	v, err := decode(data)
	if err != nil {
		return nil, werrors.Wrap(werrors.ErrCodeInvalidRandom, err, "decode %s", head.Type)
	}
	r, ok := v.(Random[T])
	if !ok {
		var zero T
		return nil, werrors.Wrap(werrors.ErrCodeTypeMismatch, werrors.ErrTypeMismatch,
			"random %q does not produce %T", head.Type, zero)
	}
	return r, nil
}

// Freeze draws r once and returns the value as a Constant.
func Freeze[T any](r Random[T], seed Seed) (Constant[T], error) {
	v, err := r.Seeded(seed)
	if err != nil {
		return Constant[T]{}, err
	}
	return Const(v), nil
}

// tag prepends the "type" field to a variant's JSON body.
func tag(kind string, body any) ([]byte, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	if len(raw) < 2 || raw[0] != '{' {
		return nil, fmt.Errorf("random %s: body is not an object", kind)
	}
	head := fmt.Sprintf(`{"type":%q`, kind)
	if len(raw) == 2 {
		return []byte(head + "}"), nil
	}
	return append([]byte(head+","), raw[1:]...), nil
}
