package style

import (
	"bytes"
	"encoding/json"
	"fmt"

	werrors "github.com/matzehuels/worksite/pkg/errors"
	"github.com/matzehuels/worksite/pkg/geo"
	"github.com/matzehuels/worksite/pkg/random"
)

// ValueType is the value type a rule's random source produces.
type ValueType string

const (
	TypeNumber   ValueType = "number"
	TypeString   ValueType = "string"
	TypeBoolean  ValueType = "boolean"
	TypeVec2     ValueType = "vec2"
	TypeVec3     ValueType = "vec3"
	TypeVec4     ValueType = "vec4"
	TypeMaterial ValueType = "material"
)

// valueTypes maps each type to its typed decode and freeze operations.
var valueTypes = map[ValueType]struct {
	decode func([]byte) (any, error)
	freeze func(any, random.Seed) (any, error)
}{
	TypeNumber:   {decodeTyped[float64], freezeTyped[float64]},
	TypeString:   {decodeTyped[string], freezeTyped[string]},
	TypeBoolean:  {decodeTyped[bool], freezeTyped[bool]},
	TypeVec2:     {decodeTyped[geo.Vec2], freezeTyped[geo.Vec2]},
	TypeVec3:     {decodeTyped[geo.Vec3], freezeTyped[geo.Vec3]},
	TypeVec4:     {decodeTyped[geo.Vec4], freezeTyped[geo.Vec4]},
	TypeMaterial: {decodeTyped[MaterialRef], freezeTyped[MaterialRef]},
}

func decodeTyped[T any](data []byte) (any, error) {
	return random.Decode[T](data)
}

func freezeTyped[T any](r any, seed random.Seed) (any, error) {
	typed, ok := r.(random.Random[T])
	if !ok {
		var zero T
		return nil, werrors.Wrap(werrors.ErrCodeTypeMismatch, werrors.ErrTypeMismatch, "%T is not a source of %T", r, zero)
	}
	return random.Freeze(typed, seed)
}

// Valid reports whether t is a known value type.
func (t ValueType) Valid() bool {
	_, ok := valueTypes[t]
	return ok
}

// Rule is one entry of a style's option table.
type Rule struct {
	Type ValueType
	// Random is a random.Random of Type's value type, or nil for an
	// abstract rule that an implementing style must fill in.
	Random any
	// GenerationConstant rules are drawn once per generation and then
	// shared by every builder that refers to them.
	GenerationConstant bool
}

// Abstract reports whether the rule has no source yet.
func (r Rule) Abstract() bool {
	return r.Random == nil
}

type ruleWire struct {
	Type               ValueType       `json:"type"`
	Random             json.RawMessage `json:"random"`
	GenerationConstant bool            `json:"generation_constant,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (r Rule) MarshalJSON() ([]byte, error) {
	w := ruleWire{Type: r.Type, Random: json.RawMessage("null"), GenerationConstant: r.GenerationConstant}
	if r.Random != nil {
		raw, err := json.Marshal(r.Random)
		if err != nil {
			return nil, err
		}
		w.Random = raw
	}
	return json.Marshal(w)
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Rule) UnmarshalJSON(data []byte) error {
	var w ruleWire
	if err := json.Unmarshal(data, &w); err != nil {
		return werrors.Wrap(werrors.ErrCodeStyle, err, "decode rule")
	}
	vt, ok := valueTypes[w.Type]
	if !ok {
		return werrors.New(werrors.ErrCodeStyle, "unknown rule type %q", w.Type)
	}
	*r = Rule{Type: w.Type, GenerationConstant: w.GenerationConstant}
	if len(w.Random) == 0 || bytes.Equal(w.Random, []byte("null")) {
		return nil
	}
	rnd, err := vt.decode(w.Random)
	if err != nil {
		return fmt.Errorf("rule of type %s: %w", w.Type, err)
	}
	r.Random = rnd
	return nil
}
