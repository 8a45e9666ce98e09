package geo

import (
	"encoding/json"
	"fmt"
)

// Kind identifies the shape of a build context.
type Kind string

const (
	// KindAny is accepted by builders that work on every context.
	KindAny   Kind = "any"
	KindPlane Kind = "plane"
	KindPrism Kind = "prism"
)

// Accepts reports whether a builder declared for k can consume a context of kind c.
func (k Kind) Accepts(c Kind) bool {
	return k == KindAny || k == c
}

// Context is the geometric input a builder is evaluated against.
type Context interface {
	Kind() Kind
}

// Plane is a 2D rectangle at elevation Z.
type Plane struct {
	Rect Rect2   `json:"rect"`
	Z    float64 `json:"z"`
}

// Kind implements Context.
func (Plane) Kind() Kind { return KindPlane }

// WithRect returns a plane at the same elevation covering r.
func (p Plane) WithRect(r Rect2) Plane {
	return Plane{Rect: r, Z: p.Z}
}

// Lift returns the plane moved up by dz.
func (p Plane) Lift(dz float64) Plane {
	return Plane{Rect: p.Rect, Z: p.Z + dz}
}

// Prism is a plane extruded upwards by Height.
type Prism struct {
	Base   Plane   `json:"base"`
	Height float64 `json:"height"`
}

// Kind implements Context.
func (Prism) Kind() Kind { return KindPrism }

// Slice returns the sub-prism starting dz above the base with height h.
func (p Prism) Slice(dz, h float64) Prism {
	return Prism{Base: p.Base.Lift(dz), Height: h}
}

// Top returns the plane covering the top face.
func (p Prism) Top() Plane {
	return p.Base.Lift(p.Height)
}

// Normalize dereferences *Plane and *Prism so builders only ever see value
// contexts. A nil pointer normalizes to nil.
func Normalize(c Context) Context {
	switch v := c.(type) {
	case *Plane:
		if v == nil {
			return nil
		}
		return *v
	case *Prism:
		if v == nil {
			return nil
		}
		return *v
	}
	return c
}

// tagged is the wire form of a Context.
type tagged struct {
	Kind  Kind            `json:"kind"`
	Value json.RawMessage `json:"value"`
}

// MarshalContext encodes c as {"kind": ..., "value": ...}.
func MarshalContext(c Context) ([]byte, error) {
	if c == nil {
		return []byte("null"), nil
	}
	value, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return json.Marshal(tagged{Kind: c.Kind(), Value: value})
}

// DecodeContext reverses MarshalContext.
func DecodeContext(data []byte) (Context, error) {
	var t tagged
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decode context: %w", err)
	}
	switch t.Kind {
	case KindPlane:
		var p Plane
		if err := json.Unmarshal(t.Value, &p); err != nil {
			return nil, fmt.Errorf("decode plane: %w", err)
		}
		return p, nil
	case KindPrism:
		var p Prism
		if err := json.Unmarshal(t.Value, &p); err != nil {
			return nil, fmt.Errorf("decode prism: %w", err)
		}
		return p, nil
	default:
		return nil, fmt.Errorf("decode context: unknown kind %q", t.Kind)
	}
}

// Tagged wraps a Context so it can be embedded in JSON documents.
type Tagged struct {
	Context
}

// MarshalJSON implements json.Marshaler.
func (t Tagged) MarshalJSON() ([]byte, error) {
	return MarshalContext(t.Context)
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Tagged) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		t.Context = nil
		return nil
	}
	c, err := DecodeContext(data)
	if err != nil {
		return err
	}
	t.Context = c
	return nil
}
