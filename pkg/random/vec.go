package random

import (
	"encoding/json"

	"github.com/matzehuels/worksite/pkg/geo"
)

// Vec2 composes two scalar sources. Axis i draws from seed.Derive(i), so
// changing one axis never perturbs the other.
type Vec2 struct {
	X Random[float64]
	Y Random[float64]
}

// ConstVec2 returns a Vec2 yielding (x, y).
func ConstVec2(x, y float64) Vec2 {
	return Vec2{X: Const(x), Y: Const(y)}
}

// Kind implements Random.
func (Vec2) Kind() string { return KindVec2 }

// Seeded implements Random.
func (v Vec2) Seeded(seed Seed) (geo.Vec2, error) {
	axes, err := drawAxes(seed, v.X, v.Y)
	if err != nil {
		return geo.Vec2{}, err
	}
	return geo.Vec2{X: axes[0], Y: axes[1]}, nil
}

// MarshalJSON implements json.Marshaler.
func (v Vec2) MarshalJSON() ([]byte, error) {
	return tag(KindVec2, struct {
		X Random[float64] `json:"x"`
		Y Random[float64] `json:"y"`
	}{v.X, v.Y})
}

// Vec3 composes three scalar sources.
type Vec3 struct {
	X Random[float64]
	Y Random[float64]
	Z Random[float64]
}

// ConstVec3 returns a Vec3 yielding (x, y, z).
func ConstVec3(x, y, z float64) Vec3 {
	return Vec3{X: Const(x), Y: Const(y), Z: Const(z)}
}

// Kind implements Random.
func (Vec3) Kind() string { return KindVec3 }

// Seeded implements Random.
func (v Vec3) Seeded(seed Seed) (geo.Vec3, error) {
	axes, err := drawAxes(seed, v.X, v.Y, v.Z)
	if err != nil {
		return geo.Vec3{}, err
	}
	return geo.Vec3{X: axes[0], Y: axes[1], Z: axes[2]}, nil
}

// MarshalJSON implements json.Marshaler.
func (v Vec3) MarshalJSON() ([]byte, error) {
	return tag(KindVec3, struct {
		X Random[float64] `json:"x"`
		Y Random[float64] `json:"y"`
		Z Random[float64] `json:"z"`
	}{v.X, v.Y, v.Z})
}

// Vec4 composes four scalar sources.
type Vec4 struct {
	X Random[float64]
	Y Random[float64]
	Z Random[float64]
	W Random[float64]
}

// ConstVec4 returns a Vec4 yielding (x, y, z, w).
func ConstVec4(x, y, z, w float64) Vec4 {
	return Vec4{X: Const(x), Y: Const(y), Z: Const(z), W: Const(w)}
}

// Kind implements Random.
func (Vec4) Kind() string { return KindVec4 }

// Seeded implements Random.
func (v Vec4) Seeded(seed Seed) (geo.Vec4, error) {
	axes, err := drawAxes(seed, v.X, v.Y, v.Z, v.W)
	if err != nil {
		return geo.Vec4{}, err
	}
	return geo.Vec4{X: axes[0], Y: axes[1], Z: axes[2], W: axes[3]}, nil
}

// MarshalJSON implements json.Marshaler.
func (v Vec4) MarshalJSON() ([]byte, error) {
	return tag(KindVec4, struct {
		X Random[float64] `json:"x"`
		Y Random[float64] `json:"y"`
		Z Random[float64] `json:"z"`
		W Random[float64] `json:"w"`
	}{v.X, v.Y, v.Z, v.W})
}

func drawAxes(seed Seed, axes ...Random[float64]) ([]float64, error) {
	out := make([]float64, len(axes))
	for i, axis := range axes {
		if axis == nil {
			continue
		}
		v, err := axis.Seeded(seed.Derive(uint64(i)))
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// decodeAxes decodes the named scalar fields of a vector body.
func decodeAxes(data []byte, names ...string) ([]Random[float64], error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	out := make([]Random[float64], len(names))
	for i, name := range names {
		raw, ok := fields[name]
		if !ok || string(raw) == "null" {
			out[i] = Const(0.0)
			continue
		}
		r, err := Decode[float64](raw)
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}

func decodeVec2(data []byte) (any, error) {
	a, err := decodeAxes(data, "x", "y")
	if err != nil {
		return nil, err
	}
	return Vec2{X: a[0], Y: a[1]}, nil
}

func decodeVec3(data []byte) (any, error) {
	a, err := decodeAxes(data, "x", "y", "z")
	if err != nil {
		return nil, err
	}
	return Vec3{X: a[0], Y: a[1], Z: a[2]}, nil
}

func decodeVec4(data []byte) (any, error) {
	a, err := decodeAxes(data, "x", "y", "z", "w")
	if err != nil {
		return nil, err
	}
	return Vec4{X: a[0], Y: a[1], Z: a[2], W: a[3]}, nil
}
