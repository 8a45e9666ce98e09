// Package geo provides the geometric value types builders consume and produce.
//
// The types are plain values with a little arithmetic. Builders never mutate
// a context they receive; every transformation returns a new value.
//
// Two context kinds exist:
//
//   - [Plane]: a 2D rectangle lying at an elevation (surfaces, floors)
//   - [Prism]: a plane extruded upwards by a height (solid objects)
//
// Both implement [Context], which carries a [Kind] discriminant used by the
// builder engine to check that a node is evaluated against the context it was
// written for.
package geo

// Vec2 is a 2D vector.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns v+o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Sub returns v-o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Scale returns v*f.
func (v Vec2) Scale(f float64) Vec2 { return Vec2{v.X * f, v.Y * f} }

// Less reports whether v is smaller than o on either axis.
func (v Vec2) Less(o Vec2) bool { return v.X < o.X || v.Y < o.Y }

// Vec3 is a 3D vector. Z points up.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Add returns v+o.
func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

// Vec4 is a 4-component vector. Used for paddings, in the order
// top (X), right (Y), bottom (Z), left (W).
type Vec4 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
}

// Rect2 is an axis-aligned rectangle anchored at its minimum corner.
type Rect2 struct {
	Pos  Vec2 `json:"pos"`
	Size Vec2 `json:"size"`
}

// Area returns the rectangle's area.
func (r Rect2) Area() float64 { return r.Size.X * r.Size.Y }

// Inset shrinks r by a padding given as top, right, bottom, left.
// Top applies at the minimum Y edge.
func (r Rect2) Inset(p Vec4) Rect2 {
	return Rect2{
		Pos:  r.Pos.Add(Vec2{p.W, p.X}),
		Size: r.Size.Sub(Vec2{p.Y + p.W, p.X + p.Z}),
	}
}
