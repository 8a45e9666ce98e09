package geo

import (
	"encoding/json"
	"testing"
)

func TestRectInset(t *testing.T) {
	r := Rect2{Pos: Vec2{0, 0}, Size: Vec2{10, 8}}
	got := r.Inset(Vec4{X: 1, Y: 2, Z: 3, W: 4})

	want := Rect2{Pos: Vec2{4, 1}, Size: Vec2{4, 4}}
	if got != want {
		t.Errorf("Inset() = %+v, want %+v", got, want)
	}
}

func TestKindAccepts(t *testing.T) {
	tests := []struct {
		declared Kind
		given    Kind
		want     bool
	}{
		{KindAny, KindPlane, true},
		{KindAny, KindPrism, true},
		{KindPlane, KindPlane, true},
		{KindPlane, KindPrism, false},
		{KindPrism, KindPlane, false},
	}
	for _, tt := range tests {
		if got := tt.declared.Accepts(tt.given); got != tt.want {
			t.Errorf("%s.Accepts(%s) = %v, want %v", tt.declared, tt.given, got, tt.want)
		}
	}
}

func TestPrismSlice(t *testing.T) {
	p := Prism{Base: Plane{Rect: Rect2{Size: Vec2{2, 2}}, Z: 3}, Height: 10}
	s := p.Slice(4, 2)
	if s.Base.Z != 7 || s.Height != 2 {
		t.Errorf("Slice() = %+v, want base z 7 height 2", s)
	}
	if p.Top().Z != 13 {
		t.Errorf("Top().Z = %v, want 13", p.Top().Z)
	}
}

func TestContextRoundTrip(t *testing.T) {
	contexts := []Context{
		Plane{Rect: Rect2{Pos: Vec2{1, 2}, Size: Vec2{4, 4}}, Z: 0.5},
		Prism{Base: Plane{Rect: Rect2{Size: Vec2{4, 4}}}, Height: 5},
	}

	for _, c := range contexts {
		t.Run(string(c.Kind()), func(t *testing.T) {
			data, err := MarshalContext(c)
			if err != nil {
				t.Fatalf("MarshalContext() error: %v", err)
			}
			got, err := DecodeContext(data)
			if err != nil {
				t.Fatalf("DecodeContext() error: %v", err)
			}
			if got != c {
				t.Errorf("round trip = %+v, want %+v", got, c)
			}
		})
	}
}

func TestTaggedInDocument(t *testing.T) {
	type doc struct {
		Context Tagged `json:"context"`
	}
	in := doc{Context: Tagged{Plane{Rect: Rect2{Size: Vec2{1, 1}}}}}

	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	var out doc
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if out.Context.Context != in.Context.Context {
		t.Errorf("got %+v, want %+v", out.Context.Context, in.Context.Context)
	}
}

func TestDecodeContextUnknownKind(t *testing.T) {
	if _, err := DecodeContext([]byte(`{"kind":"line","value":{}}`)); err == nil {
		t.Error("DecodeContext() expected error for unknown kind")
	}
}
