package builders

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/matzehuels/worksite/pkg/builder"
	werrors "github.com/matzehuels/worksite/pkg/errors"
	"github.com/matzehuels/worksite/pkg/geo"
	"github.com/matzehuels/worksite/pkg/option"
	"github.com/matzehuels/worksite/pkg/random"
	"github.com/matzehuels/worksite/pkg/style"
)

var square = geo.Plane{Rect: geo.Rect2{Size: geo.Vec2{X: 4, Y: 4}}}

func TestEmptyWithSingleMaterial(t *testing.T) {
	r, err := builder.Build(NewEmpty(style.Material("stone")), square, nil, random.NewSeed(12))
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if len(r.Children) != 0 {
		t.Errorf("empty produced %d children, want 0", len(r.Children))
	}
	materials := r.Materials()
	if len(materials) != 1 || materials[0].ID != "stone" {
		t.Errorf("Materials() = %v, want [stone]", materials)
	}
}

func TestExtrudePassesPrism(t *testing.T) {
	child := NewEmpty()
	tree := NewExtrude(child, ExtrudeOptions{Height: option.Const(5.0)})

	r, err := builder.Build(tree, square, nil, random.NewSeed(77))
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if len(r.Children) != 1 {
		t.Fatalf("extrude produced %d children, want 1", len(r.Children))
	}

	want := geo.Prism{Base: square, Height: 5}
	if got := r.Children[0].Context; got != geo.Context(want) {
		t.Errorf("child context = %+v, want %+v", got, want)
	}
	if r.Options["height"] != 5.0 {
		t.Errorf("recorded height = %v, want 5", r.Options["height"])
	}
}

func TestExtrudeRejectsPrismContext(t *testing.T) {
	tree := NewExtrude(NewEmpty(), DefaultExtrudeOptions())
	_, err := builder.Build(tree, geo.Prism{Base: square, Height: 1}, nil, random.NewSeed(1))
	if !errors.Is(err, werrors.ErrContextMismatch) {
		t.Errorf("Build() error = %v, want ErrContextMismatch", err)
	}
}

// fakePlane claims to be a plane without being a geo.Plane.
type fakePlane struct{}

func (fakePlane) Kind() geo.Kind { return geo.KindPlane }

func TestExtrudeContextTypes(t *testing.T) {
	tree := NewExtrude(NewEmpty(), DefaultExtrudeOptions())

	plane := square
	r, err := builder.Build(tree, &plane, nil, random.NewSeed(1))
	if err != nil {
		t.Fatalf("Build(*geo.Plane) error: %v", err)
	}
	if r.Context != geo.Context(square) {
		t.Errorf("recorded context = %#v, want the plane value", r.Context)
	}

	var nilPlane *geo.Plane
	if _, err := builder.Build(tree, nilPlane, nil, random.NewSeed(1)); !errors.Is(err, werrors.ErrContextMismatch) {
		t.Errorf("Build(nil *geo.Plane) error = %v, want ErrContextMismatch", err)
	}

	for _, b := range []builder.Builder{tree, NewGrid(DefaultGridOptions(), NewEmpty())} {
		if _, err := builder.Build(b, fakePlane{}, nil, random.NewSeed(1)); !errors.Is(err, werrors.ErrContextMismatch) {
			t.Errorf("%s: Build(fakePlane) error = %v, want ErrContextMismatch", b.Type(), err)
		}
	}
}

func TestGridLayout(t *testing.T) {
	plane := geo.Plane{Rect: geo.Rect2{Size: geo.Vec2{X: 10, Y: 10}}, Z: 2}

	tests := []struct {
		name     string
		align    string
		wantPos  []float64
		wantSize float64
	}{
		{"fill", AlignFill, []float64{0, 5.5}, 4.5},
		{"start", AlignStart, []float64{0, 4}, 3},
		{"center", AlignCenter, []float64{1.5, 5.5}, 3},
		{"end", AlignEnd, []float64{3, 7}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultGridOptions()
			opts.Cell = option.Inline[geo.Vec2](random.ConstVec2(3, 3))
			opts.Gap = option.Inline[geo.Vec2](random.ConstVec2(1, 1))
			opts.AlignX = option.Const(tt.align)
			opts.AlignY = option.Const(tt.align)

			r, err := builder.Build(NewGrid(opts, NewEmpty()), plane, nil, random.NewSeed(3))
			if err != nil {
				t.Fatalf("Build() error: %v", err)
			}
			if len(r.Children) != 4 {
				t.Fatalf("grid produced %d cells, want 4", len(r.Children))
			}
			for k, c := range r.Children {
				p := c.Context.(geo.Plane)
				wantX := tt.wantPos[k/2]
				wantY := tt.wantPos[k%2]
				if p.Rect.Pos.X != wantX || p.Rect.Pos.Y != wantY || p.Rect.Size.X != tt.wantSize || p.Z != 2 {
					t.Errorf("cell %d = %+v, want pos (%v,%v) size %v", k, p, wantX, wantY, tt.wantSize)
				}
			}
		})
	}
}

func TestGridSmallPlaneUsesOneCell(t *testing.T) {
	opts := DefaultGridOptions()
	opts.Cell = option.Inline[geo.Vec2](random.ConstVec2(8, 8))
	r, err := builder.Build(NewGrid(opts, NewEmpty()), square, nil, random.NewSeed(3))
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if len(r.Children) != 1 || r.Children[0].Context != geo.Context(square) {
		t.Errorf("children = %d, want one cell covering the plane", len(r.Children))
	}
}

func TestGridInvalidAlignment(t *testing.T) {
	opts := DefaultGridOptions()
	opts.AlignX = option.Const("justify")
	_, err := builder.Build(NewGrid(opts, NewEmpty()), square, nil, random.NewSeed(1))
	if !werrors.Is(err, werrors.ErrCodeInvalidOption) {
		t.Errorf("Build() error = %v, want INVALID_OPTION", err)
	}
}

func stackOf(opts StackOptions, heights ...float64) *Stack {
	s := &Stack{Opts: opts}
	for _, h := range heights {
		s.Items = append(s.Items, builder.Child[StackChildOptions]{
			Builder: NewEmpty(),
			Options: StackChildOptions{Height: option.Const(h)},
		})
	}
	return s
}

func TestStackLayout(t *testing.T) {
	type slice struct{ z, h float64 }
	tests := []struct {
		name   string
		height float64
		repeat string
		align  string
		want   []slice
	}{
		{"once from start", 10, RepeatNone, AlignStart, []slice{{0, 2}, {2, 3}}},
		{"once from end", 10, RepeatNone, AlignEnd, []slice{{5, 2}, {7, 3}}},
		{"once centered", 10, RepeatNone, AlignCenter, []slice{{2.5, 2}, {4.5, 3}}},
		{"once filled", 10, RepeatNone, AlignFill, []slice{{0, 4.5}, {4.5, 5.5}}},
		{"block", 12, RepeatBlock, AlignStart, []slice{{0, 2}, {2, 3}, {5, 2}, {7, 3}}},
		{"every", 12, RepeatEvery, AlignStart, []slice{{0, 2}, {2, 3}, {5, 2}, {7, 3}, {10, 2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultStackOptions()
			opts.Repeat = option.Const(tt.repeat)
			opts.Alignment = option.Const(tt.align)
			prism := geo.Prism{Base: square, Height: tt.height}

			r, err := builder.Build(stackOf(opts, 2, 3), prism, nil, random.NewSeed(9))
			if err != nil {
				t.Fatalf("Build() error: %v", err)
			}
			if len(r.Children) != len(tt.want) {
				t.Fatalf("stack placed %d children, want %d", len(r.Children), len(tt.want))
			}
			for i, w := range tt.want {
				p := r.Children[i].Context.(geo.Prism)
				if p.Base.Z != w.z || p.Height != w.h {
					t.Errorf("slice %d = z %v h %v, want z %v h %v", i, p.Base.Z, p.Height, w.z, w.h)
				}
			}
		})
	}
}

func TestStackPaddingLeavesNoRoom(t *testing.T) {
	opts := DefaultStackOptions()
	opts.Padding = option.Inline[geo.Vec2](random.ConstVec2(3, 3))
	r, err := builder.Build(stackOf(opts, 1), geo.Prism{Base: square, Height: 5}, nil, random.NewSeed(1))
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if len(r.Children) != 0 {
		t.Errorf("stack placed %d children in a padded-out prism", len(r.Children))
	}
}

func TestFlexSplitsHeight(t *testing.T) {
	flex := &Flex{Items: []builder.Child[FlexChildOptions]{
		{Builder: NewEmpty(), Options: FlexChildOptions{Static: option.Const(true), Weight: option.Const(2.0)}},
		{Builder: NewEmpty(), Options: FlexChildOptions{Static: option.Const(false), Weight: option.Const(1.0)}},
		{Builder: NewEmpty(), Options: FlexChildOptions{Static: option.Const(false), Weight: option.Const(3.0)}},
	}}
	prism := geo.Prism{Base: square.Lift(1), Height: 10}

	r, err := builder.Build(flex, prism, nil, random.NewSeed(4))
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	want := []struct{ z, h float64 }{{1, 2}, {3, 2}, {5, 6}}
	if len(r.Children) != len(want) {
		t.Fatalf("flex placed %d children, want %d", len(r.Children), len(want))
	}
	for i, w := range want {
		p := r.Children[i].Context.(geo.Prism)
		if p.Base.Z != w.z || p.Height != w.h {
			t.Errorf("child %d = z %v h %v, want z %v h %v", i, p.Base.Z, p.Height, w.z, w.h)
		}
	}
}

func TestFlexStaticOverflow(t *testing.T) {
	flex := &Flex{Items: []builder.Child[FlexChildOptions]{
		{Builder: NewEmpty(), Options: FlexChildOptions{Static: option.Const(true), Weight: option.Const(6.0)}},
		{Builder: NewEmpty(), Options: DefaultFlexChildOptions()},
	}}
	r, err := builder.Build(flex, geo.Prism{Base: square, Height: 5}, nil, random.NewSeed(4))
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if len(r.Children) != 1 {
		t.Errorf("flex placed %d children, want only the static one", len(r.Children))
	}
}

const houseJSON = `{
	"name": "grid_rect",
	"options": {
		"cell": {"random": {"type": "vec2", "x": {"type": "step", "min": 2, "max": 4, "step": 1}, "y": {"type": "constant", "value": 3}}},
		"align_x": {"random": {"type": "weighted", "entries": [{"id": "start", "weight": 1}, {"id": "fill", "weight": 3}]}}
	},
	"children": [
		{"builder": {
			"name": "plane_to_prism",
			"options": {"height": {"ref": "wall_height"}},
			"children": [{"builder": {
				"name": "stack_prism",
				"options": {"repeat": {"random": {"type": "constant", "value": "block"}}},
				"children": [
					{"builder": {"name": "empty", "materials": ["stone", "cobblestone"]}, "options": {"height": {"random": {"type": "range", "min": 1, "max": 2}}}},
					{"builder": {"name": "flex_prism", "children": [
						{"builder": {"name": "empty", "materials": [{"id": "oak_log", "attributes": {"axis": "y"}}]}, "options": {"static": {"random": {"type": "chance", "probability": 0.5}}}},
						{"builder": {"name": "empty", "materials": ["glass"]}}
					]}}
				]
			}}]
		}},
		{"builder": {"name": "empty", "materials": ["grass_block"]}}
	]
}`

func TestCatalogRoundTrip(t *testing.T) {
	reg := Registry()
	tree, err := reg.FromJSON([]byte(houseJSON))
	if err != nil {
		t.Fatalf("FromJSON() error: %v", err)
	}

	data, err := builder.Marshal(tree)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	back, err := reg.FromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON(Marshal()) error: %v", err)
	}

	table := tableOf{"wall_height": random.Range{Min: 4, Max: 8}}
	plane := geo.Plane{Rect: geo.Rect2{Size: geo.Vec2{X: 16, Y: 9}}}
	for _, v := range []int64{1, 2, 3, 1000, 987654} {
		a, err := builder.Build(tree, plane, table, random.NewSeed(v))
		if err != nil {
			t.Fatalf("Build() error: %v", err)
		}
		b, err := builder.Build(back, plane, table, random.NewSeed(v))
		if err != nil {
			t.Fatalf("Build() error: %v", err)
		}
		ja, _ := a.ToJSON()
		jb, _ := b.ToJSON()
		if !bytes.Equal(ja, jb) {
			t.Errorf("seed %d: round-tripped tree evaluates differently", v)
		}
		if len(builder.Flatten(a).Materials()) == 0 {
			t.Errorf("seed %d: no materials placed", v)
		}
	}
}

func TestCatalogNames(t *testing.T) {
	want := []string{TypeEmpty, TypeFlex, TypeGrid, TypeExtrude, TypeStack}
	got := Registry().Names()
	if len(got) != len(want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if !Registry().Sealed() {
		t.Error("process registry should be sealed")
	}
}

func TestCatalogUnknownName(t *testing.T) {
	_, err := Registry().FromJSON([]byte(`{"name":"spiral_staircase"}`))
	if !errors.Is(err, werrors.ErrUnknownBuilderType) {
		t.Errorf("FromJSON() error = %v, want ErrUnknownBuilderType", err)
	}
}

type tableOf map[string]any

func (m tableOf) Lookup(name string) (any, bool) {
	v, ok := m[name]
	return v, ok
}

const materialStyle = `{"name": "castle", "rules": {
	"floor": {"type": "material", "random": {"type": "weighted", "entries": [
		{"id": "oak_planks", "weight": 1},
		{"id": {"id": "spruce_planks", "attributes": {"axis": "x"}}, "weight": 1}
	]}},
	"wall": {"type": "material", "random": {"type": "constant", "value": "stone"}, "generation_constant": true}
}}`

func TestMaterialFromStyle(t *testing.T) {
	var s style.Style
	if err := json.Unmarshal([]byte(materialStyle), &s); err != nil {
		t.Fatal(err)
	}
	gen, err := s.Generation(random.NewSeed(3))
	if err != nil {
		t.Fatal(err)
	}

	tree, err := Registry().FromJSON([]byte(`{
		"name": "stack_prism",
		"children": [
			{"builder": {"name": "material", "options": {"material": {"ref": "wall"}}}},
			{"builder": {"name": "material", "options": {"material": {"ref": "floor"}}}}
		]}`))
	if err != nil {
		t.Fatalf("FromJSON() error: %v", err)
	}

	prism := geo.Prism{Base: square, Height: 4}
	seen := map[string]bool{}
	for v := int64(1); v <= 40; v++ {
		r, err := builder.Build(tree, prism, gen, random.NewSeed(v))
		if err != nil {
			t.Fatalf("Build(seed %d) error: %v", v, err)
		}
		materials := r.Materials()
		if len(materials) != 2 || materials[0].ID != "stone" {
			t.Fatalf("seed %d: materials = %v, want stone then a floor", v, materials)
		}
		seen[materials[1].ID] = true
		if materials[1].ID == "spruce_planks" && materials[1].Attributes["axis"] != "x" {
			t.Errorf("attributes lost: %+v", materials[1])
		}
	}
	if !seen["oak_planks"] || !seen["spruce_planks"] {
		t.Errorf("floor materials drawn = %v, want both entries", seen)
	}

	if _, err := builder.Build(tree, prism, nil, random.NewSeed(1)); !errors.Is(err, werrors.ErrMissingOptionReference) {
		t.Errorf("Build() without a style = %v, want ErrMissingOptionReference", err)
	}
}

func TestMaterialInline(t *testing.T) {
	m := NewMaterial(option.Const(style.Material("glass")))
	r, err := builder.Build(m, square, nil, random.NewSeed(5))
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if r.Material == nil || r.Material.ID != "glass" {
		t.Errorf("result = %+v, want glass", r)
	}

	data, err := builder.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	back, err := Registry().FromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON(%s) error: %v", data, err)
	}
	again, err := builder.Build(back, square, nil, random.NewSeed(5))
	if err != nil || again.Material.ID != "glass" {
		t.Errorf("round trip built %+v, %v", again, err)
	}
}

func TestMaterialRejectsBadEnvelopes(t *testing.T) {
	for _, data := range []string{
		`{"name": "material"}`,
		`{"name": "material", "options": {"material": {"ref": "wall"}}, "children": [{"builder": {"name": "empty"}}]}`,
	} {
		if _, err := Registry().FromJSON([]byte(data)); err == nil {
			t.Errorf("FromJSON(%s) should fail", data)
		}
	}
}
