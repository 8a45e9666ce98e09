package builder

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	werrors "github.com/matzehuels/worksite/pkg/errors"
	"github.com/matzehuels/worksite/pkg/geo"
	"github.com/matzehuels/worksite/pkg/option"
	"github.com/matzehuels/worksite/pkg/random"
	"github.com/matzehuels/worksite/pkg/style"
)

// leaf records one option and a palette.
type leaf struct {
	Base
	size      option.Option[float64]
	materials style.Palette
}

func (*leaf) Type() string { return "leaf" }
func (*leaf) Accepts() geo.Kind { return geo.KindAny }
func (l *leaf) Palette() style.Palette { return l.materials }
func (l *leaf) Options() option.Params { return option.Params{"size": l.size} }
func (*leaf) BuildChildren(*Env, geo.Context) ([]*Result, error) { return nil, nil }

// pair evaluates each child against the same plane.
type pair struct {
	Base
	items []Child[NoOptions]
}

func (*pair) Type() string { return "pair" }
func (*pair) Accepts() geo.Kind { return geo.KindPlane }
func (p *pair) Children() []Builder { return Builders(p.items) }
func (p *pair) BuildChildren(env *Env, ctx geo.Context) ([]*Result, error) {
	var out []*Result
	for i, c := range p.items {
		r, err := env.Build(i, c.Builder, ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// loop is its own child.
type loop struct{ Base }

func (*loop) Type() string { return "loop" }
func (*loop) Accepts() geo.Kind { return geo.KindAny }
func (l *loop) Children() []Builder { return []Builder{l} }
func (l *loop) BuildChildren(env *Env, ctx geo.Context) ([]*Result, error) {
	r, err := env.Build(0, l, ctx)
	if err != nil {
		return nil, err
	}
	return []*Result{r}, nil
}

var testPlane = geo.Plane{Rect: geo.Rect2{Size: geo.Vec2{X: 4, Y: 4}}}

func newLeaf(r random.Random[float64], materials ...string) *leaf {
	l := &leaf{size: option.Inline(r)}
	for _, m := range materials {
		l.materials = append(l.materials, style.Material(m))
	}
	return l
}

func newPair(children ...Builder) *pair {
	p := &pair{}
	for _, c := range children {
		p.items = append(p.items, Child[NoOptions]{Builder: c})
	}
	return p
}

func mustJSON(t *testing.T, r *Result) []byte {
	t.Helper()
	data, err := r.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error: %v", err)
	}
	return data
}

func TestBuildDeterministic(t *testing.T) {
	tree := newPair(
		newLeaf(random.Range{Min: 0, Max: 10}, "stone", "cobblestone", "andesite"),
		newLeaf(random.Range{Min: 0, Max: 10}, "dirt", "gravel"),
	)
	seed := random.NewSeed(8675309)

	first, err := Build(tree, testPlane, nil, seed)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	second, err := Build(tree, testPlane, nil, random.NewSeed(seed.Value()))
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if !bytes.Equal(mustJSON(t, first), mustJSON(t, second)) {
		t.Error("two builds with equal seeds differ")
	}

	other, _ := Build(tree, testPlane, nil, random.NewSeed(1))
	if bytes.Equal(mustJSON(t, first), mustJSON(t, other)) {
		t.Error("builds with different seeds should differ")
	}
}

func TestSiblingIndependence(t *testing.T) {
	second := newLeaf(random.Range{Min: 0, Max: 100}, "a", "b", "c", "d")
	seed := random.NewSeed(4242)

	before, err := Build(newPair(newLeaf(random.Const(1.0)), second), testPlane, nil, seed)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	// Replace the first subtree with something deeper and different.
	replaced := newPair(newPair(newLeaf(random.Range{Min: 5, Max: 6}, "x"), newLeaf(random.Const(2.0))), second)
	after, err := Build(replaced, testPlane, nil, seed)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	a, _ := json.Marshal(before.Children[1])
	b, _ := json.Marshal(after.Children[1])
	if !bytes.Equal(a, b) {
		t.Errorf("second child changed when its sibling changed:\n%s\n%s", a, b)
	}
}

func TestConcurrentBuilds(t *testing.T) {
	tree := newPair(newLeaf(random.Range{Min: 0, Max: 1}, "a", "b"), newLeaf(random.Range{Min: 0, Max: 1}))
	want, err := Build(tree, testPlane, nil, random.NewSeed(3))
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	wantJSON := mustJSON(t, want)

	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			got, err := Build(tree, testPlane, nil, random.NewSeed(3))
			if err == nil {
				data, _ := got.ToJSON()
				if !bytes.Equal(data, wantJSON) {
					err = errors.New("concurrent build differs")
				}
			}
			errs <- err
		}()
	}
	for i := 0; i < 8; i++ {
		if err := <-errs; err != nil {
			t.Error(err)
		}
	}
}

func TestBuildGuards(t *testing.T) {
	t.Run("cyclic tree", func(t *testing.T) {
		_, err := Build(&loop{}, testPlane, nil, random.NewSeed(1))
		if !errors.Is(err, werrors.ErrCyclicBuilderTree) {
			t.Errorf("Build() error = %v, want ErrCyclicBuilderTree", err)
		}
	})

	t.Run("custom depth", func(t *testing.T) {
		deep := newPair(newPair(newPair(newLeaf(random.Const(1.0)))))
		if _, err := Build(deep, testPlane, nil, random.NewSeed(1), WithMaxDepth(2)); !errors.Is(err, werrors.ErrCyclicBuilderTree) {
			t.Errorf("Build() error = %v, want ErrCyclicBuilderTree", err)
		}
		if _, err := Build(deep, testPlane, nil, random.NewSeed(1), WithMaxDepth(3)); err != nil {
			t.Errorf("Build() error = %v, want nil", err)
		}
	})

	t.Run("context mismatch", func(t *testing.T) {
		prism := geo.Prism{Base: testPlane, Height: 1}
		_, err := Build(newPair(), prism, nil, random.NewSeed(1))
		if !errors.Is(err, werrors.ErrContextMismatch) {
			t.Errorf("Build() error = %v, want ErrContextMismatch", err)
		}
	})

	t.Run("missing reference", func(t *testing.T) {
		l := &leaf{size: option.Ref[float64]("wall_height")}
		_, err := Build(l, testPlane, style.Empty(), random.NewSeed(1))
		if !errors.Is(err, werrors.ErrMissingOptionReference) {
			t.Errorf("Build() error = %v, want ErrMissingOptionReference", err)
		}
	})

	t.Run("uninitialized seed", func(t *testing.T) {
		if _, err := Build(newLeaf(random.Const(1.0)), testPlane, nil, random.Seed{}); err == nil {
			t.Error("Build() with zero seed should fail")
		}
	})
}

func TestResultRecordsOptionsAndMaterial(t *testing.T) {
	r, err := Build(newLeaf(random.Const(7.0), "stone"), testPlane, nil, random.NewSeed(10))
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if r.Options["size"] != 7.0 {
		t.Errorf("Options[size] = %v, want 7", r.Options["size"])
	}
	if r.Material == nil || r.Material.ID != "stone" {
		t.Errorf("Material = %v, want stone", r.Material)
	}
	if r.Context != geo.Context(testPlane) {
		t.Errorf("Context = %v, want %v", r.Context, testPlane)
	}
}

func TestFlatten(t *testing.T) {
	tree := newPair(
		newLeaf(random.Const(1.0), "a"),
		newPair(newLeaf(random.Const(1.0)), newLeaf(random.Const(1.0), "b")),
		newLeaf(random.Const(1.0), "c"),
	)
	r, err := Build(tree, testPlane, nil, random.NewSeed(5))
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	flat := Flatten(r)
	if len(flat.Items) != r.Count() || len(flat.Items) != 6 {
		t.Fatalf("Flatten() has %d items, want 6", len(flat.Items))
	}

	wantPaths := [][]int{{}, {0}, {1}, {1, 0}, {1, 1}, {2}}
	for i, want := range wantPaths {
		got := flat.Items[i].Path
		if len(got) != len(want) {
			t.Fatalf("item %d path = %v, want %v", i, got, want)
		}
		for j := range want {
			if got[j] != want[j] {
				t.Fatalf("item %d path = %v, want %v", i, got, want)
			}
		}
	}

	ids := style.Palette(flat.Materials()).IDs()
	if len(ids) != 3 || ids[0] != "a" || ids[1] != "b" || ids[2] != "c" {
		t.Errorf("Materials() = %v, want [a b c]", ids)
	}

	data, err := flat.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error: %v", err)
	}
	back, err := DecodeFlat(data)
	if err != nil {
		t.Fatalf("DecodeFlat() error: %v", err)
	}
	again, _ := back.ToJSON()
	if !bytes.Equal(data, again) {
		t.Errorf("flat result does not survive a JSON round trip:\n%s\n%s", data, again)
	}

	m1, _ := flat.MaterialsToJSON()
	m2, _ := r.MaterialsToJSON()
	if !bytes.Equal(m1, m2) {
		t.Error("Result.MaterialsToJSON and FlatResult.MaterialsToJSON differ")
	}
}

func TestWalk(t *testing.T) {
	tree := newPair(newLeaf(random.Const(1.0)), newPair(newLeaf(random.Const(1.0))))
	var types []string
	maxDepth := 0
	Walk(tree, func(b Builder, depth int) bool {
		types = append(types, b.Type())
		if depth > maxDepth {
			maxDepth = depth
		}
		return true
	})
	if len(types) != 4 || maxDepth != 2 {
		t.Errorf("Walk visited %v with max depth %d", types, maxDepth)
	}
}
