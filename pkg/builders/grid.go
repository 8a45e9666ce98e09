package builders

import (
	"math"

	"github.com/matzehuels/worksite/pkg/builder"
	werrors "github.com/matzehuels/worksite/pkg/errors"
	"github.com/matzehuels/worksite/pkg/geo"
	"github.com/matzehuels/worksite/pkg/option"
	"github.com/matzehuels/worksite/pkg/random"
)

// TypeGrid is the registered name of Grid.
const TypeGrid = "grid_rect"

// Axis alignments of a grid.
const (
	AlignStart  = "start"
	AlignCenter = "center"
	AlignEnd    = "end"
	AlignFill   = "fill"
)

// pickKey is the seed key of a grid cell's child choice.
const pickKey = "pick"

// GridOptions are the container options of Grid.
type GridOptions struct {
	Cell    option.Option[geo.Vec2]
	Gap     option.Option[geo.Vec2]
	Padding option.Option[geo.Vec4]
	AlignX  option.Option[string]
	AlignY  option.Option[string]
}

// Params implements builder.Slot.
func (o GridOptions) Params() option.Params {
	return option.Params{
		"cell":    o.Cell,
		"gap":     o.Gap,
		"padding": o.Padding,
		"align_x": o.AlignX,
		"align_y": o.AlignY,
	}
}

// DefaultGridOptions lays out unit cells without gaps, stretched to fill.
func DefaultGridOptions() GridOptions {
	return GridOptions{
		Cell:    option.Inline[geo.Vec2](random.ConstVec2(1, 1)),
		Gap:     option.Inline[geo.Vec2](random.ConstVec2(0, 0)),
		Padding: option.Inline[geo.Vec4](random.ConstVec4(0, 0, 0, 0)),
		AlignX:  option.Const(AlignFill),
		AlignY:  option.Const(AlignFill),
	}
}

func parseGridOptions(fields option.Fields) (GridOptions, error) {
	o := DefaultGridOptions()
	var err error
	if o.Cell, err = option.Field(fields, "cell", o.Cell); err != nil {
		return o, err
	}
	if o.Gap, err = option.Field(fields, "gap", o.Gap); err != nil {
		return o, err
	}
	if o.Padding, err = option.Field(fields, "padding", o.Padding); err != nil {
		return o, err
	}
	if o.AlignX, err = option.Field(fields, "align_x", o.AlignX); err != nil {
		return o, err
	}
	if o.AlignY, err = option.Field(fields, "align_y", o.AlignY); err != nil {
		return o, err
	}
	return o, nil
}

// Grid tiles a rectangular plane with cells. Every cell is filled by one of
// the children, chosen uniformly with the cell's own seed.
type Grid struct {
	builder.Base
	Opts  GridOptions
	Items []builder.Child[builder.NoOptions]
}

// NewGrid returns a Grid over children.
func NewGrid(opts GridOptions, children ...builder.Builder) *Grid {
	g := &Grid{Opts: opts}
	for _, c := range children {
		g.Items = append(g.Items, builder.Child[builder.NoOptions]{Builder: c})
	}
	return g
}

// Type implements builder.Builder.
func (*Grid) Type() string { return TypeGrid }

// Accepts implements builder.Builder.
func (*Grid) Accepts() geo.Kind { return geo.KindPlane }

// Children implements builder.Builder.
func (g *Grid) Children() []builder.Builder { return builder.Builders(g.Items) }

// Options implements builder.Builder.
func (g *Grid) Options() option.Params { return g.Opts.Params() }

// BuildChildren implements builder.Builder.
func (g *Grid) BuildChildren(env *builder.Env, ctx geo.Context) ([]*builder.Result, error) {
	if len(g.Items) == 0 {
		return nil, nil
	}
	plane, err := builder.ContextAs[geo.Plane](env, ctx)
	if err != nil {
		return nil, err
	}

	cell, err := builder.Value[geo.Vec2](env, "cell")
	if err != nil {
		return nil, err
	}
	gap, err := builder.Value[geo.Vec2](env, "gap")
	if err != nil {
		return nil, err
	}
	padding, err := builder.Value[geo.Vec4](env, "padding")
	if err != nil {
		return nil, err
	}
	alignX, err := alignment(env, "align_x")
	if err != nil {
		return nil, err
	}
	alignY, err := alignment(env, "align_y")
	if err != nil {
		return nil, err
	}
	if cell.X <= 0 || cell.Y <= 0 {
		return nil, werrors.New(werrors.ErrCodeInvalidOption, "%s: cell must be positive, got %v", TypeGrid, cell)
	}
	if gap.X < 0 || gap.Y < 0 {
		return nil, werrors.New(werrors.ErrCodeInvalidOption, "%s: gap cannot be negative, got %v", TypeGrid, gap)
	}

	inner := plane.Rect.Inset(padding)
	if inner.Size.X <= 0 || inner.Size.Y <= 0 {
		return nil, nil
	}

	// A plane smaller than one cell is covered by a single cell.
	if inner.Size.Less(cell) {
		r, err := g.buildCell(env, 0, plane.WithRect(inner))
		if err != nil {
			return nil, err
		}
		return []*builder.Result{r}, nil
	}

	xs := layoutAxis(inner.Pos.X, inner.Size.X, cell.X, gap.X, alignX)
	ys := layoutAxis(inner.Pos.Y, inner.Size.Y, cell.Y, gap.Y, alignY)

	results := make([]*builder.Result, 0, len(xs)*len(ys))
	for i, x := range xs {
		for j, y := range ys {
			rect := geo.Rect2{Pos: geo.Vec2{X: x.pos, Y: y.pos}, Size: geo.Vec2{X: x.size, Y: y.size}}
			r, err := g.buildCell(env, i*len(ys)+j, plane.WithRect(rect))
			if err != nil {
				return nil, err
			}
			results = append(results, r)
		}
	}
	return results, nil
}

// buildCell fills cell k. The cell seed depends only on k.
func (g *Grid) buildCell(env *builder.Env, k int, plane geo.Plane) (*builder.Result, error) {
	seed := env.ChildSeed(k)
	child := g.Items[seed.DeriveKey(pickKey).Intn(len(g.Items))].Builder
	return env.BuildSeeded(child, plane, seed)
}

type span struct {
	pos, size float64
}

// layoutAxis places as many cells as fit along one axis.
func layoutAxis(origin, size, cell, gap float64, align string) []span {
	n := int(math.Floor((size + gap) / (cell + gap)))
	if n < 1 {
		n = 1
	}
	used := float64(n)*cell + float64(n-1)*gap
	free := size - used

	offset := 0.0
	switch align {
	case AlignFill:
		cell += free / float64(n)
	case AlignCenter:
		offset = free / 2
	case AlignEnd:
		offset = free
	}

	spans := make([]span, n)
	for i := range spans {
		spans[i] = span{pos: origin + offset + float64(i)*(cell+gap), size: cell}
	}
	return spans
}

func alignment(env *builder.Env, name string) (string, error) {
	v, err := builder.Value[string](env, name)
	if err != nil {
		return "", err
	}
	switch v {
	case AlignStart, AlignCenter, AlignEnd, AlignFill:
		return v, nil
	}
	return "", werrors.New(werrors.ErrCodeInvalidOption, "%s: unknown alignment %q", name, v)
}
