package builders

import (
	"math"

	"github.com/matzehuels/worksite/pkg/builder"
	werrors "github.com/matzehuels/worksite/pkg/errors"
	"github.com/matzehuels/worksite/pkg/geo"
	"github.com/matzehuels/worksite/pkg/option"
	"github.com/matzehuels/worksite/pkg/random"
)

// TypeStack is the registered name of Stack.
const TypeStack = "stack_prism"

// Repetition modes of a stack.
const (
	// RepeatNone places every child once.
	RepeatNone = "none"
	// RepeatBlock repeats the whole child sequence while it fits.
	RepeatBlock = "block"
	// RepeatEvery repeats the sequence, then appends single children while they fit.
	RepeatEvery = "every"
)

// StackOptions are the container options of Stack. Padding is (bottom, top).
type StackOptions struct {
	Alignment option.Option[string]
	Repeat    option.Option[string]
	Gap       option.Option[float64]
	Padding   option.Option[geo.Vec2]
}

// Params implements builder.Slot.
func (o StackOptions) Params() option.Params {
	return option.Params{
		"alignment": o.Alignment,
		"repeat":    o.Repeat,
		"gap":       o.Gap,
		"padding":   o.Padding,
	}
}

// DefaultStackOptions stacks every child once from the bottom, without gaps.
func DefaultStackOptions() StackOptions {
	return StackOptions{
		Alignment: option.Const(AlignStart),
		Repeat:    option.Const(RepeatNone),
		Gap:       option.Const(0.0),
		Padding:   option.Inline[geo.Vec2](random.ConstVec2(0, 0)),
	}
}

func parseStackOptions(fields option.Fields) (StackOptions, error) {
	o := DefaultStackOptions()
	var err error
	if o.Alignment, err = option.Field(fields, "alignment", o.Alignment); err != nil {
		return o, err
	}
	if o.Repeat, err = option.Field(fields, "repeat", o.Repeat); err != nil {
		return o, err
	}
	if o.Gap, err = option.Field(fields, "gap", o.Gap); err != nil {
		return o, err
	}
	if o.Padding, err = option.Field(fields, "padding", o.Padding); err != nil {
		return o, err
	}
	return o, nil
}

// StackChildOptions are the per-child options of Stack.
type StackChildOptions struct {
	Height option.Option[float64]
}

// Params implements builder.Slot.
func (o StackChildOptions) Params() option.Params {
	return option.Params{"height": o.Height}
}

func parseStackChildOptions(fields option.Fields) (StackChildOptions, error) {
	o := StackChildOptions{Height: option.Const(1.0)}
	var err error
	o.Height, err = option.Field(fields, "height", o.Height)
	return o, err
}

// Stack piles its children vertically inside a prism, each child getting a
// slice of its own height.
type Stack struct {
	builder.Base
	Opts  StackOptions
	Items []builder.Child[StackChildOptions]
}

// Type implements builder.Builder.
func (*Stack) Type() string { return TypeStack }

// Accepts implements builder.Builder.
func (*Stack) Accepts() geo.Kind { return geo.KindPrism }

// Children implements builder.Builder.
func (s *Stack) Children() []builder.Builder { return builder.Builders(s.Items) }

// Options implements builder.Builder.
func (s *Stack) Options() option.Params { return s.Opts.Params() }

// ChildOptions implements builder.Builder.
func (s *Stack) ChildOptions(i int) option.Params { return s.Items[i].Options.Params() }

// BuildChildren implements builder.Builder.
func (s *Stack) BuildChildren(env *builder.Env, ctx geo.Context) ([]*builder.Result, error) {
	n := len(s.Items)
	if n == 0 {
		return nil, nil
	}
	prism, err := builder.ContextAs[geo.Prism](env, ctx)
	if err != nil {
		return nil, err
	}

	align, err := alignment(env, "alignment")
	if err != nil {
		return nil, err
	}
	repeat, err := builder.Value[string](env, "repeat")
	if err != nil {
		return nil, err
	}
	gap, err := builder.Value[float64](env, "gap")
	if err != nil {
		return nil, err
	}
	padding, err := builder.Value[geo.Vec2](env, "padding")
	if err != nil {
		return nil, err
	}

	size := prism.Height - padding.X - padding.Y
	if size <= 0 {
		return nil, nil
	}

	heights := make([]float64, n)
	for i := range s.Items {
		if heights[i], err = builder.SlotValue[float64](env, i, "height"); err != nil {
			return nil, err
		}
		if heights[i] < 0 {
			return nil, werrors.New(werrors.ErrCodeInvalidOption, "%s: child %d has negative height %v", TypeStack, i, heights[i])
		}
	}

	sequence, err := stackSequence(heights, gap, size, repeat)
	if err != nil {
		return nil, err
	}
	total := -gap
	for _, i := range sequence {
		total += heights[i] + gap
	}

	stretch := 0.0
	z := padding.X
	switch align {
	case AlignFill:
		stretch = (size - total) / float64(len(sequence))
	case AlignCenter:
		z += (size - total) / 2
	case AlignEnd:
		z += size - total
	}

	results := make([]*builder.Result, 0, len(sequence))
	for k, i := range sequence {
		h := heights[i] + stretch
		r, err := env.BuildSeeded(s.Items[i].Builder, prism.Slice(z, h), env.ChildSeed(k))
		if err != nil {
			return nil, err
		}
		results = append(results, r)
		z += h + gap
	}
	return results, nil
}

// stackSequence returns the child indices to place, bottom to top.
func stackSequence(heights []float64, gap, size float64, repeat string) ([]int, error) {
	n := len(heights)
	once := make([]int, n)
	block := -gap
	for i, h := range heights {
		once[i] = i
		block += h + gap
	}

	switch repeat {
	case RepeatNone:
		return once, nil
	case RepeatBlock, RepeatEvery:
	default:
		return nil, werrors.New(werrors.ErrCodeInvalidOption, "repeat: unknown mode %q", repeat)
	}

	if block+gap <= 0 {
		return once, nil
	}
	blocks := int(math.Floor((size + gap) / (block + gap)))
	if blocks < 1 {
		return once, nil
	}

	seq := make([]int, 0, blocks*n)
	for b := 0; b < blocks; b++ {
		seq = append(seq, once...)
	}
	if repeat == RepeatEvery {
		used := float64(blocks)*block + float64(blocks-1)*gap
		for i, h := range heights {
			if used+gap+h > size {
				break
			}
			seq = append(seq, i)
			used += gap + h
		}
	}
	return seq, nil
}
