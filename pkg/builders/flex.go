package builders

import (
	"github.com/matzehuels/worksite/pkg/builder"
	werrors "github.com/matzehuels/worksite/pkg/errors"
	"github.com/matzehuels/worksite/pkg/geo"
	"github.com/matzehuels/worksite/pkg/option"
)

// TypeFlex is the registered name of Flex.
const TypeFlex = "flex_prism"

// FlexChildOptions are the per-child options of Flex. A static child takes
// exactly Weight units of height; the others share what is left in
// proportion to their weights.
type FlexChildOptions struct {
	Static option.Option[bool]
	Weight option.Option[float64]
}

// Params implements builder.Slot.
func (o FlexChildOptions) Params() option.Params {
	return option.Params{"static": o.Static, "weight": o.Weight}
}

// DefaultFlexChildOptions is a flexible child of weight 1.
func DefaultFlexChildOptions() FlexChildOptions {
	return FlexChildOptions{Static: option.Const(false), Weight: option.Const(1.0)}
}

func parseFlexChildOptions(fields option.Fields) (FlexChildOptions, error) {
	o := DefaultFlexChildOptions()
	var err error
	if o.Static, err = option.Field(fields, "static", o.Static); err != nil {
		return o, err
	}
	if o.Weight, err = option.Field(fields, "weight", o.Weight); err != nil {
		return o, err
	}
	return o, nil
}

// Flex splits a prism's height among its children.
type Flex struct {
	builder.Base
	Items []builder.Child[FlexChildOptions]
}

// Type implements builder.Builder.
func (*Flex) Type() string { return TypeFlex }

// Accepts implements builder.Builder.
func (*Flex) Accepts() geo.Kind { return geo.KindPrism }

// Children implements builder.Builder.
func (f *Flex) Children() []builder.Builder { return builder.Builders(f.Items) }

// ChildOptions implements builder.Builder.
func (f *Flex) ChildOptions(i int) option.Params { return f.Items[i].Options.Params() }

// BuildChildren implements builder.Builder.
func (f *Flex) BuildChildren(env *builder.Env, ctx geo.Context) ([]*builder.Result, error) {
	prism, err := builder.ContextAs[geo.Prism](env, ctx)
	if err != nil {
		return nil, err
	}

	static := make([]bool, len(f.Items))
	weight := make([]float64, len(f.Items))
	staticHeight, totalWeight := 0.0, 0.0
	for i := range f.Items {
		if static[i], err = builder.SlotValue[bool](env, i, "static"); err != nil {
			return nil, err
		}
		if weight[i], err = builder.SlotValue[float64](env, i, "weight"); err != nil {
			return nil, err
		}
		if weight[i] < 0 {
			return nil, werrors.New(werrors.ErrCodeInvalidOption, "%s: child %d has negative weight %v", TypeFlex, i, weight[i])
		}
		if static[i] {
			staticHeight += weight[i]
		} else {
			totalWeight += weight[i]
		}
	}

	// When static children use up the prism, flexible ones get nothing.
	flexible := prism.Height - staticHeight
	overflow := flexible <= 0

	var results []*builder.Result
	z := 0.0
	for i, item := range f.Items {
		var h float64
		switch {
		case static[i]:
			h = weight[i]
		case overflow || totalWeight == 0:
			continue
		default:
			h = weight[i] / totalWeight * flexible
		}
		r, err := env.Build(i, item.Builder, prism.Slice(z, h))
		if err != nil {
			return nil, err
		}
		results = append(results, r)
		z += h
	}
	return results, nil
}
