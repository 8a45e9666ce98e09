package builders

import (
	"github.com/matzehuels/worksite/pkg/builder"
	"github.com/matzehuels/worksite/pkg/geo"
	"github.com/matzehuels/worksite/pkg/option"
)

// TypeExtrude is the registered name of Extrude.
const TypeExtrude = "plane_to_prism"

// ExtrudeOptions are the options of Extrude.
type ExtrudeOptions struct {
	Height option.Option[float64]
}

// Params implements builder.Slot.
func (o ExtrudeOptions) Params() option.Params {
	return option.Params{"height": o.Height}
}

// DefaultExtrudeOptions extrudes by one unit.
func DefaultExtrudeOptions() ExtrudeOptions {
	return ExtrudeOptions{Height: option.Const(1.0)}
}

func parseExtrudeOptions(fields option.Fields) (ExtrudeOptions, error) {
	o := DefaultExtrudeOptions()
	var err error
	if o.Height, err = option.Field(fields, "height", o.Height); err != nil {
		return o, err
	}
	return o, nil
}

// Extrude turns a plane into a prism standing on it and evaluates its single
// child against that prism.
type Extrude struct {
	builder.Base
	Child builder.Builder
	Opts  ExtrudeOptions
}

// NewExtrude returns an Extrude with the given child and options.
func NewExtrude(child builder.Builder, opts ExtrudeOptions) *Extrude {
	return &Extrude{Child: child, Opts: opts}
}

// Type implements builder.Builder.
func (*Extrude) Type() string { return TypeExtrude }

// Accepts implements builder.Builder.
func (*Extrude) Accepts() geo.Kind { return geo.KindPlane }

// Children implements builder.Builder.
func (e *Extrude) Children() []builder.Builder { return []builder.Builder{e.Child} }

// Options implements builder.Builder.
func (e *Extrude) Options() option.Params { return e.Opts.Params() }

// BuildChildren implements builder.Builder.
func (e *Extrude) BuildChildren(env *builder.Env, ctx geo.Context) ([]*builder.Result, error) {
	height, err := builder.Value[float64](env, "height")
	if err != nil {
		return nil, err
	}
	base, err := builder.ContextAs[geo.Plane](env, ctx)
	if err != nil {
		return nil, err
	}
	prism := geo.Prism{Base: base, Height: height}
	r, err := env.Build(0, e.Child, prism)
	if err != nil {
		return nil, err
	}
	return []*builder.Result{r}, nil
}
