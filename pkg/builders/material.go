package builders

import (
	"github.com/matzehuels/worksite/pkg/builder"
	werrors "github.com/matzehuels/worksite/pkg/errors"
	"github.com/matzehuels/worksite/pkg/geo"
	"github.com/matzehuels/worksite/pkg/option"
	"github.com/matzehuels/worksite/pkg/style"
)

// TypeMaterial is the registered name of Material.
const TypeMaterial = "material"

// MaterialOptions are the options of Material.
type MaterialOptions struct {
	Material option.Option[style.MaterialRef]
}

// Params implements builder.Slot.
func (o MaterialOptions) Params() option.Params {
	return option.Params{"material": o.Material}
}

func parseMaterialOptions(fields option.Fields) (MaterialOptions, error) {
	var o MaterialOptions
	var err error
	if o.Material, err = option.Field(fields, "material", o.Material); err != nil {
		return o, err
	}
	if o.Material.IsZero() {
		return o, werrors.New(werrors.ErrCodeInvalidOption, "option %q is required", "material")
	}
	return o, nil
}

// Material is a terminal node filled with the material its option resolves
// to. Unlike Empty, the material can come from a style rule of type
// material, so one tree takes its blocks from whichever style it is built
// with.
type Material struct {
	builder.Base
	Opts MaterialOptions
}

// NewMaterial returns a Material resolving m.
func NewMaterial(m option.Option[style.MaterialRef]) *Material {
	return &Material{Opts: MaterialOptions{Material: m}}
}

// Type implements builder.Builder.
func (*Material) Type() string { return TypeMaterial }

// Accepts implements builder.Builder.
func (*Material) Accepts() geo.Kind { return geo.KindAny }

// Options implements builder.Builder.
func (m *Material) Options() option.Params { return m.Opts.Params() }

// BuildChildren implements builder.Builder.
func (*Material) BuildChildren(env *builder.Env, _ geo.Context) ([]*builder.Result, error) {
	ref, err := builder.Value[style.MaterialRef](env, "material")
	if err != nil {
		return nil, err
	}
	env.Place(ref)
	return nil, nil
}

func parseMaterial(_ *builder.Registry, env builder.Envelope) (builder.Builder, error) {
	fields, err := option.ParseFields(env.Options)
	if err != nil {
		return nil, err
	}
	opts, err := parseMaterialOptions(fields)
	if err != nil {
		return nil, err
	}
	if len(env.Children) > 0 {
		return nil, werrors.New(werrors.ErrCodeInvalidInput, "%s takes no children", TypeMaterial)
	}
	return &Material{Opts: opts}, nil
}
