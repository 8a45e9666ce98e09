package builders

import (
	"github.com/matzehuels/worksite/pkg/builder"
	"github.com/matzehuels/worksite/pkg/geo"
	"github.com/matzehuels/worksite/pkg/style"
)

// TypeEmpty is the registered name of Empty.
const TypeEmpty = "empty"

// Empty is a terminal node. It fills whatever context it receives with one
// material from its palette, or nothing when the palette is empty.
type Empty struct {
	builder.Base
	Materials style.Palette
}

// NewEmpty returns an Empty picking from materials.
func NewEmpty(materials ...style.MaterialRef) *Empty {
	return &Empty{Materials: materials}
}

// Type implements builder.Builder.
func (*Empty) Type() string { return TypeEmpty }

// Accepts implements builder.Builder.
func (*Empty) Accepts() geo.Kind { return geo.KindAny }

// Palette implements builder.Builder.
func (e *Empty) Palette() style.Palette { return e.Materials }

// BuildChildren implements builder.Builder.
func (*Empty) BuildChildren(*builder.Env, geo.Context) ([]*builder.Result, error) {
	return nil, nil
}

func parseEmpty(_ *builder.Registry, env builder.Envelope) (builder.Builder, error) {
	return &Empty{Materials: env.Materials}, nil
}
