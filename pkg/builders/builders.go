// Package builders provides the catalogue of concrete builder types.
//
// Registration is explicit: [Register] adds every type of the catalogue to a
// registry, and [Registry] returns the process-wide registry populated once
// and sealed. Nothing registers itself at import time, so the set of known
// types is exactly what this file lists.
//
// Usage:
//
//	import "github.com/matzehuels/worksite/pkg/builders"
//
//	tree, err := builders.Registry().FromJSON(data)
//
// # Catalogue
//
//   - empty: terminal node with a material palette (any context)
//   - material: terminal node whose material is an option, e.g. a style rule
//   - plane_to_prism: extrudes a plane into a prism for its single child
//   - grid_rect: tiles a plane with cells filled by its children
//   - stack_prism: piles its children inside a prism
//   - flex_prism: splits a prism's height among its children by weight
package builders

import (
	"sync"

	"github.com/matzehuels/worksite/pkg/builder"
)

// Register adds every catalogue type to r.
func Register(r *builder.Registry) {
	r.Register(TypeEmpty, parseEmpty)
	r.Register(TypeMaterial, parseMaterial)

	builder.RegisterSingleChild(r, TypeExtrude, parseExtrudeOptions,
		func(child builder.Builder, opts ExtrudeOptions) builder.Builder {
			return &Extrude{Child: child, Opts: opts}
		})

	builder.RegisterMultiChildOptions[GridOptions, builder.NoOptions](r, TypeGrid, parseGridOptions, nil,
		func(opts GridOptions, children []builder.Child[builder.NoOptions]) builder.Builder {
			return &Grid{Opts: opts, Items: children}
		})

	builder.RegisterMultiChildOptions(r, TypeStack, parseStackOptions, parseStackChildOptions,
		func(opts StackOptions, children []builder.Child[StackChildOptions]) builder.Builder {
			return &Stack{Opts: opts, Items: children}
		})

	builder.RegisterMultiChild(r, TypeFlex, parseFlexChildOptions,
		func(children []builder.Child[FlexChildOptions]) builder.Builder {
			return &Flex{Items: children}
		})
}

var (
	registryOnce sync.Once
	registry     *builder.Registry
)

// Registry returns the sealed process-wide registry holding the catalogue.
func Registry() *builder.Registry {
	registryOnce.Do(func() {
		registry = builder.NewRegistry()
		Register(registry)
		registry.Seal()
	})
	return registry
}
