// Package builder implements the builder tree and its evaluation engine.
//
// A [Builder] is a node of a generator tree. Every node declares the context
// kind it consumes, its named options and its ordered children. Evaluation
// goes through the single template function [Build], which derives seeds,
// resolves options, picks a material and then hands control to the node's
// [Builder.BuildChildren] hook for the variant-specific layout.
//
// # Seeds
//
// For a node evaluated with seed s:
//
//   - its own options and material are drawn from s.Derive(0), keyed by name
//   - its i-th child slot receives s.Derive(i+1)
//
// A child's seed therefore depends only on its index, never on what its
// siblings contain.
//
// # Persistence
//
// Trees are persisted as a generic envelope and reconstructed through a
// [Registry] that maps type names to factories. See registry.go.
package builder

import (
	"github.com/matzehuels/worksite/pkg/geo"
	"github.com/matzehuels/worksite/pkg/option"
	"github.com/matzehuels/worksite/pkg/style"
)

// Builder is a generator node.
//
// Implementations must be value-like: BuildChildren may read the node's
// configuration but must not store anything on it, so one tree can be
// evaluated concurrently with different contexts and seeds.
type Builder interface {
	// Type returns the registered type name.
	Type() string
	// Accepts returns the context kind the node consumes.
	Accepts() geo.Kind
	// Children returns the child slots in order.
	Children() []Builder
	// Options returns the node's own options, resolved by Build.
	Options() option.Params
	// ChildOptions returns the per-child options of slot i.
	ChildOptions(i int) option.Params
	// Palette returns the materials the node picks from, if any.
	Palette() style.Palette
	// BuildChildren evaluates the children against contexts derived from ctx.
	BuildChildren(env *Env, ctx geo.Context) ([]*Result, error)
}

// Base provides empty defaults for the optional parts of Builder.
type Base struct{}

// Children implements Builder.
func (Base) Children() []Builder { return nil }

// Options implements Builder.
func (Base) Options() option.Params { return nil }

// ChildOptions implements Builder.
func (Base) ChildOptions(int) option.Params { return nil }

// Palette implements Builder.
func (Base) Palette() style.Palette { return nil }

// Slot is an options struct that can list its options generically.
type Slot interface {
	Params() option.Params
}

// NoOptions is the Slot of nodes and children without options.
type NoOptions struct{}

// Params implements Slot.
func (NoOptions) Params() option.Params { return nil }

// Child pairs a child builder with its per-child options.
type Child[C Slot] struct {
	Builder Builder
	Options C
}

// Builders returns the builders of children in order.
func Builders[C Slot](children []Child[C]) []Builder {
	out := make([]Builder, len(children))
	for i, c := range children {
		out[i] = c.Builder
	}
	return out
}

// Walk visits b and its descendants in pre-order. Returning false from fn
// skips the node's children.
func Walk(b Builder, fn func(b Builder, depth int) bool) {
	walk(b, 0, fn)
}

func walk(b Builder, depth int, fn func(Builder, int) bool) {
	if b == nil || depth > DefaultMaxDepth || !fn(b, depth) {
		return
	}
	for _, c := range b.Children() {
		walk(c, depth+1, fn)
	}
}
