package builder

import (
	"fmt"

	werrors "github.com/matzehuels/worksite/pkg/errors"
	"github.com/matzehuels/worksite/pkg/geo"
	"github.com/matzehuels/worksite/pkg/option"
	"github.com/matzehuels/worksite/pkg/random"
	"github.com/matzehuels/worksite/pkg/style"
)

// DefaultMaxDepth bounds tree depth. Deeper evaluations fail with
// ErrCyclicBuilderTree instead of exhausting the stack.
const DefaultMaxDepth = 256

// materialsKey is the seed key of a node's material pick.
const materialsKey = "materials"

type buildConfig struct {
	maxDepth int
}

// BuildOption configures Build.
type BuildOption func(*buildConfig)

// WithMaxDepth overrides DefaultMaxDepth.
func WithMaxDepth(n int) BuildOption {
	return func(c *buildConfig) {
		if n > 0 {
			c.maxDepth = n
		}
	}
}

// Build evaluates b against ctx. Option references resolve through table,
// which may be nil when the tree holds only inline options.
//
// Build is a pure function of its arguments: it never mutates b, ctx or
// table, and concurrent calls are safe.
func Build(b Builder, ctx geo.Context, table option.Table, seed random.Seed, opts ...BuildOption) (*Result, error) {
	cfg := buildConfig{maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(&cfg)
	}
	if seed.IsZero() {
		return nil, werrors.New(werrors.ErrCodeInvalidInput, "seed is not initialized")
	}
	return build(b, ctx, table, seed, 0, &cfg)
}

func build(b Builder, ctx geo.Context, table option.Table, seed random.Seed, depth int, cfg *buildConfig) (*Result, error) {
	if b == nil {
		return nil, werrors.New(werrors.ErrCodeInvalidInput, "nil builder")
	}
	if depth > cfg.maxDepth {
		return nil, werrors.CyclicBuilderTree(cfg.maxDepth)
	}
	ctx = geo.Normalize(ctx)
	if ctx == nil || !b.Accepts().Accepts(ctx.Kind()) {
		got := geo.Kind("nil")
		if ctx != nil {
			got = ctx.Kind()
		}
		return nil, werrors.Wrap(werrors.ErrCodeContextMismatch, werrors.ErrContextMismatch,
			"%s accepts %s contexts, got %s", b.Type(), b.Accepts(), got)
	}

	self := seed.Derive(0)
	params := b.Options()
	values := make(map[string]any, len(params))
	for _, name := range params.Names() {
		v, err := params[name].Resolve(table, self.DeriveKey(name))
		if err != nil {
			return nil, fmt.Errorf("%s: option %q: %w", b.Type(), name, err)
		}
		values[name] = v
	}

	result := &Result{Builder: b.Type(), Context: ctx, Options: values}
	if m, ok := b.Palette().Pick(self.DeriveKey(materialsKey)); ok {
		result.Material = &m
	}

	env := &Env{
		node:   b,
		table:  table,
		seed:   seed,
		depth:  depth,
		cfg:    cfg,
		values: values,
	}
	children, err := b.BuildChildren(env, ctx)
	if err != nil {
		return nil, err
	}
	if env.material != nil {
		result.Material = env.material
	}
	result.Children = children
	return result, nil
}

// ContextAs asserts the context handed to BuildChildren. A context that
// reports an accepted kind but has another concrete type fails with
// ErrContextMismatch instead of panicking.
func ContextAs[T geo.Context](env *Env, ctx geo.Context) (T, error) {
	c, ok := ctx.(T)
	if !ok {
		var want T
		return want, werrors.Wrap(werrors.ErrCodeContextMismatch, werrors.ErrContextMismatch,
			"%s needs a %T context, got %T", env.node.Type(), want, ctx)
	}
	return c, nil
}

// Env is what a node's BuildChildren hook sees of the running evaluation.
// It is only valid for the duration of the hook.
type Env struct {
	node   Builder
	table  option.Table
	seed   random.Seed
	depth  int
	cfg    *buildConfig
	values map[string]any

	material *style.MaterialRef
}

// Seed returns the seed the node was evaluated with.
func (e *Env) Seed() random.Seed { return e.seed }

// Depth returns the node's depth, zero at the root.
func (e *Env) Depth() int { return e.depth }

// Table returns the option table of the evaluation.
func (e *Env) Table() option.Table { return e.table }

// Place fills the node's own context with m, replacing any palette pick.
func (e *Env) Place(m style.MaterialRef) { e.material = &m }

// ChildSeed returns the seed of child slot i.
func (e *Env) ChildSeed(i int) random.Seed {
	return e.seed.Derive(uint64(i) + 1)
}

// Build evaluates child as slot i.
func (e *Env) Build(i int, child Builder, ctx geo.Context) (*Result, error) {
	return e.BuildSeeded(child, ctx, e.ChildSeed(i))
}

// BuildSeeded evaluates child with an explicit seed. Layouts that place the
// same child several times use it with one ChildSeed per placement.
func (e *Env) BuildSeeded(child Builder, ctx geo.Context, seed random.Seed) (*Result, error) {
	return build(child, ctx, e.table, seed, e.depth+1, e.cfg)
}

// ResolveSlot resolves the per-child option name of slot i. The draw uses
// the slot's seed, so it is independent of every other slot.
func (e *Env) ResolveSlot(i int, name string) (any, error) {
	p, ok := e.node.ChildOptions(i)[name]
	if !ok {
		return nil, werrors.New(werrors.ErrCodeInvalidOption, "%s: child %d has no option %q", e.node.Type(), i, name)
	}
	v, err := p.Resolve(e.table, e.ChildSeed(i).DeriveKey(name))
	if err != nil {
		return nil, fmt.Errorf("%s: child %d option %q: %w", e.node.Type(), i, name, err)
	}
	return v, nil
}

// Value returns the node's resolved option name.
func Value[T any](e *Env, name string) (T, error) {
	var zero T
	v, ok := e.values[name]
	if !ok {
		return zero, werrors.New(werrors.ErrCodeInvalidOption, "%s: no option %q", e.node.Type(), name)
	}
	t, ok := v.(T)
	if !ok {
		return zero, werrors.Wrap(werrors.ErrCodeTypeMismatch, werrors.ErrTypeMismatch,
			"%s: option %q is %T, want %T", e.node.Type(), name, v, zero)
	}
	return t, nil
}

// SlotValue returns the resolved per-child option name of slot i.
func SlotValue[T any](e *Env, i int, name string) (T, error) {
	var zero T
	v, err := e.ResolveSlot(i, name)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, werrors.Wrap(werrors.ErrCodeTypeMismatch, werrors.ErrTypeMismatch,
			"%s: child %d option %q is %T, want %T", e.node.Type(), i, name, v, zero)
	}
	return t, nil
}
