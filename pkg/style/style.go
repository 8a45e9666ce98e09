// Package style implements option tables that builders resolve references
// against.
//
// A [Style] is a named set of [Rule]s. Styles can implement other styles:
// resolving a style merges the rules of everything it implements (parents
// first, own rules last so they override). A rule without a random source is
// abstract; an implementing style is expected to provide it.
//
// Before a build, a resolved style is turned into a [Generation] for one seed.
// Generation-constant rules are frozen at that point so every builder that
// refers to them sees the same value within the generation.
package style

import (
	"errors"
	"sort"

	werrors "github.com/matzehuels/worksite/pkg/errors"
	"github.com/matzehuels/worksite/pkg/random"
)

var (
	// ErrCyclicStyle is returned when styles implement each other.
	ErrCyclicStyle = errors.New("cyclic style inheritance")

	// ErrAbstractRule is returned when generating from a style with unfilled rules.
	ErrAbstractRule = errors.New("abstract rule")
)

// Style is a named option table.
type Style struct {
	Name       string          `json:"name"`
	Abstract   bool            `json:"abstract,omitempty"`
	Implements []string        `json:"implements,omitempty"`
	Rules      map[string]Rule `json:"rules"`
}

// Loader fetches styles by name during resolution.
type Loader interface {
	LoadStyle(name string) (*Style, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(name string) (*Style, error)

// LoadStyle implements Loader.
func (f LoaderFunc) LoadStyle(name string) (*Style, error) { return f(name) }

// Resolve returns a copy of s whose rules include every implemented style's
// rules. The copy implements nothing.
func (s *Style) Resolve(loader Loader) (*Style, error) {
	rules := make(map[string]Rule)
	if err := s.collect(loader, rules, map[string]bool{}); err != nil {
		return nil, err
	}
	return &Style{Name: s.Name, Abstract: s.Abstract, Rules: rules}, nil
}

func (s *Style) collect(loader Loader, into map[string]Rule, visiting map[string]bool) error {
	if visiting[s.Name] {
		return werrors.Wrap(werrors.ErrCodeStyle, ErrCyclicStyle, "style %q implements itself", s.Name)
	}
	visiting[s.Name] = true
	defer delete(visiting, s.Name)

	for _, name := range s.Implements {
		if loader == nil {
			return werrors.New(werrors.ErrCodeStyle, "style %q implements %q but no loader is configured", s.Name, name)
		}
		parent, err := loader.LoadStyle(name)
		if err != nil {
			return werrors.Wrap(werrors.ErrCodeStyle, err, "load style %q", name)
		}
		if err := parent.collect(loader, into, visiting); err != nil {
			return err
		}
	}
	for id, rule := range s.Rules {
		// An abstract rule never hides a concrete inherited one.
		if prev, ok := into[id]; ok && rule.Abstract() && !prev.Abstract() {
			continue
		}
		into[id] = rule
	}
	return nil
}

// AbstractRules returns the sorted ids of rules without a source.
func (s *Style) AbstractRules() []string {
	var ids []string
	for id, rule := range s.Rules {
		if rule.Abstract() {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Generation builds the option table for one generation seed. The style
// should already be resolved.
func (s *Style) Generation(seed random.Seed) (*Generation, error) {
	if s.Abstract {
		return nil, werrors.Wrap(werrors.ErrCodeStyle, ErrAbstractRule, "style %q is abstract", s.Name)
	}
	if abstract := s.AbstractRules(); len(abstract) > 0 {
		return nil, werrors.Wrap(werrors.ErrCodeStyle, ErrAbstractRule, "style %q leaves rules undefined: %v", s.Name, abstract)
	}

	g := &Generation{randoms: make(map[string]any, len(s.Rules))}
	for id, rule := range s.Rules {
		if !rule.GenerationConstant {
			g.randoms[id] = rule.Random
			continue
		}
		frozen, err := valueTypes[rule.Type].freeze(rule.Random, seed.DeriveKey(id))
		if err != nil {
			return nil, werrors.Wrap(werrors.ErrCodeStyle, err, "freeze rule %q", id)
		}
		g.randoms[id] = frozen
	}
	return g, nil
}

// Generation is the read-only option table of one generation. It implements
// option.Table and is safe for concurrent use.
type Generation struct {
	randoms map[string]any
}

// Empty returns a generation with no options.
func Empty() *Generation {
	return &Generation{randoms: map[string]any{}}
}

// Lookup implements option.Table.
func (g *Generation) Lookup(name string) (any, bool) {
	if g == nil {
		return nil, false
	}
	r, ok := g.randoms[name]
	return r, ok
}

// Names returns the sorted option names.
func (g *Generation) Names() []string {
	names := make([]string, 0, len(g.randoms))
	for name := range g.randoms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
