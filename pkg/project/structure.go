package project

import (
	"encoding/json"
	"sort"

	"github.com/matzehuels/worksite/pkg/builder"
	werrors "github.com/matzehuels/worksite/pkg/errors"
	"github.com/matzehuels/worksite/pkg/option"
)

// Structure is a stored builder tree.
type Structure struct {
	Ref     Reference
	Builder builder.Builder
}

// Dependency lists the style rules a structure refers to.
type Dependency struct {
	Options []string `json:"options"`
}

type structureDoc struct {
	Dependency Dependency      `json:"dependency"`
	Builder    json.RawMessage `json:"builder"`
}

// DecodeStructure decodes a structure document.
func DecodeStructure(r *builder.Registry, data []byte) (*Structure, error) {
	var doc structureDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, werrors.Wrap(werrors.ErrCodeInvalidJSON, err, "decode structure")
	}
	if len(doc.Builder) == 0 {
		return nil, werrors.New(werrors.ErrCodeInvalidJSON, "structure has no builder")
	}
	b, err := r.FromJSON(doc.Builder)
	if err != nil {
		return nil, err
	}
	return &Structure{Builder: b}, nil
}

// MarshalJSON encodes the document with the dependency list recomputed from
// the tree.
func (s *Structure) MarshalJSON() ([]byte, error) {
	tree, err := builder.Marshal(s.Builder)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(structureDoc{Dependency: s.Dependency(), Builder: tree}, "", "  ")
}

// Dependency collects every option reference in the tree, including
// per-child slot options.
func (s *Structure) Dependency() Dependency {
	seen := map[string]bool{}
	builder.Walk(s.Builder, func(b builder.Builder, _ int) bool {
		for _, ref := range b.Options().Refs() {
			seen[ref] = true
		}
		for i := range b.Children() {
			for _, ref := range b.ChildOptions(i).Refs() {
				seen[ref] = true
			}
		}
		return true
	})
	d := Dependency{Options: make([]string, 0, len(seen))}
	for ref := range seen {
		d.Options = append(d.Options, ref)
	}
	sort.Strings(d.Options)
	return d
}

// Missing returns the referenced options that table does not define.
func (d Dependency) Missing(table option.Table) []string {
	var missing []string
	for _, name := range d.Options {
		if _, ok := table.Lookup(name); !ok {
			missing = append(missing, name)
		}
	}
	return missing
}
