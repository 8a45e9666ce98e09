package builder

import (
	"encoding/json"

	"github.com/matzehuels/worksite/pkg/geo"
	"github.com/matzehuels/worksite/pkg/style"
)

// Result is the output of evaluating one node: the context it was evaluated
// against, its resolved option values, its material pick and the results of
// its children in order.
type Result struct {
	Builder  string
	Context  geo.Context
	Options  map[string]any
	Material *style.MaterialRef
	Children []*Result
}

type resultJSON struct {
	Builder  string             `json:"builder"`
	Context  geo.Tagged         `json:"context"`
	Options  map[string]any     `json:"options,omitempty"`
	Material *style.MaterialRef `json:"material,omitempty"`
	Children []*Result          `json:"children,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (r *Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(resultJSON{
		Builder:  r.Builder,
		Context:  geo.Tagged{Context: r.Context},
		Options:  r.Options,
		Material: r.Material,
		Children: r.Children,
	})
}

// ToJSON encodes the full result tree.
func (r *Result) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}

// Materials returns every material of the tree in pre-order.
func (r *Result) Materials() []style.MaterialRef {
	var out []style.MaterialRef
	r.walk(nil, func(n *Result, _ []int) {
		if n.Material != nil {
			out = append(out, *n.Material)
		}
	})
	return out
}

// MaterialsToJSON encodes the placed materials of the tree, in pre-order.
func (r *Result) MaterialsToJSON() ([]byte, error) {
	return Flatten(r).MaterialsToJSON()
}

// Count returns the number of nodes in the tree.
func (r *Result) Count() int {
	n := 0
	r.walk(nil, func(*Result, []int) { n++ })
	return n
}

func (r *Result) walk(path []int, fn func(*Result, []int)) {
	fn(r, path)
	for i, c := range r.Children {
		next := make([]int, len(path)+1)
		copy(next, path)
		next[len(path)] = i
		c.walk(next, fn)
	}
}
