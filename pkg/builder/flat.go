package builder

import (
	"encoding/json"

	"github.com/matzehuels/worksite/pkg/geo"
	"github.com/matzehuels/worksite/pkg/style"
)

// FlatItem is one node of a flattened result.
type FlatItem struct {
	Builder string `json:"builder"`
	// Path holds child indices from the root; the root's path is empty.
	Path     []int              `json:"path"`
	Context  geo.Tagged         `json:"context"`
	Material *style.MaterialRef `json:"material,omitempty"`
}

// FlatResult is the pre-order projection of a result tree. Item order is
// part of the export contract and is stable for identical inputs.
type FlatResult struct {
	Items []FlatItem `json:"items"`
}

// Flatten walks r in pre-order.
func Flatten(r *Result) *FlatResult {
	flat := &FlatResult{Items: []FlatItem{}}
	if r == nil {
		return flat
	}
	r.walk([]int{}, func(n *Result, path []int) {
		flat.Items = append(flat.Items, FlatItem{
			Builder:  n.Builder,
			Path:     path,
			Context:  geo.Tagged{Context: n.Context},
			Material: n.Material,
		})
	})
	return flat
}

// Placed returns the items that carry a material, in order.
func (f *FlatResult) Placed() []FlatItem {
	out := []FlatItem{}
	for _, it := range f.Items {
		if it.Material != nil {
			out = append(out, it)
		}
	}
	return out
}

// Materials returns the materials of the placed items, in order.
func (f *FlatResult) Materials() []style.MaterialRef {
	placed := f.Placed()
	out := make([]style.MaterialRef, len(placed))
	for i, it := range placed {
		out[i] = *it.Material
	}
	return out
}

// MaterialsToJSON encodes the placed items. This is the payload handed to
// the architect together with the generation seed.
func (f *FlatResult) MaterialsToJSON() ([]byte, error) {
	return json.Marshal(f.Placed())
}

// ToJSON encodes every item.
func (f *FlatResult) ToJSON() ([]byte, error) {
	return json.Marshal(f)
}

// DecodeFlat reverses FlatResult.ToJSON.
func DecodeFlat(data []byte) (*FlatResult, error) {
	var f FlatResult
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	if f.Items == nil {
		f.Items = []FlatItem{}
	}
	return &f, nil
}
