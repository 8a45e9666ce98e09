package style

import (
	"bytes"
	"encoding/json"

	werrors "github.com/matzehuels/worksite/pkg/errors"
	"github.com/matzehuels/worksite/pkg/random"
)

// MaterialRef names a material understood by the architect, optionally with
// extra attributes (e.g. block states). It encodes as a bare string when it
// has no attributes.
type MaterialRef struct {
	ID         string         `json:"id"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// Material returns a reference without attributes.
func Material(id string) MaterialRef {
	return MaterialRef{ID: id}
}

// MarshalJSON implements json.Marshaler.
func (m MaterialRef) MarshalJSON() ([]byte, error) {
	if len(m.Attributes) == 0 {
		return json.Marshal(m.ID)
	}
	type plain MaterialRef
	return json.Marshal(plain(m))
}

// UnmarshalJSON accepts "stone" or {"id": "stone", "attributes": {...}}.
func (m *MaterialRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*m = MaterialRef{ID: id}
		return nil
	}
	type plain MaterialRef
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return werrors.Wrap(werrors.ErrCodeInvalidJSON, err, "decode material")
	}
	if p.ID == "" {
		return werrors.New(werrors.ErrCodeInvalidJSON, "material id cannot be empty")
	}
	*m = MaterialRef(p)
	return nil
}

// Palette is an ordered list of candidate materials. A node with a palette
// picks one of them uniformly per evaluation.
type Palette []MaterialRef

// Pick returns one material drawn with seed. An empty palette yields none.
func (p Palette) Pick(seed random.Seed) (MaterialRef, bool) {
	if len(p) == 0 {
		return MaterialRef{}, false
	}
	return p[seed.Intn(len(p))], true
}

// IDs returns the material ids in order.
func (p Palette) IDs() []string {
	ids := make([]string, len(p))
	for i, m := range p {
		ids[i] = m.ID
	}
	return ids
}
