package option

import (
	"encoding/json"
	"sort"

	werrors "github.com/matzehuels/worksite/pkg/errors"
	"github.com/matzehuels/worksite/pkg/random"
)

// Param is a type-erased Option, used where a builder's parameters are
// handled generically (resolution, serialization).
type Param interface {
	IsRef() bool
	Resolve(table Table, seed random.Seed) (any, error)
	json.Marshaler
}

var _ Param = Option[float64]{}

// Params maps parameter names to options.
type Params map[string]Param

// Names returns the parameter names in sorted order.
func (p Params) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Refs returns the sorted names of the style slots the parameters refer to.
func (p Params) Refs() []string {
	seen := make(map[string]bool)
	var refs []string
	for _, name := range p.Names() {
		o, ok := p[name].(interface{ RefName() (string, bool) })
		if !ok {
			continue
		}
		if ref, ok := o.RefName(); ok && !seen[ref] {
			seen[ref] = true
			refs = append(refs, ref)
		}
	}
	sort.Strings(refs)
	return refs
}

// Fields is an options object split into raw fields.
type Fields map[string]json.RawMessage

// ParseFields splits an options object. Empty input and null yield no fields.
func ParseFields(data []byte) (Fields, error) {
	if len(data) == 0 || string(data) == "null" {
		return Fields{}, nil
	}
	var f Fields
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, werrors.Wrap(werrors.ErrCodeInvalidJSON, err, "decode options object")
	}
	if f == nil {
		f = Fields{}
	}
	return f, nil
}

// Field decodes the option called name, or returns def when it is absent.
func Field[T any](fields Fields, name string, def Option[T]) (Option[T], error) {
	raw, ok := fields[name]
	if !ok {
		return def, nil
	}
	var o Option[T]
	if err := json.Unmarshal(raw, &o); err != nil {
		return Option[T]{}, werrors.Wrap(werrors.ErrCodeInvalidOption, err, "option %q", name)
	}
	return o, nil
}
