package builder

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	werrors "github.com/matzehuels/worksite/pkg/errors"
	"github.com/matzehuels/worksite/pkg/option"
	"github.com/matzehuels/worksite/pkg/style"
)

// Envelope is the generic persisted form of a builder:
//
//	{"name": "grid_rect", "options": {...}, "children": [{"builder": {...}, "options": {...}}], "materials": [...]}
//
// Options, children and materials are omitted when empty.
type Envelope struct {
	Name      string          `json:"name"`
	Options   json.RawMessage `json:"options,omitempty"`
	Children  []ChildEnvelope `json:"children,omitempty"`
	Materials style.Palette   `json:"materials,omitempty"`
}

// ChildEnvelope is one persisted child slot.
type ChildEnvelope struct {
	Builder json.RawMessage `json:"builder"`
	Options json.RawMessage `json:"options,omitempty"`
}

// Factory reconstructs a builder from its envelope. Child envelopes are
// parsed recursively through r.
type Factory func(r *Registry, env Envelope) (Builder, error)

// OptionsParser decodes an options object into a Slot.
type OptionsParser[O Slot] func(fields option.Fields) (O, error)

// Registry maps type names to factories.
//
// A registry is populated once during startup, then sealed. Registering a
// duplicate name, an invalid name or registering after Seal panics: these
// are programming errors that must surface before any tree is loaded.
// Lookups are safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	sealed    bool
}

// NewRegistry returns an empty, unsealed registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a leaf factory with custom parsing.
func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		panic(fmt.Sprintf("builder registry: cannot register '%s' after the registry is sealed", name))
	}
	if err := werrors.ValidateName(name); err != nil {
		panic(fmt.Sprintf("builder registry: invalid name '%s': %v", name, err))
	}
	if _, exists := r.factories[name]; exists {
		panic(fmt.Sprintf("builder registry: builder type '%s' already registered", name))
	}
	r.factories[name] = f
}

// Seal freezes the registry. Further registrations panic.
func (r *Registry) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed = true
}

// Sealed reports whether Seal was called.
func (r *Registry) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[name]
	return ok
}

// Names returns the registered type names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FromJSON reconstructs a builder tree. It dispatches strictly on the
// envelope name: an unknown name fails with ErrUnknownBuilderType and
// nothing is constructed.
func (r *Registry) FromJSON(data []byte) (Builder, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, werrors.Wrap(werrors.ErrCodeInvalidJSON, err, "decode builder envelope")
	}
	return r.FromEnvelope(env)
}

// FromEnvelope reconstructs a builder from a decoded envelope.
func (r *Registry) FromEnvelope(env Envelope) (Builder, error) {
	if env.Name == "" {
		return nil, werrors.New(werrors.ErrCodeInvalidJSON, "builder envelope has no name")
	}
	r.mu.RLock()
	f, ok := r.factories[env.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, werrors.UnknownBuilderType(env.Name)
	}
	return f(r, env)
}

// RegisterSingleChild registers a node with exactly one child at
// children[0] and container options parsed by parse.
func RegisterSingleChild[O Slot](r *Registry, name string, parse OptionsParser[O], newNode func(child Builder, opts O) Builder) {
	r.Register(name, func(r *Registry, env Envelope) (Builder, error) {
		if len(env.Children) != 1 {
			return nil, werrors.New(werrors.ErrCodeInvalidInput, "%s: want exactly 1 child, got %d", name, len(env.Children))
		}
		opts, err := parseOptions(name, env.Options, parse)
		if err != nil {
			return nil, err
		}
		child, err := r.FromJSON(env.Children[0].Builder)
		if err != nil {
			return nil, err
		}
		return newNode(child, opts), nil
	})
}

// RegisterMultiChild registers a node with an ordered list of children,
// each with options parsed by parseChild. A nil parseChild accepts only
// children without options.
func RegisterMultiChild[C Slot](r *Registry, name string, parseChild OptionsParser[C], newNode func(children []Child[C]) Builder) {
	r.Register(name, func(r *Registry, env Envelope) (Builder, error) {
		children, err := parseChildren(r, name, env.Children, parseChild)
		if err != nil {
			return nil, err
		}
		return newNode(children), nil
	})
}

// RegisterMultiChildOptions registers a multi-child node that also carries
// container options.
func RegisterMultiChildOptions[O, C Slot](r *Registry, name string, parse OptionsParser[O], parseChild OptionsParser[C], newNode func(opts O, children []Child[C]) Builder) {
	r.Register(name, func(r *Registry, env Envelope) (Builder, error) {
		opts, err := parseOptions(name, env.Options, parse)
		if err != nil {
			return nil, err
		}
		children, err := parseChildren(r, name, env.Children, parseChild)
		if err != nil {
			return nil, err
		}
		return newNode(opts, children), nil
	})
}

func parseOptions[O Slot](name string, data json.RawMessage, parse OptionsParser[O]) (O, error) {
	var zero O
	fields, err := option.ParseFields(data)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", name, err)
	}
	if parse == nil {
		if len(fields) > 0 {
			return zero, werrors.New(werrors.ErrCodeInvalidOption, "%s takes no options", name)
		}
		return zero, nil
	}
	opts, err := parse(fields)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", name, err)
	}
	return opts, nil
}

func parseChildren[C Slot](r *Registry, name string, envs []ChildEnvelope, parse OptionsParser[C]) ([]Child[C], error) {
	children := make([]Child[C], 0, len(envs))
	for i, ce := range envs {
		if len(bytes.TrimSpace(ce.Builder)) == 0 {
			return nil, werrors.New(werrors.ErrCodeInvalidJSON, "%s: child %d has no builder", name, i)
		}
		b, err := r.FromJSON(ce.Builder)
		if err != nil {
			return nil, err
		}
		opts, err := parseOptions(fmt.Sprintf("%s child %d", name, i), ce.Options, parse)
		if err != nil {
			return nil, err
		}
		children = append(children, Child[C]{Builder: b, Options: opts})
	}
	return children, nil
}

// Marshal encodes b and its subtree as envelopes.
func Marshal(b Builder) ([]byte, error) {
	env, err := ToEnvelope(b)
	if err != nil {
		return nil, err
	}
	return json.Marshal(env)
}

// ToEnvelope converts b to its persisted form.
func ToEnvelope(b Builder) (Envelope, error) {
	return toEnvelope(b, 0)
}

func toEnvelope(b Builder, depth int) (Envelope, error) {
	if b == nil {
		return Envelope{}, werrors.New(werrors.ErrCodeInvalidInput, "nil builder")
	}
	if depth > DefaultMaxDepth {
		return Envelope{}, werrors.CyclicBuilderTree(DefaultMaxDepth)
	}

	env := Envelope{Name: b.Type(), Materials: b.Palette()}
	opts, err := marshalParams(b.Options())
	if err != nil {
		return Envelope{}, fmt.Errorf("%s: %w", b.Type(), err)
	}
	env.Options = opts

	for i, child := range b.Children() {
		ce, err := toEnvelope(child, depth+1)
		if err != nil {
			return Envelope{}, err
		}
		raw, err := json.Marshal(ce)
		if err != nil {
			return Envelope{}, err
		}
		childOpts, err := marshalParams(b.ChildOptions(i))
		if err != nil {
			return Envelope{}, fmt.Errorf("%s child %d: %w", b.Type(), i, err)
		}
		env.Children = append(env.Children, ChildEnvelope{Builder: raw, Options: childOpts})
	}
	return env, nil
}

func marshalParams(p option.Params) (json.RawMessage, error) {
	if len(p) == 0 {
		return nil, nil
	}
	return json.Marshal(p)
}
