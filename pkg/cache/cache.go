// Package cache stores evaluated builds and rendered artifacts.
//
// A [Cache] is a byte store with per-entry TTL. Keys come from a [Keyer]
// that hashes the inputs which fully determine an output: the serialized
// tree, the context, the style table and the seed. Because evaluation is
// deterministic, a hit can be returned in place of a rebuild.
//
// Implementations:
//   - [FileCache]: one JSON file per entry under a directory (CLI)
//   - [RedisCache]: shared cache for the API server
//   - [NullCache]: never stores anything (--no-cache, tests)
package cache

import (
	"context"
	"time"
)

// Cache is a key/value byte store with expiration.
type Cache interface {
	// Get returns the stored bytes and whether the key was present.
	// A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the underlying resources.
	Close() error
}

// Default TTLs per entry kind.
const (
	BuildTTL  = 7 * 24 * time.Hour
	RenderTTL = 30 * 24 * time.Hour
)

// BuildKeyOpts are the inputs besides the tree that determine a build.
type BuildKeyOpts struct {
	Seed    int64  `json:"seed"`
	Context []byte `json:"context"`
	Style   string `json:"style,omitempty"`

	// MaxDepth is the depth guard the build ran under.
	MaxDepth int `json:"max_depth,omitempty"`
}

// Keyer derives cache keys from build inputs.
type Keyer interface {
	// BuildKey addresses the flattened result of evaluating tree.
	BuildKey(tree []byte, opts BuildKeyOpts) string

	// RenderKey addresses a rendering of tree in the given format.
	RenderKey(tree []byte, format string) string
}

// DefaultKeyer hashes inputs with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// BuildKey returns "build:<sha256>".
func (DefaultKeyer) BuildKey(tree []byte, opts BuildKeyOpts) string {
	return hashKey("build", Hash(tree), opts)
}

// RenderKey returns "render:<sha256>".
func (DefaultKeyer) RenderKey(tree []byte, format string) string {
	return hashKey("render", Hash(tree), format)
}
