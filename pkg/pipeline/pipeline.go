// Package pipeline runs the load → build → render → export sequence shared
// by the CLI and the API server.
//
// # Stages
//
//  1. Load: decode the builder tree (inline or from a project structure)
//     and resolve the style it is built against
//  2. Build: evaluate the tree for a seed on a plane or prism context and
//     flatten the result
//  3. Render: encode the outputs requested in [Options.Formats]
//  4. Export: hand the flattened materials to the architect
//
// Builds are deterministic, so flattened results are cached by a key over
// (tree, context, style, seed).
//
// # Usage
//
//	runner := pipeline.NewRunner(builders.Registry(), proj, cache, nil, logger)
//	res, err := runner.Execute(ctx, pipeline.Options{
//	    Structure: "castle:keep",
//	    Style:     "castle:medieval",
//	    Seed:      42,
//	    Formats:   []string{pipeline.FormatMaterials},
//	})
//	payload := res.Artifacts[pipeline.FormatMaterials]
package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/worksite/pkg/builder"
	"github.com/matzehuels/worksite/pkg/cache"
	werrors "github.com/matzehuels/worksite/pkg/errors"
	"github.com/matzehuels/worksite/pkg/geo"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultSeed is used when Options.Seed is zero.
	DefaultSeed int64 = 42

	// DefaultWidth and DefaultDepth size the base plane.
	DefaultWidth = 16.0
	DefaultDepth = 16.0

	// DefaultConcurrency bounds parallel builds in BuildMany.
	DefaultConcurrency = 4
)

// Format constants for outputs.
const (
	FormatJSON      = "json"      // full result tree
	FormatFlat      = "flat"      // flattened result, every node
	FormatMaterials = "materials" // export payload
	FormatDOT       = "dot"       // result tree as Graphviz DOT
	FormatSVG       = "svg"       // result tree rendered by Graphviz
)

// ValidFormats is the set of supported output formats.
var ValidFormats = []string{FormatJSON, FormatFlat, FormatMaterials, FormatDOT, FormatSVG}

// treeFormats need the full result tree, which the cache does not keep.
var treeFormats = []string{FormatJSON, FormatDOT, FormatSVG}

// =============================================================================
// Options
// =============================================================================

// Options configures one pipeline run. It is also the API request body.
type Options struct {
	// Exactly one of Structure (a pack:location reference) or Tree (an inline
	// builder envelope) is required.
	Structure string          `json:"structure,omitempty"`
	Tree      json.RawMessage `json:"tree,omitempty"`

	// Style is an optional style reference. Without it every option must be
	// inline.
	Style string `json:"style,omitempty"`

	// Context. A positive Height builds on a prism, otherwise on a plane.
	Width     float64 `json:"width,omitempty"`
	Depth     float64 `json:"depth,omitempty"`
	Elevation float64 `json:"elevation,omitempty"`
	Height    float64 `json:"height,omitempty"`

	Seed     int64    `json:"seed,omitempty"`
	MaxDepth int      `json:"max_depth,omitempty"`
	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"`
	Refresh  bool     `json:"refresh,omitempty"`

	// Concurrency bounds BuildMany.
	Concurrency int `json:"-"`

	Logger *log.Logger `json:"-"`

	validated bool
}

// ValidateFormat checks that a format is supported.
func ValidateFormat(format string) error {
	if !slices.Contains(ValidFormats, format) {
		return werrors.New(werrors.ErrCodeInvalidInput, "invalid format: %q (must be one of: %v)", format, ValidFormats)
	}
	return nil
}

// ValidateFormats checks every format.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults checks required fields and applies defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	if err := o.ValidateForBuild(); err != nil {
		return err
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatMaterials}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks the tree source.
func (o *Options) ValidateForLoad() error {
	switch {
	case o.Structure == "" && len(o.Tree) == 0:
		return werrors.New(werrors.ErrCodeInvalidInput, "structure or tree is required")
	case o.Structure != "" && len(o.Tree) > 0:
		return werrors.New(werrors.ErrCodeInvalidInput, "structure and tree are mutually exclusive")
	}
	o.setLogger()
	return nil
}

// ValidateForBuild checks the context and applies build defaults.
func (o *Options) ValidateForBuild() error {
	if o.Width < 0 || o.Depth < 0 || o.Height < 0 {
		return werrors.New(werrors.ErrCodeInvalidInput, "context dimensions must not be negative")
	}
	if o.MaxDepth < 0 {
		return werrors.New(werrors.ErrCodeInvalidInput, "max_depth must not be negative")
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Depth == 0 {
		o.Depth = DefaultDepth
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.MaxDepth == 0 {
		o.MaxDepth = builder.DefaultMaxDepth
	}
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	o.setLogger()
	return nil
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Context returns the build context the options describe.
func (o *Options) Context() geo.Context {
	plane := geo.Plane{
		Rect: geo.Rect2{Size: geo.Vec2{X: o.Width, Y: o.Depth}},
		Z:    o.Elevation,
	}
	if o.Height > 0 {
		return geo.Prism{Base: plane, Height: o.Height}
	}
	return plane
}

// NeedsTree reports whether a requested format needs the full result tree.
func (o *Options) NeedsTree() bool {
	for _, f := range o.Formats {
		if slices.Contains(treeFormats, f) {
			return true
		}
	}
	return false
}

// BuildKeyOpts returns the cache key inputs for seed under this job.
func (o *Options) BuildKeyOpts(seed int64, styleKey string) (cache.BuildKeyOpts, error) {
	ctx, err := geo.MarshalContext(o.Context())
	if err != nil {
		return cache.BuildKeyOpts{}, fmt.Errorf("encode context: %w", err)
	}
	return cache.BuildKeyOpts{Seed: seed, Context: ctx, Style: styleKey, MaxDepth: o.MaxDepth}, nil
}

// =============================================================================
// Results
// =============================================================================

// Result is the output of Execute.
type Result struct {
	// Build is the single-seed build.
	Build *Build

	// Artifacts holds encoded outputs keyed by format.
	Artifacts map[string][]byte

	Stats Stats
}

// Stats records sizes and timings of a run.
type Stats struct {
	Nodes      int
	Placed     int
	CacheHit   bool
	LoadTime   time.Duration
	BuildTime  time.Duration
	RenderTime time.Duration
}
