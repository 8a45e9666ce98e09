// Package pkg provides the core libraries of worksite, a seeded evaluation
// engine for builder trees.
//
// # Overview
//
// A builder tree describes how to subdivide a region of space: each node
// consumes a context (a plane or a prism), draws its options from seeded
// distributions or style slots, and hands derived contexts to its children.
// Evaluating the same tree with the same style, context and seed always
// yields the same result.
//
// # Architecture
//
// The typical data flow:
//
//	structure (builder tree JSON) + style
//	         ↓
//	    [builder] registry (decode the tree)
//	         ↓
//	    [style] generation (freeze option slots for the seed)
//	         ↓
//	    [builder] Build (evaluate against a context)
//	         ↓
//	    flattened materials → cache, export, API
//
// # Main Packages
//
// ## Engine
//
//   - [random]: seeds and serializable distributions
//   - [option]: inline or style-referenced option values
//   - [geo]: planes, prisms and the contexts builders consume
//   - [builder]: the builder interface, build template, results and registry
//   - [builders]: the concrete builder types
//   - [style]: option tables, inheritance and per-seed generations
//
// ## Infrastructure
//
//   - [project]: data packs of styles and structures on disk or in MongoDB
//   - [cache]: build result caches (file, Redis)
//   - [export]: delivery of results to the architect over socket.io
//   - [render/treeviz]: Graphviz diagrams of trees and results
//   - [pipeline]: load → build → render → export orchestration
//   - [observability]: instrumentation hooks
//
// ## Support
//
//   - [errors]: structured error codes and validation
//   - [buildinfo]: version information set at link time
//
// # Quick Start
//
//	tree, _ := builders.Registry().FromJSON(data)
//	plane := geo.Plane{Rect: geo.Rect2{Size: geo.Vec2{X: 16, Y: 16}}}
//	res, _ := builder.Build(tree, plane, style.Empty(), random.NewSeed(42))
//	materials := builder.Flatten(res).Materials()
//
// [random]: https://pkg.go.dev/github.com/matzehuels/worksite/pkg/random
// [option]: https://pkg.go.dev/github.com/matzehuels/worksite/pkg/option
// [geo]: https://pkg.go.dev/github.com/matzehuels/worksite/pkg/geo
// [builder]: https://pkg.go.dev/github.com/matzehuels/worksite/pkg/builder
// [builders]: https://pkg.go.dev/github.com/matzehuels/worksite/pkg/builders
// [style]: https://pkg.go.dev/github.com/matzehuels/worksite/pkg/style
// [project]: https://pkg.go.dev/github.com/matzehuels/worksite/pkg/project
// [cache]: https://pkg.go.dev/github.com/matzehuels/worksite/pkg/cache
// [export]: https://pkg.go.dev/github.com/matzehuels/worksite/pkg/export
// [render/treeviz]: https://pkg.go.dev/github.com/matzehuels/worksite/pkg/render/treeviz
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/worksite/pkg/pipeline
// [observability]: https://pkg.go.dev/github.com/matzehuels/worksite/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/worksite/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/worksite/pkg/buildinfo
package pkg
