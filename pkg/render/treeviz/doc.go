// Package treeviz renders builder trees and build results as node-link
// diagrams using Graphviz.
//
// # Usage
//
// Convert a tree to DOT, then render to SVG:
//
//	dot := treeviz.ToDOT(tree, treeviz.Options{Detailed: true})
//	svg, err := treeviz.RenderSVG(ctx, dot)
//
// A build result can be drawn the same way; its nodes carry the context
// kind and the picked material:
//
//	dot := treeviz.ResultDOT(result, treeviz.Options{})
//
// # Labels
//
// Node labels show the builder type. With Detailed set they also list the
// builder's options: a reference is written as @name, an inline source by its
// random kind. Edges are numbered by child index and list slot options.
package treeviz
