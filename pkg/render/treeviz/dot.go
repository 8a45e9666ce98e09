package treeviz

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/worksite/pkg/builder"
	"github.com/matzehuels/worksite/pkg/option"
)

// Options configures diagram generation.
type Options struct {
	// Detailed adds options and palettes to labels.
	Detailed bool
}

const header = `digraph G {
  rankdir=TB;
  bgcolor="transparent";
  node [shape=box, style="rounded,filled", fillcolor=white, fontname="Helvetica", fontsize=14, margin="0.2,0.1"];
  edge [fontname="Helvetica", fontsize=10];
  ranksep=0.5;
  nodesep=0.3;

`

// ToDOT converts a builder tree to Graphviz DOT.
func ToDOT(b builder.Builder, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString(header)
	writeBuilder(&buf, b, "n", 0, opts)
	buf.WriteString("}\n")
	return buf.String()
}

func writeBuilder(buf *bytes.Buffer, b builder.Builder, id string, depth int, opts Options) {
	if b == nil || depth > builder.DefaultMaxDepth {
		return
	}
	lines := []string{b.Type()}
	if opts.Detailed {
		lines = append(lines, describeParams(b.Options())...)
		if ids := b.Palette().IDs(); len(ids) > 0 {
			lines = append(lines, "materials: "+strings.Join(ids, ", "))
		}
	}
	fmt.Fprintf(buf, "  %q [label=%q];\n", id, strings.Join(lines, "\n"))

	for i, child := range b.Children() {
		childID := fmt.Sprintf("%s_%d", id, i)
		writeBuilder(buf, child, childID, depth+1, opts)

		label := []string{strconv.Itoa(i)}
		if opts.Detailed {
			label = append(label, describeParams(b.ChildOptions(i))...)
		}
		fmt.Fprintf(buf, "  %q -> %q [label=%q];\n", id, childID, strings.Join(label, "\n"))
	}
}

// ResultDOT converts a build result to Graphviz DOT. Nodes without a
// material are drawn grey.
func ResultDOT(r *builder.Result, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString(header)
	writeResult(&buf, r, "n", opts)
	buf.WriteString("}\n")
	return buf.String()
}

func writeResult(buf *bytes.Buffer, r *builder.Result, id string, opts Options) {
	lines := []string{r.Builder}
	if r.Context != nil {
		lines = append(lines, string(r.Context.Kind()))
	}
	if r.Material != nil {
		lines = append(lines, r.Material.ID)
	}
	if opts.Detailed {
		for _, name := range slices.Sorted(maps.Keys(r.Options)) {
			lines = append(lines, fmt.Sprintf("%s: %v", name, r.Options[name]))
		}
	}
	attrs := fmt.Sprintf("label=%q", strings.Join(lines, "\n"))
	if r.Material == nil {
		attrs += `, fillcolor=lightgrey`
	}
	fmt.Fprintf(buf, "  %q [%s];\n", id, attrs)

	for i, child := range r.Children {
		childID := fmt.Sprintf("%s_%d", id, i)
		writeResult(buf, child, childID, opts)
		fmt.Fprintf(buf, "  %q -> %q;\n", id, childID)
	}
}

func describeParams(p option.Params) []string {
	var out []string
	for _, name := range p.Names() {
		out = append(out, name+": "+describe(p[name]))
	}
	return out
}

// describe renders an option as @ref or its random kind.
func describe(p option.Param) string {
	data, err := p.MarshalJSON()
	if err != nil {
		return "?"
	}
	var w struct {
		Ref    string `json:"ref"`
		Random struct {
			Type string `json:"type"`
		} `json:"random"`
	}
	if json.Unmarshal(data, &w) != nil {
		return "?"
	}
	if w.Ref != "" {
		return "@" + w.Ref
	}
	return w.Random.Type
}

// RenderSVG renders DOT source to SVG.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the root tag so the drawing scales from the
// origin.
func normalizeViewBox(svg []byte) []byte {
	m := viewBoxRe.FindSubmatch(svg)
	if m == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(m[3]), 64)
	h, _ := strconv.ParseFloat(string(m[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
