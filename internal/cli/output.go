package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/worksite/pkg/pipeline"
)

// formatExt maps output formats to file extensions.
var formatExt = map[string]string{
	pipeline.FormatJSON:      ".json",
	pipeline.FormatFlat:      ".flat.json",
	pipeline.FormatMaterials: ".materials.json",
	pipeline.FormatDOT:       ".dot",
	pipeline.FormatSVG:       ".svg",
}

// knownExts lists the extensions of formatExt, longest first.
var knownExts = []string{".materials.json", ".flat.json", ".json", ".dot", ".svg"}

// basePath derives the base output path. Without output it is name in the
// working directory; an output with a known format extension loses it.
func basePath(output, name string) string {
	if output == "" {
		return sanitizeName(name)
	}
	for _, ext := range knownExts {
		if trimmed, ok := strings.CutSuffix(output, ext); ok {
			return trimmed
		}
	}
	return output
}

// sanitizeName turns a structure reference or file path into a file name.
func sanitizeName(name string) string {
	name = strings.TrimSuffix(filepath.Base(name), ".json")
	name = strings.NewReplacer(":", "_", "/", "_").Replace(name)
	if name == "" || name == "." {
		return "build"
	}
	return name
}

type artifactWrite struct {
	artifacts map[string][]byte
	formats   []string
	output    string // "-" writes a single artifact to w
	name      string // base name when output is empty
	suffix    string // appended to the base name, e.g. "_7" per seed
}

// writeArtifacts writes each artifact to its own file and returns the
// paths written. A single format with an explicit output path is written
// to exactly that path.
func writeArtifacts(w io.Writer, p artifactWrite) ([]string, error) {
	if p.output == "-" {
		if len(p.formats) != 1 {
			return nil, fmt.Errorf("writing to stdout needs exactly one format, got %d", len(p.formats))
		}
		_, err := w.Write(p.artifacts[p.formats[0]])
		return nil, err
	}

	if len(p.formats) == 1 && p.output != "" && p.suffix == "" {
		if err := writeFile(p.output, p.artifacts[p.formats[0]]); err != nil {
			return nil, err
		}
		return []string{p.output}, nil
	}

	base := basePath(p.output, p.name) + p.suffix
	paths := make([]string, 0, len(p.formats))
	for _, format := range p.formats {
		path := base + formatExt[format]
		if err := writeFile(path, p.artifacts[format]); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
