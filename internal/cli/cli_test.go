package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const (
	testStyle = `{"rules":{
		"wall_height":{"type":"number","random":{"type":"range","min":4,"max":8}}}}`

	testStructure = `{"dependency":{"options":["wall_height"]},"builder":{
		"name":"plane_to_prism",
		"options":{"height":{"ref":"wall_height"}},
		"children":[{"builder":{"name":"empty","materials":["stone"]}}]}}`

	testTree = `{"name":"plane_to_prism",
		"options":{"height":{"random":{"type":"constant","value":3}}},
		"children":[{"builder":{"name":"empty","materials":["oak_planks"]}}]}`
)

// workspace lays out a castle pack and a config pointing at it.
func workspace(t *testing.T) (dir, config string) {
	t.Helper()
	dir = t.TempDir()
	files := map[string]string{
		"castle/data_pack/styles/medieval.json":  testStyle,
		"castle/data_pack/structures/keep.json": testStructure,
		"tower.json":                            testTree,
	}
	for name, body := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	config = writeConfig(t, dir, strings.Join([]string{
		"[project]",
		"pack = \"castle\"",
		"root = " + quote(dir),
		"[cache]",
		"dir = " + quote(filepath.Join(dir, "cache")),
	}, "\n"))
	return dir, config
}

func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

// run executes the root command and returns what it wrote to its output.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	prev := stdout
	stdout = io.Discard
	defer func() { stdout = prev }()

	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestBuildersCommand(t *testing.T) {
	_, config := workspace(t)
	out, err := run(t, "--config", config, "builders")
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"empty", "grid_rect", "plane_to_prism"} {
		if !strings.Contains(out, name+"\n") {
			t.Errorf("builders output %q is missing %s", out, name)
		}
	}
}

func TestListCommand(t *testing.T) {
	_, config := workspace(t)
	out, err := run(t, "--config", config, "ls", "structures")
	if err != nil {
		t.Fatal(err)
	}
	if out != "keep\n" {
		t.Errorf("ls structures = %q, want keep", out)
	}
	if _, err := run(t, "--config", config, "ls", "rooms"); err == nil {
		t.Error("ls with an unknown kind should fail")
	}
}

func TestBuildStructureToStdout(t *testing.T) {
	_, config := workspace(t)
	args := []string{"--config", config, "build", "keep", "--style", "medieval", "--seed", "7", "-o", "-"}

	first, err := run(t, args...)
	if err != nil {
		t.Fatal(err)
	}
	var materials []json.RawMessage
	if err := json.Unmarshal([]byte(first), &materials); err != nil {
		t.Fatalf("stdout is not a materials array: %v\n%s", err, first)
	}
	if len(materials) != 1 || !strings.Contains(first, "stone") {
		t.Errorf("materials = %s, want one stone", first)
	}

	second, err := run(t, append(args, "--refresh")...)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("same seed built differently:\n%s\n%s", first, second)
	}
}

func TestBuildTreeToFiles(t *testing.T) {
	dir, config := workspace(t)
	base := filepath.Join(dir, "out", "tower")

	_, err := run(t, "--config", config, "build", "--tree", filepath.Join(dir, "tower.json"), "-f", "materials,dot", "-o", base)
	if err != nil {
		t.Fatal(err)
	}
	for _, ext := range []string{".materials.json", ".dot"} {
		data, err := os.ReadFile(base + ext)
		if err != nil {
			t.Fatalf("expected %s: %v", base+ext, err)
		}
		if len(data) == 0 {
			t.Errorf("%s is empty", base+ext)
		}
	}
}

func TestBuildManySeeds(t *testing.T) {
	dir, config := workspace(t)
	base := filepath.Join(dir, "batch", "keep")

	_, err := run(t, "--config", config, "build", "keep", "--style", "medieval", "--seeds", "1-3", "-o", base)
	if err != nil {
		t.Fatal(err)
	}
	for _, seed := range []string{"1", "2", "3"} {
		if _, err := os.Stat(base + "_" + seed + ".materials.json"); err != nil {
			t.Errorf("missing output for seed %s: %v", seed, err)
		}
	}

	if _, err := run(t, "--config", config, "build", "keep", "--style", "medieval", "--seeds", "1,2", "-f", "svg"); err == nil {
		t.Error("tree formats should be rejected with --seeds")
	}
}

func TestBuildErrors(t *testing.T) {
	_, config := workspace(t)
	tests := []struct {
		name string
		args []string
	}{
		{"no source", []string{"build"}},
		{"bad format", []string{"build", "keep", "-f", "png"}},
		{"missing style slot", []string{"build", "keep", "-o", "-"}},
		{"unknown structure", []string{"build", "gatehouse", "-o", "-"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := run(t, append([]string{"--config", config}, tt.args...)...); err == nil {
				t.Errorf("build %v should fail", tt.args)
			}
		})
	}
}

func TestVisualizeCommand(t *testing.T) {
	dir, config := workspace(t)
	out, err := run(t, "--config", config, "visualize", "--tree", filepath.Join(dir, "tower.json"), "-f", "dot", "--detailed", "-o", "-")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "digraph") || !strings.Contains(out, "plane_to_prism") {
		t.Errorf("visualize output = %q", out)
	}
}

func TestExportDryRun(t *testing.T) {
	_, config := workspace(t)
	out, err := run(t, "--config", config, "export", "keep", "--style", "medieval", "--seed", "3", "--dry-run")
	if err != nil {
		t.Fatal(err)
	}
	var msg struct {
		Channel string `json:"channel"`
		Data    struct {
			Seed int64 `json:"seed"`
		} `json:"data"`
	}
	if err := json.Unmarshal([]byte(out), &msg); err != nil {
		t.Fatalf("dry run output is not a channel message: %v\n%s", err, out)
	}
	if !strings.HasPrefix(msg.Channel, "export:") || msg.Data.Seed != 3 {
		t.Errorf("channel message = %+v", msg)
	}
}

func TestExportWithoutArchitect(t *testing.T) {
	_, config := workspace(t)
	if _, err := run(t, "--config", config, "export", "keep", "--style", "medieval"); err == nil {
		t.Error("export without an architect URL should fail")
	}
}

func TestCachePathCommand(t *testing.T) {
	dir, config := workspace(t)
	out, err := run(t, "--config", config, "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != filepath.Join(dir, "cache") {
		t.Errorf("cache path = %q", out)
	}
}
