package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, configFile)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(t.TempDir())

	cfg, path, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if path != "" {
		t.Errorf("path = %q, want none", path)
	}
	if cfg.Project.Root != "." || cfg.Server.Addr != ":8080" || cfg.Architect.Timeout != 15*time.Second {
		t.Errorf("defaults = %+v", cfg)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
[project]
pack = "castle"
root = "/srv/packs"

[cache]
redis_url = "redis://localhost:6379/2"

[architect]
url = "wss://architect.example.com/socket.io/"
timeout = "5s"

[server]
addr = ":9090"
`)

	cfg, got, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if got != path {
		t.Errorf("path = %q, want %q", got, path)
	}
	if cfg.Project.Pack != "castle" || cfg.Project.Root != "/srv/packs" {
		t.Errorf("project = %+v", cfg.Project)
	}
	if cfg.Cache.RedisURL != "redis://localhost:6379/2" || cfg.Cache.Prefix != "worksite:" {
		t.Errorf("cache = %+v, want redis url and default prefix", cfg.Cache)
	}
	if cfg.Architect.Timeout != 5*time.Second || cfg.Architect.Namespace != "/" {
		t.Errorf("architect = %+v", cfg.Architect)
	}
	if cfg.Server.Addr != ":9090" || cfg.Server.Timeout != time.Minute {
		t.Errorf("server = %+v", cfg.Server)
	}
}

func TestLoadConfigSearchesXDG(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	t.Chdir(t.TempDir())
	dir := filepath.Join(xdg, appName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	want := writeConfig(t, dir, "[project]\npack = \"village\"\n")

	cfg, path, err := loadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if path != want || cfg.Project.Pack != "village" {
		t.Errorf("loadConfig() = %q %+v, want %q with pack village", path, cfg.Project, want)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		path string
		want string
	}{
		{"missing explicit file", filepath.Join(dir, "absent.toml"), "read config"},
		{"unknown key", writeConfig(t, t.TempDir(), "[project]\npak = \"castle\"\n"), "unknown keys"},
		{"malformed", writeConfig(t, t.TempDir(), "[project\n"), "read config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := loadConfig(tt.path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("loadConfig(%s) error = %v, want %q", tt.path, err, tt.want)
			}
		})
	}
}

func TestParseSeeds(t *testing.T) {
	tests := []struct {
		in      string
		want    []int64
		wantErr bool
	}{
		{in: "7", want: []int64{7}},
		{in: "1,2, 3", want: []int64{1, 2, 3}},
		{in: "1-4", want: []int64{1, 2, 3, 4}},
		{in: "-5,9", want: []int64{-5, 9}},
		{in: "5-1", wantErr: true},
		{in: "a", wantErr: true},
		{in: ",", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseSeeds(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseSeeds(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if len(got) != len(tt.want) {
			t.Errorf("parseSeeds(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("parseSeeds(%q) = %v, want %v", tt.in, got, tt.want)
				break
			}
		}
	}
}
