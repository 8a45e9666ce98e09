package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// configFile is the config file name, both project-local and in the XDG
// config directory.
const configFile = appName + ".toml"

// Config is the worksite.toml file. Every field is optional.
type Config struct {
	Project   ProjectConfig   `toml:"project"`
	Cache     CacheConfig     `toml:"cache"`
	Architect ArchitectConfig `toml:"architect"`
	Server    ServerConfig    `toml:"server"`
}

// ProjectConfig locates the data packs.
type ProjectConfig struct {
	Pack          string `toml:"pack"`
	Root          string `toml:"root"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
}

// CacheConfig selects the build cache. A Redis URL wins over the directory.
type CacheConfig struct {
	Dir      string `toml:"dir"`
	RedisURL string `toml:"redis_url"`
	Prefix   string `toml:"prefix"`
}

// ArchitectConfig points at the architect socket.io endpoint.
type ArchitectConfig struct {
	URL       string        `toml:"url"`
	Namespace string        `toml:"namespace"`
	Insecure  bool          `toml:"insecure"`
	Timeout   time.Duration `toml:"timeout"`
}

// ServerConfig configures "worksite serve".
type ServerConfig struct {
	Addr    string        `toml:"addr"`
	Timeout time.Duration `toml:"timeout"`
}

func defaultConfig() Config {
	return Config{
		Project:   ProjectConfig{Root: ".", MongoDatabase: appName},
		Cache:     CacheConfig{Prefix: appName + ":"},
		Architect: ArchitectConfig{Namespace: "/", Timeout: 15 * time.Second},
		Server:    ServerConfig{Addr: ":8080", Timeout: 60 * time.Second},
	}
}

// loadConfig reads path over the defaults. An empty path searches
// ./worksite.toml and then the XDG config directory; a missing file is not
// an error unless it was named explicitly.
func loadConfig(path string) (Config, string, error) {
	cfg := defaultConfig()
	explicit := path != ""
	if !explicit {
		path = findConfig()
		if path == "" {
			return cfg, "", nil
		}
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, "", nil
		}
		return cfg, path, fmt.Errorf("read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, path, fmt.Errorf("config %s: unknown keys %v", path, undecoded)
	}
	return cfg, path, nil
}

func findConfig() string {
	if _, err := os.Stat(configFile); err == nil {
		return configFile
	}
	dir, err := configDir()
	if err != nil {
		return ""
	}
	p := filepath.Join(dir, configFile)
	if _, err := os.Stat(p); err != nil {
		return ""
	}
	return p
}

// configDir returns the config directory using XDG standard (~/.config/worksite/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}
