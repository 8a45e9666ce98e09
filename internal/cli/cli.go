package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/worksite/pkg/buildinfo"
	"github.com/matzehuels/worksite/pkg/builders"
	"github.com/matzehuels/worksite/pkg/cache"
	"github.com/matzehuels/worksite/pkg/export"
	"github.com/matzehuels/worksite/pkg/pipeline"
	"github.com/matzehuels/worksite/pkg/project"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "worksite"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	pack       string
	cfg        Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level), cfg: defaultConfig()}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Worksite builds structures from seeded builder trees",
		Long:         `Worksite evaluates builder trees against a style and a seed, producing the same placed materials for the same inputs, and hands them to the architect.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ./worksite.toml or ~/.config/worksite/worksite.toml)")
	root.PersistentFlags().StringVar(&c.pack, "pack", "", "project data pack (overrides [project] pack)")

	root.AddCommand(c.buildCommand())
	root.AddCommand(c.buildersCommand())
	root.AddCommand(c.listCommand())
	root.AddCommand(c.visualizeCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig() error {
	cfg, path, err := loadConfig(c.configPath)
	if err != nil {
		return err
	}
	if c.pack != "" {
		cfg.Project.Pack = c.pack
	}
	c.cfg = cfg
	if path != "" {
		c.Logger.Debug("loaded config", "path", path)
	}
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. The returned close
// function releases the cache and the project store.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, func(), error) {
	proj, closeProject, err := c.newProject(ctx)
	if err != nil {
		return nil, nil, err
	}
	ch, err := c.newCache(ctx, noCache)
	if err != nil {
		closeProject()
		return nil, nil, err
	}
	runner := pipeline.NewRunner(builders.Registry(), proj, ch, nil, c.Logger)
	return runner, func() {
		_ = runner.Close()
		closeProject()
	}, nil
}

// newProject opens the configured pack. Without a pack only inline trees
// can be built, and the project is nil.
func (c *CLI) newProject(ctx context.Context) (*project.Project, func(), error) {
	pc := c.cfg.Project
	if pc.Pack == "" {
		return nil, func() {}, nil
	}
	if pc.MongoURI != "" {
		store, err := project.NewMongoStore(ctx, pc.MongoURI, pc.MongoDatabase)
		if err != nil {
			return nil, nil, err
		}
		proj, err := project.Open(store, pc.Pack)
		if err != nil {
			_ = store.Close(ctx)
			return nil, nil, err
		}
		c.Logger.Debug("opened project", "pack", pc.Pack, "store", "mongo", "database", pc.MongoDatabase)
		return proj, func() { _ = store.Close(context.Background()) }, nil
	}

	store, err := project.NewFileStore(pc.Root)
	if err != nil {
		return nil, nil, err
	}
	proj, err := project.Open(store, pc.Pack)
	if err != nil {
		return nil, nil, err
	}
	c.Logger.Debug("opened project", "pack", pc.Pack, "store", "file", "root", pc.Root)
	return proj, func() {}, nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	cc := c.cfg.Cache
	switch {
	case noCache:
		return cache.NewNullCache(), nil
	case cc.RedisURL != "":
		return cache.NewRedisCache(ctx, cc.RedisURL, cc.Prefix)
	}
	dir, err := c.cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

func (c *CLI) newExporter() (*export.Exporter, error) {
	ac := c.cfg.Architect
	if ac.URL == "" {
		return nil, fmt.Errorf("no architect configured: set [architect] url in %s", configFile)
	}
	ch, err := export.NewSocketChannel(export.SocketOptions{
		URL:                ac.URL,
		Namespace:          ac.Namespace,
		InsecureSkipVerify: ac.Insecure,
		ConnectTimeout:     ac.Timeout,
		Logger:             c.Logger,
	})
	if err != nil {
		return nil, err
	}
	return export.New(ch, c.Logger), nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory, or the XDG default.
func (c *CLI) cacheDir() (string, error) {
	if c.cfg.Cache.Dir != "" {
		return c.cfg.Cache.Dir, nil
	}
	return cacheDir()
}

// cacheDir returns the cache directory using XDG standard (~/.cache/worksite/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Flag Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatMaterials}
	}
	return strings.Split(s, ",")
}

// parseSeeds parses a comma-separated seed list. Ranges like 1-5 are
// inclusive.
func parseSeeds(s string) ([]int64, error) {
	var seeds []int64
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lo, hi, isRange := strings.Cut(part, "-")
		if isRange && lo != "" {
			from, err := strconv.ParseInt(lo, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid seed range %q", part)
			}
			to, err := strconv.ParseInt(hi, 10, 64)
			if err != nil || to < from {
				return nil, fmt.Errorf("invalid seed range %q", part)
			}
			for v := from; v <= to; v++ {
				seeds = append(seeds, v)
			}
			continue
		}
		v, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid seed %q", part)
		}
		seeds = append(seeds, v)
	}
	if len(seeds) == 0 {
		return nil, fmt.Errorf("no seeds in %q", s)
	}
	return seeds, nil
}
