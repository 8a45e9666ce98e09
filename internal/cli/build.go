package cli

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/matzehuels/worksite/pkg/pipeline"
)

type buildFlags struct {
	treeFile string
	seeds    string
	formats  string
	output   string
	noCache  bool
}

// buildCommand creates the build command.
func (c *CLI) buildCommand() *cobra.Command {
	var flags buildFlags
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "build [structure]",
		Short: "Evaluate a builder tree for one or many seeds",
		Long: `Evaluate a builder tree for one or many seeds.

The tree is either a structure of the project pack (pack:location or a
location in the home pack) or a builder envelope read from --tree. Options
that reference a style slot are resolved against --style.

The same tree, style, context and seed always produce the same result, so
flattened results are cached. Use --refresh to rebuild anyway.

Examples:
  worksite build keep --style medieval --seed 7
  worksite build --tree tower.json -f materials,svg -o out/tower
  worksite build keep --style medieval --seeds 1-20`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.Structure = args[0]
			}
			if flags.treeFile != "" {
				data, err := os.ReadFile(flags.treeFile)
				if err != nil {
					return fmt.Errorf("read tree: %w", err)
				}
				opts.Tree = data
			}
			opts.Formats = parseFormats(flags.formats)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			if flags.seeds != "" {
				return c.runBuildMany(cmd, opts, flags)
			}
			return c.runBuild(cmd, opts, flags)
		},
	}

	addContextFlags(cmd, &opts)
	cmd.Flags().StringVar(&flags.treeFile, "tree", "", "builder tree JSON file (instead of a structure)")
	cmd.Flags().StringVar(&opts.Style, "style", "", "style reference for option slots")
	cmd.Flags().Int64Var(&opts.Seed, "seed", pipeline.DefaultSeed, "generation seed")
	cmd.Flags().StringVar(&flags.seeds, "seeds", "", "build many seeds, e.g. 1,2,3 or 1-20")
	cmd.Flags().StringVarP(&flags.formats, "format", "f", "", "output format(s): materials (default), flat, json, dot, svg (comma-separated)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (single format), base path (multiple) or - for stdout")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "include options in dot and svg output")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "rebuild even when cached")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")

	return cmd
}

// addContextFlags registers the build context and evaluation limits.
func addContextFlags(cmd *cobra.Command, opts *pipeline.Options) {
	cmd.Flags().Float64Var(&opts.Width, "width", pipeline.DefaultWidth, "plane width")
	cmd.Flags().Float64Var(&opts.Depth, "depth", pipeline.DefaultDepth, "plane depth")
	cmd.Flags().Float64Var(&opts.Elevation, "elevation", 0, "plane elevation")
	cmd.Flags().Float64Var(&opts.Height, "height", 0, "build on a prism of this height instead of a plane")
	cmd.Flags().IntVar(&opts.MaxDepth, "max-depth", 0, "maximum tree depth (default 256)")
}

func (c *CLI) runBuild(cmd *cobra.Command, opts pipeline.Options, flags buildFlags) error {
	ctx := cmd.Context()
	runner, closeRunner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer closeRunner()
	opts.Logger = c.Logger

	spinner := c.startSpinner(ctx, "Building...", flags.output)
	res, err := runner.Execute(ctx, opts)
	spinner.Stop()
	if err != nil {
		return err
	}

	paths, err := writeArtifacts(cmd.OutOrStdout(), artifactWrite{
		artifacts: res.Artifacts,
		formats:   opts.Formats,
		output:    flags.output,
		name:      buildName(opts, flags),
	})
	if err != nil {
		return err
	}
	if flags.output == "-" {
		return nil
	}

	printSuccess("Built %s", buildName(opts, flags))
	printStats(res.Build.Seed.Value(), res.Stats.Nodes, res.Stats.Placed, res.Stats.CacheHit)
	for _, p := range paths {
		printFile(p)
	}
	if opts.Structure != "" && len(paths) > 0 {
		printNextStep("Send it to the architect", fmt.Sprintf("worksite export %s --seed %d", opts.Structure, res.Build.Seed.Value()))
	}
	return nil
}

// batchFormats are the formats a batch build can write, since cached
// builds keep only the flattened result.
var batchFormats = []string{pipeline.FormatFlat, pipeline.FormatMaterials}

func (c *CLI) runBuildMany(cmd *cobra.Command, opts pipeline.Options, flags buildFlags) error {
	seeds, err := parseSeeds(flags.seeds)
	if err != nil {
		return err
	}
	for _, f := range opts.Formats {
		if !slices.Contains(batchFormats, f) {
			return fmt.Errorf("format %q is not available with --seeds (use %v)", f, batchFormats)
		}
	}
	if flags.output == "-" {
		return fmt.Errorf("--seeds writes one file per seed and cannot write to stdout")
	}

	ctx := cmd.Context()
	runner, closeRunner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer closeRunner()
	opts.Logger = c.Logger

	prog := newProgress(c.Logger)
	job, err := runner.Load(ctx, opts)
	if err != nil {
		return err
	}
	builds, err := runner.BuildMany(ctx, job, seeds, opts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Built %d seeds", len(builds)))

	name := buildName(opts, flags)
	cached := 0
	var paths []string
	for _, b := range builds {
		artifacts, err := runner.Render(ctx, b, opts)
		if err != nil {
			return err
		}
		written, err := writeArtifacts(cmd.OutOrStdout(), artifactWrite{
			artifacts: artifacts,
			formats:   opts.Formats,
			output:    flags.output,
			name:      name,
			suffix:    fmt.Sprintf("_%d", b.Seed.Value()),
		})
		if err != nil {
			return err
		}
		paths = append(paths, written...)
		if b.CacheHit {
			cached++
		}
	}

	printSuccess("Built %s for %d seeds", name, len(builds))
	printDetail("%d cached, %d fresh", cached, len(builds)-cached)
	for _, p := range paths {
		printFile(p)
	}
	return nil
}

func buildName(opts pipeline.Options, flags buildFlags) string {
	if opts.Structure != "" {
		return opts.Structure
	}
	return sanitizeName(flags.treeFile)
}

// startSpinner starts a spinner unless output goes to stdout.
func (c *CLI) startSpinner(ctx context.Context, msg, output string) *Spinner {
	s := newSpinner(ctx, msg)
	if output != "-" {
		s.Start()
	}
	return s
}
