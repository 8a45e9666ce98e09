package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/worksite/pkg/pipeline"
)

// visualizeCommand draws a builder tree, not a build result.
func (c *CLI) visualizeCommand() *cobra.Command {
	var (
		treeFile string
		format   string
		output   string
		detailed bool
		noCache  bool
	)

	cmd := &cobra.Command{
		Use:   "visualize [structure]",
		Short: "Draw a builder tree as DOT or SVG",
		Long: `Draw a builder tree as DOT or SVG.

Each node shows its builder type, and with --detailed its options: inline
distributions by kind and style slots as @name. Edges are labelled with the
child index and the options of the child slot.

Rendered diagrams are cached by tree.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := pipeline.Options{Logger: c.Logger}
			if len(args) == 1 {
				opts.Structure = args[0]
			}
			if treeFile != "" {
				data, err := os.ReadFile(treeFile)
				if err != nil {
					return fmt.Errorf("read tree: %w", err)
				}
				opts.Tree = data
			}

			ctx := cmd.Context()
			runner, closeRunner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer closeRunner()

			job, err := runner.Load(ctx, opts)
			if err != nil {
				return err
			}
			data, cached, err := runner.Visualize(ctx, job, format, detailed)
			if err != nil {
				return fmt.Errorf("visualize: %w", err)
			}

			name := buildName(opts, buildFlags{treeFile: treeFile})
			paths, err := writeArtifacts(cmd.OutOrStdout(), artifactWrite{
				artifacts: map[string][]byte{format: data},
				formats:   []string{format},
				output:    output,
				name:      name,
			})
			if err != nil {
				return err
			}
			if output == "-" {
				return nil
			}
			status := iconFresh
			if cached {
				status = iconCached
			}
			printSuccess("Drew %s (%s)", name, status)
			for _, p := range paths {
				printFile(p)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&treeFile, "tree", "", "builder tree JSON file (instead of a structure)")
	cmd.Flags().StringVarP(&format, "format", "f", pipeline.FormatSVG, "output format: svg or dot")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file or - for stdout")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "show node options")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}
