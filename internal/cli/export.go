package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/worksite/pkg/export"
	"github.com/matzehuels/worksite/pkg/pipeline"
)

// exportCommand builds one seed and sends its materials to the architect.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		treeFile string
		url      string
		dryRun   bool
		noCache  bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "export [structure]",
		Short: "Build a seed and send its materials to the architect",
		Long: `Build a seed and send its materials to the architect.

A fresh channel export:<uuid> is opened on the architect's socket.io
endpoint, the placed materials are sent with it, and the command waits
until the architect reports the channel done or failed.

With --dry-run the channel message is written to stdout instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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
			if url != "" {
				c.cfg.Architect.URL = url
			}

			var ex *export.Exporter
			if dryRun {
				ex = export.New(export.NewWriterChannel(cmd.OutOrStdout()), c.Logger)
			} else {
				var err error
				if ex, err = c.newExporter(); err != nil {
					return err
				}
			}

			ctx := cmd.Context()
			runner, closeRunner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer closeRunner()
			opts.Logger = c.Logger
			opts.Formats = []string{pipeline.FormatMaterials}

			res, err := runner.Execute(ctx, opts)
			if err != nil {
				return err
			}

			spinnerOut := ""
			if dryRun {
				spinnerOut = "-"
			}
			spinner := c.startSpinner(ctx, "Waiting for the architect...", spinnerOut)
			channel, err := runner.Export(ctx, ex, res.Build, nil)
			spinner.Stop()
			if err != nil {
				return err
			}
			if dryRun {
				return nil
			}

			printSuccess("Exported %s", buildName(opts, buildFlags{treeFile: treeFile}))
			printKeyValue("channel", channel)
			printKeyValue("architect", c.cfg.Architect.URL)
			printStats(res.Build.Seed.Value(), res.Stats.Nodes, res.Stats.Placed, res.Stats.CacheHit)
			return nil
		},
	}

	addContextFlags(cmd, &opts)
	cmd.Flags().StringVar(&treeFile, "tree", "", "builder tree JSON file (instead of a structure)")
	cmd.Flags().StringVar(&opts.Style, "style", "", "style reference for option slots")
	cmd.Flags().Int64Var(&opts.Seed, "seed", pipeline.DefaultSeed, "generation seed")
	cmd.Flags().StringVar(&url, "url", "", "architect URL (overrides [architect] url)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "write the channel message to stdout instead of sending it")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}
