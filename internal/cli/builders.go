package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/worksite/pkg/builders"
)

// buildersCommand lists the registered builder types.
func (c *CLI) buildersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "builders",
		Short: "List the registered builder types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range builders.Registry().Names() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

// listCommand lists the styles or structures of the project pack.
func (c *CLI) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "ls [styles|structures]",
		Short:     "List the styles or structures of the project pack",
		ValidArgs: []string{"styles", "structures"},
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			proj, closeProject, err := c.newProject(ctx)
			if err != nil {
				return err
			}
			defer closeProject()
			if proj == nil {
				return fmt.Errorf("no project pack: set [project] pack in %s or pass --pack", configFile)
			}

			var names []string
			if args[0] == "styles" {
				names, err = proj.Styles(ctx)
			} else {
				names, err = proj.Structures(ctx)
			}
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
