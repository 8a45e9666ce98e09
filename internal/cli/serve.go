package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/worksite/internal/api"
)

// serveCommand runs the HTTP API until interrupted.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the build pipeline over HTTP",
		Long: `Serve the build pipeline over HTTP.

The server exposes /healthz, /builders, /styles, /structures, /build,
/build/batch and /export. /export is available when [architect] url is
configured.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, closeRunner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer closeRunner()

			cfg := api.Config{Addr: c.cfg.Server.Addr, Timeout: c.cfg.Server.Timeout}
			if addr != "" {
				cfg.Addr = addr
			}
			if c.cfg.Architect.URL != "" {
				if cfg.Exporter, err = c.newExporter(); err != nil {
					return err
				}
			}
			return api.New(runner, cfg, c.Logger).ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides [server] addr)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}
