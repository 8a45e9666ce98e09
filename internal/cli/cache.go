package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/worksite/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the build cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear all cached builds and diagrams",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ch, err := c.newCache(ctx, false)
			if err != nil {
				return err
			}
			defer ch.Close()

			var count int
			switch ch := ch.(type) {
			case *cache.RedisCache:
				count, err = ch.Clear(ctx)
				if err == nil {
					printSuccess("Cleared %d cached entries", count)
					printDetail("Redis prefix: %s", c.cfg.Cache.Prefix)
				}
			case *cache.FileCache:
				count, err = ch.Clear()
				if err == nil {
					printSuccess("Cleared %d cached entries", count)
					printDetail("Directory: %s", ch.Dir())
				}
			default:
				printInfo("Cache is disabled")
			}
			return err
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.cfg.Cache.RedisURL != "" {
				printWarning("Builds are cached in Redis, not on disk")
			}
			dir, err := c.cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}
