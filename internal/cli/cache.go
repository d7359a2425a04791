package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowcanvas/pkg/cache"
	"github.com/matzehuels/flowcanvas/pkg/errors"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the layout and response cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached layout and response",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := newPrinter(cmd.OutOrStdout())
			ch, err := c.cfg.OpenCache(ctx)
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidConfig, err, "open cache")
			}
			defer ch.Close()

			clearer, ok := ch.(cache.Clearer)
			if !ok {
				out.info("Cache backend %q has nothing to clear", c.cfg.Cache.Backend)
				return nil
			}
			if err := clearer.Clear(ctx); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}

			out.success("Cache cleared")
			out.detail("Location: %s", c.cacheLocation(ch))
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where the cache lives",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ch, err := c.cfg.OpenCache(ctx)
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidConfig, err, "open cache")
			}
			defer ch.Close()
			fmt.Fprintln(cmd.OutOrStdout(), c.cacheLocation(ch))
			return nil
		},
	}
}

// cacheLocation describes where ch stores entries.
func (c *CLI) cacheLocation(ch cache.Cache) string {
	switch v := ch.(type) {
	case *cache.FileCache:
		return v.Dir()
	case *cache.RedisCache:
		return "redis://" + c.cfg.Cache.RedisAddr
	}
	return "(disabled)"
}
