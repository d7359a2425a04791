package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowcanvas/internal/server"
	"github.com/matzehuels/flowcanvas/pkg/credentials"
	"github.com/matzehuels/flowcanvas/pkg/pipeline"
	"github.com/matzehuels/flowcanvas/pkg/store"
)

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		load    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the graph API over HTTP",
		Long: `Serve one graph store over a JSON HTTP API.

The store starts empty unless --load names a workflow or graph. Credential
lookups are proxied to credentials.base_url when it is configured; the API key
is read from the environment variable named by credentials.api_key_env.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, ch := c.newRunner(ctx, noCache)
			defer ch.Close()

			st := store.New(runner.Engine, c.Logger, store.WithClassifier(runner.Classifier))
			if load != "" {
				data, err := readInput(load)
				if err != nil {
					return err
				}
				loaded, _, err := runner.Load(ctx, data, pipeline.Options{Direction: c.cfg.Direction()})
				if err != nil {
					return err
				}
				st = loaded
			}

			var lookup credentials.Lookup
			if c.cfg.Credentials.BaseURL != "" {
				client, err := c.newCredentialClient(ch)
				if err != nil {
					return err
				}
				lookup = client
			} else {
				c.Logger.Info("credential lookup disabled (credentials.base_url not set)")
			}

			if addr == "" {
				addr = c.cfg.Server.Addr
			}
			return server.New(st, lookup, c.Logger).ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().StringVar(&load, "load", "", "workflow or graph to load at startup")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}
