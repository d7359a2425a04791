// Package cli implements the flowcanvas command-line interface.
//
// Commands convert between serialized workflows and editor graphs, lay
// graphs out, render diagrams, browse a workflow interactively, query the
// credential collaborator and serve the HTTP API. The CLI is built on
// cobra and logs through charmbracelet/log; --verbose switches to debug
// level.
//
// # Commands
//
//   - import: workflow JSON → laid-out graph JSON
//   - export: graph JSON → workflow JSON
//   - layout: recompute positions of a graph or workflow
//   - render: DOT or SVG diagram
//   - classify: show the category of node types
//   - inspect: interactive node browser
//   - credentials: list stored credentials of a kind
//   - serve: HTTP API over one graph store
//   - cache: manage the layout and response cache
package cli

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowcanvas/pkg/buildinfo"
	"github.com/matzehuels/flowcanvas/pkg/cache"
	"github.com/matzehuels/flowcanvas/pkg/config"
	"github.com/matzehuels/flowcanvas/pkg/credentials"
	"github.com/matzehuels/flowcanvas/pkg/errors"
	"github.com/matzehuels/flowcanvas/pkg/layout"
	"github.com/matzehuels/flowcanvas/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "flowcanvas"

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
	cfg        config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// Config returns the loaded configuration.
func (c *CLI) Config() config.Config { return c.cfg }

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "flowcanvas converts automation workflows to editable, laid-out graphs",
		Long:         `flowcanvas converts n8n-style workflow documents into flat node/edge graphs, lays them out as layered diagrams and converts them back.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/flowcanvas/config.toml)")

	root.AddCommand(c.importCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.classifyCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.credentialsCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file. An explicit --config path must exist.
func (c *CLI) loadConfig() error {
	path := c.configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			c.Logger.Debug("no config directory", "err", err)
			return nil
		}
		path = p
	} else if _, err := os.Stat(path); err != nil {
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
	}

	cfg, warnings, err := config.Load(path)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		c.Logger.Warn(w, "file", path)
	}
	c.cfg = cfg
	c.Logger.Debug("config loaded", "path", path)
	return nil
}

// =============================================================================
// Factories
// =============================================================================

// openCache opens the configured cache, or the null cache when disabled.
// A cache that cannot be opened is logged and replaced by the null cache.
func (c *CLI) openCache(ctx context.Context, noCache bool) cache.Cache {
	if noCache {
		return cache.NewNullCache()
	}
	ch, err := c.cfg.OpenCache(ctx)
	if err != nil {
		c.Logger.Warn("cache unavailable, continuing without", "err", err)
		return cache.NewNullCache()
	}
	return ch
}

// newEngine builds the layout engine from config, wrapped in the cache.
func (c *CLI) newEngine(ch cache.Cache) layout.Layouter {
	engine := layout.New(c.cfg.LayoutOptions(), c.Logger)
	return layout.NewCached(engine, ch, nil, c.cfg.Cache.TTL, c.Logger)
}

// newRunner creates a pipeline runner for CLI use. The returned cache must
// be closed by the caller.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, cache.Cache) {
	ch := c.openCache(ctx, noCache)
	return pipeline.NewRunner(c.newEngine(ch), nil, c.Logger), ch
}

// newCredentialClient builds a credential client from config.
func (c *CLI) newCredentialClient(ch cache.Cache) (*credentials.Client, error) {
	if c.cfg.Credentials.BaseURL == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "credentials.base_url is not set")
	}
	return credentials.NewClient(credentials.Options{
		BaseURL: c.cfg.Credentials.BaseURL,
		APIKey:  c.cfg.APIKey(),
		Timeout: c.cfg.Credentials.Timeout,
		Cache:   ch,
		TTL:     c.cfg.Cache.TTL,
		Logger:  c.Logger,
	})
}

// direction resolves a --direction flag, falling back to the config.
func (c *CLI) direction(flag string) (layout.Direction, error) {
	if flag == "" {
		return c.cfg.Direction(), nil
	}
	return layout.ParseDirection(flag)
}
