// Package config loads the flowcanvas TOML configuration file.
//
// A missing file is not an error: [Load] returns [Default]. Keys the
// decoder does not recognize are returned as warnings so a typo never
// prevents startup.
//
// Example file:
//
//	[layout]
//	direction = "TB"
//	rank_gap = 100.0
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//	ttl = "12h"
package config

import (
	"context"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/flowcanvas/pkg/cache"
	"github.com/matzehuels/flowcanvas/pkg/errors"
	"github.com/matzehuels/flowcanvas/pkg/layout"
)

// FileName is the config file name inside the config directory.
const FileName = "config.toml"

// Config is the whole configuration file.
type Config struct {
	Layout      Layout      `toml:"layout"`
	Cache       Cache       `toml:"cache"`
	Credentials Credentials `toml:"credentials"`
	Server      Server      `toml:"server"`
}

// Layout configures the layout engine.
type Layout struct {
	Direction     string  `toml:"direction"`
	RankGap       float64 `toml:"rank_gap"`
	NodeGap       float64 `toml:"node_gap"`
	Margin        float64 `toml:"margin"`
	DefaultWidth  float64 `toml:"default_width"`
	DefaultHeight float64 `toml:"default_height"`
	Passes        int     `toml:"passes"`
}

// Cache configures the layout and HTTP response cache.
type Cache struct {
	Backend   string        `toml:"backend"`
	Dir       string        `toml:"dir"`
	RedisAddr string        `toml:"redis_addr"`
	RedisDB   int           `toml:"redis_db"`
	TTL       time.Duration `toml:"ttl"`
}

// Credentials configures the credential lookup client.
type Credentials struct {
	BaseURL   string        `toml:"base_url"`
	APIKeyEnv string        `toml:"api_key_env"`
	Timeout   time.Duration `toml:"timeout"`
}

// Server configures the HTTP API.
type Server struct {
	Addr string `toml:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	opts := layout.DefaultOptions()
	return Config{
		Layout: Layout{
			Direction:     string(layout.LeftToRight),
			RankGap:       opts.RankGap,
			NodeGap:       opts.NodeGap,
			Margin:        opts.Margin,
			DefaultWidth:  opts.DefaultWidth,
			DefaultHeight: opts.DefaultHeight,
			Passes:        opts.Passes,
		},
		Cache: Cache{
			Backend:   cache.BackendFile,
			RedisAddr: "localhost:6379",
			TTL:       24 * time.Hour,
		},
		Credentials: Credentials{
			APIKeyEnv: "N8N_API_KEY",
			Timeout:   10 * time.Second,
		},
		Server: Server{Addr: ":8080"},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/flowcanvas/config.toml (or the
// platform equivalent).
func DefaultPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "flowcanvas", FileName), nil
}

// Load reads path over [Default]. Values absent from the file keep their
// defaults. The returned warnings name keys that were not recognized.
func Load(path string) (Config, []string, error) {
	data, err := os.ReadFile(path)
	if stderrors.Is(err, fs.ErrNotExist) {
		return Default(), nil, nil
	}
	if err != nil {
		return Config{}, nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}
	return Decode(string(data))
}

// Decode parses TOML text over [Default].
func Decode(text string) (Config, []string, error) {
	cfg := Default()
	md, err := toml.Decode(text, &cfg)
	if err != nil {
		return Config{}, nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, nil, err
	}
	var warnings []string
	for _, key := range md.Undecoded() {
		warnings = append(warnings, "unknown config key "+key.String())
	}
	return cfg, warnings, nil
}

// Validate checks the values a typo can break.
func (c Config) Validate() error {
	if _, err := layout.ParseDirection(c.Layout.Direction); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "layout.direction")
	}
	switch c.Cache.Backend {
	case "", cache.BackendNone, cache.BackendFile, cache.BackendRedis:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "cache.backend %q (want file, redis or none)", c.Cache.Backend)
	}
	if c.Credentials.BaseURL != "" {
		if err := errors.ValidateURL(c.Credentials.BaseURL); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "credentials.base_url")
		}
	}
	return nil
}

// Direction returns the configured layout direction.
func (c Config) Direction() layout.Direction {
	d, err := layout.ParseDirection(c.Layout.Direction)
	if err != nil {
		return layout.LeftToRight
	}
	return d
}

// LayoutOptions returns the layout engine options.
func (c Config) LayoutOptions() layout.Options {
	return layout.Options{
		RankGap:       c.Layout.RankGap,
		NodeGap:       c.Layout.NodeGap,
		Margin:        c.Layout.Margin,
		DefaultWidth:  c.Layout.DefaultWidth,
		DefaultHeight: c.Layout.DefaultHeight,
		Passes:        c.Layout.Passes,
	}
}

// CacheOptions returns the options for [cache.Open].
func (c Config) CacheOptions() cache.Options {
	return cache.Options{
		Backend: c.Cache.Backend,
		Dir:     c.Cache.Dir,
		Redis: cache.RedisOptions{
			Addr: c.Cache.RedisAddr,
			DB:   c.Cache.RedisDB,
		},
	}
}

// OpenCache opens the configured cache backend.
func (c Config) OpenCache(ctx context.Context) (cache.Cache, error) {
	return cache.Open(ctx, c.CacheOptions())
}

// APIKey reads the credential API key from the configured environment
// variable.
func (c Config) APIKey() string {
	if c.Credentials.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.Credentials.APIKeyEnv)
}
