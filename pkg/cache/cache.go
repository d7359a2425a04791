// Package cache provides a byte cache with file, Redis and no-op backends,
// plus key derivation for the values this module caches.
//
// # Backends
//
//   - [NullCache]: never stores anything (caching disabled)
//   - [FileCache]: one JSON file per entry under a directory (CLI default)
//   - [RedisCache]: shared cache for server deployments
//
// All backends treat expired or corrupt entries as misses.
//
// # Keys
//
// A [Keyer] derives cache keys. [DefaultKeyer] hashes every input that
// affects the cached value, so changing a layout option or the graph
// topology never returns a stale entry. [ScopedKeyer] adds a namespace
// prefix when several tenants share one backend.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values with an optional time-to-live.
//
// Get reports a miss with (nil, false, nil); an error means the backend
// itself failed. A ttl of 0 means the entry never expires.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by backends that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Keyer derives cache keys.
type Keyer interface {
	// HTTPKey returns the key for a cached HTTP response.
	HTTPKey(namespace, key string) string

	// LayoutKey returns the key for the positions computed for a graph.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string
}

// LayoutKeyOpts lists every layout parameter that changes the result.
type LayoutKeyOpts struct {
	Direction     string  `json:"direction"`
	RankGap       float64 `json:"rank_gap"`
	NodeGap       float64 `json:"node_gap"`
	Margin        float64 `json:"margin"`
	DefaultWidth  float64 `json:"default_width"`
	DefaultHeight float64 `json:"default_height"`
	Passes        int     `json:"passes"`
}

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// HTTPKey generates "http:namespace:key".
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// LayoutKey generates "layout:<sha256>" over the graph hash and options.
func (DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}
