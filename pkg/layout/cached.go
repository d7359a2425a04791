package layout

import (
	"context"
	"encoding/json"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowcanvas/pkg/cache"
	"github.com/matzehuels/flowcanvas/pkg/graph"
	"github.com/matzehuels/flowcanvas/pkg/observability"
)

const cacheKeyType = "layout"

// CachedEngine wraps an [Engine] with a position cache.
//
// The key covers node IDs and sizes in order, edge endpoints in order, the
// direction and every option, so a hit returns exactly what the engine
// would compute. Cache failures are logged and the layout is computed
// instead. Results that kept a prior position are never stored, since
// they depend on input positions the key does not cover.
type CachedEngine struct {
	engine *Engine
	cache  cache.Cache
	keyer  cache.Keyer
	ttl    time.Duration
	logger *log.Logger
}

// NewCached creates a cached engine. A nil cache disables caching and a
// nil keyer uses [cache.NewDefaultKeyer].
func NewCached(engine *Engine, c cache.Cache, keyer cache.Keyer, ttl time.Duration, logger *log.Logger) *CachedEngine {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &CachedEngine{engine: engine, cache: c, keyer: keyer, ttl: ttl, logger: logger}
}

// Layout implements [Layouter].
func (c *CachedEngine) Layout(ctx context.Context, nodes []graph.Node, edges []graph.Edge, dir Direction) []graph.Node {
	if !dir.Valid() {
		dir = LeftToRight
	}
	hooks := observability.Cache()

	key, err := c.key(nodes, edges, dir)
	if err != nil {
		c.logger.Debug("layout cache key", "err", err)
		return c.engine.Layout(ctx, nodes, edges, dir)
	}

	if out, ok := c.lookup(ctx, key, nodes); ok {
		hooks.OnCacheHit(ctx, cacheKeyType)
		c.logger.Debug("layout cache hit", "nodes", len(nodes))
		return out
	}
	hooks.OnCacheMiss(ctx, cacheKeyType)

	out, stats := c.engine.Run(ctx, nodes, edges, dir)
	// A cancelled run may have stopped ordering early; only full results
	// are stored.
	if stats.Degraded > 0 || ctx.Err() != nil {
		return out
	}

	positions := make([]graph.Position, len(out))
	for i, n := range out {
		positions[i] = n.Position
	}
	data, err := json.Marshal(positions)
	if err != nil {
		return out
	}
	if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("layout cache write failed", "err", err)
		return out
	}
	hooks.OnCacheSet(ctx, cacheKeyType, len(data))
	return out
}

func (c *CachedEngine) lookup(ctx context.Context, key string, nodes []graph.Node) ([]graph.Node, bool) {
	data, hit, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn("layout cache read failed", "err", err)
		return nil, false
	}
	if !hit {
		return nil, false
	}
	var positions []graph.Position
	if err := json.Unmarshal(data, &positions); err != nil || len(positions) != len(nodes) {
		return nil, false
	}
	out := slices.Clone(nodes)
	for i := range out {
		out[i].Position = positions[i]
	}
	return out, true
}

// topology is the part of a graph the layout depends on.
type topology struct {
	Nodes []string     `json:"nodes"`
	Sizes []graph.Size `json:"sizes"`
	Edges [][2]string  `json:"edges"`
}

func (c *CachedEngine) key(nodes []graph.Node, edges []graph.Edge, dir Direction) (string, error) {
	t := topology{
		Nodes: make([]string, len(nodes)),
		Sizes: make([]graph.Size, len(nodes)),
		Edges: make([][2]string, len(edges)),
	}
	for i, n := range nodes {
		t.Nodes[i] = n.ID
		t.Sizes[i] = n.Size
	}
	for i, e := range edges {
		t.Edges[i] = [2]string{e.Source, e.Target}
	}
	h, err := cache.HashJSON(t)
	if err != nil {
		return "", err
	}
	o := c.engine.Options()
	return c.keyer.LayoutKey(h, cache.LayoutKeyOpts{
		Direction:     string(dir),
		RankGap:       o.RankGap,
		NodeGap:       o.NodeGap,
		Margin:        o.Margin,
		DefaultWidth:  o.DefaultWidth,
		DefaultHeight: o.DefaultHeight,
		Passes:        o.Passes,
	}), nil
}

var (
	_ Layouter = (*Engine)(nil)
	_ Layouter = (*CachedEngine)(nil)
)
