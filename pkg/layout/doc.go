// Package layout assigns canvas positions to workflow nodes.
//
// # Overview
//
// The engine is a layered (Sugiyama-style) placement built on [dag] and
// [transform]:
//
//  1. Cycles are broken by reversing back edges (workflow loops are legal)
//  2. Nodes are ranked by longest path from a source
//  3. Long edges are split so every edge joins adjacent ranks
//  4. Each rank is ordered by barycenter sweeps with transpose refinement,
//     keeping the ordering with the fewest crossings
//  5. Ranks are spaced by RankGap; nodes within a rank by NodeGap and then
//     aligned with their neighbours
//
// The returned position is the node's top-left corner: the computed center
// minus half its box. Nodes without a measured size use a 220×90 box.
//
// # Determinism
//
// Every step iterates in input order and breaks ties by position, so the
// same nodes, sizes, edges and direction always produce bit-identical
// positions.
//
// # Failure Semantics
//
// Layout never returns an error. Nodes with an empty or duplicate ID keep
// their incoming position, edges touching unknown nodes and self-loops are
// ignored, and the count of such cases is reported through
// [observability.LayoutHooks].
//
// # Caching
//
// [CachedEngine] stores results in a [cache.Cache], keyed on everything
// the result depends on.
//
// [dag]: github.com/matzehuels/flowcanvas/pkg/dag
// [transform]: github.com/matzehuels/flowcanvas/pkg/dag/transform
// [observability.LayoutHooks]: github.com/matzehuels/flowcanvas/pkg/observability
// [cache.Cache]: github.com/matzehuels/flowcanvas/pkg/cache
package layout
