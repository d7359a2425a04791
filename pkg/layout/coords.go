package layout

import (
	"math"
	"slices"

	"github.com/matzehuels/flowcanvas/pkg/dag"
	"github.com/matzehuels/flowcanvas/pkg/graph"
)

// alignPasses is the number of alternating median-alignment passes run on
// the cross axis after the initial packing.
const alignPasses = 4

type point struct{ x, y float64 }

// place computes the center of every workflow node.
//
// Along the primary axis each rank is as deep as its largest box and ranks
// are separated by RankGap, so every edge of an acyclic graph points
// strictly forward. Along the cross axis a rank is first packed with
// NodeGap between boxes, then nodes are pulled towards the median of their
// neighbours in the adjacent rank without breaking the order or the
// minimum gap. The whole drawing is finally shifted so its cross-axis edge
// sits on the margin.
func (p *plan) place(opts Options, dir Direction) map[string]point {
	primary := func(s graph.Size) float64 {
		if dir == TopToBottom {
			return s.Height
		}
		return s.Width
	}
	crossExt := func(id string) float64 {
		s, ok := p.sizes[id]
		if !ok {
			return 0 // subdivider
		}
		if dir == TopToBottom {
			return s.Width
		}
		return s.Height
	}

	rows := p.g.RowIDs()

	rankCenter := make(map[int]float64, len(rows))
	offset := opts.Margin
	for _, r := range rows {
		depth := 0.0
		for _, id := range p.orders[r] {
			if s, ok := p.sizes[id]; ok {
				depth = max(depth, primary(s))
			}
		}
		rankCenter[r] = offset + depth/2
		offset += depth + opts.RankGap
	}

	cross := make(map[string]float64, p.g.NodeCount())
	for _, r := range rows {
		ids := p.orders[r]
		at := 0.0
		for i, id := range ids {
			if i > 0 {
				at += separation(ids[i-1], id, crossExt, opts.NodeGap)
			}
			cross[id] = at
		}
	}

	for pass := range alignPasses {
		down := pass%2 == 0
		if down {
			for i := 1; i < len(rows); i++ {
				align(p.g, p.orders[rows[i]], cross, crossExt, opts.NodeGap, true)
			}
		} else {
			for i := len(rows) - 2; i >= 0; i-- {
				align(p.g, p.orders[rows[i]], cross, crossExt, opts.NodeGap, false)
			}
		}
	}

	low := math.Inf(1)
	for _, r := range rows {
		for _, id := range p.orders[r] {
			low = min(low, cross[id]-crossExt(id)/2)
		}
	}
	shift := opts.Margin - low

	centers := make(map[string]point, len(p.sizes))
	for _, r := range rows {
		for _, id := range p.orders[r] {
			if _, ok := p.sizes[id]; !ok {
				continue
			}
			along, side := rankCenter[r], cross[id]+shift
			if dir == TopToBottom {
				centers[id] = point{x: side, y: along}
			} else {
				centers[id] = point{x: along, y: side}
			}
		}
	}
	return centers
}

// separation is the minimum center distance between two neighbours.
func separation(a, b string, ext func(string) float64, gap float64) float64 {
	return ext(a)/2 + gap + ext(b)/2
}

// align moves the nodes of one rank towards the median cross position of
// their neighbours in the previous rank (useParents) or the next one.
//
// The desired positions are made feasible twice, once pushing right and
// once pushing left, and the two results are averaged. Both satisfy the
// minimum separation, and so does their mean.
func align(g *dag.DAG, ids []string, cross map[string]float64, ext func(string) float64, gap float64, useParents bool) {
	n := len(ids)
	if n == 0 {
		return
	}

	want := make([]float64, n)
	for i, id := range ids {
		nbrs := g.Children(id)
		if useParents {
			nbrs = g.Parents(id)
		}
		want[i] = cross[id]
		if len(nbrs) > 0 {
			want[i] = median(nbrs, cross)
		}
	}

	right := make([]float64, n)
	for i := range n {
		right[i] = want[i]
		if i > 0 {
			right[i] = max(right[i], right[i-1]+separation(ids[i-1], ids[i], ext, gap))
		}
	}
	left := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		left[i] = want[i]
		if i < n-1 {
			left[i] = min(left[i], left[i+1]-separation(ids[i], ids[i+1], ext, gap))
		}
	}
	for i, id := range ids {
		cross[id] = (left[i] + right[i]) / 2
	}
}

func median(ids []string, cross map[string]float64) float64 {
	vals := make([]float64, len(ids))
	for i, id := range ids {
		vals[i] = cross[id]
	}
	slices.Sort(vals)
	mid := len(vals) / 2
	if len(vals)%2 == 1 {
		return vals[mid]
	}
	return (vals[mid-1] + vals[mid]) / 2
}
