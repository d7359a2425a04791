package layout

import (
	"math"
	"strings"

	"github.com/matzehuels/flowcanvas/pkg/errors"
	"github.com/matzehuels/flowcanvas/pkg/graph"
)

// Direction is the primary axis along which ranks advance.
type Direction string

const (
	// LeftToRight places ranks in columns; edges point right.
	LeftToRight Direction = "LR"
	// TopToBottom places ranks in rows; edges point down.
	TopToBottom Direction = "TB"
)

// ParseDirection accepts "LR" or "TB" in any case, plus the spelled-out
// forms "left-to-right" and "top-to-bottom". An empty string means
// [LeftToRight].
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "lr", "left-to-right":
		return LeftToRight, nil
	case "tb", "top-to-bottom":
		return TopToBottom, nil
	}
	return "", errors.New(errors.ErrCodeInvalidDirection, "invalid layout direction %q (want LR or TB)", s)
}

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool { return d == LeftToRight || d == TopToBottom }

// Default spacing, in canvas units.
const (
	DefaultRankGap = 80.0
	DefaultNodeGap = 40.0
	DefaultMargin  = 20.0
	DefaultPasses  = 24
)

// Options controls spacing and effort.
type Options struct {
	RankGap       float64 // gap between adjacent ranks along the primary axis
	NodeGap       float64 // gap between neighbours within a rank
	Margin        float64 // empty border around the whole layout
	DefaultWidth  float64 // box width for nodes without a measured size
	DefaultHeight float64 // box height for nodes without a measured size
	Passes        int     // crossing-reduction sweeps; 0 keeps the initial order
}

// DefaultOptions returns the standard spacing.
func DefaultOptions() Options {
	return Options{
		RankGap:       DefaultRankGap,
		NodeGap:       DefaultNodeGap,
		Margin:        DefaultMargin,
		DefaultWidth:  graph.DefaultNodeWidth,
		DefaultHeight: graph.DefaultNodeHeight,
		Passes:        DefaultPasses,
	}
}

// normalized replaces negative or non-finite values with defaults.
func (o Options) normalized() Options {
	d := DefaultOptions()
	o.RankGap = orDefault(o.RankGap, d.RankGap, true)
	o.NodeGap = orDefault(o.NodeGap, d.NodeGap, true)
	o.Margin = orDefault(o.Margin, d.Margin, true)
	o.DefaultWidth = orDefault(o.DefaultWidth, d.DefaultWidth, false)
	o.DefaultHeight = orDefault(o.DefaultHeight, d.DefaultHeight, false)
	if o.Passes < 0 {
		o.Passes = 0
	}
	return o
}

func orDefault(v, def float64, zeroOK bool) float64 {
	if !finite(v) || v < 0 || (v == 0 && !zeroOK) {
		return def
	}
	return v
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// boxSize returns the node's measured size, or the configured default box
// when either dimension is missing or unusable.
func (o Options) boxSize(n graph.Node) graph.Size {
	s := n.Size
	if !finite(s.Width) || !finite(s.Height) || s.Width <= 0 || s.Height <= 0 {
		return graph.Size{Width: o.DefaultWidth, Height: o.DefaultHeight}
	}
	return s
}
