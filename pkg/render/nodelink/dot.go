package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/flowcanvas/pkg/classify"
	"github.com/matzehuels/flowcanvas/pkg/graph"
	"github.com/matzehuels/flowcanvas/pkg/layout"
	"github.com/matzehuels/flowcanvas/pkg/workflow"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Direction sets rankdir when Graphviz places the nodes itself.
	Direction layout.Direction

	// Pinned fixes every node at its graph position instead of letting
	// Graphviz lay the diagram out.
	Pinned bool

	// Detailed adds the node type to labels and port names to non-main edges.
	Detailed bool
}

type style struct {
	shape string
	fill  string
	color string
}

var categoryStyles = map[classify.Category]style{
	classify.Trigger: {shape: "cds", fill: "#fff4e5", color: "#ff6d5a"},
	classify.Agent:   {shape: "box", fill: "#f1ecff", color: "#7c4dff"},
	classify.Tool:    {shape: "ellipse", fill: "#e8f7ef", color: "#29a36a"},
	classify.Default: {shape: "box", fill: "white", color: "#7d838f"},
}

func styleFor(c classify.Category) style {
	if s, ok := categoryStyles[c]; ok {
		return s
	}
	return categoryStyles[classify.Default]
}

// ToDOT converts g to Graphviz DOT source. Edges with a missing endpoint
// are left out. With [Options.Pinned] each node carries pos="x,y!" in
// points, taken from the node's center with the y axis flipped.
func ToDOT(g graph.Graph, opts Options) string {
	rankdir := "LR"
	if opts.Direction == layout.TopToBottom {
		rankdir = "TB"
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "digraph %q {\n", g.Name)
	fmt.Fprintf(&buf, "  rankdir=%s;\n", rankdir)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	if opts.Pinned {
		buf.WriteString("  inputscale=72;\n")
		buf.WriteString("  splines=true;\n")
	}
	buf.WriteString("  node [style=\"rounded,filled\", fontname=\"Helvetica\", fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [color=\"#7d838f\", arrowsize=0.7];\n")
	buf.WriteString("\n")

	ids := make(map[string]struct{}, len(g.Nodes))
	for _, n := range g.Nodes {
		ids[n.ID] = struct{}{}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(nodeAttrs(n, g.SelectedID, opts), ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		if _, ok := ids[e.Source]; !ok {
			continue
		}
		if _, ok := ids[e.Target]; !ok {
			continue
		}
		attrs := edgeAttrs(e, opts.Detailed)
		if len(attrs) == 0 {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.Source, e.Target)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.Source, e.Target, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(n graph.Node, selected string, opts Options) []string {
	s := styleFor(n.Category)
	attrs := []string{
		fmt.Sprintf("label=%q", fmtLabel(n, opts.Detailed)),
		"shape=" + s.shape,
		fmt.Sprintf("fillcolor=%q", s.fill),
		fmt.Sprintf("color=%q", s.color),
	}
	if n.ID == selected {
		attrs = append(attrs, "penwidth=3")
	}
	if opts.Pinned {
		size := n.Size.OrDefault()
		x := n.Position.X + size.Width/2
		y := -(n.Position.Y + size.Height/2)
		attrs = append(attrs,
			fmt.Sprintf("pos=\"%s,%s!\"", fmtFloat(x), fmtFloat(y)),
			fmt.Sprintf("width=%s", fmtFloat(size.Width/72)),
			fmt.Sprintf("height=%s", fmtFloat(size.Height/72)),
			"fixedsize=true",
		)
	}
	return attrs
}

func fmtLabel(n graph.Node, detailed bool) string {
	label := n.Payload.Label
	if label == "" {
		label = n.ID
	}
	if !detailed || n.Payload.Type == "" {
		return label
	}
	return label + "\n" + n.Payload.Type
}

func edgeAttrs(e graph.Edge, detailed bool) []string {
	if e.SourceHandle == workflow.PortMain && e.TargetHandle == workflow.PortMain {
		return nil
	}
	attrs := []string{"style=dashed"}
	if detailed {
		attrs = append(attrs, fmt.Sprintf("label=%q", e.SourceHandle), "fontsize=10")
	}
	return attrs
}

func fmtFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// RenderSVG renders DOT source to SVG. Pinned source must be rendered with
// pinned set so Graphviz keeps the given positions.
func RenderSVG(ctx context.Context, dot string, pinned bool) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	if pinned {
		gv.SetLayout(graphviz.NEATO)
	}

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

// Render converts g to DOT and renders it to SVG.
func Render(ctx context.Context, g graph.Graph, opts Options) ([]byte, error) {
	return RenderSVG(ctx, ToDOT(g, opts), opts.Pinned)
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
