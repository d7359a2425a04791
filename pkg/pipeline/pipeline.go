// Package pipeline runs the load → layout → emit sequence shared by the
// CLI commands.
//
// # Stages
//
//  1. Load: decode the input, which is either a serialized workflow or a
//     saved graph ([Detect] tells them apart)
//  2. Layout: workflows are always laid out on import; saved graphs keep
//     their positions unless [Options.Relayout] is set
//  3. Emit: produce every requested format ([FormatGraph], [FormatWorkflow],
//     [FormatDOT], [FormatSVG])
//
// # Usage
//
//	runner := pipeline.NewRunner(engine, nil, logger)
//	result, err := runner.Execute(ctx, data, pipeline.Options{
//	    Direction: layout.TopToBottom,
//	    Formats:   []string{pipeline.FormatSVG},
//	})
//	svg := result.Artifacts[pipeline.FormatSVG]
package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/flowcanvas/pkg/errors"
	"github.com/matzehuels/flowcanvas/pkg/graph"
	"github.com/matzehuels/flowcanvas/pkg/layout"
)

// Format constants for output formats.
const (
	FormatGraph    = "graph"
	FormatWorkflow = "workflow"
	FormatDOT      = "dot"
	FormatSVG      = "svg"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatGraph:    true,
	FormatWorkflow: true,
	FormatDOT:      true,
	FormatSVG:      true,
}

// Extension returns the conventional file extension for format.
func Extension(format string) string {
	switch format {
	case FormatGraph:
		return ".graph.json"
	case FormatWorkflow:
		return ".json"
	case FormatDOT:
		return ".dot"
	}
	return "." + format
}

// =============================================================================
// Input detection
// =============================================================================

// InputKind says what an input document contains.
type InputKind int

const (
	KindWorkflow InputKind = iota
	KindGraph
)

func (k InputKind) String() string {
	if k == KindGraph {
		return "graph"
	}
	return "workflow"
}

// Detect classifies data. A JSON object with an "edges" key and no
// "connections" key is a saved graph; any other object is a workflow.
// Text that is not a JSON object fails with MALFORMED_INPUT.
func Detect(data []byte) (InputKind, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(bytes.TrimSpace(data), &top); err != nil || top == nil {
		if err == nil {
			err = fmt.Errorf("top-level value is null")
		}
		return KindWorkflow, errors.Wrap(errors.ErrCodeMalformedInput, err, "input is not a JSON object")
	}
	_, hasEdges := top["edges"]
	_, hasConnections := top["connections"]
	if hasEdges && !hasConnections {
		return KindGraph, nil
	}
	return KindWorkflow, nil
}

// =============================================================================
// Options
// =============================================================================

// Options controls one pipeline run.
type Options struct {
	// Direction for layout. Empty means left to right.
	Direction layout.Direction `json:"direction,omitempty"`

	// Relayout recomputes positions of a saved graph.
	Relayout bool `json:"relayout,omitempty"`

	// Formats lists the artifacts to produce. Empty means [FormatGraph].
	Formats []string `json:"formats,omitempty"`

	// Pinned keeps computed positions in DOT and SVG output.
	Pinned bool `json:"pinned,omitempty"`

	// Detailed adds types and port names to diagrams.
	Detailed bool `json:"detailed,omitempty"`

	validated bool
}

// ValidateAndSetDefaults checks the options and fills in defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Direction == "" {
		o.Direction = layout.LeftToRight
	}
	if !o.Direction.Valid() {
		return errors.New(errors.ErrCodeInvalidDirection, "invalid layout direction %q (want LR or TB)", o.Direction)
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatGraph}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		valid := make([]string, 0, len(ValidFormats))
		for f := range ValidFormats {
			valid = append(valid, f)
		}
		slices.Sort(valid)
		return errors.New(errors.ErrCodeInvalidInput, "invalid format %q (must be one of: %s)", format, strings.Join(valid, ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ParseFormats splits a comma-separated format list. Empty means
// [FormatGraph].
func ParseFormats(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{FormatGraph}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// =============================================================================
// Result
// =============================================================================

// Result contains the outputs of a pipeline run.
type Result struct {
	// Input is what the input document turned out to be.
	Input InputKind

	// Graph is the final graph.
	Graph graph.Graph

	// Artifacts holds the emitted outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount    int
	EdgeCount    int
	DanglingEdge int
	LoadTime     time.Duration
	LayoutTime   time.Duration
	RenderTime   time.Duration
}
