// Package pkg provides the core libraries for flowcanvas workflow editing.
//
// # Overview
//
// flowcanvas turns automation workflow documents (n8n-style JSON with a node
// list and a name-keyed connection map) into flat node/edge graphs that a
// canvas editor can draw, lays them out as layered diagrams and converts
// edited graphs back into workflows. The pkg directory is organized as:
//
//  1. [workflow] and [graph] - the two document models and their JSON codecs
//  2. [classify] and [convert] - node categories and the conversions between models
//  3. [dag] and [layout] - the layered layout engine
//  4. [store] - the single mutable graph shared by an editor session
//  5. [pipeline] - orchestration (load → layout → emit)
//  6. [render/nodelink] - Graphviz DOT and SVG diagrams
//  7. [cache], [credentials], [httputil], [config], [errors], [observability] - infrastructure
//
// # Architecture
//
// The typical data flow:
//
//	workflow JSON
//	     ↓
//	[workflow] package (lenient decode, unknown fields kept)
//	     ↓
//	[convert] package (classify nodes, flatten connections)
//	     ↓
//	[layout] package (rank, order, place)
//	     ↓
//	[store] package (edits: add, patch, remove, connect, select)
//	     ↓
//	[convert] package (rebuild connections) → workflow JSON
//
// # Quick Start
//
// Import a workflow, lay it out top to bottom and export it again:
//
//	import (
//	    "context"
//	    "os"
//
//	    "github.com/matzehuels/flowcanvas/pkg/layout"
//	    "github.com/matzehuels/flowcanvas/pkg/store"
//	    "github.com/matzehuels/flowcanvas/pkg/workflow"
//	)
//
//	wf, _ := workflow.ImportFile("flow.json")
//	st := store.New(layout.New(layout.DefaultOptions(), nil), nil)
//	_ = st.ImportWorkflow(context.Background(), wf)
//	st.RunLayout(context.Background(), layout.TopToBottom)
//	_ = workflow.WriteJSON(st.ExportWorkflow(), os.Stdout)
//
// For whole-file conversions and diagrams use [pipeline.Runner].
//
// [workflow]: github.com/matzehuels/flowcanvas/pkg/workflow
// [graph]: github.com/matzehuels/flowcanvas/pkg/graph
// [classify]: github.com/matzehuels/flowcanvas/pkg/classify
// [convert]: github.com/matzehuels/flowcanvas/pkg/convert
// [dag]: github.com/matzehuels/flowcanvas/pkg/dag
// [layout]: github.com/matzehuels/flowcanvas/pkg/layout
// [store]: github.com/matzehuels/flowcanvas/pkg/store
// [pipeline]: github.com/matzehuels/flowcanvas/pkg/pipeline
// [pipeline.Runner]: github.com/matzehuels/flowcanvas/pkg/pipeline#Runner
// [render/nodelink]: github.com/matzehuels/flowcanvas/pkg/render/nodelink
// [cache]: github.com/matzehuels/flowcanvas/pkg/cache
// [credentials]: github.com/matzehuels/flowcanvas/pkg/credentials
// [httputil]: github.com/matzehuels/flowcanvas/pkg/httputil
// [config]: github.com/matzehuels/flowcanvas/pkg/config
// [errors]: github.com/matzehuels/flowcanvas/pkg/errors
// [observability]: github.com/matzehuels/flowcanvas/pkg/observability
package pkg
