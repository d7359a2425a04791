package store

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowcanvas/pkg/classify"
	"github.com/matzehuels/flowcanvas/pkg/convert"
	"github.com/matzehuels/flowcanvas/pkg/graph"
	"github.com/matzehuels/flowcanvas/pkg/layout"
	"github.com/matzehuels/flowcanvas/pkg/observability"
	"github.com/matzehuels/flowcanvas/pkg/workflow"
)

// Operation names reported to logs and [observability.StoreHooks].
const (
	OpReplaceAll    = "replaceAll"
	OpClear         = "clear"
	OpAddNode       = "addNode"
	OpUpdatePayload = "updateNodePayload"
	OpRemoveNode    = "removeNode"
	OpSelect        = "setSelection"
	OpAddEdge       = "applyEdgeAdd"
	OpRemoveEdge    = "removeEdge"
	OpLayout        = "runLayout"
	OpImport        = "importWorkflow"
	OpRename        = "setName"
)

// Store owns one workflow graph. The zero value is not usable; use New.
type Store struct {
	mu         sync.Mutex
	g          graph.Graph
	dirty      bool
	engine     layout.Layouter
	importer   convert.Importer
	classifier *classify.Classifier
	logger     *log.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClassifier sets the classifier used for imported and added nodes.
func WithClassifier(c *classify.Classifier) Option {
	return func(s *Store) {
		if c != nil {
			s.classifier = c
			s.importer = convert.Importer{Classifier: c}
		}
	}
}

// New creates a store holding the empty graph. A nil engine uses the
// default layout engine; a nil logger uses log.Default().
func New(engine layout.Layouter, logger *log.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = log.Default()
	}
	if engine == nil {
		engine = layout.New(layout.DefaultOptions(), logger)
	}
	s := &Store{
		g:          graph.Empty(),
		engine:     engine,
		classifier: classify.New(nil),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// commit installs next. Callers hold s.mu.
func (s *Store) commit(op string, next graph.Graph, dirty bool) {
	s.g = next
	s.dirty = dirty
	s.logger.Debug("store", "op", op, "nodes", len(next.Nodes), "edges", len(next.Edges), "dirty", dirty)
	observability.Store().OnMutation(op, len(next.Nodes), len(next.Edges), dirty)
}

// =============================================================================
// Readers
// =============================================================================

// Snapshot returns a deep copy of the current graph.
func (s *Store) Snapshot() graph.Graph {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.g.Clone()
}

// Node returns a copy of the node with id.
func (s *Store) Node(id string) (graph.Node, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.g.NodeIndex(id); i >= 0 {
		return s.g.Nodes[i].Clone(), true
	}
	return graph.Node{}, false
}

// Dirty reports whether there are edits since the last import or clear.
func (s *Store) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Name returns the workflow name.
func (s *Store) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.g.Name
}

// SelectedID returns the selected node id, or "" when nothing is selected.
func (s *Store) SelectedID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.g.SelectedID
}

// ExportWorkflow converts the current graph to the serialized format. It
// does not change the dirty flag.
func (s *Store) ExportWorkflow() *workflow.Workflow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return convert.Export(s.g)
}

// =============================================================================
// Whole-graph operations
// =============================================================================

// ReplaceAll installs a copy of g and clears the dirty flag. A selection
// naming a node that is not in g is dropped.
func (s *Store) ReplaceAll(g graph.Graph) {
	next := g.Clone()
	if next.Nodes == nil {
		next.Nodes = []graph.Node{}
	}
	if next.SelectedID != "" && !next.HasNode(next.SelectedID) {
		next.SelectedID = ""
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.commit(OpReplaceAll, next, false)
}

// Clear resets to the empty graph with the default name.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commit(OpClear, graph.Empty(), false)
}

// ImportWorkflow converts wf, lays it out left to right and installs the
// result with the workflow's name, no selection and a clean dirty flag.
// On error the store is unchanged.
func (s *Store) ImportWorkflow(ctx context.Context, wf *workflow.Workflow) error {
	g, err := s.importer.Import(wf)
	if err != nil {
		observability.Store().OnImportError(err)
		s.logger.Debug("import rejected", "err", err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	g.Nodes = s.engine.Layout(ctx, g.Nodes, g.Edges, layout.LeftToRight)
	g.Name = wf.Name
	g.SelectedID = ""
	s.commit(OpImport, g, false)
	return nil
}

// RunLayout recomputes every node position and marks the graph dirty.
func (s *Store) RunLayout(ctx context.Context, dir layout.Direction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.g
	next.Nodes = s.engine.Layout(ctx, s.g.Nodes, s.g.Edges, dir)
	s.commit(OpLayout, next, true)
}

// SetName renames the workflow and marks the graph dirty.
func (s *Store) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.g
	next.Name = name
	s.commit(OpRename, next, true)
}

// SetSelection selects the node with id, or clears the selection when id
// is empty or names no node. It never changes the dirty flag.
func (s *Store) SetSelection(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.g
	next.SelectedID = ""
	if id != "" && s.g.HasNode(id) {
		next.SelectedID = id
	}
	s.commit(OpSelect, next, s.dirty)
}

// =============================================================================
// Node operations
// =============================================================================

// AddNode appends n and returns its id. A missing or already used id is
// replaced by a fresh one, a missing category is derived from the node
// type, and the original-node record is kept in step with the payload.
func (s *Store) AddNode(n graph.Node) string {
	n = n.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()

	if n.ID == "" || s.g.HasNode(n.ID) {
		n.ID = graph.NewNodeID()
	}
	if n.Category == "" {
		n.Category = s.classifier.Classify(n.Payload.Type)
	}
	orig := &n.Payload.OriginalNode
	orig.ID = n.ID
	if orig.Name == "" {
		orig.Name = n.Payload.Label
	}
	if orig.Type == "" {
		orig.Type = n.Payload.Type
		orig.TypeVersion = n.Payload.TypeVersion
	}

	next := s.g
	next.Nodes = append(slices.Clone(s.g.Nodes), n)
	s.commit(OpAddNode, next, true)
	return n.ID
}

// PayloadPatch lists payload fields to overwrite; nil fields are left
// alone. Parameters and Credentials replace the whole map.
type PayloadPatch struct {
	Label       *string                           `json:"label,omitempty"`
	Type        *string                           `json:"type,omitempty"`
	TypeVersion *float64                          `json:"typeVersion,omitempty"`
	Parameters  map[string]any                    `json:"parameters,omitempty"`
	Credentials map[string]workflow.CredentialRef `json:"credentials,omitempty"`
}

// UpdateNodePayload merges patch into the payload of node id. Position is
// never touched; a changed type re-derives the category. The graph is
// marked dirty even when id names no node.
func (s *Store) UpdateNodePayload(id string, patch PayloadPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.g
	if i := s.g.NodeIndex(id); i >= 0 {
		next.Nodes = slices.Clone(s.g.Nodes)
		next.Nodes[i] = s.patched(s.g.Nodes[i], patch)
	}
	s.commit(OpUpdatePayload, next, true)
}

func (s *Store) patched(n graph.Node, patch PayloadPatch) graph.Node {
	p := &n.Payload
	if patch.Label != nil {
		p.Label = *patch.Label
	}
	if patch.Type != nil && *patch.Type != p.Type {
		p.Type = *patch.Type
		n.Category = s.classifier.Classify(p.Type)
	}
	if patch.TypeVersion != nil {
		p.TypeVersion = *patch.TypeVersion
	}
	if patch.Parameters != nil {
		p.Parameters = maps.Clone(patch.Parameters)
	}
	if patch.Credentials != nil {
		p.Credentials = maps.Clone(patch.Credentials)
	}
	return n
}

// ApplyCredential attaches ref to node id under the credential kind. It is
// an [Store.UpdateNodePayload] that keeps the node's other credentials.
func (s *Store) ApplyCredential(id, kind string, ref workflow.CredentialRef) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.g
	if i := s.g.NodeIndex(id); i >= 0 {
		creds := maps.Clone(s.g.Nodes[i].Payload.Credentials)
		if creds == nil {
			creds = map[string]workflow.CredentialRef{}
		}
		creds[kind] = ref
		next.Nodes = slices.Clone(s.g.Nodes)
		next.Nodes[i] = s.patched(s.g.Nodes[i], PayloadPatch{Credentials: creds})
	}
	s.commit(OpUpdatePayload, next, true)
}

// RemoveNode removes node id and every edge touching it, clearing the
// selection if it pointed at the node. It reports whether a node was
// removed; removing a missing id changes nothing.
func (s *Store) RemoveNode(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.g.NodeIndex(id)
	if i < 0 {
		return false
	}
	next := s.g
	next.Nodes = slices.Delete(slices.Clone(s.g.Nodes), i, i+1)
	next.Edges = slices.DeleteFunc(slices.Clone(s.g.Edges), func(e graph.Edge) bool { return e.Touches(id) })
	if next.SelectedID == id {
		next.SelectedID = ""
	}
	s.commit(OpRemoveNode, next, true)
	return true
}

// =============================================================================
// Edge operations
// =============================================================================

// ApplyEdgeAdd appends e and returns its id. The store does not validate
// the connection: self-loops and unknown endpoints are accepted. An empty
// or already used id is replaced by the next sequential edge id, and empty
// handles default to the main port.
func (s *Store) ApplyEdgeAdd(e graph.Edge) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ID == "" || s.g.EdgeIndex(e.ID) >= 0 {
		e.ID = graph.NextEdgeID(s.g)
	}
	if e.SourceHandle == "" {
		e.SourceHandle = workflow.PortMain
	}
	if e.TargetHandle == "" {
		e.TargetHandle = workflow.PortMain
	}

	next := s.g
	next.Edges = append(slices.Clone(s.g.Edges), e)
	s.commit(OpAddEdge, next, true)
	return e.ID
}

// RemoveEdge removes edge id and reports whether it existed.
func (s *Store) RemoveEdge(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.g.EdgeIndex(id)
	if i < 0 {
		return false
	}
	next := s.g
	next.Edges = slices.Delete(slices.Clone(s.g.Edges), i, i+1)
	s.commit(OpRemoveEdge, next, true)
	return true
}
