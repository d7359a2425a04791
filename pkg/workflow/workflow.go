package workflow

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Point is an (x, y) canvas coordinate, encoded as a two-element array.
type Point [2]float64

// CredentialRef points at a credential record stored by the automation tool.
type CredentialRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Field is an unmodeled JSON key kept for passthrough.
type Field struct {
	Key   string
	Value json.RawMessage
}

// Node is one serialized workflow node.
type Node struct {
	ID          string
	Name        string
	Type        string
	TypeVersion float64
	Position    Point
	Parameters  map[string]any
	Credentials map[string]CredentialRef

	// Extra holds unknown keys in input order.
	Extra []Field
}

// Workflow is a serialized workflow document.
//
// Nodes is nil when the input had no node array; an empty array decodes to
// an empty, non-nil slice.
type Workflow struct {
	ID          string
	Name        string
	Nodes       []Node
	Connections Connections
	Active      bool
	Settings    map[string]any
	Tags        []any

	Extra []Field
}

// HasNodeList reports whether the document carried a node array.
func (w *Workflow) HasNodeList() bool { return w.Nodes != nil }

// UnmarshalJSON decodes a node, keeping unknown keys in Extra.
func (n *Node) UnmarshalJSON(data []byte) error {
	*n = Node{}
	return decodeObject(data, func(key string, raw json.RawMessage) error {
		switch key {
		case "id":
			lenient(raw, &n.ID)
		case "name":
			lenient(raw, &n.Name)
		case "type":
			lenient(raw, &n.Type)
		case "typeVersion":
			lenient(raw, &n.TypeVersion)
		case "position":
			var xy []float64
			if lenient(raw, &xy) {
				copy(n.Position[:], xy)
			}
		case "parameters":
			lenientNumbers(raw, &n.Parameters)
		case "credentials":
			lenient(raw, &n.Credentials)
		default:
			n.Extra = append(n.Extra, Field{Key: key, Value: raw})
		}
		return nil
	})
}

// MarshalJSON encodes known fields first, then Extra in its stored order.
func (n Node) MarshalJSON() ([]byte, error) {
	params := n.Parameters
	if params == nil {
		params = map[string]any{}
	}
	ow := newObjectWriter()
	ow.field("id", n.ID)
	ow.field("name", n.Name)
	ow.field("type", n.Type)
	ow.field("typeVersion", n.TypeVersion)
	ow.field("position", n.Position)
	ow.field("parameters", params)
	if n.Credentials != nil {
		ow.field("credentials", n.Credentials)
	}
	ow.extra(n.Extra)
	return ow.bytes()
}

// UnmarshalJSON decodes a workflow document.
func (w *Workflow) UnmarshalJSON(data []byte) error {
	*w = Workflow{}
	return decodeObject(data, func(key string, raw json.RawMessage) error {
		switch key {
		case "id":
			lenient(raw, &w.ID)
		case "name":
			lenient(raw, &w.Name)
		case "nodes":
			if !isArray(raw) {
				return nil
			}
			nodes := []Node{}
			if err := json.Unmarshal(raw, &nodes); err != nil {
				return fmt.Errorf("nodes: %w", err)
			}
			w.Nodes = nodes
		case "connections":
			if err := w.Connections.UnmarshalJSON(raw); err != nil {
				return fmt.Errorf("connections: %w", err)
			}
		case "active":
			lenient(raw, &w.Active)
		case "settings":
			lenientNumbers(raw, &w.Settings)
		case "tags":
			lenient(raw, &w.Tags)
		default:
			w.Extra = append(w.Extra, Field{Key: key, Value: raw})
		}
		return nil
	})
}

// MarshalJSON encodes the workflow with a stable key order.
func (w Workflow) MarshalJSON() ([]byte, error) {
	nodes := w.Nodes
	if nodes == nil {
		nodes = []Node{}
	}
	ow := newObjectWriter()
	if w.ID != "" {
		ow.field("id", w.ID)
	}
	ow.field("name", w.Name)
	ow.field("nodes", nodes)
	ow.field("connections", w.Connections)
	ow.field("active", w.Active)
	if w.Settings != nil {
		ow.field("settings", w.Settings)
	}
	if w.Tags != nil {
		ow.field("tags", w.Tags)
	}
	ow.extra(w.Extra)
	return ow.bytes()
}

// lenient decodes raw into v, leaving v untouched on a type mismatch.
func lenient(raw json.RawMessage, v any) bool {
	return json.Unmarshal(raw, v) == nil
}

// lenientNumbers is lenient with numbers kept as [json.Number], so large
// integers survive a round trip unchanged.
func lenientNumbers(raw json.RawMessage, v any) bool {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(v) == nil
}

func isArray(raw json.RawMessage) bool {
	return firstByte(raw) == '['
}

func isObject(raw json.RawMessage) bool {
	return firstByte(raw) == '{'
}

func firstByte(raw json.RawMessage) byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}
