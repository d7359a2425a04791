// Package workflow models the serialized workflow format exchanged with the
// workflow-automation tool (n8n-style JSON).
//
// # Format
//
//	{
//	  "name": "Lead intake",
//	  "nodes": [
//	    {"id": "A", "name": "Start", "type": "n8n-nodes-base.manualTrigger",
//	     "typeVersion": 1, "position": [0, 0], "parameters": {}}
//	  ],
//	  "connections": {
//	    "A": {"main": [[{"node": "B", "type": "main", "index": 0}]]}
//	  },
//	  "active": false
//	}
//
// The connection map is keyed by source node id, then by output port name,
// and holds an array of buckets (one per output slot), each bucket an array
// of target descriptors.
//
// # Ordering
//
// JSON objects are unordered, but the order of the connection map is a
// contract for the graph importer: edge ids are assigned in traversal order.
// [Connections] therefore decodes objects token by token and keeps the key
// order of the input. Re-encoding writes the keys back in the same order.
//
// # Passthrough
//
// Keys this package does not model ("disabled", "notes", "webhookId", ...)
// are kept verbatim in [Node.Extra] and re-emitted after the known fields,
// so unknown node data survives a trip through the editor.
//
// # Tolerance
//
// Only the node list is checked, and only by the graph importer: a document
// whose "nodes" key is missing or not an array decodes with a nil
// [Workflow.Nodes]. Other shape deviations are tolerated: a missing
// "connections" object decodes as empty, a known node field with an
// unexpected JSON type is ignored.
package workflow
