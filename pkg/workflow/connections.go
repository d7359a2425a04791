package workflow

import (
	"encoding/json"
	"fmt"
)

// PortMain is the conventional name of a node's primary input and output.
const PortMain = "main"

// Connection is one target descriptor inside a bucket.
type Connection struct {
	Node  string `json:"node"`
	Type  string `json:"type"`
	Index int    `json:"index"`
}

// Bucket is the ordered list of targets fed by one output slot.
type Bucket []Connection

// Output holds the buckets of one named output port; the bucket index is
// the output slot number.
type Output struct {
	Port    string
	Buckets []Bucket
}

// SourceConnections holds every output port of one source node.
type SourceConnections struct {
	Source  string
	Outputs []Output
}

// Connections is the connection map, kept in document order.
//
// A duplicated key replaces the earlier value in place, matching how a
// JSON object with repeated keys is usually read.
type Connections []SourceConnections

// Each calls fn for every connection in traversal order: sources, then
// output ports, then buckets, then entries.
func (c Connections) Each(fn func(source, port string, slot int, conn Connection)) {
	for _, sc := range c {
		for _, out := range sc.Outputs {
			for slot, bucket := range out.Buckets {
				for _, conn := range bucket {
					fn(sc.Source, out.Port, slot, conn)
				}
			}
		}
	}
}

// Count returns the total number of target descriptors.
func (c Connections) Count() int {
	n := 0
	c.Each(func(string, string, int, Connection) { n++ })
	return n
}

// Append adds conn to the given slot of source's port, creating the source,
// the port and any missing buckets in first-seen order.
func (c *Connections) Append(source, port string, slot int, conn Connection) {
	si := -1
	for i := range *c {
		if (*c)[i].Source == source {
			si = i
			break
		}
	}
	if si < 0 {
		*c = append(*c, SourceConnections{Source: source})
		si = len(*c) - 1
	}
	sc := &(*c)[si]

	oi := -1
	for i := range sc.Outputs {
		if sc.Outputs[i].Port == port {
			oi = i
			break
		}
	}
	if oi < 0 {
		sc.Outputs = append(sc.Outputs, Output{Port: port})
		oi = len(sc.Outputs) - 1
	}
	out := &sc.Outputs[oi]

	for len(out.Buckets) <= slot {
		out.Buckets = append(out.Buckets, Bucket{})
	}
	out.Buckets[slot] = append(out.Buckets[slot], conn)
}

// UnmarshalJSON decodes the nested connection map preserving key order.
// Shape deviations are dropped rather than reported: a non-object map,
// source or port map decodes as empty, a non-array bucket as an empty
// bucket, and a non-object entry is skipped. Entry fields of the wrong
// type keep their zero value.
func (c *Connections) UnmarshalJSON(data []byte) error {
	var out Connections
	if !isObject(data) {
		*c = out
		return nil
	}
	err := decodeObject(data, func(source string, raw json.RawMessage) error {
		sc := SourceConnections{Source: source}
		if isObject(raw) {
			err := decodeObject(raw, func(port string, raw json.RawMessage) error {
				if isArray(raw) {
					sc.Outputs = upsertOutput(sc.Outputs, Output{Port: port, Buckets: decodeBuckets(raw)})
				}
				return nil
			})
			if err != nil {
				return fmt.Errorf("%s: %w", source, err)
			}
		}
		out = upsertSource(out, sc)
		return nil
	})
	if err != nil {
		return err
	}
	*c = out
	return nil
}

// decodeBuckets keeps one bucket per array element so slot numbers line
// up with the input.
func decodeBuckets(raw json.RawMessage) []Bucket {
	var elems []json.RawMessage
	if !lenient(raw, &elems) {
		return nil
	}
	buckets := make([]Bucket, len(elems))
	for i, elem := range elems {
		var entries []json.RawMessage
		if !isArray(elem) || !lenient(elem, &entries) {
			continue
		}
		for _, e := range entries {
			if conn, ok := decodeConnection(e); ok {
				buckets[i] = append(buckets[i], conn)
			}
		}
	}
	return buckets
}

func decodeConnection(raw json.RawMessage) (Connection, bool) {
	var conn Connection
	if !isObject(raw) {
		return conn, false
	}
	err := decodeObject(raw, func(key string, raw json.RawMessage) error {
		switch key {
		case "node":
			lenient(raw, &conn.Node)
		case "type":
			lenient(raw, &conn.Type)
		case "index":
			lenient(raw, &conn.Index)
		}
		return nil
	})
	return conn, err == nil
}

// MarshalJSON encodes the connection map in stored order.
func (c Connections) MarshalJSON() ([]byte, error) {
	ow := newObjectWriter()
	for _, sc := range c {
		ports := newObjectWriter()
		for _, out := range sc.Outputs {
			buckets := make([]Bucket, len(out.Buckets))
			for i, b := range out.Buckets {
				if b == nil {
					b = Bucket{}
				}
				buckets[i] = b
			}
			ports.field(out.Port, buckets)
		}
		val, err := ports.bytes()
		if err != nil {
			return nil, err
		}
		ow.raw(sc.Source, val)
	}
	return ow.bytes()
}

func upsertSource(list Connections, sc SourceConnections) Connections {
	for i := range list {
		if list[i].Source == sc.Source {
			list[i] = sc
			return list
		}
	}
	return append(list, sc)
}

func upsertOutput(list []Output, o Output) []Output {
	for i := range list {
		if list[i].Port == o.Port {
			list[i] = o
			return list
		}
	}
	return append(list, o)
}
