package graph

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

const edgeIDPrefix = "edge-"

// EdgeID returns the sequential edge id for position i ("edge-0", "edge-1", ...).
func EdgeID(i int) string { return fmt.Sprintf("%s%d", edgeIDPrefix, i) }

// NewNodeID returns a fresh random node id for nodes created in the editor.
func NewNodeID() string { return uuid.NewString() }

// NextEdgeID returns an edge id that is not used by any edge of g. It
// continues the sequential "edge-N" numbering after the highest suffix in
// use, falling back to a random id if that slot is somehow taken.
func NextEdgeID(g Graph) string {
	next := 0
	used := make(map[string]struct{}, len(g.Edges))
	for _, e := range g.Edges {
		used[e.ID] = struct{}{}
		if s, ok := strings.CutPrefix(e.ID, edgeIDPrefix); ok {
			if n, err := strconv.Atoi(s); err == nil && n >= next {
				next = n + 1
			}
		}
	}
	id := EdgeID(next)
	if _, taken := used[id]; taken {
		return edgeIDPrefix + uuid.NewString()
	}
	return id
}
