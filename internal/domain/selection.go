package domain

import "sort"

// Phase is the state of an origin/destination selection.
type Phase string

const (
	PhaseEmpty      Phase = "EMPTY"
	PhaseOriginOnly Phase = "ORIGIN_ONLY"
	PhaseResolved   Phase = "RESOLVED"
)

// Selection holds the currently chosen origin and destination.
type Selection struct {
	Origin      *Node
	Destination *Node
}

// Phase derives the selection phase from the populated fields.
func (s Selection) Phase() Phase {
	switch {
	case s.Origin == nil:
		return PhaseEmpty
	case s.Destination == nil:
		return PhaseOriginOnly
	default:
		return PhaseResolved
	}
}

// OriginID returns the origin id or an empty string.
func (s Selection) OriginID() string {
	if s.Origin == nil {
		return ""
	}
	return s.Origin.ID
}

// DestinationID returns the destination id or an empty string.
func (s Selection) DestinationID() string {
	if s.Destination == nil {
		return ""
	}
	return s.Destination.ID
}

// Clone returns a deep copy safe to hand out in snapshots.
func (s Selection) Clone() Selection {
	var out Selection
	if s.Origin != nil {
		o := *s.Origin
		out.Origin = &o
	}
	if s.Destination != nil {
		d := *s.Destination
		out.Destination = &d
	}
	return out
}

// HighlightSet is the group of nodes and edge keys rendered with emphasis.
type HighlightSet struct {
	Nodes map[string]struct{}
	Edges map[string]struct{}
}

// NewHighlightSet builds a set containing the given node ids and no edges.
func NewHighlightSet(nodes ...string) HighlightSet {
	h := HighlightSet{
		Nodes: make(map[string]struct{}, len(nodes)),
		Edges: map[string]struct{}{},
	}
	for _, id := range nodes {
		h.Nodes[id] = struct{}{}
	}
	return h
}

// HasNode reports whether the node id is highlighted.
func (h HighlightSet) HasNode(id string) bool {
	_, ok := h.Nodes[id]
	return ok
}

// HasEdge reports whether the canonical edge key is highlighted.
func (h HighlightSet) HasEdge(key string) bool {
	_, ok := h.Edges[key]
	return ok
}

// Empty reports whether nothing is highlighted.
func (h HighlightSet) Empty() bool {
	return len(h.Nodes) == 0 && len(h.Edges) == 0
}

// Clone returns an independent copy of the set.
func (h HighlightSet) Clone() HighlightSet {
	out := HighlightSet{
		Nodes: make(map[string]struct{}, len(h.Nodes)),
		Edges: make(map[string]struct{}, len(h.Edges)),
	}
	for k := range h.Nodes {
		out.Nodes[k] = struct{}{}
	}
	for k := range h.Edges {
		out.Edges[k] = struct{}{}
	}
	return out
}

// NodeIDs returns the highlighted node ids in lexical order.
func (h HighlightSet) NodeIDs() []string {
	return sortedKeys(h.Nodes)
}

// EdgeKeys returns the highlighted edge keys in lexical order.
func (h HighlightSet) EdgeKeys() []string {
	return sortedKeys(h.Edges)
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
