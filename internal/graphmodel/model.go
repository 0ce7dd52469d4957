// Package graphmodel turns raw node and edge payloads into the immutable graph
// shape used for rendering and lookups.
package graphmodel

import (
	"math"
	"strconv"
	"strings"

	"github.com/vanshika/pathlight/internal/domain"
	"github.com/vanshika/pathlight/internal/edgekey"
)

// RawNode is a node as delivered by a backend. Degree and Region keep
// whatever dynamic type the payload carried.
type RawNode struct {
	ID     string
	Degree any
	Region any
}

// RawEdge is an edge as delivered by a backend.
type RawEdge struct {
	Source string
	Target string
	Weight any
	Label  string
}

// Link is a renderable edge together with its canonical key.
type Link struct {
	Key  string
	Edge domain.Edge
}

// Report summarizes the repairs applied while normalizing a payload.
type Report struct {
	DuplicateNodes   int
	ImplicitNodes    int
	DroppedEdges     int
	DefaultedWeights int
	ParallelEdges    int
}

// Model is a normalized, read-only graph. A reload builds a new Model.
type Model struct {
	graph domain.GraphContext
	nodes []domain.Node
	index map[string]int
	links []Link
	byKey map[string][]int
}

// New normalizes raw payloads. Node ids are trimmed and deduplicated (first
// occurrence wins); edges with an empty endpoint are dropped; endpoints
// missing from the node list become implicit nodes; weights default to 1.
func New(graph domain.GraphContext, rawNodes []RawNode, rawEdges []RawEdge) (*Model, Report) {
	m := &Model{
		graph: graph,
		nodes: make([]domain.Node, 0, len(rawNodes)),
		index: make(map[string]int, len(rawNodes)),
		links: make([]Link, 0, len(rawEdges)),
		byKey: make(map[string][]int, len(rawEdges)),
	}
	var report Report
	explicitDegree := make(map[string]bool, len(rawNodes))

	for _, raw := range rawNodes {
		id := strings.TrimSpace(raw.ID)
		if id == "" {
			continue
		}
		if _, exists := m.index[id]; exists {
			report.DuplicateNodes++
			continue
		}
		degree, ok := toDegree(raw.Degree)
		explicitDegree[id] = ok
		m.index[id] = len(m.nodes)
		m.nodes = append(m.nodes, domain.Node{
			ID:     id,
			Degree: degree,
			Region: toRegion(raw.Region),
		})
	}

	incident := make(map[string]int)
	for _, raw := range rawEdges {
		source := strings.TrimSpace(raw.Source)
		target := strings.TrimSpace(raw.Target)
		if source == "" || target == "" {
			report.DroppedEdges++
			continue
		}
		for _, id := range []string{source, target} {
			if _, exists := m.index[id]; !exists {
				m.index[id] = len(m.nodes)
				m.nodes = append(m.nodes, domain.Node{ID: id})
				report.ImplicitNodes++
			}
		}

		weight, ok := toWeight(raw.Weight)
		if !ok {
			report.DefaultedWeights++
		}
		key := edgekey.Key(source, target)
		if len(m.byKey[key]) > 0 {
			report.ParallelEdges++
		}
		m.byKey[key] = append(m.byKey[key], len(m.links))
		m.links = append(m.links, Link{
			Key: key,
			Edge: domain.Edge{
				Source: source,
				Target: target,
				Weight: weight,
				Label:  strings.TrimSpace(raw.Label),
			},
		})
		incident[source]++
		if target != source {
			incident[target]++
		}
	}

	for i := range m.nodes {
		if !explicitDegree[m.nodes[i].ID] {
			m.nodes[i].Degree = incident[m.nodes[i].ID]
		}
	}

	return m, report
}

// Graph returns the context the model was loaded for.
func (m *Model) Graph() domain.GraphContext {
	return m.graph
}

// NodeCount returns the number of nodes.
func (m *Model) NodeCount() int {
	if m == nil {
		return 0
	}
	return len(m.nodes)
}

// EdgeCount returns the number of links, parallel edges included.
func (m *Model) EdgeCount() int {
	if m == nil {
		return 0
	}
	return len(m.links)
}

// Empty reports whether the model holds no nodes.
func (m *Model) Empty() bool {
	return m.NodeCount() == 0
}

// Nodes returns a copy of the nodes in load order.
func (m *Model) Nodes() []domain.Node {
	if m == nil {
		return nil
	}
	return append([]domain.Node(nil), m.nodes...)
}

// Links returns a copy of the links in load order.
func (m *Model) Links() []Link {
	if m == nil {
		return nil
	}
	return append([]Link(nil), m.links...)
}

// IDs returns node ids in load order.
func (m *Model) IDs() []string {
	if m == nil {
		return nil
	}
	ids := make([]string, len(m.nodes))
	for i, n := range m.nodes {
		ids[i] = n.ID
	}
	return ids
}

// Node looks up a node by id.
func (m *Model) Node(id string) (domain.Node, bool) {
	if m == nil {
		return domain.Node{}, false
	}
	idx, ok := m.index[id]
	if !ok {
		return domain.Node{}, false
	}
	return m.nodes[idx], true
}

// Has reports whether id belongs to the model.
func (m *Model) Has(id string) bool {
	_, ok := m.Node(id)
	return ok
}

// Parallel returns every edge sharing the canonical key.
func (m *Model) Parallel(key string) []domain.Edge {
	if m == nil {
		return nil
	}
	idxs := m.byKey[key]
	out := make([]domain.Edge, 0, len(idxs))
	for _, idx := range idxs {
		out = append(out, m.links[idx].Edge)
	}
	return out
}

func toDegree(val any) (int, bool) {
	f, ok := toNumber(val)
	if !ok {
		return 0, false
	}
	if f < 0 {
		return 0, true
	}
	return int(f), true
}

func toWeight(val any) (float64, bool) {
	f, ok := toNumber(val)
	if !ok || f <= 0 {
		return 1, false
	}
	return f, true
}

func toNumber(val any) (float64, bool) {
	var f float64
	switch v := val.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func toRegion(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	default:
		return ""
	}
}
