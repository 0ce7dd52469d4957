package graphapi

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/vanshika/pathlight/internal/domain"
	"github.com/vanshika/pathlight/internal/graphmodel"
)

// Health probes the service.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.do(ctx, call{op: "health", method: http.MethodGet, path: "/health"})
	return err
}

// ListNodes returns the nodes of graph. Entries may be plain ids or objects.
func (c *Client) ListNodes(ctx context.Context, graph domain.GraphContext) ([]graphmodel.RawNode, error) {
	body, err := c.do(ctx, call{op: "list nodes", method: http.MethodGet, path: "/nodes", graph: graph})
	if err != nil {
		return nil, err
	}
	var payload struct {
		Nodes []json.RawMessage `json:"nodes"`
	}
	if err := decode("list nodes", body, &payload); err != nil {
		return nil, err
	}
	nodes := make([]graphmodel.RawNode, 0, len(payload.Nodes))
	for _, raw := range payload.Nodes {
		var id string
		if err := json.Unmarshal(raw, &id); err == nil {
			nodes = append(nodes, graphmodel.RawNode{ID: id})
			continue
		}
		var obj map[string]any
		if err := json.Unmarshal(raw, &obj); err != nil {
			continue
		}
		nodeID := text(first(obj, "id", "track_name", "name"))
		if nodeID == "" {
			nodeID = string(raw)
		}
		nodes = append(nodes, graphmodel.RawNode{
			ID:     nodeID,
			Degree: first(obj, "grau", "degree"),
			Region: first(obj, "microrregiao", "region"),
		})
	}
	return nodes, nil
}

// ListEdges returns the edges of graph in either supported field naming.
func (c *Client) ListEdges(ctx context.Context, graph domain.GraphContext) ([]graphmodel.RawEdge, error) {
	body, err := c.do(ctx, call{op: "list edges", method: http.MethodGet, path: "/edges", graph: graph})
	if err != nil {
		return nil, err
	}
	var payload struct {
		Edges []map[string]any `json:"edges"`
	}
	if err := decode("list edges", body, &payload); err != nil {
		return nil, err
	}
	edges := make([]graphmodel.RawEdge, 0, len(payload.Edges))
	for _, obj := range payload.Edges {
		edges = append(edges, graphmodel.RawEdge{
			Source: text(first(obj, "bairro_origem", "source", "origem")),
			Target: text(first(obj, "bairro_destino", "target", "destino")),
			Weight: first(obj, "peso", "weight"),
			Label:  text(first(obj, "logradouro", "label")),
		})
	}
	return edges, nil
}

// ShortestPath asks the service for the cheapest path between two nodes.
func (c *Client) ShortestPath(ctx context.Context, graph domain.GraphContext, origin, destination string) (domain.Path, error) {
	body, err := c.do(ctx, call{
		op:      "shortest path",
		method:  http.MethodGet,
		path:    "/dijkstra",
		graph:   graph,
		params:  url.Values{"orig": {origin}, "dest": {destination}},
		timeout: c.timeouts.ShortestPath,
	})
	if err != nil {
		return domain.Path{}, err
	}
	var payload struct {
		Caminho []string `json:"caminho"`
		Path    []string `json:"path"`
		Custo   *float64 `json:"custo"`
		Cost    *float64 `json:"cost"`
		Ruas    []string `json:"ruas"`
	}
	if err := decode("shortest path", body, &payload); err != nil {
		return domain.Path{}, err
	}
	path := domain.Path{Nodes: payload.Caminho, Cost: payload.Custo, Streets: payload.Ruas}
	if len(path.Nodes) == 0 {
		path.Nodes = payload.Path
	}
	if path.Cost == nil {
		path.Cost = payload.Cost
	}
	return path, nil
}

// Distances returns the single-source distances from origin. Unreachable
// nodes map to nil.
func (c *Client) Distances(ctx context.Context, graph domain.GraphContext, origin string) (map[string]*float64, error) {
	body, err := c.do(ctx, call{
		op:      "distances",
		method:  http.MethodGet,
		path:    "/bellman-ford",
		graph:   graph,
		params:  url.Values{"orig": {origin}},
		timeout: c.timeouts.Distances,
	})
	if err != nil {
		return nil, err
	}
	var payload struct {
		Distances map[string]any `json:"distances"`
		Dist      map[string]any `json:"dist"`
	}
	if err := decode("distances", body, &payload); err != nil {
		return nil, err
	}
	raw := payload.Distances
	if raw == nil {
		raw = payload.Dist
	}
	out := make(map[string]*float64, len(raw))
	for id, v := range raw {
		out[id] = distance(v)
	}
	return out, nil
}

// BreadthFirst returns the breadth-first visiting order from source.
func (c *Client) BreadthFirst(ctx context.Context, graph domain.GraphContext, source string) ([]string, error) {
	return c.order(ctx, "bfs", "/bfs", graph, url.Values{"source": {source}})
}

// DepthFirst returns the depth-first visiting order from source.
func (c *Client) DepthFirst(ctx context.Context, graph domain.GraphContext, source string) ([]string, error) {
	return c.order(ctx, "dfs", "/dfs", graph, url.Values{"sources": {source}})
}

func (c *Client) order(ctx context.Context, op, path string, graph domain.GraphContext, params url.Values) ([]string, error) {
	body, err := c.do(ctx, call{op: op, method: http.MethodGet, path: path, graph: graph, params: params, timeout: c.timeouts.Traversal})
	if err != nil {
		return nil, err
	}
	var payload struct {
		Order []any `json:"order"`
	}
	if err := decode(op, body, &payload); err != nil {
		return nil, err
	}
	order := make([]string, 0, len(payload.Order))
	for _, v := range payload.Order {
		if s := text(v); s != "" {
			order = append(order, s)
		}
	}
	return order, nil
}

// ExportStatic asks the service to write its static HTML renderings and
// returns the acknowledgement payload.
func (c *Client) ExportStatic(ctx context.Context) (map[string]any, error) {
	body, err := c.do(ctx, call{op: "export", method: http.MethodPost, path: "/export/static-html"})
	if err != nil {
		return nil, err
	}
	ack := map[string]any{}
	if len(strings.TrimSpace(string(body))) == 0 {
		return ack, nil
	}
	if err := json.Unmarshal(body, &ack); err != nil {
		return map[string]any{"response": strings.TrimSpace(string(body))}, nil
	}
	return ack, nil
}

func first(obj map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := obj[k]; ok && v != nil && v != "" {
			return v
		}
	}
	return nil
}

func text(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

func distance(v any) *float64 {
	var d float64
	switch t := v.(type) {
	case float64:
		d = t
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return nil
		}
		d = parsed
	default:
		return nil
	}
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return nil
	}
	return &d
}
