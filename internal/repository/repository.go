// Package repository is the Neo4j query backend. It answers the same calls as
// the remote graph query service using parameterized Cypher and the Graph
// Data Science library.
package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/vanshika/pathlight/internal/domain"
	"github.com/vanshika/pathlight/internal/graph"
	"github.com/vanshika/pathlight/internal/graphmodel"
)

var (
	// ErrNodeNotFound is returned when a query names an id absent from the graph.
	ErrNodeNotFound = errors.New("node not found")
	// ErrExportUnsupported is returned by ExportStatic on this backend.
	ErrExportUnsupported = errors.New("static export is only available from the graph query service")
)

// Repository runs graph queries against Neo4j.
type Repository struct {
	client graph.Client
	logger *slog.Logger

	mu        sync.Mutex
	projected map[domain.GraphContext]bool
}

// New instantiates a Repository backed by the supplied graph client.
func New(client graph.Client, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		client:    client,
		logger:    logger.With("component", "repository"),
		projected: map[domain.GraphContext]bool{},
	}
}

// ProjectionName is the in-memory GDS graph used for a context.
func ProjectionName(g domain.GraphContext) string {
	return "pathlight-" + string(g)
}

// Health verifies the database is reachable.
func (r *Repository) Health(ctx context.Context) error {
	if err := r.client.VerifyConnectivity(ctx); err != nil {
		return fmt.Errorf("verify connectivity: %w", err)
	}
	return nil
}

// ListNodes returns the vertices of a context ordered by id.
func (r *Repository) ListNodes(ctx context.Context, g domain.GraphContext) ([]graphmodel.RawNode, error) {
	res, err := r.client.ExecuteRead(ctx, listNodesCypher, map[string]any{"context": string(g)})
	if err != nil {
		return nil, fmt.Errorf("list nodes query: %w", err)
	}
	nodes := make([]graphmodel.RawNode, 0, len(res.Records))
	for _, rec := range res.Records {
		nodes = append(nodes, graphmodel.RawNode{
			ID:     toString(rec["id"]),
			Degree: numeric(rec["degree"]),
			Region: rec["region"],
		})
	}
	return nodes, nil
}

// ListEdges returns the links of a context.
func (r *Repository) ListEdges(ctx context.Context, g domain.GraphContext) ([]graphmodel.RawEdge, error) {
	res, err := r.client.ExecuteRead(ctx, listEdgesCypher, map[string]any{"context": string(g)})
	if err != nil {
		return nil, fmt.Errorf("list edges query: %w", err)
	}
	edges := make([]graphmodel.RawEdge, 0, len(res.Records))
	for _, rec := range res.Records {
		edges = append(edges, graphmodel.RawEdge{
			Source: toString(rec["source"]),
			Target: toString(rec["target"]),
			Weight: numeric(rec["weight"]),
			Label:  toString(rec["label"]),
		})
	}
	return edges, nil
}

// ShortestPath runs weighted Dijkstra between two vertices. An empty path
// means both exist but are not connected.
func (r *Repository) ShortestPath(ctx context.Context, g domain.GraphContext, origin, destination string) (domain.Path, error) {
	if origin == "" || destination == "" {
		return domain.Path{}, errors.New("origin and destination are required")
	}
	if err := r.requireNodes(ctx, g, origin, destination); err != nil {
		return domain.Path{}, err
	}
	if origin == destination {
		zero := 0.0
		return domain.Path{Nodes: []string{origin}, Cost: &zero}, nil
	}
	if err := r.ensureProjection(ctx, g); err != nil {
		return domain.Path{}, err
	}

	res, err := r.client.ExecuteRead(ctx, dijkstraCypher, map[string]any{
		"context":     string(g),
		"projection":  ProjectionName(g),
		"origin":      origin,
		"destination": destination,
	})
	if err != nil {
		return domain.Path{}, fmt.Errorf("shortest path query: %w", err)
	}
	rec := res.First()
	if rec == nil {
		return domain.Path{}, nil
	}
	path := domain.Path{Nodes: toStrings(rec["path"])}
	if cost, ok := toFloat(rec["cost"]); ok {
		path.Cost = &cost
	}

	streets, err := r.streets(ctx, g, path.Nodes)
	if err != nil {
		return domain.Path{}, err
	}
	path.Streets = streets
	return path, nil
}

func (r *Repository) streets(ctx context.Context, g domain.GraphContext, nodes []string) ([]string, error) {
	if len(nodes) < 2 {
		return nil, nil
	}
	res, err := r.client.ExecuteRead(ctx, streetsCypher, map[string]any{
		"context": string(g),
		"path":    nodes,
	})
	if err != nil {
		return nil, fmt.Errorf("path streets query: %w", err)
	}
	streets := make([]string, len(nodes)-1)
	for _, rec := range res.Records {
		idx, ok := toFloat(rec["step"])
		if !ok || int(idx) < 0 || int(idx) >= len(streets) {
			continue
		}
		streets[int(idx)] = toString(rec["label"])
	}
	return streets, nil
}

// Distances runs Bellman-Ford from origin. Vertices the search never reached
// map to nil.
func (r *Repository) Distances(ctx context.Context, g domain.GraphContext, origin string) (map[string]*float64, error) {
	if err := r.requireNodes(ctx, g, origin); err != nil {
		return nil, err
	}
	nodes, err := r.ListNodes(ctx, g)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*float64, len(nodes))
	for _, n := range nodes {
		out[n.ID] = nil
	}
	zero := 0.0
	out[origin] = &zero

	if err := r.ensureProjection(ctx, g); err != nil {
		return nil, err
	}
	res, err := r.client.ExecuteRead(ctx, bellmanFordCypher, map[string]any{
		"context":    string(g),
		"projection": ProjectionName(g),
		"origin":     origin,
	})
	if err != nil {
		return nil, fmt.Errorf("bellman-ford query: %w", err)
	}
	for _, rec := range res.Records {
		cost, ok := toFloat(rec["cost"])
		if !ok || math.IsInf(cost, 0) || math.IsNaN(cost) {
			continue
		}
		c := cost
		out[toString(rec["id"])] = &c
	}
	return out, nil
}

// BreadthFirst returns the breadth-first visiting order from source.
func (r *Repository) BreadthFirst(ctx context.Context, g domain.GraphContext, source string) ([]string, error) {
	return r.traverse(ctx, g, source, bfsCypher, "bfs")
}

// DepthFirst returns the depth-first visiting order from source.
func (r *Repository) DepthFirst(ctx context.Context, g domain.GraphContext, source string) ([]string, error) {
	return r.traverse(ctx, g, source, dfsCypher, "dfs")
}

func (r *Repository) traverse(ctx context.Context, g domain.GraphContext, source, cypher, op string) ([]string, error) {
	if err := r.requireNodes(ctx, g, source); err != nil {
		return nil, err
	}
	if err := r.ensureProjection(ctx, g); err != nil {
		return nil, err
	}
	res, err := r.client.ExecuteRead(ctx, cypher, map[string]any{
		"context":    string(g),
		"projection": ProjectionName(g),
		"source":     source,
	})
	if err != nil {
		return nil, fmt.Errorf("%s query: %w", op, err)
	}
	rec := res.First()
	if rec == nil {
		return []string{source}, nil
	}
	return toStrings(rec["order"]), nil
}

// ExportStatic is not available on this backend.
func (r *Repository) ExportStatic(context.Context) (map[string]any, error) {
	return nil, ErrExportUnsupported
}

func (r *Repository) requireNodes(ctx context.Context, g domain.GraphContext, ids ...string) error {
	res, err := r.client.ExecuteRead(ctx, findNodesCypher, map[string]any{
		"context": string(g),
		"ids":     ids,
	})
	if err != nil {
		return fmt.Errorf("lookup nodes: %w", err)
	}
	found := map[string]bool{}
	if rec := res.First(); rec != nil {
		for _, id := range toStrings(rec["found"]) {
			found[id] = true
		}
	}
	for _, id := range ids {
		if !found[id] {
			return &domain.RemoteError{
				Op:     "lookup nodes",
				Detail: fmt.Sprintf("%s: %s", ErrNodeNotFound, id),
				Err:    ErrNodeNotFound,
			}
		}
	}
	return nil
}

// ensureProjection creates the GDS in-memory graph for a context once per
// process, reusing an existing projection of the same name.
func (r *Repository) ensureProjection(ctx context.Context, g domain.GraphContext) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.projected[g] {
		return nil
	}
	name := ProjectionName(g)
	res, err := r.client.ExecuteRead(ctx, projectionExistsCypher, map[string]any{"projection": name})
	if err != nil {
		return fmt.Errorf("check projection %s: %w", name, err)
	}
	exists, _ := res.First()["exists"].(bool)
	if !exists {
		if _, err := r.client.ExecuteWrite(ctx, projectCypher, map[string]any{
			"context":    string(g),
			"projection": name,
		}); err != nil {
			return fmt.Errorf("project graph %s: %w", name, err)
		}
		r.logger.Info("graph projected", "projection", name)
	}
	r.projected[g] = true
	return nil
}

// dropProjection forgets the projection of a context so the next query
// rebuilds it from the stored vertices.
func (r *Repository) dropProjection(ctx context.Context, g domain.GraphContext) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := r.client.ExecuteWrite(ctx, dropProjectionCypher, map[string]any{"projection": ProjectionName(g)}); err != nil {
		return fmt.Errorf("drop projection: %w", err)
	}
	delete(r.projected, g)
	return nil
}

func toString(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case []byte:
		return string(v)
	case int64:
		return fmt.Sprintf("%d", v)
	case float64:
		return fmt.Sprintf("%g", v)
	default:
		return ""
	}
}

func toFloat(val any) (float64, bool) {
	switch v := val.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}

// numeric converts driver integers to float64 so graphmodel treats every
// backend alike; other values pass through.
func numeric(val any) any {
	if f, ok := toFloat(val); ok {
		return f
	}
	return val
}

func toStrings(val any) []string {
	switch v := val.(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s := toString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
