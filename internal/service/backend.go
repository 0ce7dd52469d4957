package service

import (
	"context"

	"github.com/vanshika/pathlight/internal/domain"
	"github.com/vanshika/pathlight/internal/graphmodel"
)

// GraphBackend is the query contract required by the explorer. Both the
// HTTP graph API client and the Neo4j repository satisfy it.
type GraphBackend interface {
	Health(ctx context.Context) error
	ListNodes(ctx context.Context, graph domain.GraphContext) ([]graphmodel.RawNode, error)
	ListEdges(ctx context.Context, graph domain.GraphContext) ([]graphmodel.RawEdge, error)
	ShortestPath(ctx context.Context, graph domain.GraphContext, origin, destination string) (domain.Path, error)
	Distances(ctx context.Context, graph domain.GraphContext, origin string) (map[string]*float64, error)
	BreadthFirst(ctx context.Context, graph domain.GraphContext, source string) ([]string, error)
	DepthFirst(ctx context.Context, graph domain.GraphContext, source string) ([]string, error)
	ExportStatic(ctx context.Context) (map[string]any, error)
}
