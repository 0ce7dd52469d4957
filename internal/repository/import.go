package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/vanshika/pathlight/internal/domain"
	"github.com/vanshika/pathlight/internal/graphmodel"
)

// DefaultBatchSize is the number of rows sent per UNWIND statement.
const DefaultBatchSize = 500

// ImportStats summarizes an import.
type ImportStats struct {
	Nodes   int
	Links   int
	Batches int
}

// ImportGraph replaces the stored vertices and links of a context with the
// contents of model and invalidates its projection. Once the context is
// cleared the projection is dropped even when a later batch fails.
func (r *Repository) ImportGraph(ctx context.Context, model *graphmodel.Model, batchSize int) (stats ImportStats, err error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	g := model.Graph()

	if _, err := r.client.ExecuteWrite(ctx, constraintCypher, nil); err != nil {
		return stats, fmt.Errorf("create constraint: %w", err)
	}
	if _, err := r.client.ExecuteWrite(ctx, clearContextCypher, map[string]any{"context": string(g)}); err != nil {
		return stats, fmt.Errorf("clear %s: %w", g, err)
	}
	defer func() {
		if dropErr := r.dropProjection(context.WithoutCancel(ctx), g); dropErr != nil {
			err = errors.Join(err, dropErr)
		}
	}()

	nodes := model.Nodes()
	for start := 0; start < len(nodes); start += batchSize {
		end := min(start+batchSize, len(nodes))
		rows := make([]map[string]any, 0, end-start)
		for _, n := range nodes[start:end] {
			rows = append(rows, vertexParams(n))
		}
		if _, err := r.client.ExecuteWrite(ctx, upsertVerticesCypher, map[string]any{
			"context": string(g),
			"nodes":   rows,
		}); err != nil {
			return stats, fmt.Errorf("upsert vertices %d-%d: %w", start, end, err)
		}
		stats.Nodes += len(rows)
		stats.Batches++
	}

	links := model.Links()
	for start := 0; start < len(links); start += batchSize {
		end := min(start+batchSize, len(links))
		rows := make([]map[string]any, 0, end-start)
		for _, l := range links[start:end] {
			rows = append(rows, linkParams(l.Edge))
		}
		if _, err := r.client.ExecuteWrite(ctx, upsertLinksCypher, map[string]any{
			"context": string(g),
			"links":   rows,
		}); err != nil {
			return stats, fmt.Errorf("create links %d-%d: %w", start, end, err)
		}
		stats.Links += len(rows)
		stats.Batches++
	}

	r.logger.Info("graph imported",
		"graph", g,
		"nodes", stats.Nodes,
		"links", stats.Links,
		"batches", stats.Batches,
	)
	return stats, nil
}

func vertexParams(n domain.Node) map[string]any {
	return map[string]any{
		"id":     n.ID,
		"degree": int64(n.Degree),
		"region": n.Region,
	}
}

func linkParams(e domain.Edge) map[string]any {
	return map[string]any{
		"source": e.Source,
		"target": e.Target,
		"weight": e.Weight,
		"label":  e.Label,
	}
}
