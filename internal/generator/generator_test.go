package generator

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanshika/pathlight/internal/domain"
	"github.com/vanshika/pathlight/internal/graphmodel"
)

func TestGenerateIsConnectedAndDeterministic(t *testing.T) {
	cfg := Config{NumNodes: 40, AvgDegree: 3, Regions: 4, MaxWeight: 5, Seed: 7}
	first, err := New(cfg).Generate(context.Background())
	require.NoError(t, err)
	second, err := New(cfg).Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)

	require.Len(t, first.Nodes, 40)
	assert.Len(t, first.Edges, 60)

	// union-find over the generated links
	parent := map[string]string{}
	var find func(string) string
	find = func(id string) string {
		if parent[id] == "" || parent[id] == id {
			parent[id] = id
			return id
		}
		root := find(parent[id])
		parent[id] = root
		return root
	}
	for _, e := range first.Edges {
		assert.NotEqual(t, e.Source, e.Target)
		assert.GreaterOrEqual(t, e.Weight, 1.0)
		assert.LessOrEqual(t, e.Weight, 5.0)
		parent[find(e.Source)] = find(e.Target)
	}
	root := find(first.Nodes[0].ID)
	for _, n := range first.Nodes {
		assert.Equal(t, root, find(n.ID), n.ID)
	}
}

func TestRawFeedsGraphModel(t *testing.T) {
	ds, err := New(Config{NumNodes: 10, AvgDegree: 2, Seed: 1}).Generate(context.Background())
	require.NoError(t, err)

	nodes, edges := ds.Raw()
	model, report := graphmodel.New(domain.GraphNeighborhoods, nodes, edges)
	assert.Equal(t, 10, model.NodeCount())
	assert.Equal(t, len(ds.Edges), model.EdgeCount())
	assert.Zero(t, report.DroppedEdges)
	assert.Zero(t, report.ParallelEdges)
}

func TestGenerateHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(Config{NumNodes: 5, Seed: 1}).Generate(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWriteDatasetUsesServiceShape(t *testing.T) {
	ds, err := New(Config{NumNodes: 3, AvgDegree: 2, Seed: 3}).Generate(context.Background())
	require.NoError(t, err)
	dir := t.TempDir()
	require.NoError(t, WriteDataset(ds, dir))

	raw, err := os.ReadFile(filepath.Join(dir, "edges.json"))
	require.NoError(t, err)
	var payload struct {
		Count int              `json:"count"`
		Edges []map[string]any `json:"edges"`
	}
	require.NoError(t, json.Unmarshal(raw, &payload))
	assert.Equal(t, len(ds.Edges), payload.Count)
	assert.Contains(t, payload.Edges[0], "bairro_origem")
	assert.Contains(t, payload.Edges[0], "peso")
}
