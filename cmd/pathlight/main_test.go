package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanshika/pathlight/internal/domain"
	"github.com/vanshika/pathlight/internal/paint"
)

func graphService(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/dijkstra", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "part2", r.URL.Query().Get("graph"))
		if r.URL.Query().Get("dest") == "Z" {
			_ = json.NewEncoder(w).Encode(map[string]any{"error": "node not found: Z"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"caminho": []string{"A", "B", "C"},
			"custo":   3.5,
			"ruas":    []string{"Rua 1", "Rua 2"},
		})
	})
	mux.HandleFunc("/bfs", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"order": []string{"A", "B", "B", "C", "D"}})
	})
	mux.HandleFunc("/edges", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"count": 1,
			"edges": []map[string]any{{"bairro_origem": "A", "bairro_destino": "B", "peso": 2}},
		})
	})
	mux.HandleFunc("/nodes", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"count": 2,
			"nodes": []map[string]any{{"id": "A", "grau": 3}, {"id": "B", "grau": 1, "microrregiao": "2"}},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestPathCommand(t *testing.T) {
	srv := graphService(t)
	t.Setenv("PATHLIGHT_GRAPH_API_URL", srv.URL)

	out, err := run(t, "path", "A", "C", "--graph", "tracks")
	require.NoError(t, err)
	assert.Contains(t, out, "A → B → C")
	assert.Contains(t, out, "path with 3 nodes")
	assert.Contains(t, out, "cost 3.5")
	assert.Contains(t, out, "Rua 2")

	_, err = run(t, "path", "A", "Z", "-g", "songs")
	assert.EqualError(t, err, "node not found: Z")
}

func TestPlaylistCommand(t *testing.T) {
	srv := graphService(t)
	t.Setenv("PATHLIGHT_GRAPH_API_URL", srv.URL)

	out, err := run(t, "playlist", "A", "-a", "bfs", "-n", "3", "-g", "tracks")
	require.NoError(t, err)
	assert.Contains(t, out, "playlist ready (bfs): 3 items")
	assert.Contains(t, out, "3  C")
	assert.NotContains(t, out, "D")

	_, err = run(t, "playlist", "A", "-a", "astar")
	assert.ErrorContains(t, err, "unknown playlist algorithm")
}

func TestNodesCommand(t *testing.T) {
	srv := graphService(t)
	t.Setenv("PATHLIGHT_GRAPH_API_URL", srv.URL)

	out, err := run(t, "nodes", "--json")
	require.NoError(t, err)
	var ids []string
	require.NoError(t, json.Unmarshal([]byte(out), &ids))
	assert.Equal(t, []string{"A", "B"}, ids)
}

func TestUnknownGraphIsRejected(t *testing.T) {
	_, err := run(t, "nodes", "--graph", "rivers")
	assert.ErrorContains(t, err, "unknown graph context")
}

func TestGenerateWritesFiles(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, "generate", "--nodes", "12", "--avg-degree", "2", "--seed", "9", "-o", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "generated 12 nodes and 12 links")
	assert.FileExists(t, filepath.Join(dir, "nodes.json"))
	assert.FileExists(t, filepath.Join(dir, "edges.json"))
}

func TestPaletteInitRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "palette.toml")

	out, err := run(t, "palette", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, "palette written")

	p, err := paint.LoadPalette(path)
	require.NoError(t, err)
	assert.Equal(t, paint.DefaultPalette(), p)
}

func TestExplorerUsesLayoutAndPlaylistConfig(t *testing.T) {
	srv := graphService(t)
	t.Setenv("PATHLIGHT_GRAPH_API_URL", srv.URL)
	t.Setenv("PATHLIGHT_LAYOUT_COOLDOWN_TICKS", "3")
	t.Setenv("PATHLIGHT_PLAYLIST_DEFAULT_COUNT", "3")

	ctx := context.Background()
	a, err := newApp(ctx, &rootOptions{})
	require.NoError(t, err)
	t.Cleanup(a.close)

	e, err := a.explorer()
	require.NoError(t, err)
	t.Cleanup(func() {
		e.Close()
		e.Wait()
	})

	require.NoError(t, e.Load(ctx))
	assert.Equal(t, 3, e.View().LayoutTicks)

	result, err := e.Playlist(ctx, domain.PlaylistRequest{Seed: "A", Algorithm: domain.AlgorithmBFS})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, result.Items)
}
