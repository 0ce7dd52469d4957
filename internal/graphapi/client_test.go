package graphapi

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanshika/pathlight/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL+"/", Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	require.NoError(t, err)
	return c
}

func writeBody(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := New("  ", Options{})
	assert.ErrorIs(t, err, ErrMissingBaseURL)

	c, err := New(" http://graph:8000/ ", Options{})
	require.NoError(t, err)
	assert.Equal(t, "http://graph:8000", c.BaseURL())
}

func TestListNodesAcceptsObjectsAndStrings(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/nodes", r.URL.Path)
		assert.Equal(t, "part1", r.URL.Query().Get("graph"))
		writeBody(w, http.StatusOK, `{"count":3,"nodes":[
			{"id":"Boa Viagem","grau":7,"microrregiao":6},
			"Pina",
			{"track_name":"Song A"}
		]}`)
	})

	nodes, err := c.ListNodes(context.Background(), domain.GraphNeighborhoods)
	require.NoError(t, err)
	require.Len(t, nodes, 3)
	assert.Equal(t, "Boa Viagem", nodes[0].ID)
	assert.Equal(t, float64(7), nodes[0].Degree)
	assert.Equal(t, float64(6), nodes[0].Region)
	assert.Equal(t, "Pina", nodes[1].ID)
	assert.Nil(t, nodes[1].Degree)
	assert.Equal(t, "Song A", nodes[2].ID)
}

func TestListEdgesAcceptsBothNamings(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "part2", r.URL.Query().Get("graph"))
		writeBody(w, http.StatusOK, `{"count":2,"edges":[
			{"bairro_origem":"A","bairro_destino":"B","logradouro":"Rua X","peso":2.5},
			{"source":"B","target":"C","weight":"3"}
		]}`)
	})

	edges, err := c.ListEdges(context.Background(), domain.GraphTracks)
	require.NoError(t, err)
	require.Len(t, edges, 2)
	assert.Equal(t, "A", edges[0].Source)
	assert.Equal(t, "B", edges[0].Target)
	assert.Equal(t, 2.5, edges[0].Weight)
	assert.Equal(t, "Rua X", edges[0].Label)
	assert.Equal(t, "C", edges[1].Target)
	assert.Equal(t, "3", edges[1].Weight)
}

func TestShortestPath(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/dijkstra", r.URL.Path)
		assert.Equal(t, "Pina", q.Get("orig"))
		assert.Equal(t, "Torre", q.Get("dest"))
		writeBody(w, http.StatusOK, `{"caminho":["Pina","Derby","Torre"],"custo":4.5,"ruas":["R1","R2"]}`)
	})

	path, err := c.ShortestPath(context.Background(), domain.GraphNeighborhoods, "Pina", "Torre")
	require.NoError(t, err)
	assert.Equal(t, []string{"Pina", "Derby", "Torre"}, path.Nodes)
	require.NotNil(t, path.Cost)
	assert.Equal(t, 4.5, *path.Cost)
	assert.Equal(t, []string{"R1", "R2"}, path.Streets)
}

func TestShortestPathEnglishFields(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusOK, `{"path":["a","b"],"cost":1}`)
	})

	path, err := c.ShortestPath(context.Background(), domain.GraphTracks, "a", "b")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, path.Nodes)
	assert.Equal(t, 1.0, *path.Cost)
}

func TestErrorPayloadInSuccessfulResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusOK, `{"error":"no path found"}`)
	})

	_, err := c.ShortestPath(context.Background(), domain.GraphTracks, "a", "z")
	require.Error(t, err)
	var remote *domain.RemoteError
	require.True(t, errors.As(err, &remote))
	assert.Equal(t, "no path found", remote.Detail)
	assert.Equal(t, "no path found", domain.Describe(err))
}

func TestErrorStatusPrefersDetail(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"detail", `{"detail":"unknown graph key: x"}`, "unknown graph key: x"},
		{"error", `{"error":"boom"}`, "boom"},
		{"structured detail", `{"detail":[{"loc":["query","orig"],"msg":"field required"}]}`, `[{"loc":["query","orig"],"msg":"field required"}]`},
		{"plain text", `internal failure`, "unexpected status 500 Internal Server Error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeBody(w, http.StatusInternalServerError, tc.body)
			})
			_, err := c.ListNodes(context.Background(), domain.GraphNeighborhoods)
			require.Error(t, err)
			assert.Equal(t, tc.want, domain.Describe(err))

			var remote *domain.RemoteError
			require.True(t, errors.As(err, &remote))
			assert.Equal(t, http.StatusInternalServerError, remote.StatusCode)
			assert.Equal(t, "list nodes", remote.Op)
		})
	}
}

func TestDistancesHandlesNullsAndAlias(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bellman-ford", r.URL.Path)
		assert.Equal(t, "S", r.URL.Query().Get("orig"))
		writeBody(w, http.StatusOK, `{"dist":{"S":0,"X":1,"Y":2,"Z":null,"W":"Infinity"}}`)
	})

	dist, err := c.Distances(context.Background(), domain.GraphTracks, "S")
	require.NoError(t, err)
	require.Len(t, dist, 5)
	assert.Equal(t, 0.0, *dist["S"])
	assert.Equal(t, 2.0, *dist["Y"])
	assert.Nil(t, dist["Z"])
	assert.Nil(t, dist["W"])
}

func TestTraversalParameters(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/bfs":
			assert.Equal(t, "seed", r.URL.Query().Get("source"))
			writeBody(w, http.StatusOK, `{"order":["seed","a","b"]}`)
		case "/dfs":
			assert.Equal(t, "seed", r.URL.Query().Get("sources"))
			writeBody(w, http.StatusOK, `{"order":["seed","b"]}`)
		default:
			http.NotFound(w, r)
		}
	})

	bfs, err := c.BreadthFirst(context.Background(), domain.GraphTracks, "seed")
	require.NoError(t, err)
	assert.Equal(t, []string{"seed", "a", "b"}, bfs)

	dfs, err := c.DepthFirst(context.Background(), domain.GraphTracks, "seed")
	require.NoError(t, err)
	assert.Equal(t, []string{"seed", "b"}, dfs)
}

func TestExportStatic(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/export/static-html", r.URL.Path)
		writeBody(w, http.StatusOK, `{"status":"ok","files":2}`)
	})

	ack, err := c.ExportStatic(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", ack["status"])
}

func TestHealthAndTimeout(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusOK, `{"status":"ok"}`)
	})
	assert.NoError(t, c.Health(context.Background()))

	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(slow.Close)
	sc, err := New(slow.URL, Options{Timeouts: Timeouts{ShortestPath: 50 * time.Millisecond}})
	require.NoError(t, err)

	_, err = sc.ShortestPath(context.Background(), domain.GraphTracks, "a", "b")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
