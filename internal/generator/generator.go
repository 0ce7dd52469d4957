package generator

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"time"

	"github.com/vanshika/pathlight/internal/edgekey"
	"github.com/vanshika/pathlight/internal/graphmodel"
)

// Node uses the field names of the graph service /nodes payload.
type Node struct {
	ID     string `json:"id"`
	Degree int    `json:"grau"`
	Region string `json:"microrregiao"`
}

// Edge uses the field names of the graph service /edges payload.
type Edge struct {
	Source string  `json:"bairro_origem"`
	Target string  `json:"bairro_destino"`
	Weight float64 `json:"peso"`
	Label  string  `json:"logradouro"`
}

// Dataset contains a generated graph.
type Dataset struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Generator produces connected, weighted synthetic graphs.
type Generator struct {
	cfg  Config
	rand *rand.Rand
}

// New returns a configured Generator instance.
func New(cfg Config) *Generator {
	def := DefaultConfig()
	if cfg.NumNodes <= 0 {
		cfg.NumNodes = def.NumNodes
	}
	if cfg.AvgDegree <= 0 {
		cfg.AvgDegree = def.AvgDegree
	}
	if cfg.Regions <= 0 {
		cfg.Regions = def.Regions
	}
	if cfg.MaxWeight < 1 {
		cfg.MaxWeight = def.MaxWeight
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	return &Generator{
		cfg:  cfg,
		rand: rand.New(rand.NewSource(cfg.Seed)),
	}
}

// Generate builds a random spanning tree and then adds links until the
// target mean degree is reached. It respects context cancellation.
func (g *Generator) Generate(ctx context.Context) (Dataset, error) {
	n := g.cfg.NumNodes
	width := len(strconv.Itoa(n))
	nodes := make([]Node, n)
	for i := range nodes {
		nodes[i] = Node{
			ID:     fmt.Sprintf("N-%0*d", width, i+1),
			Region: strconv.Itoa(1 + g.rand.Intn(g.cfg.Regions)),
		}
	}

	seen := make(map[string]struct{})
	edges := make([]Edge, 0, int(float64(n)*g.cfg.AvgDegree/2)+1)
	link := func(a, b int) bool {
		if a == b {
			return false
		}
		key := edgekey.Key(nodes[a].ID, nodes[b].ID)
		if _, dup := seen[key]; dup {
			return false
		}
		seen[key] = struct{}{}
		nodes[a].Degree++
		nodes[b].Degree++
		edges = append(edges, Edge{
			Source: nodes[a].ID,
			Target: nodes[b].ID,
			Weight: g.weight(),
			Label:  fmt.Sprintf("Street %d", len(edges)+1),
		})
		return true
	}

	for i := 1; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}
		link(i, g.rand.Intn(i))
	}

	target := int(math.Round(float64(n) * g.cfg.AvgDegree / 2))
	maxEdges := n * (n - 1) / 2
	if target > maxEdges {
		target = maxEdges
	}
	for attempts := 0; len(edges) < target && attempts < target*20; attempts++ {
		if attempts%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return Dataset{}, err
			}
		}
		link(g.rand.Intn(n), g.rand.Intn(n))
	}

	return Dataset{Nodes: nodes, Edges: edges}, nil
}

// weight returns a positive weight with one decimal.
func (g *Generator) weight() float64 {
	w := 1 + g.rand.Float64()*(g.cfg.MaxWeight-1)
	return math.Round(w*10) / 10
}

// Raw converts the dataset into loader input.
func (d Dataset) Raw() ([]graphmodel.RawNode, []graphmodel.RawEdge) {
	nodes := make([]graphmodel.RawNode, len(d.Nodes))
	for i, n := range d.Nodes {
		nodes[i] = graphmodel.RawNode{ID: n.ID, Degree: float64(n.Degree), Region: n.Region}
	}
	edges := make([]graphmodel.RawEdge, len(d.Edges))
	for i, e := range d.Edges {
		edges[i] = graphmodel.RawEdge{Source: e.Source, Target: e.Target, Weight: e.Weight, Label: e.Label}
	}
	return nodes, edges
}
