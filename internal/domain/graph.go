package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Node represents a vertex of a loaded graph.
type Node struct {
	ID     string
	Degree int
	Region string
}

// Edge represents an undirected, weighted connection between two nodes.
type Edge struct {
	Source string
	Target string
	Weight float64
	Label  string
}

// Path is the result of a shortest path query.
type Path struct {
	Nodes   []string
	Cost    *float64
	Streets []string
}

// GraphContext names a partition of the remote dataset.
type GraphContext string

const (
	GraphNeighborhoods GraphContext = "neighborhoods"
	GraphTracks        GraphContext = "tracks"
)

// ErrUnknownGraph indicates a graph context name that maps to no partition.
var ErrUnknownGraph = errors.New("unknown graph context")

var graphAliases = map[string]GraphContext{
	"neighborhoods": GraphNeighborhoods,
	"part1":         GraphNeighborhoods,
	"bairros":       GraphNeighborhoods,
	"tracks":        GraphTracks,
	"part2":         GraphTracks,
	"musicas":       GraphTracks,
	"songs":         GraphTracks,
}

// ParseGraphContext resolves a graph context name or alias. An empty name
// selects the neighborhoods graph.
func ParseGraphContext(name string) (GraphContext, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return GraphNeighborhoods, nil
	}
	if g, ok := graphAliases[key]; ok {
		return g, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownGraph, name)
}

// RemoteName is the graph key understood by the remote query service.
func (g GraphContext) RemoteName() string {
	switch g {
	case GraphTracks:
		return "part2"
	default:
		return "part1"
	}
}

func (g GraphContext) String() string {
	return string(g)
}
