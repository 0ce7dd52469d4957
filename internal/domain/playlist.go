package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Algorithm selects the playlist synthesis strategy.
type Algorithm string

const (
	AlgorithmBellmanFord      Algorithm = "bellman-ford"
	AlgorithmDijkstraRepeated Algorithm = "dijkstra-repeated"
	AlgorithmBFS              Algorithm = "bfs"
	AlgorithmDFS              Algorithm = "dfs"
)

// ErrUnknownAlgorithm indicates an unsupported playlist strategy.
var ErrUnknownAlgorithm = errors.New("unknown playlist algorithm")

// ParseAlgorithm resolves an algorithm name. Matching is case-insensitive and
// "dijkstra" is accepted for the repeated Dijkstra scan.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "bellman-ford", "bellmanford", "bellman_ford":
		return AlgorithmBellmanFord, nil
	case "dijkstra", "dijkstra-repeated":
		return AlgorithmDijkstraRepeated, nil
	case "bfs":
		return AlgorithmBFS, nil
	case "dfs":
		return AlgorithmDFS, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownAlgorithm, name)
	}
}

// MinPlaylistCount is the smallest accepted playlist length.
const MinPlaylistCount = 2

// DefaultPlaylistCount is used when a request leaves the count unset.
const DefaultPlaylistCount = 10

// PlaylistRequest describes one playlist synthesis.
type PlaylistRequest struct {
	Graph     GraphContext
	Seed      string
	Count     int
	Algorithm Algorithm
	// Candidates, when non-nil, replaces the node listing used by the
	// repeated Dijkstra scan.
	Candidates []string
}

// PlaylistState tracks the lifecycle of a playlist request.
type PlaylistState string

const (
	PlaylistIdle    PlaylistState = "IDLE"
	PlaylistRunning PlaylistState = "RUNNING"
	PlaylistDone    PlaylistState = "DONE"
	PlaylistFailed  PlaylistState = "FAILED"
)

// PlaylistResult is the normalized output of every strategy.
type PlaylistResult struct {
	State     PlaylistState
	Algorithm Algorithm
	Items     []string
	Status    string
}
