// Package highlight converts solved paths into highlight sets.
package highlight

import (
	"fmt"

	"github.com/vanshika/pathlight/internal/domain"
	"github.com/vanshika/pathlight/internal/edgekey"
)

// FromPath returns the nodes of path and the canonical keys of every
// consecutive pair. The set is always built from scratch.
func FromPath(path []string) domain.HighlightSet {
	set := domain.NewHighlightSet(path...)
	for i := 0; i+1 < len(path); i++ {
		set.Edges[edgekey.Key(path[i], path[i+1])] = struct{}{}
	}
	return set
}

// Status describes a solved path for the status line.
func Status(origin, destination string, path []string) string {
	if len(path) == 0 {
		return fmt.Sprintf("no path between %s and %s", origin, destination)
	}
	return fmt.Sprintf("path with %d nodes", len(path))
}
