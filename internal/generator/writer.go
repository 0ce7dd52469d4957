package generator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

type nodesFile struct {
	Count int    `json:"count"`
	Nodes []Node `json:"nodes"`
}

type edgesFile struct {
	Count int    `json:"count"`
	Edges []Edge `json:"edges"`
}

// WriteDataset serializes the dataset into nodes.json and edges.json under
// dir, shaped like the graph service responses.
func WriteDataset(dataset Dataset, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	nodesPath := filepath.Join(dir, "nodes.json")
	if err := writeJSON(nodesPath, nodesFile{Count: len(dataset.Nodes), Nodes: dataset.Nodes}); err != nil {
		return err
	}

	edgesPath := filepath.Join(dir, "edges.json")
	if err := writeJSON(edgesPath, edgesFile{Count: len(dataset.Edges), Edges: dataset.Edges}); err != nil {
		return err
	}

	return nil
}

func writeJSON(path string, data any) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("encode json for %s: %w", path, err)
	}
	return nil
}
