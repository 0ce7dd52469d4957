package paint

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Palette holds the colors used to paint nodes, links and labels.
type Palette struct {
	Node        string `toml:"node"`
	Link        string `toml:"link"`
	Highlight   string `toml:"highlight"`
	Origin      string `toml:"origin"`
	Destination string `toml:"destination"`
	Hover       string `toml:"hover"`
	Label       string `toml:"label"`
	Border      string `toml:"border"`
}

// DefaultPalette returns the built-in colors.
func DefaultPalette() Palette {
	return Palette{
		Node:        "#3b82f6",
		Link:        "rgba(59, 130, 246, 0.2)",
		Highlight:   "#ff7a18",
		Origin:      "#b91c1c",
		Destination: "#059669",
		Hover:       "#1e40af",
		Label:       "#0f172a",
		Border:      "rgba(0,0,0,0.08)",
	}
}

// LoadPalette reads a TOML palette file. Keys left out keep their default.
// An empty path returns the defaults.
func LoadPalette(path string) (Palette, error) {
	p := DefaultPalette()
	if path == "" {
		return p, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read palette: %w", err)
	}
	var file Palette
	if err := toml.Unmarshal(data, &file); err != nil {
		return p, fmt.Errorf("decode palette %s: %w", path, err)
	}
	p.merge(file)
	return p, nil
}

// Save writes the palette as TOML.
func (p Palette) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(p)
}

func (p *Palette) merge(o Palette) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&p.Node, o.Node)
	set(&p.Link, o.Link)
	set(&p.Highlight, o.Highlight)
	set(&p.Origin, o.Origin)
	set(&p.Destination, o.Destination)
	set(&p.Hover, o.Hover)
	set(&p.Label, o.Label)
	set(&p.Border, o.Border)
}
