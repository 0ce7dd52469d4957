package paint

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanshika/pathlight/internal/domain"
	"github.com/vanshika/pathlight/internal/edgekey"
	"github.com/vanshika/pathlight/internal/graphmodel"
	"github.com/vanshika/pathlight/internal/layout"
)

func TestRadiusMonotoneInDegree(t *testing.T) {
	prev := 0.0
	for degree := 0; degree <= 64; degree++ {
		r := Radius(degree, false)
		assert.GreaterOrEqual(t, r, prev, "degree %d", degree)
		assert.GreaterOrEqual(t, r, 3.0)
		assert.LessOrEqual(t, r, 7.0)
		prev = r
	}
}

func TestRadiusBoostsEndpoints(t *testing.T) {
	for _, degree := range []int{0, 1, 3, 10, 1000} {
		plain := Radius(degree, false)
		boosted := Radius(degree, true)
		assert.Greater(t, boosted, plain, "degree %d", degree)
		assert.LessOrEqual(t, boosted, 14.0)
	}
	assert.Equal(t, Radius(1, false), Radius(0, false))
	assert.InDelta(t, 4.0, Radius(1, false), 1e-9)
	assert.InDelta(t, 9.0, Radius(1, true), 1e-9)
}

func TestLinkWidth(t *testing.T) {
	assert.Equal(t, 3.2, LinkWidth(1, true))
	assert.InDelta(t, 1.2, LinkWidth(0, false), 1e-9)
	assert.Equal(t, 0.6, LinkWidth(1000, false))
	assert.Greater(t, LinkWidth(1, false), LinkWidth(2, false))
}

func TestLabelFontSizeAndPosition(t *testing.T) {
	assert.Equal(t, 13.0, LabelFontSize(0.5))
	assert.Equal(t, 12.0, LabelFontSize(1.2))
	assert.Equal(t, 10.0, LabelFontSize(8))

	x, y := LabelPosition(10, 20, 4, 12)
	assert.Equal(t, 22.0, x)
	assert.Equal(t, 24.0, y)
}

func TestNodeFillPrecedence(t *testing.T) {
	p := New(DefaultPalette())
	n := domain.Node{ID: "A", Degree: 2}
	pal := p.Palette()

	cases := []struct {
		name   string
		state  NodeState
		fill   string
		border bool
	}{
		{"default", NodeState{}, pal.Node, false},
		{"hover", NodeState{Hovered: true}, pal.Hover, false},
		{"highlight beats hover", NodeState{Highlighted: true, Hovered: true}, pal.Highlight, true},
		{"destination beats highlight", NodeState{Destination: true, Highlighted: true}, pal.Destination, true},
		{"origin beats all", NodeState{Origin: true, Destination: true, Highlighted: true, Hovered: true}, pal.Origin, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			style := p.Node(n, tc.state)
			assert.Equal(t, tc.fill, style.Fill)
			if tc.border {
				assert.Equal(t, 2.0, style.BorderWidth)
				assert.Equal(t, pal.Border, style.BorderColor)
			} else {
				assert.Zero(t, style.BorderWidth)
			}
		})
	}
}

func TestTooltip(t *testing.T) {
	assert.Equal(t, "Pina • degree 4 • region 6", Tooltip(domain.Node{ID: "Pina", Degree: 4, Region: "6"}))
	assert.Equal(t, "song-a • degree 1", Tooltip(domain.Node{ID: "song-a"}))
}

func TestPaintScene(t *testing.T) {
	model, _ := graphmodel.New(domain.GraphNeighborhoods,
		[]graphmodel.RawNode{{ID: "A"}, {ID: "B"}, {ID: "C"}},
		[]graphmodel.RawEdge{
			{Source: "A", Target: "B", Weight: 2.0},
			{Source: "B", Target: "C", Weight: 1.0},
		})
	o := domain.Node{ID: "A"}
	d := domain.Node{ID: "B"}
	set := domain.NewHighlightSet("A", "B")
	set.Edges[edgekey.Key("A", "B")] = struct{}{}

	p := New(DefaultPalette())
	scene := p.Paint(Frame{
		Model:     model,
		Selection: domain.Selection{Origin: &o, Destination: &d},
		Highlight: set,
		Hovered:   "C",
		Layout: layout.State{
			Positions: map[string]layout.Point{"A": {X: 1, Y: 2}},
			Transform: layout.Transform{Scale: 2},
		},
	})

	require.Len(t, scene.Nodes, 3)
	require.Len(t, scene.Links, 2)
	assert.Equal(t, 11.0, scene.FontSize)
	assert.Equal(t, "origin", scene.Nodes[0].Role)
	assert.Equal(t, 1.0, scene.Nodes[0].X)
	assert.Equal(t, "destination", scene.Nodes[1].Role)
	assert.Equal(t, p.Palette().Hover, scene.Nodes[2].Style.Fill)
	assert.Equal(t, 3.2, scene.Links[0].Style.Width)
	assert.Equal(t, p.Palette().Highlight, scene.Links[0].Style.Color)
	assert.Equal(t, p.Palette().Link, scene.Links[1].Style.Color)
}

func TestLoadPaletteMergesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "palette.toml")
	require.NoError(t, os.WriteFile(path, []byte("origin = \"#000000\"\nhover = \"#111111\"\n"), 0o644))

	pal, err := LoadPalette(path)
	require.NoError(t, err)
	assert.Equal(t, "#000000", pal.Origin)
	assert.Equal(t, "#111111", pal.Hover)
	assert.Equal(t, DefaultPalette().Destination, pal.Destination)

	out := filepath.Join(dir, "saved.toml")
	require.NoError(t, pal.Save(out))
	again, err := LoadPalette(out)
	require.NoError(t, err)
	assert.Equal(t, pal, again)
}

func TestLoadPaletteErrors(t *testing.T) {
	pal, err := LoadPalette("")
	require.NoError(t, err)
	assert.Equal(t, DefaultPalette(), pal)

	_, err = LoadPalette(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("origin = ["), 0o644))
	_, err = LoadPalette(bad)
	assert.Error(t, err)
}
