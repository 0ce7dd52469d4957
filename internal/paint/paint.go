// Package paint derives per-frame visual attributes of nodes, links and
// labels from the graph, the selection and the layout.
package paint

import (
	"fmt"
	"math"

	"github.com/vanshika/pathlight/internal/domain"
	"github.com/vanshika/pathlight/internal/graphmodel"
	"github.com/vanshika/pathlight/internal/layout"
)

const (
	highlightedLinkWidth = 3.2
	borderWidth          = 2
	labelOffset          = 8
)

// Radius returns the node radius for a degree. Endpoints of the selection
// are drawn larger. Non-positive degrees count as 1.
func Radius(degree int, endpoint bool) float64 {
	if degree <= 0 {
		degree = 1
	}
	base := 3 + math.Min(4, math.Log2(float64(degree)+1))
	if endpoint {
		return math.Min(14, base+5)
	}
	return math.Max(3, base)
}

// LinkWidth returns the stroke width of a link.
func LinkWidth(weight float64, highlighted bool) float64 {
	if highlighted {
		return highlightedLinkWidth
	}
	return math.Max(0.6, 1.2-math.Log10(weight+1))
}

// LabelFontSize returns the label size at a zoom scale.
func LabelFontSize(scale float64) float64 {
	return math.Max(10, math.Min(13, 13-math.Floor(scale)))
}

// LabelPosition places a label to the right of a node.
func LabelPosition(x, y, radius, fontSize float64) (float64, float64) {
	return x + radius + labelOffset, y + fontSize/3
}

// Tooltip is the hover text of a node.
func Tooltip(n domain.Node) string {
	degree := n.Degree
	if degree <= 0 {
		degree = 1
	}
	s := fmt.Sprintf("%s • degree %d", n.ID, degree)
	if n.Region != "" {
		s += " • region " + n.Region
	}
	return s
}

// NodeState flags a node's role in the current frame.
type NodeState struct {
	Origin      bool
	Destination bool
	Highlighted bool
	Hovered     bool
}

// NodeStyle is the painted look of one node.
type NodeStyle struct {
	Radius      float64 `json:"radius"`
	Fill        string  `json:"fill"`
	BorderWidth float64 `json:"border_width,omitempty"`
	BorderColor string  `json:"border_color,omitempty"`
}

// LinkStyle is the painted look of one link.
type LinkStyle struct {
	Width float64 `json:"width"`
	Color string  `json:"color"`
}

// Painter applies a palette.
type Painter struct {
	palette Palette
}

// New returns a Painter using palette.
func New(palette Palette) *Painter {
	return &Painter{palette: palette}
}

// Palette returns the active colors.
func (p *Painter) Palette() Palette {
	return p.palette
}

// Node styles a node. Fill precedence is origin, destination, highlighted,
// hovered, then the default color.
func (p *Painter) Node(n domain.Node, st NodeState) NodeStyle {
	style := NodeStyle{Radius: Radius(n.Degree, st.Origin || st.Destination)}
	switch {
	case st.Origin:
		style.Fill = p.palette.Origin
	case st.Destination:
		style.Fill = p.palette.Destination
	case st.Highlighted:
		style.Fill = p.palette.Highlight
	case st.Hovered:
		style.Fill = p.palette.Hover
	default:
		style.Fill = p.palette.Node
	}
	if st.Origin || st.Destination || st.Highlighted {
		style.BorderWidth = borderWidth
		style.BorderColor = p.palette.Border
	}
	return style
}

// Link styles a link.
func (p *Painter) Link(e domain.Edge, highlighted bool) LinkStyle {
	color := p.palette.Link
	if highlighted {
		color = p.palette.Highlight
	}
	return LinkStyle{Width: LinkWidth(e.Weight, highlighted), Color: color}
}

// PaintedNode is a node ready for drawing.
type PaintedNode struct {
	ID      string    `json:"id"`
	Degree  int       `json:"degree"`
	Region  string    `json:"region,omitempty"`
	X       float64   `json:"x"`
	Y       float64   `json:"y"`
	LabelX  float64   `json:"label_x"`
	LabelY  float64   `json:"label_y"`
	Tooltip string    `json:"tooltip"`
	Style   NodeStyle `json:"style"`
	Role    string    `json:"role,omitempty"`
}

// PaintedLink is a link ready for drawing.
type PaintedLink struct {
	Key    string    `json:"key"`
	Source string    `json:"source"`
	Target string    `json:"target"`
	Weight float64   `json:"weight"`
	Label  string    `json:"label,omitempty"`
	Style  LinkStyle `json:"style"`
}

// Frame holds everything needed to paint one frame.
type Frame struct {
	Model     *graphmodel.Model
	Selection domain.Selection
	Highlight domain.HighlightSet
	Hovered   string
	Layout    layout.State
}

// Scene is a fully painted frame.
type Scene struct {
	Nodes     []PaintedNode    `json:"nodes"`
	Links     []PaintedLink    `json:"links"`
	FontSize  float64          `json:"font_size"`
	LabelFill string           `json:"label_color"`
	Transform layout.Transform `json:"transform"`
}

// Paint styles every node and link of a frame.
func (p *Painter) Paint(f Frame) Scene {
	scale := f.Layout.Transform.Scale
	if scale <= 0 {
		scale = 1
	}
	fontSize := LabelFontSize(scale)
	origin, destination := f.Selection.OriginID(), f.Selection.DestinationID()

	nodes := f.Model.Nodes()
	scene := Scene{
		Nodes:     make([]PaintedNode, 0, len(nodes)),
		FontSize:  fontSize,
		LabelFill: p.palette.Label,
		Transform: f.Layout.Transform,
	}
	for _, n := range nodes {
		st := NodeState{
			Origin:      n.ID == origin,
			Destination: n.ID == destination,
			Highlighted: f.Highlight.HasNode(n.ID),
			Hovered:     n.ID == f.Hovered,
		}
		style := p.Node(n, st)
		pos := f.Layout.Positions[n.ID]
		lx, ly := LabelPosition(pos.X, pos.Y, style.Radius, fontSize)
		pn := PaintedNode{
			ID:      n.ID,
			Degree:  n.Degree,
			Region:  n.Region,
			X:       pos.X,
			Y:       pos.Y,
			LabelX:  lx,
			LabelY:  ly,
			Tooltip: Tooltip(n),
			Style:   style,
		}
		switch {
		case st.Origin:
			pn.Role = "origin"
		case st.Destination:
			pn.Role = "destination"
		}
		scene.Nodes = append(scene.Nodes, pn)
	}

	links := f.Model.Links()
	scene.Links = make([]PaintedLink, 0, len(links))
	for _, l := range links {
		scene.Links = append(scene.Links, PaintedLink{
			Key:    l.Key,
			Source: l.Edge.Source,
			Target: l.Edge.Target,
			Weight: l.Edge.Weight,
			Label:  l.Edge.Label,
			Style:  p.Link(l.Edge, f.Highlight.HasEdge(l.Key)),
		})
	}
	return scene
}
