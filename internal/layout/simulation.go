package layout

import (
	"math"
	"sync"
	"time"

	"github.com/vanshika/pathlight/internal/domain"
	"github.com/vanshika/pathlight/internal/graphmodel"
)

const (
	// DefaultCooldownTicks bounds the ticks run after every reheat.
	DefaultCooldownTicks = 40

	defaultWidth   = 960
	defaultHeight  = 640
	chargeStrength = -30
	velocityDecay  = 0.6
	alphaMin       = 0.001
	initialRadius  = 10
)

var alphaDecay = 1 - math.Pow(alphaMin, 1.0/300)

// Point is a layout position.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Transform is the viewport transform produced by FitToView.
type Transform struct {
	Scale      float64 `json:"k"`
	TranslateX float64 `json:"x"`
	TranslateY float64 `json:"y"`
	DurationMS int64   `json:"duration_ms"`
}

// SimulationOptions configures a Simulation.
type SimulationOptions struct {
	Width         float64
	Height        float64
	CooldownTicks int
}

// Simulation is a headless force-directed layout. Link springs pull toward
// the spacing distance and nodes repel pairwise; every reheat runs a bounded
// number of ticks from the current positions.
type Simulation struct {
	mu sync.Mutex

	width, height float64
	cooldown      int

	ids      []string
	index    map[string]int
	pos      []Point
	vel      []Point
	links    [][2]int
	degree   []int
	distance float64
	alpha    float64
	ticks    int

	transform Transform
	highlight domain.HighlightSet
}

// NewSimulation returns an empty simulation.
func NewSimulation(opts SimulationOptions) *Simulation {
	if opts.Width <= 0 {
		opts.Width = defaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = defaultHeight
	}
	if opts.CooldownTicks <= 0 {
		opts.CooldownTicks = DefaultCooldownTicks
	}
	return &Simulation{
		width:     opts.Width,
		height:    opts.Height,
		cooldown:  opts.CooldownTicks,
		index:     map[string]int{},
		distance:  DefaultSpacing,
		transform: Transform{Scale: 1},
		highlight: domain.NewHighlightSet(),
	}
}

// Load replaces the simulated graph. Nodes present before keep their
// position; new nodes are placed on a phyllotaxis spiral.
func (s *Simulation) Load(model *graphmodel.Model) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := make(map[string]Point, len(s.ids))
	for i, id := range s.ids {
		prev[id] = s.pos[i]
	}

	nodes := model.Nodes()
	s.ids = make([]string, len(nodes))
	s.index = make(map[string]int, len(nodes))
	s.pos = make([]Point, len(nodes))
	s.vel = make([]Point, len(nodes))
	s.degree = make([]int, len(nodes))
	for i, n := range nodes {
		s.ids[i] = n.ID
		s.index[n.ID] = i
		if p, ok := prev[n.ID]; ok {
			s.pos[i] = p
		} else {
			s.pos[i] = spiral(i)
		}
	}

	links := model.Links()
	s.links = s.links[:0]
	for _, l := range links {
		a, b := s.index[l.Edge.Source], s.index[l.Edge.Target]
		if a == b {
			continue
		}
		s.links = append(s.links, [2]int{a, b})
		s.degree[a]++
		s.degree[b]++
	}
	s.reheatLocked()
}

func spiral(i int) Point {
	r := initialRadius * math.Sqrt(0.5+float64(i))
	angle := float64(i) * math.Pi * (3 - math.Sqrt(5))
	return Point{X: r * math.Cos(angle), Y: r * math.Sin(angle)}
}

// SetSpacing sets the link rest distance.
func (s *Simulation) SetSpacing(spacing int) {
	s.mu.Lock()
	s.distance = float64(spacing)
	s.mu.Unlock()
}

// Reheat restarts the simulation from the current positions.
func (s *Simulation) Reheat() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reheatLocked()
}

func (s *Simulation) reheatLocked() {
	s.alpha = 1
	s.ticks = 0
	for s.ticks < s.cooldown && s.alpha >= alphaMin {
		s.tickLocked()
	}
}

func (s *Simulation) tickLocked() {
	s.alpha += -s.alpha * alphaDecay
	s.ticks++

	for _, l := range s.links {
		a, b := l[0], l[1]
		dx := s.pos[b].X + s.vel[b].X - s.pos[a].X - s.vel[a].X
		dy := s.pos[b].Y + s.vel[b].Y - s.pos[a].Y - s.vel[a].Y
		dist := math.Hypot(dx, dy)
		if dist == 0 {
			dx, dy, dist = 1e-6, 1e-6, math.Sqrt2*1e-6
		}
		strength := 1 / float64(min(s.degree[a], s.degree[b]))
		k := (dist - s.distance) / dist * s.alpha * strength
		dx, dy = dx*k, dy*k
		bias := float64(s.degree[a]) / float64(s.degree[a]+s.degree[b])
		s.vel[b].X -= dx * bias
		s.vel[b].Y -= dy * bias
		s.vel[a].X += dx * (1 - bias)
		s.vel[a].Y += dy * (1 - bias)
	}

	for i := range s.pos {
		for j := i + 1; j < len(s.pos); j++ {
			dx := s.pos[j].X - s.pos[i].X
			dy := s.pos[j].Y - s.pos[i].Y
			d2 := dx*dx + dy*dy
			if d2 < 1 {
				d2 = 1
			}
			w := chargeStrength * s.alpha / d2
			s.vel[i].X += dx * w
			s.vel[i].Y += dy * w
			s.vel[j].X -= dx * w
			s.vel[j].Y -= dy * w
		}
	}

	for i := range s.pos {
		s.vel[i].X *= velocityDecay
		s.vel[i].Y *= velocityDecay
		s.pos[i].X += s.vel[i].X
		s.pos[i].Y += s.vel[i].Y
	}
}

// FitToView computes the transform that frames every node inside the
// viewport minus padding.
func (s *Simulation) FitToView(duration time.Duration, padding int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pos) == 0 {
		return
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range s.pos {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	pad := float64(padding)
	w := math.Max(maxX-minX, 1)
	h := math.Max(maxY-minY, 1)
	scale := math.Min((s.width-2*pad)/w, (s.height-2*pad)/h)
	if scale <= 0 {
		scale = 1
	}
	cx, cy := (minX+maxX)/2, (minY+maxY)/2
	s.transform = Transform{
		Scale:      scale,
		TranslateX: s.width/2 - cx*scale,
		TranslateY: s.height/2 - cy*scale,
		DurationMS: duration.Milliseconds(),
	}
}

// Highlight stores the highlight set for painting.
func (s *Simulation) Highlight(set domain.HighlightSet) {
	s.mu.Lock()
	s.highlight = set.Clone()
	s.mu.Unlock()
}

// State is a copy of the simulation.
type State struct {
	Positions map[string]Point
	Transform Transform
	Highlight domain.HighlightSet
	Spacing   float64
	Ticks     int
	Nodes     int
	Links     int
}

// State returns a snapshot of positions and the viewport.
func (s *Simulation) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	positions := make(map[string]Point, len(s.ids))
	for i, id := range s.ids {
		positions[id] = s.pos[i]
	}
	return State{
		Positions: positions,
		Transform: s.transform,
		Highlight: s.highlight.Clone(),
		Spacing:   s.distance,
		Ticks:     s.ticks,
		Nodes:     len(s.ids),
		Links:     len(s.links),
	}
}
