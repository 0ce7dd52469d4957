package layout

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanshika/pathlight/internal/domain"
	"github.com/vanshika/pathlight/internal/graphmodel"
)

type fakeScheduler struct {
	delays  []time.Duration
	pending []func()
	stopped int
}

func (f *fakeScheduler) schedule(d time.Duration, fn func()) func() bool {
	f.delays = append(f.delays, d)
	f.pending = append(f.pending, fn)
	idx := len(f.pending) - 1
	return func() bool {
		if f.pending[idx] == nil {
			return false
		}
		f.pending[idx] = nil
		f.stopped++
		return true
	}
}

func (f *fakeScheduler) fire() {
	for i, fn := range f.pending {
		if fn != nil {
			f.pending[i] = nil
			fn()
		}
	}
}

func TestClamp(t *testing.T) {
	cases := map[int]int{
		-5:  MinSpacing,
		29:  MinSpacing,
		30:  30,
		140: 140,
		260: 260,
		900: MaxSpacing,
	}
	for in, want := range cases {
		assert.Equal(t, want, Clamp(in), "clamp(%d)", in)
	}
}

func TestNewControllerAppliesDefaultSpacing(t *testing.T) {
	rec := NewRecorder(nil)
	c := NewController(rec, Options{})

	assert.Equal(t, DefaultSpacing, c.Spacing())
	require.Len(t, rec.Commands(), 1)
	assert.Equal(t, Command{Kind: CommandSpacing, Spacing: DefaultSpacing}, rec.Commands()[0])
}

func TestSetSpacingClampsAndReheats(t *testing.T) {
	rec := NewRecorder(nil)
	c := NewController(rec, Options{Spacing: 100})

	applied := c.SetSpacing(1000)

	assert.Equal(t, MaxSpacing, applied)
	assert.Equal(t, MaxSpacing, c.Spacing())
	cmds := rec.Commands()
	require.Len(t, cmds, 3)
	assert.Equal(t, CommandSpacing, cmds[1].Kind)
	assert.Equal(t, MaxSpacing, cmds[1].Spacing)
	assert.Equal(t, CommandReheat, cmds[2].Kind)
}

func TestLoadedFitsOnlyOnce(t *testing.T) {
	rec := NewRecorder(nil)
	sched := &fakeScheduler{}
	c := NewController(rec, Options{Scheduler: sched.schedule})

	c.Loaded(0)
	assert.Empty(t, sched.delays)

	c.Loaded(12)
	c.Loaded(12)
	require.Len(t, sched.delays, 1)
	assert.Equal(t, DefaultSettleDelay, sched.delays[0])

	sched.fire()
	c.Loaded(40)
	sched.fire()

	var fits []Command
	for _, cmd := range rec.Commands() {
		if cmd.Kind == CommandFitToView {
			fits = append(fits, cmd)
		}
	}
	require.Len(t, fits, 1)
	assert.Equal(t, FitDuration.Milliseconds(), fits[0].DurationMS)
	assert.Equal(t, FitPadding, fits[0].Padding)
}

func TestStopCancelsPendingFit(t *testing.T) {
	rec := NewRecorder(nil)
	sched := &fakeScheduler{}
	c := NewController(rec, Options{Scheduler: sched.schedule})

	c.Loaded(3)
	c.Stop()
	sched.fire()

	assert.Equal(t, 1, sched.stopped)
	for _, cmd := range rec.Commands() {
		assert.NotEqual(t, CommandFitToView, cmd.Kind)
	}
}

func TestHighlightForwardsToEveryBackend(t *testing.T) {
	var sunk []Command
	rec := NewRecorder(func(cmd Command) { sunk = append(sunk, cmd) })
	sim := NewSimulation(SimulationOptions{})
	c := NewController(Multi{sim, rec}, Options{})

	set := domain.NewHighlightSet("A", "B")
	set.Edges["A||B"] = struct{}{}
	c.Highlight(set)

	require.NotEmpty(t, sunk)
	last := sunk[len(sunk)-1]
	assert.Equal(t, CommandHighlight, last.Kind)
	assert.Equal(t, []string{"A", "B"}, last.Nodes)
	assert.Equal(t, []string{"A||B"}, last.Edges)
	assert.True(t, sim.State().Highlight.HasEdge("A||B"))
}

func chainModel() *graphmodel.Model {
	model, _ := graphmodel.New(domain.GraphNeighborhoods,
		[]graphmodel.RawNode{{ID: "A"}, {ID: "B"}, {ID: "C"}, {ID: "D"}},
		[]graphmodel.RawEdge{
			{Source: "A", Target: "B"},
			{Source: "B", Target: "C"},
			{Source: "C", Target: "D"},
		})
	return model
}

func meanLinkLength(st State, pairs [][2]string) float64 {
	var total float64
	for _, p := range pairs {
		a, b := st.Positions[p[0]], st.Positions[p[1]]
		total += math.Hypot(a.X-b.X, a.Y-b.Y)
	}
	return total / float64(len(pairs))
}

func TestSpacingChangesKeepGraphSize(t *testing.T) {
	sim := NewSimulation(SimulationOptions{})
	sim.Load(chainModel())
	before := sim.State()

	c := NewController(sim, Options{})
	for _, s := range []int{30, 260, 75, 140} {
		c.SetSpacing(s)
		st := sim.State()
		assert.Equal(t, before.Nodes, st.Nodes)
		assert.Equal(t, before.Links, st.Links)
		assert.Len(t, st.Positions, 4)
	}
}

func TestReheatIsBoundedAndWiderSpacingSpreadsNodes(t *testing.T) {
	pairs := [][2]string{{"A", "B"}, {"B", "C"}, {"C", "D"}}

	tight := NewSimulation(SimulationOptions{})
	tight.SetSpacing(MinSpacing)
	tight.Load(chainModel())

	wide := NewSimulation(SimulationOptions{})
	wide.SetSpacing(MaxSpacing)
	wide.Load(chainModel())

	assert.LessOrEqual(t, tight.State().Ticks, DefaultCooldownTicks)
	assert.Greater(t, meanLinkLength(wide.State(), pairs), meanLinkLength(tight.State(), pairs))
}

func TestReloadKeepsSurvivingPositions(t *testing.T) {
	sim := NewSimulation(SimulationOptions{CooldownTicks: 1})
	sim.Load(chainModel())
	first := sim.State().Positions["A"]

	model, _ := graphmodel.New(domain.GraphNeighborhoods,
		[]graphmodel.RawNode{{ID: "A"}, {ID: "E"}}, nil)
	sim.Load(model)
	st := sim.State()

	assert.Equal(t, 2, st.Nodes)
	assert.Equal(t, 0, st.Links)
	assert.InDelta(t, first.X, st.Positions["A"].X, 50)
	assert.InDelta(t, first.Y, st.Positions["A"].Y, 50)
}

func TestFitToViewFramesEveryNode(t *testing.T) {
	sim := NewSimulation(SimulationOptions{Width: 800, Height: 600})
	sim.Load(chainModel())
	sim.FitToView(FitDuration, FitPadding)
	st := sim.State()

	require.Greater(t, st.Transform.Scale, 0.0)
	assert.Equal(t, FitDuration.Milliseconds(), st.Transform.DurationMS)
	for id, p := range st.Positions {
		x := p.X*st.Transform.Scale + st.Transform.TranslateX
		y := p.Y*st.Transform.Scale + st.Transform.TranslateY
		assert.GreaterOrEqual(t, x, float64(FitPadding)-1e-6, id)
		assert.LessOrEqual(t, x, 800-float64(FitPadding)+1e-6, id)
		assert.GreaterOrEqual(t, y, float64(FitPadding)-1e-6, id)
		assert.LessOrEqual(t, y, 600-float64(FitPadding)+1e-6, id)
	}
}
