package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vanshika/pathlight/internal/domain"
	"github.com/vanshika/pathlight/internal/graphmodel"
	"github.com/vanshika/pathlight/internal/layout"
	"github.com/vanshika/pathlight/internal/paint"
	"github.com/vanshika/pathlight/internal/playlist"
	"github.com/vanshika/pathlight/internal/selection"
)

var (
	// ErrNotLoaded is returned by node operations before the first load.
	ErrNotLoaded = errors.New("graph not loaded")
	// ErrUnknownNode is returned for ids absent from the loaded graph.
	ErrUnknownNode = errors.New("unknown node")
	// ErrLoadSuperseded marks a load whose result was dropped because a
	// newer load started or the explorer was closed.
	ErrLoadSuperseded = errors.New("graph load superseded")
	// ErrClosed is returned by operations on a closed explorer.
	ErrClosed = errors.New("explorer closed")
)

// Options configures an Explorer.
type Options struct {
	Graph            domain.GraphContext
	Palette          paint.Palette
	Spacing          int
	SettleDelay      time.Duration
	Scheduler        layout.Scheduler
	Simulation       layout.SimulationOptions
	QueryTimeout     time.Duration
	ProbeWorkers     int
	PlaylistCount    int
	PlaylistTimeouts playlist.Timeouts
	Logger           *slog.Logger
}

// Explorer is one interactive session over a graph context. It owns the
// loaded model, the selection machine, the layout and the hover state, and
// publishes an event for every change.
type Explorer struct {
	backend  GraphBackend
	graph    domain.GraphContext
	logger   *slog.Logger
	machine  *selection.Machine
	sim      *layout.Simulation
	layout   *layout.Controller
	painter  *paint.Painter
	playlist *playlist.Synthesizer

	model atomic.Pointer[graphmodel.Model]

	mu         sync.Mutex
	hovered    string
	loadGen    uint64
	loading    bool
	loadStatus string
	report     graphmodel.Report
	closed     bool

	subMu   sync.Mutex
	nextSub int
	subs    map[int]func(Event)

	unsubscribe func()
}

// NewExplorer wires an Explorer over backend. Call Load to fetch the graph.
func NewExplorer(backend GraphBackend, opts Options) *Explorer {
	if opts.Graph == "" {
		opts.Graph = domain.GraphNeighborhoods
	}
	if opts.Palette == (paint.Palette{}) {
		opts.Palette = paint.DefaultPalette()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	e := &Explorer{
		backend:    backend,
		graph:      opts.Graph,
		logger:     opts.Logger.With("component", "explorer", "graph", string(opts.Graph)),
		sim:        layout.NewSimulation(opts.Simulation),
		painter:    paint.New(opts.Palette),
		loadStatus: "graph not loaded",
		subs:       make(map[int]func(Event)),
	}
	recorder := layout.NewRecorder(func(cmd layout.Command) {
		e.emit(Event{Kind: EventLayout, Layout: &cmd})
	})
	e.layout = layout.NewController(layout.Multi{e.sim, recorder}, layout.Options{
		Spacing:     opts.Spacing,
		SettleDelay: opts.SettleDelay,
		Scheduler:   opts.Scheduler,
		Logger:      opts.Logger,
	})
	e.machine = selection.New(selection.Options{
		Graph:        opts.Graph,
		Finder:       backend,
		Resolver:     e.resolve,
		QueryTimeout: opts.QueryTimeout,
		Logger:       opts.Logger,
	})
	e.playlist = playlist.New(backend, playlist.Options{
		ProbeWorkers: opts.ProbeWorkers,
		DefaultCount: opts.PlaylistCount,
		Timeouts:     opts.PlaylistTimeouts,
		Logger:       opts.Logger,
	})
	e.unsubscribe = e.machine.Subscribe(e.onSelection)
	return e
}

// Graph returns the context this session explores.
func (e *Explorer) Graph() domain.GraphContext {
	return e.graph
}

// Health probes the graph backend.
func (e *Explorer) Health(ctx context.Context) error {
	return e.backend.Health(ctx)
}

// Load fetches nodes and edges concurrently and replaces the model
// wholesale, resetting the selection. Results of a load overtaken by a newer
// one are dropped with ErrLoadSuperseded. On failure the previous model is
// kept and the failure becomes the load status.
func (e *Explorer) Load(ctx context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	e.loadGen++
	gen := e.loadGen
	e.loading = true
	e.loadStatus = "loading graph"
	e.mu.Unlock()
	e.emitView()

	var (
		nodes []graphmodel.RawNode
		edges []graphmodel.RawEdge
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := e.backend.ListNodes(gctx, e.graph)
		if err != nil {
			return fmt.Errorf("list nodes: %w", err)
		}
		nodes = n
		return nil
	})
	g.Go(func() error {
		l, err := e.backend.ListEdges(gctx, e.graph)
		if err != nil {
			return fmt.Errorf("list edges: %w", err)
		}
		edges = l
		return nil
	})
	err := g.Wait()

	e.mu.Lock()
	if e.closed || gen != e.loadGen {
		e.mu.Unlock()
		e.logger.Debug("dropping superseded graph load", "generation", gen)
		return ErrLoadSuperseded
	}
	e.loading = false
	if err != nil {
		e.loadStatus = domain.Describe(err)
		e.mu.Unlock()
		e.logger.Warn("graph load failed", "error", err)
		e.emitView()
		return err
	}

	model, report := graphmodel.New(e.graph, nodes, edges)
	e.model.Store(model)
	e.report = report
	e.hovered = ""
	e.loadStatus = fmt.Sprintf("loaded %d nodes and %d links", model.NodeCount(), model.EdgeCount())
	e.mu.Unlock()

	e.logger.Info("graph loaded",
		"nodes", model.NodeCount(),
		"links", model.EdgeCount(),
		"dropped_edges", report.DroppedEdges,
		"defaulted_weights", report.DefaultedWeights,
	)
	e.sim.Load(model)
	e.layout.Loaded(model.NodeCount())
	e.machine.Reset("graph loaded")
	return nil
}

// Select handles a pointer activation on a node.
func (e *Explorer) Select(id string) error {
	if err := e.requireNode(id); err != nil {
		return err
	}
	e.machine.Activate(id)
	return nil
}

// SelectOrigin is the form entry point for the origin.
func (e *Explorer) SelectOrigin(id string) error {
	if err := e.requireNode(id); err != nil {
		return err
	}
	e.machine.SelectOrigin(id)
	return nil
}

// SelectDestination is the form entry point for the destination. Without
// an origin the request is rejected through the status line.
func (e *Explorer) SelectDestination(id string) error {
	if err := e.requireNode(id); err != nil {
		return err
	}
	e.machine.SelectDestination(id)
	return nil
}

// Clear resets the selection.
func (e *Explorer) Clear() {
	e.machine.Clear()
}

// Hover marks id as hovered. An empty id clears the hover.
func (e *Explorer) Hover(id string) error {
	if id != "" {
		if err := e.requireNode(id); err != nil {
			return err
		}
	}
	e.mu.Lock()
	if e.hovered == id {
		e.mu.Unlock()
		return nil
	}
	e.hovered = id
	e.mu.Unlock()
	e.emitView()
	return nil
}

// SetSpacing applies a link distance and returns the clamped value.
func (e *Explorer) SetSpacing(n int) int {
	applied := e.layout.SetSpacing(n)
	e.emitView()
	return applied
}

// NodeIDs lists the loaded ids sorted for the selection form.
func (e *Explorer) NodeIDs() []string {
	ids := e.model.Load().IDs()
	sort.Strings(ids)
	return ids
}

// Playlist runs a playlist request. An unset graph means this session's
// graph, and the repeated Dijkstra scan walks the loaded nodes in load order.
func (e *Explorer) Playlist(ctx context.Context, req domain.PlaylistRequest) (domain.PlaylistResult, error) {
	if req.Graph == "" {
		req.Graph = e.graph
	}
	if req.Candidates == nil && req.Graph == e.graph {
		if model := e.model.Load(); !model.Empty() {
			req.Candidates = model.IDs()
		}
	}
	result, err := e.playlist.Run(ctx, req)
	if err != nil {
		return result, err
	}
	e.emit(Event{Kind: EventPlaylist, Playlist: &result})
	return result, nil
}

// CurrentPlaylist returns the latest playlist result.
func (e *Explorer) CurrentPlaylist() domain.PlaylistResult {
	return e.playlist.Current()
}

// Export asks the backend to write the static HTML export.
func (e *Explorer) Export(ctx context.Context) (map[string]any, error) {
	ack, err := e.backend.ExportStatic(ctx)
	if err != nil {
		e.logger.Warn("static export failed", "error", err)
		return nil, err
	}
	return ack, nil
}

// Subscribe registers fn for every event and returns a function removing
// the subscription. fn must not block or call back into the explorer.
func (e *Explorer) Subscribe(fn func(Event)) func() {
	e.subMu.Lock()
	id := e.nextSub
	e.nextSub++
	e.subs[id] = fn
	e.subMu.Unlock()

	return func() {
		e.subMu.Lock()
		delete(e.subs, id)
		e.subMu.Unlock()
	}
}

// Close stops pending fits and suppresses in-flight path results.
func (e *Explorer) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.mu.Unlock()

	e.unsubscribe()
	e.machine.Close()
	e.layout.Stop()
}

// Wait blocks until in-flight path queries have returned.
func (e *Explorer) Wait() {
	e.machine.Wait()
}

func (e *Explorer) requireNode(id string) error {
	model := e.model.Load()
	if model == nil {
		return ErrNotLoaded
	}
	if !model.Has(id) {
		return fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	return nil
}

func (e *Explorer) resolve(id string) (domain.Node, bool) {
	return e.model.Load().Node(id)
}

func (e *Explorer) onSelection(snap selection.Snapshot) {
	e.layout.Highlight(snap.Highlight)
	view := e.view(snap)
	e.emit(Event{Kind: EventView, View: &view})
}

func (e *Explorer) emitView() {
	view := e.View()
	e.emit(Event{Kind: EventView, View: &view})
}

func (e *Explorer) emit(ev Event) {
	e.subMu.Lock()
	defer e.subMu.Unlock()
	for _, fn := range e.subs {
		fn(ev)
	}
}
