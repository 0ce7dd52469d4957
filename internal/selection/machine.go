// Package selection tracks origin and destination choices and the path
// highlight derived from them.
package selection

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vanshika/pathlight/internal/domain"
	"github.com/vanshika/pathlight/internal/highlight"
)

// PathFinder runs the remote shortest path query.
type PathFinder interface {
	ShortestPath(ctx context.Context, graph domain.GraphContext, origin, destination string) (domain.Path, error)
}

// Resolver looks up node metadata for an id. Returning false keeps a bare
// node carrying only the id.
type Resolver func(id string) (domain.Node, bool)

// DefaultQueryTimeout bounds a single interactive path query.
const DefaultQueryTimeout = 20 * time.Second

// Snapshot is an immutable view of the machine state.
type Snapshot struct {
	Version   uint64
	Phase     domain.Phase
	Selection domain.Selection
	Highlight domain.HighlightSet
	// Path is the last applied path in traversal order.
	Path    []string
	Cost    *float64
	Status  string
	Pending bool
}

// Options configures a Machine.
type Options struct {
	Graph        domain.GraphContext
	Finder       PathFinder
	Resolver     Resolver
	QueryTimeout time.Duration
	Logger       *slog.Logger
}

// Machine is the origin/destination state machine. Every transition is
// atomic; path queries run in the background and their results are applied
// only while the selection they were issued for is still current.
type Machine struct {
	graph    domain.GraphContext
	finder   PathFinder
	resolve  Resolver
	timeout  time.Duration
	logger   *slog.Logger
	baseCtx  context.Context
	cancelFn context.CancelFunc

	mu        sync.Mutex
	selection domain.Selection
	highlight domain.HighlightSet
	path      []string
	cost      *float64
	status    string
	pending   bool
	gen       uint64
	version   uint64
	closed    bool

	inflight sync.WaitGroup

	notifyMu  sync.Mutex
	published uint64
	nextSub   int
	subs      map[int]func(Snapshot)
}

// New constructs a Machine in the EMPTY phase.
func New(opts Options) *Machine {
	if opts.QueryTimeout <= 0 {
		opts.QueryTimeout = DefaultQueryTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Machine{
		graph:     opts.Graph,
		finder:    opts.Finder,
		resolve:   opts.Resolver,
		timeout:   opts.QueryTimeout,
		logger:    opts.Logger.With("component", "selection", "graph", string(opts.Graph)),
		baseCtx:   ctx,
		cancelFn:  cancel,
		highlight: domain.NewHighlightSet(),
		subs:      make(map[int]func(Snapshot)),
	}
}

type query struct {
	gen         uint64
	origin      string
	destination string
}

// Activate handles a pointer activation of node id.
func (m *Machine) Activate(id string) {
	if id == "" {
		return
	}
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	var q *query
	switch m.selection.Phase() {
	case domain.PhaseEmpty:
		m.setOriginLocked(id, fmt.Sprintf("origin set to %s", id))
	case domain.PhaseOriginOnly:
		if id == m.selection.OriginID() {
			m.resetLocked("origin removed")
		} else {
			q = m.setDestinationLocked(id, fmt.Sprintf("destination %s, computing", id))
		}
	default:
		m.setOriginLocked(id, fmt.Sprintf("origin reset to %s", id))
	}
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.publish(snap)
	m.dispatch(q)
}

// SelectOrigin is the form entry point for choosing an origin by id.
func (m *Machine) SelectOrigin(id string) {
	if id == "" {
		return
	}
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.setOriginLocked(id, fmt.Sprintf("origin selected: %s", id))
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.publish(snap)
}

// SelectDestination is the form entry point for choosing a destination by
// id. It is rejected while no origin is set.
func (m *Machine) SelectDestination(id string) {
	if id == "" {
		return
	}
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	var q *query
	if m.selection.Origin == nil {
		m.status = "set the origin first (click a node or pick one from the list)"
		m.version++
	} else {
		q = m.setDestinationLocked(id, fmt.Sprintf("destination selected: %s, computing", id))
	}
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.publish(snap)
	m.dispatch(q)
}

// Clear resets the selection from any phase.
func (m *Machine) Clear() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.resetLocked("selection cleared")
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.publish(snap)
}

// Reset discards the selection with a caller supplied status, used when the
// underlying graph is replaced.
func (m *Machine) Reset(status string) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.resetLocked(status)
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.publish(snap)
}

// Snapshot returns the current state.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Subscribe registers fn for every published snapshot and returns a function
// removing the subscription. fn must not call back into the machine.
func (m *Machine) Subscribe(fn func(Snapshot)) func() {
	m.notifyMu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.notifyMu.Unlock()

	return func() {
		m.notifyMu.Lock()
		delete(m.subs, id)
		m.notifyMu.Unlock()
	}
}

// Close suppresses the effect of every pending and future query.
func (m *Machine) Close() {
	m.mu.Lock()
	m.closed = true
	m.gen++
	m.mu.Unlock()
	m.cancelFn()
}

// Wait blocks until in-flight path queries have returned.
func (m *Machine) Wait() {
	m.inflight.Wait()
}

func (m *Machine) setOriginLocked(id, status string) {
	node := m.lookup(id)
	m.selection = domain.Selection{Origin: &node}
	m.highlight = domain.NewHighlightSet(id)
	m.path = nil
	m.cost = nil
	m.pending = false
	m.status = status
	m.gen++
	m.version++
}

func (m *Machine) setDestinationLocked(id, status string) *query {
	node := m.lookup(id)
	m.selection.Destination = &node
	m.pending = true
	m.status = status
	m.gen++
	m.version++
	return &query{gen: m.gen, origin: m.selection.OriginID(), destination: id}
}

func (m *Machine) resetLocked(status string) {
	m.selection = domain.Selection{}
	m.highlight = domain.NewHighlightSet()
	m.path = nil
	m.cost = nil
	m.pending = false
	m.status = status
	m.gen++
	m.version++
}

func (m *Machine) lookup(id string) domain.Node {
	if m.resolve != nil {
		if node, ok := m.resolve(id); ok {
			return node
		}
	}
	return domain.Node{ID: id}
}

func (m *Machine) snapshotLocked() Snapshot {
	snap := Snapshot{
		Version:   m.version,
		Phase:     m.selection.Phase(),
		Selection: m.selection.Clone(),
		Highlight: m.highlight.Clone(),
		Path:      append([]string(nil), m.path...),
		Status:    m.status,
		Pending:   m.pending,
	}
	if m.cost != nil {
		c := *m.cost
		snap.Cost = &c
	}
	return snap
}

func (m *Machine) dispatch(q *query) {
	if q == nil {
		return
	}
	if m.finder == nil {
		m.complete(*q, domain.Path{}, fmt.Errorf("no path finder configured"))
		return
	}
	m.inflight.Add(1)
	go func() {
		defer m.inflight.Done()
		ctx, cancel := context.WithTimeout(m.baseCtx, m.timeout)
		defer cancel()
		path, err := m.finder.ShortestPath(ctx, m.graph, q.origin, q.destination)
		m.complete(*q, path, err)
	}()
}

// complete applies a query result when its tag still matches the selection.
func (m *Machine) complete(q query, path domain.Path, err error) {
	m.mu.Lock()
	if m.closed || q.gen != m.gen || m.selection.Phase() != domain.PhaseResolved ||
		m.selection.OriginID() != q.origin || m.selection.DestinationID() != q.destination {
		m.mu.Unlock()
		m.logger.Debug("discarding stale path result", "origin", q.origin, "destination", q.destination)
		return
	}

	m.pending = false
	if err != nil {
		m.status = domain.Describe(err)
		m.logger.Warn("path query failed", "origin", q.origin, "destination", q.destination, "error", err)
	} else {
		m.highlight = highlight.FromPath(path.Nodes)
		m.path = append([]string(nil), path.Nodes...)
		m.cost = path.Cost
		m.status = highlight.Status(q.origin, q.destination, path.Nodes)
	}
	m.version++
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.publish(snap)
}

func (m *Machine) publish(snap Snapshot) {
	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()
	if snap.Version <= m.published {
		return
	}
	m.published = snap.Version
	for _, fn := range m.subs {
		fn(snap)
	}
}
