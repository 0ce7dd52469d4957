package selection

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanshika/pathlight/internal/domain"
	"github.com/vanshika/pathlight/internal/edgekey"
)

type stubFinder struct {
	mu    sync.Mutex
	paths map[string][]string
	err   error
	calls [][2]string
	// gate, when set, blocks every query until closed.
	gate chan struct{}
}

func (s *stubFinder) ShortestPath(ctx context.Context, graph domain.GraphContext, origin, destination string) (domain.Path, error) {
	s.mu.Lock()
	s.calls = append(s.calls, [2]string{origin, destination})
	gate := s.gate
	s.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if s.err != nil {
		return domain.Path{}, s.err
	}
	return domain.Path{Nodes: s.paths[origin+">"+destination]}, nil
}

func (s *stubFinder) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func newMachine(finder PathFinder) *Machine {
	return New(Options{
		Graph:  domain.GraphNeighborhoods,
		Finder: finder,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func TestActivateFromEmptySetsOrigin(t *testing.T) {
	m := newMachine(&stubFinder{})

	m.Activate("A")
	snap := m.Snapshot()

	assert.Equal(t, domain.PhaseOriginOnly, snap.Phase)
	assert.Equal(t, "A", snap.Selection.OriginID())
	assert.Equal(t, []string{"A"}, snap.Highlight.NodeIDs())
	assert.Empty(t, snap.Highlight.Edges)
	assert.Equal(t, "origin set to A", snap.Status)
}

func TestActivateOriginAgainReturnsToEmpty(t *testing.T) {
	m := newMachine(&stubFinder{})

	m.Activate("A")
	m.Activate("A")
	snap := m.Snapshot()

	assert.Equal(t, domain.PhaseEmpty, snap.Phase)
	assert.True(t, snap.Highlight.Empty())
	assert.Equal(t, "origin removed", snap.Status)
}

func TestThirdActivationResetsOrigin(t *testing.T) {
	finder := &stubFinder{paths: map[string][]string{"B>C": {"B", "C"}}}
	m := newMachine(finder)

	m.Activate("B")
	m.Activate("C")
	m.Wait()
	m.Activate("C")
	snap := m.Snapshot()

	assert.Equal(t, domain.PhaseOriginOnly, snap.Phase)
	assert.Equal(t, "C", snap.Selection.OriginID())
	assert.Nil(t, snap.Selection.Destination)
	assert.Equal(t, []string{"C"}, snap.Highlight.NodeIDs())
	assert.Empty(t, snap.Highlight.Edges)
}

func TestActivateDestinationHighlightsPath(t *testing.T) {
	finder := &stubFinder{paths: map[string][]string{"A>D": {"A", "B", "C", "D"}}}
	m := newMachine(finder)

	m.Activate("A")
	m.Activate("D")
	pending := m.Snapshot()
	assert.Equal(t, domain.PhaseResolved, pending.Phase)
	assert.Equal(t, "destination D, computing", pending.Status)

	m.Wait()
	snap := m.Snapshot()
	assert.False(t, snap.Pending)
	assert.Equal(t, "path with 4 nodes", snap.Status)
	assert.Equal(t, []string{"A", "B", "C", "D"}, snap.Path)
	assert.ElementsMatch(t, []string{
		edgekey.Key("A", "B"), edgekey.Key("B", "C"), edgekey.Key("C", "D"),
	}, snap.Highlight.EdgeKeys())
}

func TestEmptyPathReportsNoPath(t *testing.T) {
	m := newMachine(&stubFinder{paths: map[string][]string{}})

	m.Activate("A")
	m.Activate("Z")
	m.Wait()
	snap := m.Snapshot()

	assert.Equal(t, "no path between A and Z", snap.Status)
	assert.True(t, snap.Highlight.Empty())
	assert.Equal(t, domain.PhaseResolved, snap.Phase)
}

func TestQueryFailureKeepsDestinationAndHighlight(t *testing.T) {
	finder := &stubFinder{err: &domain.RemoteError{Op: "shortest path", StatusCode: 404, Detail: "node not found: Z"}}
	m := newMachine(finder)

	m.Activate("A")
	m.Activate("Z")
	m.Wait()
	snap := m.Snapshot()

	assert.Equal(t, "node not found: Z", snap.Status)
	assert.Equal(t, "Z", snap.Selection.DestinationID())
	assert.Equal(t, []string{"A"}, snap.Highlight.NodeIDs())
	assert.False(t, snap.Pending)

	// The machine stays usable after a failure.
	m.Activate("Q")
	assert.Equal(t, "Q", m.Snapshot().Selection.OriginID())
}

func TestFormDestinationWithoutOriginIsRejected(t *testing.T) {
	finder := &stubFinder{}
	m := newMachine(finder)

	m.SelectDestination("B")
	m.Wait()
	snap := m.Snapshot()

	assert.Equal(t, domain.PhaseEmpty, snap.Phase)
	assert.Contains(t, snap.Status, "set the origin first")
	assert.Equal(t, 0, finder.callCount())
}

func TestFormEntryMatchesPointerEntry(t *testing.T) {
	paths := map[string][]string{"A>C": {"A", "B", "C"}}
	pointer := newMachine(&stubFinder{paths: paths})
	form := newMachine(&stubFinder{paths: paths})

	pointer.Activate("A")
	pointer.Activate("C")
	pointer.Wait()

	form.SelectOrigin("A")
	assert.Equal(t, domain.PhaseOriginOnly, form.Snapshot().Phase)
	form.SelectDestination("C")
	form.Wait()

	p, f := pointer.Snapshot(), form.Snapshot()
	assert.Equal(t, p.Phase, f.Phase)
	assert.Equal(t, p.Highlight, f.Highlight)
	assert.Equal(t, p.Path, f.Path)
}

func TestFormOriginFromResolvedRestarts(t *testing.T) {
	m := newMachine(&stubFinder{paths: map[string][]string{"A>B": {"A", "B"}}})
	m.SelectOrigin("A")
	m.SelectDestination("B")
	m.Wait()

	m.SelectOrigin("C")
	snap := m.Snapshot()
	assert.Equal(t, domain.PhaseOriginOnly, snap.Phase)
	assert.Equal(t, "origin selected: C", snap.Status)
	assert.Equal(t, []string{"C"}, snap.Highlight.NodeIDs())
}

func TestClearFromAnyPhase(t *testing.T) {
	m := newMachine(&stubFinder{paths: map[string][]string{"A>B": {"A", "B"}}})

	m.Clear()
	assert.Equal(t, domain.PhaseEmpty, m.Snapshot().Phase)

	m.Activate("A")
	m.Clear()
	assert.Equal(t, domain.PhaseEmpty, m.Snapshot().Phase)

	m.Activate("A")
	m.Activate("B")
	m.Wait()
	m.Clear()
	snap := m.Snapshot()
	assert.Equal(t, domain.PhaseEmpty, snap.Phase)
	assert.True(t, snap.Highlight.Empty())
	assert.Equal(t, "selection cleared", snap.Status)
}

func TestClearDiscardsPendingResult(t *testing.T) {
	finder := &stubFinder{
		paths: map[string][]string{"A>B": {"A", "B"}},
		gate:  make(chan struct{}),
	}
	m := newMachine(finder)

	m.Activate("A")
	m.Activate("B")
	m.Clear()
	close(finder.gate)
	m.Wait()

	snap := m.Snapshot()
	assert.Equal(t, domain.PhaseEmpty, snap.Phase)
	assert.True(t, snap.Highlight.Empty())
	assert.Equal(t, "selection cleared", snap.Status)
}

func TestReselectionDiscardsPendingResult(t *testing.T) {
	finder := &stubFinder{
		paths: map[string][]string{"A>B": {"A", "B"}, "C>D": {"C", "X", "D"}},
		gate:  make(chan struct{}),
	}
	m := newMachine(finder)

	m.Activate("A")
	m.Activate("B")
	m.Activate("C") // RESOLVED -> fresh origin while A>B is in flight
	m.Activate("D")
	close(finder.gate)
	m.Wait()

	snap := m.Snapshot()
	assert.Equal(t, "C", snap.Selection.OriginID())
	assert.Equal(t, "D", snap.Selection.DestinationID())
	assert.Equal(t, []string{"C", "X", "D"}, snap.Path)
	assert.False(t, snap.Highlight.HasNode("A"))
}

func TestCloseSuppressesLateResults(t *testing.T) {
	finder := &stubFinder{
		paths: map[string][]string{"A>B": {"A", "B"}},
		gate:  make(chan struct{}),
	}
	m := newMachine(finder)

	var got []Snapshot
	var mu sync.Mutex
	m.Subscribe(func(s Snapshot) {
		mu.Lock()
		got = append(got, s)
		mu.Unlock()
	})

	m.Activate("A")
	m.Activate("B")
	m.Close()
	close(finder.gate)
	m.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 2)
	assert.True(t, got[1].Pending)

	m.Activate("C")
	assert.Equal(t, "B", m.Snapshot().Selection.DestinationID())
}

func TestSubscribersSeeIncreasingVersions(t *testing.T) {
	m := newMachine(&stubFinder{paths: map[string][]string{"A>B": {"A", "B"}}})

	var versions []uint64
	unsubscribe := m.Subscribe(func(s Snapshot) { versions = append(versions, s.Version) })

	m.Activate("A")
	m.Activate("B")
	m.Wait()
	unsubscribe()
	m.Clear()

	require.Len(t, versions, 3)
	for i := 1; i < len(versions); i++ {
		assert.Greater(t, versions[i], versions[i-1])
	}
}

func TestResolverSuppliesNodeMetadata(t *testing.T) {
	m := New(Options{
		Finder: &stubFinder{},
		Resolver: func(id string) (domain.Node, bool) {
			if id == "Pina" {
				return domain.Node{ID: "Pina", Degree: 4, Region: "6"}, true
			}
			return domain.Node{}, false
		},
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	m.Activate("Pina")
	origin := m.Snapshot().Selection.Origin
	require.NotNil(t, origin)
	assert.Equal(t, 4, origin.Degree)
}

func TestNilFinderReportsError(t *testing.T) {
	m := newMachine(nil)
	m.Activate("A")
	m.Activate("B")
	snap := m.Snapshot()
	assert.Equal(t, "no path finder configured", snap.Status)
	assert.False(t, snap.Pending)
}
