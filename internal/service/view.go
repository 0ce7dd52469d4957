package service

import (
	"github.com/vanshika/pathlight/internal/domain"
	"github.com/vanshika/pathlight/internal/layout"
	"github.com/vanshika/pathlight/internal/paint"
	"github.com/vanshika/pathlight/internal/selection"
)

// Event kinds published by an Explorer.
const (
	EventView     = "view"
	EventLayout   = "layout"
	EventPlaylist = "playlist"
)

// Event is one change notification. Exactly one payload is set.
type Event struct {
	Kind     string
	View     *View
	Layout   *layout.Command
	Playlist *domain.PlaylistResult
}

// View is an immutable, painted snapshot of the session.
type View struct {
	Graph            domain.GraphContext `json:"graph"`
	SelectionVersion uint64              `json:"selection_version"`
	Phase            domain.Phase        `json:"phase"`
	Origin           string              `json:"origin,omitempty"`
	Destination      string              `json:"destination,omitempty"`
	Path             []string            `json:"path"`
	Cost             *float64            `json:"cost,omitempty"`
	Status           string              `json:"status"`
	Pending          bool                `json:"pending"`
	Loading          bool                `json:"loading"`
	LoadStatus       string              `json:"load_status"`
	DroppedEdges     int                 `json:"dropped_edges"`
	Hovered          string              `json:"hovered,omitempty"`
	Spacing          int                 `json:"spacing"`
	LayoutTicks      int                 `json:"layout_ticks"`
	Scene            paint.Scene         `json:"scene"`
}

// View paints the current state.
func (e *Explorer) View() View {
	return e.view(e.machine.Snapshot())
}

func (e *Explorer) view(snap selection.Snapshot) View {
	e.mu.Lock()
	hovered := e.hovered
	loading := e.loading
	loadStatus := e.loadStatus
	dropped := e.report.DroppedEdges
	e.mu.Unlock()

	model := e.model.Load()
	state := e.sim.State()
	scene := e.painter.Paint(paint.Frame{
		Model:     model,
		Selection: snap.Selection,
		Highlight: snap.Highlight,
		Hovered:   hovered,
		Layout:    state,
	})

	path := snap.Path
	if path == nil {
		path = []string{}
	}
	return View{
		Graph:            e.graph,
		SelectionVersion: snap.Version,
		Phase:            snap.Phase,
		Origin:           snap.Selection.OriginID(),
		Destination:      snap.Selection.DestinationID(),
		Path:             path,
		Cost:             snap.Cost,
		Status:           snap.Status,
		Pending:          snap.Pending,
		Loading:          loading,
		LoadStatus:       loadStatus,
		DroppedEdges:     dropped,
		Hovered:          hovered,
		Spacing:          e.layout.Spacing(),
		LayoutTicks:      state.Ticks,
		Scene:            scene,
	}
}
