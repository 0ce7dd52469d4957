package layout

import (
	"sync"
	"time"

	"github.com/vanshika/pathlight/internal/domain"
)

// Command kinds emitted by Recorder.
const (
	CommandSpacing   = "spacing"
	CommandReheat    = "reheat"
	CommandFitToView = "fit"
	CommandHighlight = "highlight"
)

// Command is one backend call, serialized for a remote renderer.
type Command struct {
	Kind       string   `json:"kind"`
	Spacing    int      `json:"spacing,omitempty"`
	DurationMS int64    `json:"duration_ms,omitempty"`
	Padding    int      `json:"padding,omitempty"`
	Nodes      []string `json:"nodes,omitempty"`
	Edges      []string `json:"edges,omitempty"`
}

// Recorder is a Backend that keeps every command and optionally forwards it
// to a sink, such as the explorer event stream.
type Recorder struct {
	mu       sync.Mutex
	commands []Command
	sink     func(Command)
}

// NewRecorder returns a Recorder forwarding to sink when non-nil.
func NewRecorder(sink func(Command)) *Recorder {
	return &Recorder{sink: sink}
}

func (r *Recorder) SetSpacing(spacing int) {
	r.record(Command{Kind: CommandSpacing, Spacing: spacing})
}

func (r *Recorder) Reheat() {
	r.record(Command{Kind: CommandReheat})
}

func (r *Recorder) FitToView(duration time.Duration, padding int) {
	r.record(Command{Kind: CommandFitToView, DurationMS: duration.Milliseconds(), Padding: padding})
}

func (r *Recorder) Highlight(set domain.HighlightSet) {
	r.record(Command{Kind: CommandHighlight, Nodes: set.NodeIDs(), Edges: set.EdgeKeys()})
}

// Commands returns the recorded commands in call order.
func (r *Recorder) Commands() []Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Command(nil), r.commands...)
}

func (r *Recorder) record(cmd Command) {
	r.mu.Lock()
	r.commands = append(r.commands, cmd)
	sink := r.sink
	r.mu.Unlock()
	if sink != nil {
		sink(cmd)
	}
}
