// Package layout drives the force-directed layout: spacing, reheating, the
// one-shot fit after the first load and highlight forwarding.
package layout

import (
	"log/slog"
	"sync"
	"time"

	"github.com/vanshika/pathlight/internal/domain"
)

const (
	MinSpacing     = 30
	MaxSpacing     = 260
	DefaultSpacing = 140

	DefaultSettleDelay = 500 * time.Millisecond
	FitDuration        = 400 * time.Millisecond
	FitPadding         = 50
)

// Backend is the rendering side of the layout.
type Backend interface {
	SetSpacing(spacing int)
	Reheat()
	FitToView(duration time.Duration, padding int)
	Highlight(set domain.HighlightSet)
}

// Scheduler runs f once after d and returns a function cancelling it.
type Scheduler func(d time.Duration, f func()) (stop func() bool)

func timerScheduler(d time.Duration, f func()) func() bool {
	t := time.AfterFunc(d, f)
	return t.Stop
}

// Options configures a Controller.
type Options struct {
	Spacing     int
	SettleDelay time.Duration
	Scheduler   Scheduler
	Logger      *slog.Logger
}

// Controller owns the spacing value and the fit-to-view latch.
type Controller struct {
	backend Backend
	settle  time.Duration
	after   Scheduler
	logger  *slog.Logger

	mu        sync.Mutex
	spacing   int
	fitArmed  bool
	cancelFit func() bool
}

// NewController applies the initial spacing to backend.
func NewController(backend Backend, opts Options) *Controller {
	if opts.Spacing == 0 {
		opts.Spacing = DefaultSpacing
	}
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = DefaultSettleDelay
	}
	if opts.Scheduler == nil {
		opts.Scheduler = timerScheduler
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	c := &Controller{
		backend:  backend,
		settle:   opts.SettleDelay,
		after:    opts.Scheduler,
		logger:   opts.Logger.With("component", "layout"),
		spacing:  Clamp(opts.Spacing),
		fitArmed: true,
	}
	backend.SetSpacing(c.spacing)
	return c
}

// Clamp bounds a spacing value to the slider range.
func Clamp(n int) int {
	switch {
	case n < MinSpacing:
		return MinSpacing
	case n > MaxSpacing:
		return MaxSpacing
	default:
		return n
	}
}

// Spacing returns the current link distance.
func (c *Controller) Spacing() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.spacing
}

// SetSpacing clamps n, pushes it to the backend and reheats the simulation
// without resetting positions. It returns the applied value.
func (c *Controller) SetSpacing(n int) int {
	c.mu.Lock()
	c.spacing = Clamp(n)
	applied := c.spacing
	c.mu.Unlock()

	c.backend.SetSpacing(applied)
	c.backend.Reheat()
	c.logger.Debug("spacing changed", "requested", n, "applied", applied)
	return applied
}

// Loaded reports a graph load. The first load with nodes schedules a single
// fit to view after the settle delay; later loads never fit again.
func (c *Controller) Loaded(nodeCount int) {
	if nodeCount <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.fitArmed {
		return
	}
	c.fitArmed = false
	c.cancelFit = c.after(c.settle, func() {
		c.backend.FitToView(FitDuration, FitPadding)
	})
}

// Highlight forwards the highlight set to the backend.
func (c *Controller) Highlight(set domain.HighlightSet) {
	c.backend.Highlight(set)
}

// Stop cancels a fit that has not fired yet.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancelFit != nil {
		c.cancelFit()
		c.cancelFit = nil
	}
}

// Multi fans every command out to several backends in order.
type Multi []Backend

func (m Multi) SetSpacing(spacing int) {
	for _, b := range m {
		b.SetSpacing(spacing)
	}
}

func (m Multi) Reheat() {
	for _, b := range m {
		b.Reheat()
	}
}

func (m Multi) FitToView(duration time.Duration, padding int) {
	for _, b := range m {
		b.FitToView(duration, padding)
	}
}

func (m Multi) Highlight(set domain.HighlightSet) {
	for _, b := range m {
		b.Highlight(set)
	}
}
