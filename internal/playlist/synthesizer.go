// Package playlist builds an ordered list of items from a seed by querying
// the graph backend with one of several traversal strategies.
package playlist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vanshika/pathlight/internal/domain"
	"github.com/vanshika/pathlight/internal/graphmodel"
	"github.com/vanshika/pathlight/internal/observability"
)

// Querier is the subset of the graph backend used for synthesis.
type Querier interface {
	ListNodes(ctx context.Context, graph domain.GraphContext) ([]graphmodel.RawNode, error)
	ShortestPath(ctx context.Context, graph domain.GraphContext, origin, destination string) (domain.Path, error)
	Distances(ctx context.Context, graph domain.GraphContext, origin string) (map[string]*float64, error)
	BreadthFirst(ctx context.Context, graph domain.GraphContext, source string) ([]string, error)
	DepthFirst(ctx context.Context, graph domain.GraphContext, source string) ([]string, error)
}

var (
	// ErrEmptySeed is returned when a request names no seed.
	ErrEmptySeed = errors.New("choose a seed item")
	// ErrSuperseded marks a result discarded because a newer request started.
	ErrSuperseded = errors.New("playlist request superseded")
)

// Timeouts bounds each backend call made during synthesis.
type Timeouts struct {
	Distances    time.Duration
	ShortestPath time.Duration
	Traversal    time.Duration
	ListNodes    time.Duration
}

// DefaultTimeouts mirrors the limits of the interactive client.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Distances:    120 * time.Second,
		ShortestPath: 20 * time.Second,
		Traversal:    60 * time.Second,
		ListNodes:    60 * time.Second,
	}
}

// Options configures a Synthesizer.
type Options struct {
	// ProbeWorkers bounds concurrent shortest path probes. One keeps the scan
	// strictly sequential.
	ProbeWorkers int
	// DefaultCount replaces a zero request count.
	DefaultCount int
	Timeouts     Timeouts
	Logger       *slog.Logger
}

// Synthesizer runs playlist requests. A newer request supersedes the
// result of any request still running.
type Synthesizer struct {
	q            Querier
	workers      int
	defaultCount int
	timeouts     Timeouts
	logger   *slog.Logger

	mu      sync.Mutex
	gen     uint64
	current domain.PlaylistResult
}

// New creates a Synthesizer over q.
func New(q Querier, opts Options) *Synthesizer {
	if opts.ProbeWorkers <= 0 {
		opts.ProbeWorkers = 1
	}
	if opts.DefaultCount <= 0 {
		opts.DefaultCount = domain.DefaultPlaylistCount
	}
	def := DefaultTimeouts()
	if opts.Timeouts.Distances <= 0 {
		opts.Timeouts.Distances = def.Distances
	}
	if opts.Timeouts.ShortestPath <= 0 {
		opts.Timeouts.ShortestPath = def.ShortestPath
	}
	if opts.Timeouts.Traversal <= 0 {
		opts.Timeouts.Traversal = def.Traversal
	}
	if opts.Timeouts.ListNodes <= 0 {
		opts.Timeouts.ListNodes = def.ListNodes
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Synthesizer{
		q:            q,
		workers:      opts.ProbeWorkers,
		defaultCount: opts.DefaultCount,
		timeouts:     opts.Timeouts,
		logger:       opts.Logger.With("component", "playlist"),
		current:      domain.PlaylistResult{State: domain.PlaylistIdle},
	}
}

// Current returns the result of the latest request.
func (s *Synthesizer) Current() domain.PlaylistResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneResult(s.current)
}

// Run executes req. Failures are reported through the FAILED state and
// status line; the only error returned is ErrSuperseded, together with the
// result that was discarded.
func (s *Synthesizer) Run(ctx context.Context, req domain.PlaylistRequest) (domain.PlaylistResult, error) {
	req = s.normalize(req)

	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.current = domain.PlaylistResult{State: domain.PlaylistRunning, Algorithm: req.Algorithm, Status: "generating playlist"}
	s.mu.Unlock()

	result := s.synthesize(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		s.logger.Debug("discarding superseded playlist", "seed", req.Seed, "algorithm", req.Algorithm)
		return result, ErrSuperseded
	}
	s.current = cloneResult(result)
	return result, nil
}

func (s *Synthesizer) synthesize(ctx context.Context, req domain.PlaylistRequest) domain.PlaylistResult {
	if req.Seed == "" {
		return domain.PlaylistResult{State: domain.PlaylistFailed, Algorithm: req.Algorithm, Status: ErrEmptySeed.Error()}
	}

	ctx, span := observability.StartPlaylistSpan(ctx, string(req.Algorithm), req.Seed, req.Count)
	start := time.Now()

	var (
		items []string
		err   error
	)
	switch req.Algorithm {
	case domain.AlgorithmBellmanFord:
		items, err = s.byDistance(ctx, req)
	case domain.AlgorithmDijkstraRepeated:
		items, err = s.byRepeatedProbes(ctx, req)
	case domain.AlgorithmBFS:
		items, err = s.byTraversal(ctx, req, s.q.BreadthFirst)
	case domain.AlgorithmDFS:
		items, err = s.byTraversal(ctx, req, s.q.DepthFirst)
	default:
		err = fmt.Errorf("%w: %s", domain.ErrUnknownAlgorithm, req.Algorithm)
	}
	observability.EndSpan(span, err)

	if err != nil {
		s.logger.Warn("playlist failed", "seed", req.Seed, "algorithm", req.Algorithm, "error", err)
		return domain.PlaylistResult{State: domain.PlaylistFailed, Algorithm: req.Algorithm, Status: domain.Describe(err)}
	}
	s.logger.Info("playlist ready",
		"seed", req.Seed,
		"algorithm", req.Algorithm,
		"items", len(items),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return domain.PlaylistResult{
		State:     domain.PlaylistDone,
		Algorithm: req.Algorithm,
		Items:     items,
		Status:    readyStatus(req.Algorithm, len(items)),
	}
}

func readyStatus(alg domain.Algorithm, n int) string {
	if alg == domain.AlgorithmBellmanFord {
		return fmt.Sprintf("playlist ready: %d items", n)
	}
	return fmt.Sprintf("playlist ready (%s): %d items", alg, n)
}

// byDistance orders every reachable item by its distance from the seed.
func (s *Synthesizer) byDistance(ctx context.Context, req domain.PlaylistRequest) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeouts.Distances)
	defer cancel()

	dist, err := s.q.Distances(ctx, req.Graph, req.Seed)
	if err != nil {
		return nil, fmt.Errorf("distances from %s: %w", req.Seed, err)
	}

	type ranked struct {
		id   string
		dist float64
	}
	candidates := make([]ranked, 0, len(dist))
	for id, d := range dist {
		if id == req.Seed || d == nil || math.IsNaN(*d) || math.IsInf(*d, 0) {
			continue
		}
		candidates = append(candidates, ranked{id: id, dist: *d})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].dist != candidates[j].dist {
			return candidates[i].dist < candidates[j].dist
		}
		return candidates[i].id < candidates[j].id
	})

	items := []string{req.Seed}
	for _, c := range candidates {
		if len(items) >= req.Count {
			break
		}
		items = append(items, c.id)
	}
	return items, nil
}

// byRepeatedProbes keeps every candidate reachable by a shortest path query,
// in candidate order, until the playlist is full.
func (s *Synthesizer) byRepeatedProbes(ctx context.Context, req domain.PlaylistRequest) ([]string, error) {
	candidates, err := s.candidates(ctx, req)
	if err != nil {
		return nil, err
	}

	pool := newProbePool(s.workers, func(ctx context.Context, dest string) error {
		ctx, cancel := context.WithTimeout(ctx, s.timeouts.ShortestPath)
		defer cancel()
		_, err := s.q.ShortestPath(ctx, req.Graph, req.Seed, dest)
		return err
	})

	items := []string{req.Seed}
	for start := 0; start < len(candidates) && len(items) < req.Count; {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := min(start+s.workers, len(candidates))
		window := candidates[start:end]
		errs := pool.run(ctx, window)
		for i, dest := range window {
			if len(items) >= req.Count {
				break
			}
			if errs[i] != nil {
				if isContextErr(errs[i]) && ctx.Err() != nil {
					return nil, ctx.Err()
				}
				s.logger.Debug("probe skipped", "seed", req.Seed, "candidate", dest, "error", errs[i])
				continue
			}
			items = append(items, dest)
		}
		start = end
	}
	return items, nil
}

func (s *Synthesizer) candidates(ctx context.Context, req domain.PlaylistRequest) ([]string, error) {
	ids := req.Candidates
	if ids == nil {
		listCtx, cancel := context.WithTimeout(ctx, s.timeouts.ListNodes)
		defer cancel()
		nodes, err := s.q.ListNodes(listCtx, req.Graph)
		if err != nil {
			return nil, fmt.Errorf("list nodes: %w", err)
		}
		ids = make([]string, 0, len(nodes))
		for _, n := range nodes {
			ids = append(ids, n.ID)
		}
	}
	seen := map[string]struct{}{req.Seed: {}}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}

type traversal func(ctx context.Context, graph domain.GraphContext, source string) ([]string, error)

// byTraversal keeps the server's visiting order with the seed first.
func (s *Synthesizer) byTraversal(ctx context.Context, req domain.PlaylistRequest, walk traversal) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeouts.Traversal)
	defer cancel()

	order, err := walk(ctx, req.Graph, req.Seed)
	if err != nil {
		return nil, fmt.Errorf("%s from %s: %w", req.Algorithm, req.Seed, err)
	}
	items := []string{req.Seed}
	seen := map[string]struct{}{req.Seed: {}}
	for _, id := range order {
		if len(items) >= req.Count {
			break
		}
		if _, dup := seen[id]; dup || id == "" {
			continue
		}
		seen[id] = struct{}{}
		items = append(items, id)
	}
	return items, nil
}

func (s *Synthesizer) normalize(req domain.PlaylistRequest) domain.PlaylistRequest {
	req.Seed = strings.TrimSpace(req.Seed)
	if req.Count == 0 {
		req.Count = s.defaultCount
	}
	if req.Count < domain.MinPlaylistCount {
		req.Count = domain.MinPlaylistCount
	}
	if req.Algorithm == "" {
		req.Algorithm = domain.AlgorithmBellmanFord
	}
	if req.Graph == "" {
		req.Graph = domain.GraphTracks
	}
	return req
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func cloneResult(r domain.PlaylistResult) domain.PlaylistResult {
	r.Items = append([]string(nil), r.Items...)
	return r
}
