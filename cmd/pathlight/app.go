package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/vanshika/pathlight/internal/config"
	"github.com/vanshika/pathlight/internal/domain"
	"github.com/vanshika/pathlight/internal/graph"
	"github.com/vanshika/pathlight/internal/graphapi"
	"github.com/vanshika/pathlight/internal/layout"
	"github.com/vanshika/pathlight/internal/logging"
	"github.com/vanshika/pathlight/internal/observability"
	"github.com/vanshika/pathlight/internal/paint"
	"github.com/vanshika/pathlight/internal/playlist"
	"github.com/vanshika/pathlight/internal/repository"
	"github.com/vanshika/pathlight/internal/service"
)

type rootOptions struct {
	configPath string
	graph      string
	backend    string
}

// app holds what every command needs: configuration, logger, tracing and
// the selected graph backend.
type app struct {
	cfg     config.Config
	logger  *slog.Logger
	graph   domain.GraphContext
	backend service.GraphBackend
	closers []func(context.Context) error
}

func newApp(ctx context.Context, opts *rootOptions) (*app, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.backend != "" {
		cfg.Graph.Backend = opts.backend
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	graphName := cfg.Graph.Context
	if opts.graph != "" {
		graphName = opts.graph
	}
	g, err := domain.ParseGraphContext(graphName)
	if err != nil {
		return nil, err
	}

	logger := logging.New(cfg.Logging)
	a := &app{cfg: cfg, logger: logger, graph: g}

	tp, err := observability.InitTracing(ctx, &observability.TracingConfig{
		ServiceName:    cfg.Tracing.ServiceName,
		ServiceVersion: version,
		Environment:    cfg.Tracing.Environment,
		Backend:        cfg.Graph.Backend,
		OTLPEndpoint:   cfg.Tracing.Endpoint,
		SampleRate:     cfg.Tracing.SampleRate,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	if tp.Enabled() {
		logger.Debug("tracing enabled", "endpoint", cfg.Tracing.Endpoint, "sample_rate", cfg.Tracing.SampleRate)
	}
	a.closers = append(a.closers, tp.Shutdown)

	backend, closeBackend, err := buildBackend(ctx, logger, cfg)
	if err != nil {
		a.close()
		return nil, err
	}
	a.backend = backend
	if closeBackend != nil {
		a.closers = append(a.closers, closeBackend)
	}
	return a, nil
}

func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			a.logger.Warn("shutdown step failed", "error", err)
		}
	}
	a.closers = nil
}

func (a *app) synthesizer() *playlist.Synthesizer {
	return playlist.New(a.backend, playlist.Options{
		ProbeWorkers: a.cfg.Playlist.ProbeWorkers,
		DefaultCount: a.cfg.Playlist.DefaultCount,
		Timeouts:     a.playlistTimeouts(),
		Logger:       a.logger,
	})
}

func (a *app) playlistTimeouts() playlist.Timeouts {
	return playlist.Timeouts{
		Distances:    a.cfg.Graph.DistancesTimeout,
		ShortestPath: a.cfg.Graph.ShortestPathTimeout,
		Traversal:    a.cfg.Graph.TraversalTimeout,
		ListNodes:    a.cfg.Graph.RequestTimeout,
	}
}

func (a *app) explorer() (*service.Explorer, error) {
	palette := paint.DefaultPalette()
	if a.cfg.Paint.PaletteFile != "" {
		p, err := paint.LoadPalette(a.cfg.Paint.PaletteFile)
		if err != nil {
			return nil, err
		}
		palette = p
	}
	return service.NewExplorer(a.backend, service.Options{
		Graph:            a.graph,
		Palette:          palette,
		Spacing:          a.cfg.Layout.Spacing,
		SettleDelay:      a.cfg.Layout.SettleDelay,
		Simulation:       layout.SimulationOptions{CooldownTicks: a.cfg.Layout.CooldownTicks},
		QueryTimeout:     a.cfg.Graph.ShortestPathTimeout,
		ProbeWorkers:     a.cfg.Playlist.ProbeWorkers,
		PlaylistCount:    a.cfg.Playlist.DefaultCount,
		PlaylistTimeouts: a.playlistTimeouts(),
		Logger:           a.logger,
	}), nil
}

// buildBackend returns the configured query backend and its cleanup.
func buildBackend(ctx context.Context, logger *slog.Logger, cfg config.Config) (service.GraphBackend, func(context.Context) error, error) {
	switch strings.ToLower(cfg.Graph.Backend) {
	case config.BackendNeo4j:
		client, err := buildGraphClient(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("create graph client: %w", err)
		}
		return repository.New(client, logger), client.Close, nil
	default:
		client, err := buildAPIClient(logger, cfg)
		if err != nil {
			return nil, nil, err
		}
		logger.Debug("using graph service", "url", client.BaseURL())
		return client, nil, nil
	}
}

func buildAPIClient(logger *slog.Logger, cfg config.Config) (*graphapi.Client, error) {
	return graphapi.New(cfg.Graph.APIURL, graphapi.Options{
		HTTPClient: &http.Client{},
		Timeouts: graphapi.Timeouts{
			Default:      cfg.Graph.RequestTimeout,
			ShortestPath: cfg.Graph.ShortestPathTimeout,
			Distances:    cfg.Graph.DistancesTimeout,
			Traversal:    cfg.Graph.TraversalTimeout,
		},
		Logger: logger,
	})
}

func buildGraphClient(ctx context.Context, cfg config.Config) (graph.Client, error) {
	if cfg.Graph.URI == "" {
		return nil, graph.ErrMissingURI
	}

	opts := graph.Options{
		URI:            cfg.Graph.URI,
		Database:       cfg.Graph.Database,
		Username:       cfg.Graph.Username,
		Password:       cfg.Graph.Password,
		MaxConnections: cfg.Graph.MaxConnections,
	}
	return graph.NewNeo4jClient(ctx, opts)
}
