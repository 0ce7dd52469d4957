package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vanshika/pathlight/internal/domain"
	"github.com/vanshika/pathlight/internal/graphapi"
	"github.com/vanshika/pathlight/internal/graphmodel"
	"github.com/vanshika/pathlight/internal/repository"
	"github.com/vanshika/pathlight/internal/ui"
)

// syncCmd copies graphs from the HTTP graph service into Neo4j so the
// neo4j backend can answer the same queries.
func syncCmd(opts *rootOptions) *cobra.Command {
	var (
		all       bool
		batchSize int
	)
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Import graphs from the graph service into Neo4j",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.close()
			logger := a.logger.With("component", "sync")

			source, err := buildAPIClient(a.logger, a.cfg)
			if err != nil {
				return err
			}
			client, err := buildGraphClient(ctx, a.cfg)
			if err != nil {
				return fmt.Errorf("create graph client: %w", err)
			}
			defer func() {
				if err := client.Close(context.Background()); err != nil {
					logger.Warn("closing graph client failed", "error", err)
				}
			}()
			repo := repository.New(client, a.logger)

			graphs := []domain.GraphContext{a.graph}
			if all {
				graphs = []domain.GraphContext{domain.GraphNeighborhoods, domain.GraphTracks}
			}

			rows := make([][]string, 0, len(graphs))
			for _, g := range graphs {
				start := time.Now()
				model, err := fetchModel(ctx, source, g)
				if err != nil {
					return err
				}
				stats, err := repo.ImportGraph(ctx, model, batchSize)
				if err != nil {
					return fmt.Errorf("import %s: %w", g, err)
				}
				logger.Info("graph imported",
					"graph", g,
					"nodes", stats.Nodes,
					"links", stats.Links,
					"batches", stats.Batches,
					"duration_ms", time.Since(start).Milliseconds(),
				)
				rows = append(rows, []string{string(g), strconv.Itoa(stats.Nodes), strconv.Itoa(stats.Links), strconv.Itoa(stats.Batches)})
			}

			out := cmd.OutOrStdout()
			ui.Table(out, []string{"GRAPH", "NODES", "LINKS", "BATCHES"}, rows)
			ui.Status(out, true, "sync complete")
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Sync every graph context")
	cmd.Flags().IntVar(&batchSize, "batch-size", repository.DefaultBatchSize, "Rows per write transaction")
	return cmd
}

func fetchModel(ctx context.Context, source *graphapi.Client, g domain.GraphContext) (*graphmodel.Model, error) {
	var (
		nodes []graphmodel.RawNode
		edges []graphmodel.RawEdge
	)
	eg, egctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		nodes, err = source.ListNodes(egctx, g)
		return err
	})
	eg.Go(func() error {
		var err error
		edges, err = source.ListEdges(egctx, g)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", g, err)
	}
	model, _ := graphmodel.New(g, nodes, edges)
	return model, nil
}
