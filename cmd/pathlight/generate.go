package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vanshika/pathlight/internal/generator"
	"github.com/vanshika/pathlight/internal/graphmodel"
	"github.com/vanshika/pathlight/internal/repository"
	"github.com/vanshika/pathlight/internal/ui"
)

func generateCmd(opts *rootOptions) *cobra.Command {
	cfg := generator.DefaultConfig()
	var (
		outputDir string
		importIt  bool
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a synthetic weighted graph",
		Long: "Generate a connected synthetic graph. Files are written in the graph service\n" +
			"payload shape; --import loads it into Neo4j under the selected graph context.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()

			dataset, err := generator.New(cfg).Generate(ctx)
			if err != nil {
				return fmt.Errorf("generation failed: %w", err)
			}
			out := cmd.OutOrStdout()

			if !importIt {
				if err := generator.WriteDataset(dataset, outputDir); err != nil {
					return err
				}
				ui.Status(out, true, fmt.Sprintf("generated %d nodes and %d links into %s",
					len(dataset.Nodes), len(dataset.Edges), outputDir))
				return nil
			}

			a, err := newApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.close()
			client, err := buildGraphClient(ctx, a.cfg)
			if err != nil {
				return fmt.Errorf("create graph client: %w", err)
			}
			defer client.Close(context.Background())

			nodes, edges := dataset.Raw()
			model, _ := graphmodel.New(a.graph, nodes, edges)
			stats, err := repository.New(client, a.logger).ImportGraph(ctx, model, repository.DefaultBatchSize)
			if err != nil {
				return fmt.Errorf("import %s: %w", a.graph, err)
			}
			ui.Status(out, true, fmt.Sprintf("imported %d nodes and %d links into %s",
				stats.Nodes, stats.Links, a.graph))
			return nil
		},
	}
	cmd.Flags().IntVar(&cfg.NumNodes, "nodes", cfg.NumNodes, "Number of nodes")
	cmd.Flags().Float64Var(&cfg.AvgDegree, "avg-degree", cfg.AvgDegree, "Target mean degree")
	cmd.Flags().IntVar(&cfg.Regions, "regions", cfg.Regions, "Number of regions")
	cmd.Flags().Float64Var(&cfg.MaxWeight, "max-weight", cfg.MaxWeight, "Largest link weight")
	cmd.Flags().Int64Var(&cfg.Seed, "seed", cfg.Seed, "Random seed for deterministic generation")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "data", "Directory for nodes.json and edges.json")
	cmd.Flags().BoolVar(&importIt, "import", false, "Import into Neo4j instead of writing files")
	return cmd
}
