package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vanshika/pathlight/internal/domain"
	"github.com/vanshika/pathlight/internal/graphmodel"
	"github.com/vanshika/pathlight/internal/highlight"
	"github.com/vanshika/pathlight/internal/ui"
)

func pathCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "path ORIGIN DESTINATION",
		Short: "Compute the shortest path between two nodes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.close()

			origin, destination := args[0], args[1]
			path, err := a.backend.ShortestPath(cmd.Context(), a.graph, origin, destination)
			if err != nil {
				return errors.New(domain.Describe(err))
			}

			out := cmd.OutOrStdout()
			ui.Banner(out, fmt.Sprintf("shortest path on %s", a.graph))
			ui.Route(out, path.Nodes)
			ui.Status(out, len(path.Nodes) > 0, highlight.Status(origin, destination, path.Nodes))
			if path.Cost != nil {
				fmt.Fprintf(out, "  cost %s\n", strconv.FormatFloat(*path.Cost, 'f', -1, 64))
			}
			if len(path.Streets) > 0 {
				rows := make([][]string, 0, len(path.Streets))
				for i, street := range path.Streets {
					rows = append(rows, []string{strconv.Itoa(i + 1), street})
				}
				fmt.Fprintln(out)
				ui.Table(out, []string{"#", "STREET"}, rows)
			}
			return nil
		},
	}
}

func playlistCmd(opts *rootOptions) *cobra.Command {
	var (
		count     int
		algorithm string
	)
	cmd := &cobra.Command{
		Use:   "playlist SEED",
		Short: "Build a playlist of items related to a seed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			alg, err := domain.ParseAlgorithm(algorithm)
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.close()

			result, err := a.synthesizer().Run(cmd.Context(), domain.PlaylistRequest{
				Graph:     a.graph,
				Seed:      args[0],
				Count:     count,
				Algorithm: alg,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			ui.Banner(out, fmt.Sprintf("playlist on %s", a.graph))
			rows := make([][]string, 0, len(result.Items))
			for i, item := range result.Items {
				rows = append(rows, []string{strconv.Itoa(i + 1), item})
			}
			ui.Table(out, []string{"#", "ITEM"}, rows)
			ui.Status(out, result.State == domain.PlaylistDone, result.Status)
			if result.State != domain.PlaylistDone {
				return errors.New("playlist failed")
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 0, "Number of items, seed included (minimum 2; 0 uses playlist.default_count)")
	cmd.Flags().StringVarP(&algorithm, "algorithm", "a", string(domain.AlgorithmBellmanFord), "bellman-ford, dijkstra, bfs or dfs")
	return cmd
}

func nodesCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "nodes",
		Short: "List the nodes of a graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.close()

			raw, err := a.backend.ListNodes(cmd.Context(), a.graph)
			if err != nil {
				return errors.New(domain.Describe(err))
			}
			model, _ := graphmodel.New(a.graph, raw, nil)

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(model.IDs())
			}
			rows := make([][]string, 0, model.NodeCount())
			for _, n := range model.Nodes() {
				rows = append(rows, []string{n.ID, strconv.Itoa(n.Degree), n.Region})
			}
			ui.Table(out, []string{"ID", "DEGREE", "REGION"}, rows)
			fmt.Fprintf(out, "\n%s\n", ui.Subtle.Sprintf("%d nodes", model.NodeCount()))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print ids as a JSON array")
	return cmd
}

func exportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Ask the graph service to write its static HTML export",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.close()

			ack, err := a.backend.ExportStatic(cmd.Context())
			if err != nil {
				return errors.New(domain.Describe(err))
			}
			out := cmd.OutOrStdout()
			ui.Status(out, true, "static export generated")
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(ack)
		},
	}
}
