// Command pathlight explores weighted graphs served by a graph query
// backend: shortest paths, playlists and an interactive explorer server.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/vanshika/pathlight/internal/ui"
)

var version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		ui.Status(os.Stderr, false, err.Error())
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "pathlight",
		Short:         "Explore shortest paths and playlists on a remote graph",
		Long:          ui.Brand.Sprint("pathlight") + " explores weighted graphs served by a graph query backend",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate("pathlight {{ .Version }}\n")
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to a config file (yaml, toml or json)")
	root.PersistentFlags().StringVarP(&opts.graph, "graph", "g", "", "Graph context: neighborhoods or tracks")
	root.PersistentFlags().StringVar(&opts.backend, "backend", "", "Query backend override: http or neo4j")

	root.AddCommand(
		serveCmd(opts),
		pathCmd(opts),
		playlistCmd(opts),
		nodesCmd(opts),
		exportCmd(opts),
		syncCmd(opts),
		generateCmd(opts),
		paletteCmd(),
	)
	return root
}
