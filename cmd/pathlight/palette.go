package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vanshika/pathlight/internal/paint"
	"github.com/vanshika/pathlight/internal/ui"
)

func paletteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "palette",
		Short: "Manage the explorer color palette",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "init PATH",
		Short: "Write the default palette as TOML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := paint.DefaultPalette().Save(args[0]); err != nil {
				return err
			}
			ui.Status(cmd.OutOrStdout(), true, fmt.Sprintf("palette written to %s", args[0]))
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show PATH",
		Short: "Print a palette merged over the defaults",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := paint.LoadPalette(args[0])
			if err != nil {
				return err
			}
			ui.Table(cmd.OutOrStdout(), []string{"ROLE", "COLOR"}, [][]string{
				{"node", p.Node},
				{"link", p.Link},
				{"highlight", p.Highlight},
				{"origin", p.Origin},
				{"destination", p.Destination},
				{"hover", p.Hover},
				{"label", p.Label},
				{"border", p.Border},
			})
			return nil
		},
	})
	return cmd
}
