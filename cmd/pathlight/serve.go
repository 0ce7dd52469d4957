package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vanshika/pathlight/internal/server"
	"github.com/vanshika/pathlight/internal/ui"
)

func serveCmd(opts *rootOptions) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the interactive explorer HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.close()
			if port != 0 {
				a.cfg.HTTP.Port = port
			}

			explorer, err := a.explorer()
			if err != nil {
				return err
			}
			defer explorer.Close()

			// A failed first load still serves; POST /reload retries.
			if err := explorer.Load(ctx); err != nil {
				a.logger.Warn("initial graph load failed", "error", err)
			}

			router := server.NewRouter(a.logger, server.RouterDependencies{
				Health:         server.BackendHealthService{Backend: a.backend},
				API:            server.NewAPIHandlers(a.logger, explorer),
				AllowedOrigins: a.cfg.HTTP.AllowedOrigins(),
			})
			srv := server.New(a.logger, a.cfg.HTTP, router)
			fmt.Fprintf(cmd.OutOrStdout(), "%s explorer for %s on http://%s\n",
				ui.StatusIcon(true), a.graph, srv.Addr())

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start()
			}()

			select {
			case <-ctx.Done():
				a.logger.Info("received shutdown signal")
			case err := <-errCh:
				if err != nil && !errors.Is(err, context.Canceled) {
					a.logger.Error("server stopped unexpectedly", "error", err)
					return err
				}
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				a.logger.Error("graceful shutdown failed", "error", err)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Listen port (overrides config)")
	return cmd
}
