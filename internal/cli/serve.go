package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"mcp-meal-generator/internal/generator"
	"mcp-meal-generator/internal/server"
)

type serveOptions struct {
	transport string
	host      string
	address   string
	port      int
}

func newServeCommand(root *rootOptions) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve generate_meal, list_catalog and reload_catalog as MCP tools over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Use address if provided, otherwise use host
			hostAddr := opts.host
			if opts.address != "" {
				hostAddr = opts.address
			}

			repo, closeRepo, err := root.openRepository()
			if err != nil {
				return err
			}
			defer closeRepo()

			srv, err := server.NewMealServer(&server.Config{
				Transport: opts.transport,
				Host:      hostAddr,
				Port:      opts.port,
				Version:   Version,
			}, repo, generator.New(repo))
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(contextOrBackground(cmd.Context()), os.Interrupt, syscall.SIGTERM)
			defer stop()

			err = srv.Start(ctx)
			slog.Info("server stopped")
			return err
		},
	}

	cmd.Flags().StringVar(&opts.transport, "transport", server.TransportHTTP, "Transport mode: http")
	cmd.Flags().IntVar(&opts.port, "port", 8011, "Port for HTTP transport")
	cmd.Flags().StringVar(&opts.host, "host", "0.0.0.0", "Host address")
	cmd.Flags().StringVar(&opts.address, "address", "", "Address (alias for host)")

	return cmd
}

// contextOrBackground guards against a nil command context.
func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
