package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MATLAB-Graphics-and-App-Building/bubble-pie-chart/internal/server"
)

// newServeCmd creates the serve command for running the HTTP preview API.
func newServeCmd() *cobra.Command {
	var (
		addr  string
		flags cacheFlags
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the chart pipeline over HTTP",
		Long: `Serve the chart pipeline over HTTP.

The serve command runs a small preview API:

  POST /render   render an inline dataset, returns the artifact(s)
  POST /layout   compute and return a layout for an inline dataset
  GET  /healthz  liveness check

Requests carry datasets inline; the server never reads files named by
callers. Use --cache-backend=redis to share the cache across instances.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			runner, err := newRunner(ctx, logger, flags)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			return server.New(runner, logger).ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	flags.register(cmd)

	return cmd
}
