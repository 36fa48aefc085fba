package cli

import (
	"github.com/spf13/cobra"

	"github.com/slicegrid/slicegrid/internal/api"
)

// serveCommand creates the serve command for running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP resolve API",
		Long: `Run the HTTP resolve API.

Endpoints:
  POST /v1/resolve   resolve a descriptor document
  GET  /healthz      liveness check

With the redis cache backend configured, multiple instances share
resolved results.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			server := api.NewServer(runner, c.Logger)
			return server.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}
