package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/FreePeak/golang-mcp-sse-client/pkg/client"
)

var errUnhealthy = errors.New("server is unhealthy")

func newHealthCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Probe the server health endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := g.setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			c := client.New(cfg.Session, client.WithLogger(logger.Zap()))
			if !c.HealthCheck(cmd.Context()) {
				fmt.Fprintln(cmd.OutOrStdout(), "unhealthy")
				return errUnhealthy
			}
			fmt.Fprintln(cmd.OutOrStdout(), "healthy")
			return nil
		},
	}
}
