package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

func newToolsCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the tools a server offers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			cfg, logger, err := g.setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			c, err := dial(cmd.Context(), cfg.Session, logger)
			if err != nil {
				return err
			}
			defer func() { err = multierr.Append(err, c.Disconnect()) }()

			tools, err := c.ListTools(cmd.Context())
			if err != nil {
				return err
			}
			printTools(cmd.OutOrStdout(), tools)
			return nil
		},
	}
}
