package cli

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/FreePeak/golang-mcp-sse-client/pkg/client"
)

func newCallCommand(g *globals) *cobra.Command {
	var rawArgs string

	cmd := &cobra.Command{
		Use:   "call NAME",
		Short: "Call a tool and print its text result",
		Example: `  mcpsse call add_numbers --args '{"a": 5, "b": 3}'
  mcpsse --server http://localhost:9000 call find_max --args '{"a": 42, "b": 17}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			arguments, err := parseArguments(rawArgs)
			if err != nil {
				return err
			}

			cfg, logger, err := g.setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			result, err := client.QuickToolCall(cmd.Context(), cfg.Session, args[0], arguments, client.WithLogger(logger.Zap()))
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), result.Text())
			if result.IsError() {
				return fmt.Errorf("tool %s reported an error", args[0])
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&rawArgs, "args", "{}", "tool arguments as a JSON object")
	return cmd
}

// parseArguments decodes the --args flag. It must be a JSON object.
func parseArguments(raw string) (map[string]interface{}, error) {
	arguments := map[string]interface{}{}
	if raw == "" {
		return arguments, nil
	}
	if err := json.Unmarshal([]byte(raw), &arguments); err != nil {
		return nil, errors.Wrap(err, "--args must be a JSON object")
	}
	if arguments == nil {
		arguments = map[string]interface{}{}
	}
	return arguments, nil
}
