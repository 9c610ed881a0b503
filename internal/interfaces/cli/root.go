// Package cli implements the mcpsse command line tool.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/FreePeak/golang-mcp-sse-client/internal/infrastructure/logging"
	"github.com/FreePeak/golang-mcp-sse-client/pkg/client"
	"github.com/FreePeak/golang-mcp-sse-client/pkg/config"
)

// Version is overridden by ldflags.
var Version = "dev"

// globals holds the persistent flags.
type globals struct {
	configPath string
	serverURL  string
	logLevel   string
}

// NewRootCommand builds the mcpsse command tree.
func NewRootCommand() *cobra.Command {
	g := &globals{}

	rootCmd := &cobra.Command{
		Use:   "mcpsse",
		Short: "MCP client over Server-Sent Events",
		Long: `mcpsse talks to MCP servers that use the SSE transport.

It lists and calls tools, probes server health, prints server notifications
and runs a demo calculator server to try it against.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&g.configPath, "config", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&g.serverURL, "server", "", "MCP server base URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(newToolsCommand(g))
	rootCmd.AddCommand(newCallCommand(g))
	rootCmd.AddCommand(newHealthCommand(g))
	rootCmd.AddCommand(newWatchCommand(g))
	rootCmd.AddCommand(newServeCommand(g))

	return rootCmd
}

// Execute runs the command tree and exits non-zero on failure.
func Execute(ctx context.Context) {
	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// load resolves the configuration: file, environment, then flags.
func (g *globals) load() (config.Config, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return config.Config{}, err
	}

	if g.serverURL != "" {
		cfg.Session.ServerURL = g.serverURL
	}
	if g.logLevel != "" {
		cfg.Logging.Level = g.logLevel
	}
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// setup loads the configuration and builds the logger. Logs go to stderr so
// command output on stdout stays clean.
func (g *globals) setup() (config.Config, *logging.Logger, error) {
	cfg, err := g.load()
	if err != nil {
		return config.Config{}, nil, err
	}

	logger, err := logging.New(logging.Config{
		Level:       logging.LogLevel(cfg.Logging.Level),
		Development: cfg.Logging.Development,
		OutputPaths: []string{"stderr"},
	})
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, logger, nil
}

// dial connects and initializes a session.
func dial(ctx context.Context, cfg config.Session, logger *logging.Logger) (*client.Client, error) {
	return client.Dial(ctx, cfg, client.WithLogger(logger.Zap()))
}

func printTools(w io.Writer, tools []client.Tool) {
	for _, tool := range tools {
		if tool.Description == "" {
			fmt.Fprintln(w, tool.Name)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\n", tool.Name, tool.Description)
	}
}
