package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/FreePeak/golang-mcp-sse-client/internal/builder"
	"github.com/FreePeak/golang-mcp-sse-client/internal/infrastructure/logging"
	"github.com/FreePeak/golang-mcp-sse-client/internal/infrastructure/server"
)

const shutdownTimeout = 5 * time.Second

func newServeCommand(g *globals) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the demo calculator server",
		Long: `Run a calculator MCP server over SSE with the tools add_numbers and
find_max. Clients connect at /connect and probe /health.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := g.setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			if addr != "" {
				cfg.Server.ListenAddr = addr
			}

			opts := []server.SSEOption{server.WithHTTPServer(&http.Server{ReadHeaderTimeout: 10 * time.Second})}
			if cfg.Server.BaseURL != "" {
				opts = append(opts, server.WithBaseURL(cfg.Server.BaseURL))
			}

			srv := builder.NewServerBuilder().
				WithAddress(cfg.Server.ListenAddr).
				WithLogger(logger).
				WithSSEOptions(opts...).
				BuildSSEServer()

			return serve(cmd.Context(), srv, cfg.Server.ListenAddr, logger)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}

// serve runs srv until ctx is done, then shuts it down.
func serve(ctx context.Context, srv *server.SSEServer, addr string, logger *logging.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := srv.Shutdown(shutdownCtx)
	if startErr := <-errCh; !errors.Is(startErr, http.ErrServerClosed) {
		err = multierr.Append(err, startErr)
	}
	return err
}
