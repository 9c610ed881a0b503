package cli

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/spf13/cobra"

	"github.com/FreePeak/golang-mcp-sse-client/pkg/client"
)

var errSessionLost = errors.New("session lost")

func newWatchCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print server notifications until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := g.setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx := cmd.Context()
			c := client.New(cfg.Session, client.WithLogger(logger.Zap()))
			defer c.Disconnect()

			var mu sync.Mutex
			out := cmd.OutOrStdout()
			c.SetNotificationHandler(func(n client.Notification) {
				mu.Lock()
				defer mu.Unlock()
				printNotification(out, n)
			})

			failed := make(chan struct{})
			var once sync.Once
			c.SetStateHandler(func(from, to client.ConnectionState) {
				if to == client.StateError {
					once.Do(func() { close(failed) })
				}
			})

			if err := c.Connect(ctx); err != nil {
				return err
			}
			if err := c.Initialize(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Watching session %s\n", c.SessionID())

			select {
			case <-ctx.Done():
				return nil
			case <-failed:
				return errSessionLost
			}
		},
	}
}

func printNotification(w io.Writer, n client.Notification) {
	if len(n.Data) > 0 {
		fmt.Fprintf(w, "[%s] %s: %s\n", n.Level, n.Method, n.Data)
		return
	}
	fmt.Fprintf(w, "[%s] %s\n", n.Level, n.Method)
}
