package client

import (
	"context"

	"go.uber.org/multierr"

	"github.com/FreePeak/golang-mcp-sse-client/pkg/config"
)

// Dial creates a Client, connects it and initializes the session.
func Dial(ctx context.Context, cfg config.Session, opts ...Option) (*Client, error) {
	c := New(cfg, opts...)

	if err := c.Connect(ctx); err != nil {
		return nil, multierr.Append(err, c.Disconnect())
	}
	if err := c.Initialize(ctx); err != nil {
		return nil, multierr.Append(err, c.Disconnect())
	}
	return c, nil
}

// QuickToolCall runs one tool call on a fresh session and disconnects.
func QuickToolCall(ctx context.Context, cfg config.Session, name string, arguments interface{}, opts ...Option) (result ToolResult, err error) {
	c, err := Dial(ctx, cfg, opts...)
	if err != nil {
		return ToolResult{}, err
	}
	defer func() {
		err = multierr.Append(err, c.Disconnect())
	}()

	if _, err := c.ListTools(ctx); err != nil {
		return ToolResult{}, err
	}
	return c.CallTool(ctx, name, arguments)
}
