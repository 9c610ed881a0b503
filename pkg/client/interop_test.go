package client_test

import (
	"context"
	"strconv"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/FreePeak/golang-mcp-sse-client/pkg/client"
	"github.com/FreePeak/golang-mcp-sse-client/pkg/config"
)

// newMCPGoServer starts a third-party MCP SSE server, which answers every
// request on the stream and acknowledges posts with 202.
func newMCPGoServer(t *testing.T) config.Session {
	t.Helper()

	s := mcpserver.NewMCPServer("interop", "0.1.0", mcpserver.WithToolCapabilities(false))
	s.AddTool(
		mcp.NewTool("add_numbers",
			mcp.WithDescription("Add two numbers together"),
			mcp.WithNumber("a", mcp.Required(), mcp.Description("First number")),
			mcp.WithNumber("b", mcp.Required(), mcp.Description("Second number")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := req.GetArguments()
			a, okA := args["a"].(float64)
			b, okB := args["b"].(float64)
			if !okA || !okB {
				return mcp.NewToolResultError("a and b must be numbers"), nil
			}
			return mcp.NewToolResultText(strconv.FormatFloat(a+b, 'f', -1, 64)), nil
		},
	)
	s.AddTool(
		mcp.NewTool("echo",
			mcp.WithDescription("Echoes the message"),
			mcp.WithString("message", mcp.Required()),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			msg, _ := req.GetArguments()["message"].(string)
			return mcp.NewToolResultText(msg), nil
		},
	)

	ts := mcpserver.NewTestServer(s)
	t.Cleanup(ts.Close)

	cfg := config.DefaultSession(ts.URL)
	cfg.ConnectPath = "/sse"
	return cfg
}

func TestInteropWithMCPGo(t *testing.T) {
	cfg := newMCPGoServer(t)
	c := client.New(cfg, client.WithLogger(zaptest.NewLogger(t)))
	defer c.Disconnect()
	ctx := context.Background()

	require.NoError(t, c.Connect(ctx))
	assert.NotEmpty(t, c.SessionID())

	require.NoError(t, c.Initialize(ctx))
	assert.Equal(t, "interop", c.ServerInfo().Name)

	tools, err := c.ListTools(ctx)
	require.NoError(t, err)
	require.Len(t, tools, 2)
	assert.Equal(t, "add_numbers", tools[0].Name)
	assert.Equal(t, "echo", tools[1].Name)

	result, err := c.CallTool(ctx, "add_numbers", map[string]interface{}{"a": 5, "b": 3})
	require.NoError(t, err)
	assert.Equal(t, "8", result.Text())
	assert.False(t, result.IsError())

	result, err = c.CallTool(ctx, "add_numbers", map[string]interface{}{"a": "five", "b": 3})
	require.NoError(t, err)
	assert.True(t, result.IsError())

	result, err = c.CallTool(ctx, "echo", map[string]interface{}{"message": "hello"})
	require.NoError(t, err)
	assert.Equal(t, "hello", result.Text())

	_, err = c.CallTool(ctx, "nonexistent_tool", nil)
	assert.True(t, client.IsUnknownToolError(err))

	require.NoError(t, c.Disconnect())
	assert.Equal(t, client.StateDisconnected, c.State())
}
