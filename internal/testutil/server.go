// Package testutil starts the demo calculator server for tests.
package testutil

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/FreePeak/golang-mcp-sse-client/internal/builder"
	"github.com/FreePeak/golang-mcp-sse-client/internal/infrastructure/logging"
	"github.com/FreePeak/golang-mcp-sse-client/internal/infrastructure/server"
	"github.com/FreePeak/golang-mcp-sse-client/internal/usecases"
	"github.com/FreePeak/golang-mcp-sse-client/pkg/config"
)

// DemoServer is a running calculator server.
type DemoServer struct {
	*httptest.Server
	SSE *server.SSEServer
}

// NewDemoServer starts the calculator server and stops it when the test ends.
func NewDemoServer(t testing.TB, opts ...server.SSEOption) *DemoServer {
	t.Helper()
	return start(t, builder.NewServerBuilder(), opts)
}

// NewToolServer starts a server backed by handler instead of the calculator.
func NewToolServer(t testing.TB, handler usecases.ToolHandler, opts ...server.SSEOption) *DemoServer {
	t.Helper()
	return start(t, builder.NewServerBuilder().WithToolHandler(handler), opts)
}

func start(t testing.TB, b *builder.ServerBuilder, opts []server.SSEOption) *DemoServer {
	sse := b.
		WithLogger(logging.FromZap(zaptest.NewLogger(t))).
		WithSSEOptions(opts...).
		BuildSSEServer()

	ts := server.NewTestServer(sse)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = sse.Shutdown(ctx)
		ts.Close()
	})

	return &DemoServer{Server: ts, SSE: sse}
}

// Session returns client settings for the server with short timeouts.
func (d *DemoServer) Session() config.Session {
	s := config.DefaultSession(d.URL)
	s.Timeout = 2 * time.Second
	s.EndpointTimeout = 2 * time.Second
	s.RequestTimeout = 2 * time.Second
	return s
}
