package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FreePeak/golang-mcp-sse-client/internal/builder"
	"github.com/FreePeak/golang-mcp-sse-client/internal/infrastructure/logging"
	"github.com/FreePeak/golang-mcp-sse-client/internal/infrastructure/server"
	"github.com/FreePeak/golang-mcp-sse-client/internal/testutil"
	"github.com/FreePeak/golang-mcp-sse-client/pkg/client"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func TestToolsCommand(t *testing.T) {
	srv := testutil.NewDemoServer(t)

	out, err := run(t, "--server", srv.URL, "tools")
	require.NoError(t, err)
	assert.Equal(t, "add_numbers\tAdd two numbers together\nfind_max\tFind the maximum of two numbers\n", out)
}

func TestCallCommand(t *testing.T) {
	srv := testutil.NewDemoServer(t)

	out, err := run(t, "--server", srv.URL, "call", "add_numbers", "--args", `{"a": 5, "b": 3}`)
	require.NoError(t, err)
	assert.Equal(t, "8\n", out)

	out, err = run(t, "--server", srv.URL, "call", "find_max", "--args", `{"a": 42, "b": 17}`)
	require.NoError(t, err)
	assert.Equal(t, "42\n", out)
}

func TestCallCommandErrors(t *testing.T) {
	srv := testutil.NewDemoServer(t)

	_, err := run(t, "--server", srv.URL, "call", "nonexistent_tool")
	assert.True(t, client.IsUnknownToolError(err), "got %v", err)

	_, err = run(t, "--server", srv.URL, "call", "add_numbers", "--args", `{"a": "five", "b": 3}`)
	assert.True(t, client.IsServerError(err), "got %v", err)

	_, err = run(t, "--server", srv.URL, "call", "add_numbers", "--args", `[1, 2]`)
	assert.ErrorContains(t, err, "--args must be a JSON object")

	_, err = run(t, "--server", srv.URL, "call")
	assert.Error(t, err)
}

func TestHealthCommand(t *testing.T) {
	srv := testutil.NewDemoServer(t)

	out, err := run(t, "--server", srv.URL, "health")
	require.NoError(t, err)
	assert.Equal(t, "healthy\n", out)

	down := httptest.NewServer(http.NotFoundHandler())
	down.Close()

	out, err = run(t, "--server", down.URL, "health")
	assert.ErrorIs(t, err, errUnhealthy)
	assert.Equal(t, "unhealthy\n", out)
}

// syncBuffer is a bytes.Buffer safe for one writer and one reader.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatchCommand(t *testing.T) {
	srv := testutil.NewDemoServer(t)

	out, status := &syncBuffer{}, &syncBuffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(status)
	cmd.SetArgs([]string{"--log-level", "error", "--server", srv.URL, "watch"})

	errCh := make(chan error, 1)
	go func() { errCh <- cmd.ExecuteContext(context.Background()) }()

	require.Eventually(t, func() bool {
		return strings.Contains(status.String(), "Watching session")
	}, 2*time.Second, 10*time.Millisecond)
	ids := srv.SSE.SessionIDs()
	require.Len(t, ids, 1)

	require.NoError(t, srv.SSE.SendEventToSession(ids[0], "message",
		[]byte(`{"jsonrpc":"2.0","method":"notifications/message","params":{"level":"warning","data":"disk almost full"}}`)))

	want := "[warning] notifications/message: \"disk almost full\"\n"
	require.Eventually(t, func() bool { return out.String() == want }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, srv.SSE.CloseSession(ids[0]))

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, errSessionLost)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not return after the stream closed")
	}
}

func TestParseArguments(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    map[string]interface{}
		wantErr bool
	}{
		{name: "empty", raw: "", want: map[string]interface{}{}},
		{name: "empty object", raw: "{}", want: map[string]interface{}{}},
		{name: "null", raw: "null", want: map[string]interface{}{}},
		{name: "numbers", raw: `{"a": 5, "b": 3}`, want: map[string]interface{}{"a": float64(5), "b": float64(3)}},
		{name: "array", raw: `[1]`, wantErr: true},
		{name: "garbage", raw: `{a:}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseArguments(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrintNotification(t *testing.T) {
	var buf bytes.Buffer
	printNotification(&buf, client.Notification{Method: "notifications/message", Level: "info", Data: json.RawMessage(`"hi"`)})
	printNotification(&buf, client.Notification{Method: "notifications/tools/list_changed", Level: "info"})

	assert.Equal(t, "[info] notifications/message: \"hi\"\n[info] notifications/tools/list_changed\n", buf.String())
}

func TestLoadPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
session:
  server_url: http://from-file:8000
  timeout: 5s
logging:
  level: warn
`), 0o600))

	g := &globals{configPath: path}
	cfg, err := g.load()
	require.NoError(t, err)
	assert.Equal(t, "http://from-file:8000", cfg.Session.ServerURL)
	assert.Equal(t, 5*time.Second, cfg.Session.Timeout)
	assert.Equal(t, "warn", cfg.Logging.Level)

	g = &globals{configPath: path, serverURL: "http://from-flag:9000/", logLevel: "debug"}
	cfg, err = g.load()
	require.NoError(t, err)
	assert.Equal(t, "http://from-flag:9000", cfg.Session.ServerURL)
	assert.Equal(t, "debug", cfg.Logging.Level)

	g = &globals{serverURL: "ftp://nope"}
	_, err = g.load()
	assert.Error(t, err)
}

func TestServeStopsOnCancel(t *testing.T) {
	srv := builder.NewServerBuilder().
		WithSSEOptions(server.WithHTTPServer(&http.Server{})).
		BuildSSEServer()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- serve(ctx, srv, "127.0.0.1:0", logging.NewNop()) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
}
