// Package client manages one MCP session over Server-Sent Events.
//
// A Client opens the event stream, learns the message endpoint from the
// server's endpoint event, performs the initialize handshake, caches the tool
// catalog and relays tool calls. Server notifications are delivered to a
// single registered handler.
//
//	c := client.New(config.DefaultSession("http://localhost:8000"))
//	if err := c.Connect(ctx); err != nil { ... }
//	if err := c.Initialize(ctx); err != nil { ... }
//	tools, err := c.ListTools(ctx)
//	result, err := c.CallTool(ctx, "add_numbers", map[string]any{"a": 5, "b": 3})
//	c.Disconnect()
//
// The Client is safe for concurrent use. Requests are not serialized against
// each other; CallTool checks the tool name against the catalog as it stands
// when the call starts.
package client

import (
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/FreePeak/golang-mcp-sse-client/internal/domain"
	"github.com/FreePeak/golang-mcp-sse-client/internal/infrastructure/logging"
	"github.com/FreePeak/golang-mcp-sse-client/internal/infrastructure/transport"
	"github.com/FreePeak/golang-mcp-sse-client/pkg/config"
)

// Client is an MCP session manager.
type Client struct {
	cfg       config.Session
	logger    *logging.Logger
	transport *transport.HTTP

	mu          sync.Mutex
	state       domain.ConnectionState
	conn        *conn
	lastErr     error
	sessionID   string
	endpoint    string
	initialized bool
	tools       []domain.Tool
	serverInfo  domain.ServerInfo

	handlerMu           sync.RWMutex
	notificationHandler domain.NotificationHandler
	stateHandler        domain.StateHandler
}

// Option configures a Client.
type Option func(*options)

type options struct {
	logger     *zap.Logger
	httpClient *http.Client
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithHTTPClient sets the HTTP client used for requests. The event stream
// uses a copy of it without a timeout.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// New creates a disconnected Client. Zero fields of cfg take their defaults;
// negative timeouts count as zero. Use cfg.Validate to reject them instead.
func New(cfg config.Session, opts ...Option) *Client {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	clampTimeouts(&cfg)
	cfg.ApplyDefaults()

	logger := logging.NewNop()
	if o.logger != nil {
		logger = logging.FromZap(o.logger)
	}

	return &Client{
		cfg:       cfg,
		logger:    logger.Named("mcp-client").With(logging.Fields{"server": cfg.ServerURL}),
		transport: transport.New(o.httpClient, cfg.Timeout),
		state:     domain.StateDisconnected,
	}
}

func clampTimeouts(cfg *config.Session) {
	for _, d := range []*time.Duration{&cfg.Timeout, &cfg.EndpointTimeout, &cfg.RequestTimeout} {
		if *d < 0 {
			*d = 0
		}
	}
}

// Config returns the session configuration with defaults applied.
func (c *Client) Config() config.Session {
	return c.cfg
}

// State returns the connection state.
func (c *Client) State() domain.ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SessionID returns the server-assigned session id, or "" before the endpoint event.
func (c *Client) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// MessageEndpoint returns the absolute URI requests are posted to.
func (c *Client) MessageEndpoint() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.endpoint
}

// Initialized reports whether initialize completed on the current session.
func (c *Client) Initialized() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initialized
}

// Tools returns a copy of the tool catalog from the last successful ListTools.
func (c *Client) Tools() []domain.Tool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.Tool(nil), c.tools...)
}

// ServerInfo returns what the server reported during initialize.
func (c *Client) ServerInfo() domain.ServerInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.serverInfo
}

// SetNotificationHandler registers the notification handler, replacing any
// previous one. A nil handler unregisters; notifications are then dropped.
func (c *Client) SetNotificationHandler(handler domain.NotificationHandler) {
	c.handlerMu.Lock()
	c.notificationHandler = handler
	c.handlerMu.Unlock()
}

// SetStateHandler registers a callback invoked after every state change.
func (c *Client) SetStateHandler(handler domain.StateHandler) {
	c.handlerMu.Lock()
	c.stateHandler = handler
	c.handlerMu.Unlock()
}

// setStateLocked changes the state and returns the previous one. c.mu must be held.
func (c *Client) setStateLocked(to domain.ConnectionState) domain.ConnectionState {
	from := c.state
	c.state = to
	return from
}

// resetLocked clears every session field. c.mu must be held.
func (c *Client) resetLocked() {
	c.conn = nil
	c.sessionID = ""
	c.endpoint = ""
	c.initialized = false
	c.tools = nil
	c.serverInfo = domain.ServerInfo{}
}

// stateChanged logs a transition and runs the state handler. c.mu must not be held.
func (c *Client) stateChanged(from, to domain.ConnectionState) {
	if from == to {
		return
	}
	c.logger.Info("Connection state changed", logging.Fields{"from": from.String(), "to": to.String()})

	c.handlerMu.RLock()
	handler := c.stateHandler
	c.handlerMu.RUnlock()

	if handler != nil {
		handler(from, to)
	}
}

// fail tears cn down after a transport failure and moves the session to
// Error. It does nothing if cn is no longer the live connection.
func (c *Client) fail(cn *conn, err error) {
	cn.close(err)

	c.mu.Lock()
	if c.conn != cn {
		c.mu.Unlock()
		return
	}
	c.resetLocked()
	c.lastErr = err
	from := c.setStateLocked(domain.StateError)
	c.mu.Unlock()

	c.logger.Error("Session failed", logging.Fields{"error": err.Error()})
	c.stateChanged(from, domain.StateError)
}
