// Package server provides an MCP server over Server-Sent Events. It backs the
// demo calculator server and the client's integration tests.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/multierr"

	"github.com/FreePeak/golang-mcp-sse-client/internal/domain/shared"
	"github.com/FreePeak/golang-mcp-sse-client/internal/infrastructure/logging"
)

const defaultQueueSize = 100

// MessageHandler processes one JSON-RPC message posted by sessionID and
// returns the response, or nil for notifications.
type MessageHandler func(ctx context.Context, sessionID string, rawMessage json.RawMessage) interface{}

// SSEContextFunc is a function that takes an existing context and the current
// request and returns a potentially modified context based on the request
// content. This can be used to inject context values from headers, for example.
type SSEContextFunc func(ctx context.Context, r *http.Request) context.Context

// SSEServer implements a Server-Sent Events (SSE) based server.
type SSEServer struct {
	notifier        *NotificationSender
	handler         MessageHandler
	logger          *logging.Logger
	baseURL         string
	basePath        string
	sseEndpoint     string
	messageEndpoint string
	healthEndpoint  string
	streamOnly      bool
	keepAlive       time.Duration
	queueSize       int
	sessions        *sseConnectionManager
	srv             *http.Server
	contextFunc     SSEContextFunc
	draining        atomic.Bool
}

// SSEOption defines a function type for configuring SSEServer
type SSEOption func(*SSEServer)

// WithBaseURL sets the absolute URL advertised in endpoint events. Without
// it the endpoint event carries a path relative to the server.
func WithBaseURL(baseURL string) SSEOption {
	return func(s *SSEServer) {
		if baseURL != "" {
			u, err := url.Parse(baseURL)
			if err != nil {
				return
			}
			if u.Scheme != "http" && u.Scheme != "https" {
				return
			}
			// Check if the host is empty or only contains a port
			if u.Host == "" || strings.HasPrefix(u.Host, ":") {
				return
			}
			if len(u.Query()) > 0 {
				return
			}
		}
		s.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithBasePath sets the base path for the SSE server
func WithBasePath(basePath string) SSEOption {
	return func(s *SSEServer) {
		if !strings.HasPrefix(basePath, "/") {
			basePath = "/" + basePath
		}
		s.basePath = strings.TrimSuffix(basePath, "/")
	}
}

// WithSSEEndpoint sets the event stream path
func WithSSEEndpoint(endpoint string) SSEOption {
	return func(s *SSEServer) {
		s.sseEndpoint = endpoint
	}
}

// WithMessageEndpoint sets the message endpoint path
func WithMessageEndpoint(endpoint string) SSEOption {
	return func(s *SSEServer) {
		s.messageEndpoint = endpoint
	}
}

// WithHealthEndpoint sets the health probe path
func WithHealthEndpoint(endpoint string) SSEOption {
	return func(s *SSEServer) {
		s.healthEndpoint = endpoint
	}
}

// WithStreamOnlyResponses answers posts with an empty 202 and delivers the
// response on the event stream only.
func WithStreamOnlyResponses() SSEOption {
	return func(s *SSEServer) {
		s.streamOnly = true
	}
}

// WithKeepAlive sends a ping event on every stream at the given interval.
func WithKeepAlive(interval time.Duration) SSEOption {
	return func(s *SSEServer) {
		s.keepAlive = interval
	}
}

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) SSEOption {
	return func(s *SSEServer) {
		s.logger = logger
	}
}

// WithHTTPServer sets the HTTP server instance
func WithHTTPServer(srv *http.Server) SSEOption {
	return func(s *SSEServer) {
		s.srv = srv
	}
}

// WithSSEContextFunc sets a function that will be called to customize the
// context passed to the message handler.
func WithSSEContextFunc(fn SSEContextFunc) SSEOption {
	return func(s *SSEServer) {
		s.contextFunc = fn
	}
}

// NewSSEServer creates a new SSE server instance with the given notification sender and options.
func NewSSEServer(notifier *NotificationSender, handler MessageHandler, opts ...SSEOption) *SSEServer {
	s := &SSEServer{
		notifier:        notifier,
		handler:         handler,
		logger:          logging.NewNop(),
		sseEndpoint:     "/connect",
		messageEndpoint: "/messages",
		healthEndpoint:  "/health",
		queueSize:       defaultQueueSize,
		sessions:        newSSEConnectionManager(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// NewTestServer starts s on an httptest server.
func NewTestServer(s *SSEServer) *httptest.Server {
	return httptest.NewServer(s.Handler())
}

// Handler returns the server wrapped with request logging.
func (s *SSEServer) Handler() http.Handler {
	return logging.Middleware(s.logger)(s)
}

// Start begins serving on addr. It blocks until the server stops.
func (s *SSEServer) Start(addr string) error {
	if s.srv == nil {
		s.srv = &http.Server{}
	}
	s.srv.Addr = addr
	s.srv.Handler = s.Handler()

	s.logger.Info("Starting SSE server", logging.Fields{
		"addr":             addr,
		"sse_endpoint":     s.CompleteSsePath(),
		"message_endpoint": s.CompleteMessagePath(),
	})

	return s.srv.ListenAndServe()
}

// Shutdown closes every stream and then stops the HTTP server.
func (s *SSEServer) Shutdown(ctx context.Context) error {
	s.draining.Store(true)

	var errs error
	for _, id := range s.sessions.IDs() {
		errs = multierr.Append(errs, s.CloseSession(id))
	}
	s.sessions.CloseAll()

	if s.srv != nil {
		errs = multierr.Append(errs, s.srv.Shutdown(ctx))
	}
	return errs
}

// CloseSession ends one client's event stream.
func (s *SSEServer) CloseSession(sessionID string) error {
	session, ok := s.sessions.GetSession(sessionID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	session.Close()
	return nil
}

// SessionIDs returns the ids of the open streams.
func (s *SSEServer) SessionIDs() []string {
	return s.sessions.IDs()
}

// SendEventToSession queues a raw event on one session's stream.
func (s *SSEServer) SendEventToSession(sessionID, eventType string, data []byte) error {
	session, ok := s.sessions.GetSession(sessionID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return session.Send(eventType, string(data))
}

// handleSSE opens an event stream and announces its message endpoint.
func (s *SSEServer) handleSSE(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.draining.Load() {
		http.Error(w, "Server shutting down", http.StatusServiceUnavailable)
		return
	}

	logger := logging.FromContext(r.Context())

	session, err := newSSESession(w, r.UserAgent(), s.queueSize)
	if err != nil {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	s.sessions.AddSession(session)
	defer s.sessions.RemoveSession(session.ID())

	if s.notifier != nil {
		s.notifier.RegisterSession(session.notifs)
		defer s.notifier.UnregisterSession(session.ID())
	}
	defer session.Close()

	endpoint := fmt.Sprintf("%s?sessionId=%s", s.CompleteMessageEndpoint(), session.ID())
	logger.Info("Session opened", logging.Fields{"session_id": session.ID(), "endpoint": endpoint})

	session.Start(r.Context(), endpoint, s.keepAlive, logger)

	logger.Info("Session closed", logging.Fields{"session_id": session.ID()})
}

// handleMessage processes a JSON-RPC message. The response goes on the
// session's stream and, unless stream-only, in the HTTP body as well.
func (s *SSEServer) handleMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeJSONRPCError(w, http.StatusMethodNotAllowed, shared.InvalidRequest, "Method not allowed")
		return
	}

	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		s.writeJSONRPCError(w, http.StatusBadRequest, shared.InvalidParams, "Missing sessionId")
		return
	}

	session, ok := s.sessions.GetSession(sessionID)
	if !ok {
		s.writeJSONRPCError(w, http.StatusNotFound, shared.InvalidParams, "Invalid session ID")
		return
	}

	ctx := r.Context()
	if s.contextFunc != nil {
		ctx = s.contextFunc(ctx, r)
	}

	var rawMessage json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&rawMessage); err != nil {
		s.writeJSONRPCError(w, http.StatusBadRequest, shared.ParseError, shared.ErrorMessage(shared.ParseError))
		return
	}

	response := s.handler(ctx, sessionID, rawMessage)
	if response == nil {
		w.WriteHeader(http.StatusAccepted)
		return
	}

	data, err := json.Marshal(response)
	if err != nil {
		s.writeJSONRPCError(w, http.StatusInternalServerError, shared.InternalError, shared.ErrorMessage(shared.InternalError))
		return
	}

	if err := session.Send("message", string(data)); err != nil {
		logging.FromContext(r.Context()).Warn("Failed to queue response", logging.Fields{"session_id": sessionID, "error": err.Error()})
	}

	if s.streamOnly {
		w.WriteHeader(http.StatusAccepted)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_, _ = w.Write(data)
}

// handleHealth reports liveness.
func (s *SSEServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	status, code := "healthy", http.StatusOK
	if s.draining.Load() {
		status, code = "shutting_down", http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":   status,
		"sessions": s.sessions.Count(),
	})
}

// writeJSONRPCError writes a JSON-RPC error response with a null id.
func (s *SSEServer) writeJSONRPCError(w http.ResponseWriter, status int, code shared.ErrorCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(shared.NewErrorResponse(nil, code, message))
}

// GetUrlPath returns the path component of input.
func (s *SSEServer) GetUrlPath(input string) (string, error) {
	parse, err := url.Parse(input)
	if err != nil {
		return "", fmt.Errorf("failed to parse URL %s: %w", input, err)
	}
	return parse.Path, nil
}

// CompleteSseEndpoint returns the stream URL.
func (s *SSEServer) CompleteSseEndpoint() string {
	return s.baseURL + s.basePath + s.sseEndpoint
}

// CompleteSsePath returns the stream path.
func (s *SSEServer) CompleteSsePath() string {
	path, err := s.GetUrlPath(s.CompleteSseEndpoint())
	if err != nil {
		return s.basePath + s.sseEndpoint
	}
	return path
}

// CompleteMessageEndpoint returns the message URL advertised to clients.
func (s *SSEServer) CompleteMessageEndpoint() string {
	return s.baseURL + s.basePath + s.messageEndpoint
}

// CompleteMessagePath returns the message path.
func (s *SSEServer) CompleteMessagePath() string {
	path, err := s.GetUrlPath(s.CompleteMessageEndpoint())
	if err != nil {
		return s.basePath + s.messageEndpoint
	}
	return path
}

// CompleteHealthPath returns the health probe path.
func (s *SSEServer) CompleteHealthPath() string {
	return s.basePath + s.healthEndpoint
}

// ServeHTTP implements the http.Handler interface.
func (s *SSEServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case s.CompleteSsePath():
		s.handleSSE(w, r)
	case s.CompleteMessagePath():
		s.handleMessage(w, r)
	case s.CompleteHealthPath():
		s.handleHealth(w, r)
	default:
		http.NotFound(w, r)
	}
}
