// Package builder assembles the demo MCP server from its parts.
package builder

import (
	"context"
	"encoding/json"

	"github.com/FreePeak/golang-mcp-sse-client/internal/domain/shared"
	"github.com/FreePeak/golang-mcp-sse-client/internal/infrastructure/logging"
	"github.com/FreePeak/golang-mcp-sse-client/internal/infrastructure/server"
	"github.com/FreePeak/golang-mcp-sse-client/internal/usecases"
	"github.com/FreePeak/golang-mcp-sse-client/internal/usecases/calculator"
)

// ServerBuilder implements the Builder pattern for creating MCP servers
type ServerBuilder struct {
	name               string
	version            string
	instructions       string
	address            string
	logger             *logging.Logger
	toolHandler        usecases.ToolHandler
	notificationSender *server.NotificationSender
	sseOptions         []server.SSEOption
}

// NewServerBuilder creates a builder for the calculator server.
func NewServerBuilder() *ServerBuilder {
	return &ServerBuilder{
		name:         "calculator",
		version:      "1.0.0",
		instructions: "Calculator server exposing add_numbers and find_max",
		address:      ":8000",
		logger:       logging.NewNop(),
		toolHandler:  calculator.NewCalculatorHandler(),
	}
}

// WithName sets the server name
func (b *ServerBuilder) WithName(name string) *ServerBuilder {
	b.name = name
	return b
}

// WithVersion sets the server version
func (b *ServerBuilder) WithVersion(version string) *ServerBuilder {
	b.version = version
	return b
}

// WithInstructions sets the server instructions
func (b *ServerBuilder) WithInstructions(instructions string) *ServerBuilder {
	b.instructions = instructions
	return b
}

// WithAddress sets the listen address
func (b *ServerBuilder) WithAddress(address string) *ServerBuilder {
	b.address = address
	return b
}

// WithLogger sets the logger
func (b *ServerBuilder) WithLogger(logger *logging.Logger) *ServerBuilder {
	b.logger = logger
	return b
}

// WithToolHandler replaces the calculator tools
func (b *ServerBuilder) WithToolHandler(handler usecases.ToolHandler) *ServerBuilder {
	b.toolHandler = handler
	return b
}

// WithNotificationSender sets the notification sender
func (b *ServerBuilder) WithNotificationSender(sender *server.NotificationSender) *ServerBuilder {
	b.notificationSender = sender
	return b
}

// WithSSEOptions adds options for the SSE server
func (b *ServerBuilder) WithSSEOptions(opts ...server.SSEOption) *ServerBuilder {
	b.sseOptions = append(b.sseOptions, opts...)
	return b
}

// Address returns the listen address
func (b *ServerBuilder) Address() string {
	return b.address
}

// BuildService builds and returns the server service
func (b *ServerBuilder) BuildService() *usecases.ServerService {
	if b.notificationSender == nil {
		b.notificationSender = server.NewNotificationSender(shared.JSONRPCVersion)
	}

	return usecases.NewServerService(usecases.ServerConfig{
		Name:               b.name,
		Version:            b.version,
		Instructions:       b.instructions,
		ToolHandler:        b.toolHandler,
		NotificationSender: b.notificationSender,
		Logger:             b.logger.Named("service"),
	})
}

// BuildSSEServer builds the SSE server with the service as its message handler
func (b *ServerBuilder) BuildSSEServer() *server.SSEServer {
	service := b.BuildService()

	handler := func(ctx context.Context, sessionID string, rawMessage json.RawMessage) interface{} {
		return service.HandleMessage(usecases.WithSessionID(ctx, sessionID), rawMessage)
	}

	opts := append([]server.SSEOption{server.WithLogger(b.logger.Named("sse"))}, b.sseOptions...)
	return server.NewSSEServer(b.notificationSender, handler, opts...)
}
