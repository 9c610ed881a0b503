// Package usecases implements the request handling of the demo MCP server.
package usecases

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/FreePeak/golang-mcp-sse-client/internal/domain/shared"
	mcperrors "github.com/FreePeak/golang-mcp-sse-client/internal/domain/shared/errors"
	"github.com/FreePeak/golang-mcp-sse-client/internal/infrastructure/logging"
)

// ToolHandler lists and executes tools.
type ToolHandler interface {
	ListTools(ctx context.Context) ([]shared.Tool, error)
	CallTool(ctx context.Context, name string, arguments interface{}) ([]shared.Content, error)
}

// NotificationSender pushes a notification onto one session's event stream.
type NotificationSender interface {
	SendNotification(ctx context.Context, sessionID string, notification shared.JSONRPCNotification) error
}

// ServerService handles MCP requests for the demo server.
type ServerService struct {
	name               string
	version            string
	instructions       string
	toolHandler        ToolHandler
	notificationSender NotificationSender
	logger             *logging.Logger
}

// ServerConfig contains configuration for the ServerService.
type ServerConfig struct {
	Name               string
	Version            string
	Instructions       string
	ToolHandler        ToolHandler
	NotificationSender NotificationSender
	Logger             *logging.Logger
}

// NewServerService creates a new ServerService.
func NewServerService(config ServerConfig) *ServerService {
	logger := config.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &ServerService{
		name:               config.Name,
		version:            config.Version,
		instructions:       config.Instructions,
		toolHandler:        config.ToolHandler,
		notificationSender: config.NotificationSender,
		logger:             logger,
	}
}

// ServerInfo returns information about the server.
func (s *ServerService) ServerInfo() (string, string, string) {
	return s.name, s.version, s.instructions
}

type sessionKey struct{}

// WithSessionID attaches the calling session to ctx.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionKey{}, sessionID)
}

// SessionIDFromContext returns the calling session, or "".
func SessionIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}

// HandleMessage processes one JSON-RPC message. It returns the response, or
// nil for notifications.
func (s *ServerService) HandleMessage(ctx context.Context, raw json.RawMessage) interface{} {
	var req shared.JSONRPCRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return shared.NewErrorResponse(nil, shared.ParseError, shared.ErrorMessage(shared.ParseError))
	}

	if req.IsNotification() {
		s.handleNotification(ctx, req)
		return nil
	}

	if req.JSONRPC != shared.JSONRPCVersion || req.Method == "" {
		return shared.NewErrorResponse(req.ID, shared.InvalidRequest, shared.ErrorMessage(shared.InvalidRequest))
	}

	s.logger.Debug("Handling request", logging.Fields{"method": req.Method, "session_id": SessionIDFromContext(ctx)})

	switch req.Method {
	case shared.MethodInitialize:
		return s.handleInitialize(req)
	case shared.MethodPing:
		return shared.NewResponse(req.ID, struct{}{})
	case shared.MethodListTools:
		return s.handleListTools(ctx, req)
	case shared.MethodCallTool:
		return s.handleCallTool(ctx, req)
	default:
		return shared.NewErrorResponse(req.ID, shared.MethodNotFound,
			fmt.Sprintf("%s: %s", shared.ErrorMessage(shared.MethodNotFound), req.Method))
	}
}

func (s *ServerService) handleNotification(ctx context.Context, req shared.JSONRPCRequest) {
	switch req.Method {
	case shared.NotificationInitialized:
		s.logger.Info("Client initialized", logging.Fields{"session_id": SessionIDFromContext(ctx)})
	default:
		s.logger.Debug("Ignoring notification", logging.Fields{"method": req.Method})
	}
}

func (s *ServerService) handleInitialize(req shared.JSONRPCRequest) interface{} {
	var params shared.InitializeParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return shared.NewErrorResponse(req.ID, shared.InvalidParams, shared.ErrorMessage(shared.InvalidParams))
		}
	}

	s.logger.Info("Initializing session", logging.Fields{
		"client":           params.ClientInfo.Name,
		"client_version":   params.ClientInfo.Version,
		"protocol_version": params.ProtocolVersion,
	})

	return shared.NewResponse(req.ID, shared.InitializeResult{
		ProtocolVersion: shared.LatestProtocolVersion,
		Capabilities: shared.Capabilities{
			Tools:   &shared.ToolsCapability{},
			Logging: &shared.LoggingCapability{},
		},
		ServerInfo: shared.Implementation{
			Name:    s.name,
			Version: s.version,
		},
		Instructions: s.instructions,
	})
}

func (s *ServerService) handleListTools(ctx context.Context, req shared.JSONRPCRequest) interface{} {
	tools, err := s.toolHandler.ListTools(ctx)
	if err != nil {
		code, msg := mcperrors.ToJSONRPC(err)
		return shared.NewErrorResponse(req.ID, code, msg)
	}
	if tools == nil {
		tools = []shared.Tool{}
	}
	return shared.NewResponse(req.ID, shared.ListToolsResult{Tools: tools})
}

func (s *ServerService) handleCallTool(ctx context.Context, req shared.JSONRPCRequest) interface{} {
	var params shared.CallToolParams
	if err := json.Unmarshal(req.Params, &params); err != nil || params.Name == "" {
		return shared.NewErrorResponse(req.ID, shared.InvalidParams, "Invalid params: tool name is required")
	}
	if params.Arguments == nil {
		params.Arguments = map[string]interface{}{}
	}

	content, err := s.toolHandler.CallTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn("Tool call failed", logging.Fields{"tool": params.Name, "error": err.Error()})
		code, msg := mcperrors.ToJSONRPC(err)
		return shared.NewErrorResponse(req.ID, code, msg)
	}

	s.notifyToolCalled(ctx, params.Name, content)

	return shared.NewResponse(req.ID, shared.CallToolResult{Content: content})
}

// notifyToolCalled pushes a log notification to the calling session.
func (s *ServerService) notifyToolCalled(ctx context.Context, name string, content []shared.Content) {
	sessionID := SessionIDFromContext(ctx)
	if s.notificationSender == nil || sessionID == "" {
		return
	}

	data := fmt.Sprintf("Tool %s executed", name)
	if len(content) > 0 {
		if text, ok := content[0].(shared.TextContent); ok {
			data = fmt.Sprintf("Tool %s returned %s", name, text.Text)
		}
	}

	err := s.notificationSender.SendNotification(ctx, sessionID, shared.JSONRPCNotification{
		JSONRPC: shared.JSONRPCVersion,
		Method:  shared.NotificationMessage,
		Params: shared.LoggingMessageParams{
			Level:  "info",
			Logger: s.name,
			Data:   data,
		},
	})
	if err != nil {
		s.logger.Warn("Failed to send notification", logging.Fields{"session_id": sessionID, "error": err.Error()})
	}
}
