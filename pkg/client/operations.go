package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/FreePeak/golang-mcp-sse-client/internal/domain"
	"github.com/FreePeak/golang-mcp-sse-client/internal/domain/shared"
	"github.com/FreePeak/golang-mcp-sse-client/internal/infrastructure/logging"
)

// Initialize performs the MCP initialize handshake on a connected session.
func (c *Client) Initialize(ctx context.Context) error {
	const op = "initialize"

	cn, endpoint, err := c.session(op, false)
	if err != nil {
		return err
	}

	raw, err := c.request(ctx, op, cn, endpoint, shared.MethodInitialize, shared.InitializeParams{
		ProtocolVersion: c.cfg.ProtocolVersion,
		Capabilities:    shared.Capabilities{Tools: &shared.ToolsCapability{}},
		ClientInfo: shared.Implementation{
			Name:    c.cfg.ClientName,
			Version: c.cfg.ClientVersion,
		},
	})
	if err != nil {
		c.logger.Error("Initialize failed", logging.Fields{"error": err.Error()})
		return err
	}

	var result shared.InitializeResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return domain.NewProtocolError(op, "malformed initialize result", err)
	}

	c.mu.Lock()
	if c.conn != cn {
		c.mu.Unlock()
		return domain.NewConnectionError(op, domain.ErrDisconnected)
	}
	c.initialized = true
	c.serverInfo = domain.ServerInfo{
		Name:            result.ServerInfo.Name,
		Version:         result.ServerInfo.Version,
		ProtocolVersion: result.ProtocolVersion,
	}
	c.mu.Unlock()

	c.logger.Info("MCP session initialized successfully", logging.Fields{
		"server":           result.ServerInfo.Name,
		"server_version":   result.ServerInfo.Version,
		"protocol_version": result.ProtocolVersion,
	})

	if err := c.notification(ctx, cn, endpoint, shared.NotificationInitialized, nil); err != nil {
		c.logger.Warn("Failed to send initialized notification", logging.Fields{"error": err.Error()})
	}
	return nil
}

// ListTools queries the server's tool catalog and replaces the cached one.
// The server's order is kept as is.
func (c *Client) ListTools(ctx context.Context) ([]domain.Tool, error) {
	const op = "list tools"

	cn, endpoint, err := c.session(op, true)
	if err != nil {
		return nil, err
	}

	raw, err := c.request(ctx, op, cn, endpoint, shared.MethodListTools, nil)
	if err != nil {
		c.logger.Error("Failed to list tools", logging.Fields{"error": err.Error()})
		return nil, err
	}

	var result struct {
		Tools []domain.Tool `json:"tools"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, domain.NewProtocolError(op, "malformed tools/list result", err)
	}
	for i, tool := range result.Tools {
		if tool.Name == "" {
			return nil, domain.NewProtocolError(op, fmt.Sprintf("tool %d has no name", i), nil)
		}
	}
	if result.Tools == nil {
		result.Tools = []domain.Tool{}
	}

	c.mu.Lock()
	if c.conn != cn {
		c.mu.Unlock()
		return nil, domain.NewConnectionError(op, domain.ErrDisconnected)
	}
	c.tools = result.Tools
	c.mu.Unlock()

	c.logger.Info("Retrieved tools", logging.Fields{"count": len(result.Tools)})
	return append([]domain.Tool(nil), result.Tools...), nil
}

// CallTool invokes a tool by name and returns the server's result payload
// unmodified. The name must appear in the catalog from the last ListTools;
// otherwise CallTool fails with an UnknownToolError without contacting the
// server. Arguments are passed through without validation.
func (c *Client) CallTool(ctx context.Context, name string, arguments interface{}) (domain.ToolResult, error) {
	const op = "call tool"

	cn, endpoint, err := c.session(op, true)
	if err != nil {
		return domain.ToolResult{}, err
	}
	if !c.hasTool(name) {
		return domain.ToolResult{}, domain.NewUnknownToolError(name)
	}

	if arguments == nil {
		arguments = map[string]interface{}{}
	}

	raw, err := c.request(ctx, op, cn, endpoint, shared.MethodCallTool, shared.CallToolParams{
		Name:      name,
		Arguments: arguments,
	})
	if err != nil {
		c.logger.Error("Failed to call tool", logging.Fields{"tool": name, "error": err.Error()})
		return domain.ToolResult{}, err
	}
	return domain.ToolResult{Raw: raw}, nil
}

func (c *Client) hasTool(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, tool := range c.tools {
		if tool.Name == name {
			return true
		}
	}
	return false
}

// HealthCheck probes the server's health endpoint. It does not depend on the
// session state and reports any failure as false.
func (c *Client) HealthCheck(ctx context.Context) bool {
	healthy := c.transport.Health(ctx, c.cfg.HealthURL())
	if !healthy {
		c.logger.Warn("Health check failed", logging.Fields{"url": c.cfg.HealthURL()})
	}
	return healthy
}
