// Package domain defines the core entities of an MCP client session.
package domain

import (
	"encoding/json"
	"strings"
)

// ConnectionState is the lifecycle state of a client session.
type ConnectionState string

// Connection states.
const (
	StateDisconnected ConnectionState = "disconnected"
	StateConnecting   ConnectionState = "connecting"
	StateConnected    ConnectionState = "connected"
	StateError        ConnectionState = "error"
)

// String returns the state name.
func (s ConnectionState) String() string {
	return string(s)
}

// Tool represents a tool advertised by an MCP server.
// InputSchema is carried verbatim; the client never validates arguments against it.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"inputSchema,omitempty"`
}

// ServerInfo identifies the server a session was initialized against.
type ServerInfo struct {
	Name            string
	Version         string
	ProtocolVersion string
}

// Notification is an out-of-band message pushed by the server on the event stream.
type Notification struct {
	Method string
	Level  string
	Data   json.RawMessage
	Params json.RawMessage
}

// NotificationHandler receives server notifications. It runs on the
// stream-reading goroutine, so a slow handler delays every later event.
type NotificationHandler func(notification Notification)

// StateHandler is invoked after every connection state transition.
type StateHandler func(from, to ConnectionState)

// Content is one item of a tool result's content list.
type Content struct {
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
	MIMEType string          `json:"mimeType,omitempty"`
	Data     string          `json:"data,omitempty"`
	Resource json.RawMessage `json:"resource,omitempty"`
}

// ToolResult is the unmodified result payload of a tools/call request.
type ToolResult struct {
	Raw json.RawMessage
}

// Content decodes the content list of the result.
func (r ToolResult) Content() ([]Content, error) {
	var payload struct {
		Content []Content `json:"content"`
	}
	if len(r.Raw) == 0 {
		return nil, nil
	}
	if err := json.Unmarshal(r.Raw, &payload); err != nil {
		return nil, NewProtocolError("decode tool result", "result is not an object", err)
	}
	return payload.Content, nil
}

// Text joins the text items of the result content with newlines.
func (r ToolResult) Text() string {
	content, err := r.Content()
	if err != nil {
		return ""
	}

	parts := make([]string, 0, len(content))
	for _, item := range content {
		if item.Type == "text" {
			parts = append(parts, item.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// IsError reports whether the server flagged the result as a tool-level error.
func (r ToolResult) IsError() bool {
	var payload struct {
		IsError bool `json:"isError"`
	}
	if len(r.Raw) == 0 {
		return false
	}
	_ = json.Unmarshal(r.Raw, &payload)
	return payload.IsError
}
