package client

import "github.com/FreePeak/golang-mcp-sse-client/internal/domain"

// Session types.
type (
	ConnectionState     = domain.ConnectionState
	Tool                = domain.Tool
	ToolResult          = domain.ToolResult
	Content             = domain.Content
	Notification        = domain.Notification
	NotificationHandler = domain.NotificationHandler
	StateHandler        = domain.StateHandler
	ServerInfo          = domain.ServerInfo
)

// Connection states.
const (
	StateDisconnected = domain.StateDisconnected
	StateConnecting   = domain.StateConnecting
	StateConnected    = domain.StateConnected
	StateError        = domain.StateError
)

// Error types. Match them with errors.As or the Is helpers.
type (
	ConnectionError  = domain.ConnectionError
	ProtocolError    = domain.ProtocolError
	ServerError      = domain.ServerError
	UnknownToolError = domain.UnknownToolError
)

// Sentinels, matched with errors.Is.
var (
	ErrBusy               = domain.ErrBusy
	ErrNotConnected       = domain.ErrNotConnected
	ErrNotInitialized     = domain.ErrNotInitialized
	ErrDisconnectRequired = domain.ErrDisconnectRequired
	ErrStreamClosed       = domain.ErrStreamClosed
	ErrDisconnected       = domain.ErrDisconnected
)

// Error classification helpers.
var (
	IsConnectionError  = domain.IsConnectionError
	IsProtocolError    = domain.IsProtocolError
	IsServerError      = domain.IsServerError
	IsUnknownToolError = domain.IsUnknownToolError
)
