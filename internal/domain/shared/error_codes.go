package shared

// MCP-specific error codes
const (
	ToolNotFound        ErrorCode = -32200
	ToolExecutionFailed ErrorCode = -32201
)
