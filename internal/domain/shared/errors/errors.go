// Package errors defines the errors tool handlers return inside an MCP server
// and their mapping onto JSON-RPC error codes.
package errors

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/FreePeak/golang-mcp-sse-client/internal/domain/shared"
)

// ErrorType defines the type of error
type ErrorType string

const (
	// ErrorTypeNotFound indicates a tool or method that does not exist
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeInvalidInput indicates invalid input parameters
	ErrorTypeInvalidInput ErrorType = "invalid_input"
	// ErrorTypeInternal indicates an internal server error
	ErrorTypeInternal ErrorType = "internal"
)

// MCPError represents an error raised while serving an MCP request
type MCPError struct {
	Type    ErrorType
	Message string
	Cause   error
}

// Error returns the error message
func (e *MCPError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause
func (e *MCPError) Unwrap() error {
	return e.Cause
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string, cause error) *MCPError {
	return &MCPError{Type: ErrorTypeNotFound, Message: message, Cause: cause}
}

// NewInvalidInputError creates a new invalid input error
func NewInvalidInputError(message string, cause error) *MCPError {
	return &MCPError{Type: ErrorTypeInvalidInput, Message: message, Cause: cause}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, cause error) *MCPError {
	return &MCPError{Type: ErrorTypeInternal, Message: message, Cause: cause}
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return hasType(err, ErrorTypeNotFound)
}

// IsInvalidInput checks if an error is an invalid input error
func IsInvalidInput(err error) bool {
	return hasType(err, ErrorTypeInvalidInput)
}

// IsInternal checks if an error is an internal error
func IsInternal(err error) bool {
	return hasType(err, ErrorTypeInternal)
}

func hasType(err error, t ErrorType) bool {
	var mcpErr *MCPError
	if errors.As(err, &mcpErr) {
		return mcpErr.Type == t
	}
	return false
}

// ToJSONRPC maps a handler error onto a JSON-RPC error code and message
func ToJSONRPC(err error) (shared.ErrorCode, string) {
	var toolNotFound *ToolNotFoundError
	if errors.As(err, &toolNotFound) {
		return shared.ToolNotFound, toolNotFound.Error()
	}

	var mcpErr *MCPError
	if errors.As(err, &mcpErr) {
		switch mcpErr.Type {
		case ErrorTypeNotFound:
			return shared.MethodNotFound, fmt.Sprintf("Not found: %s", mcpErr.Message)
		case ErrorTypeInvalidInput:
			return shared.InvalidParams, fmt.Sprintf("Invalid input: %s", mcpErr.Message)
		default:
			return shared.InternalError, fmt.Sprintf("Internal error: %s", mcpErr.Message)
		}
	}

	var execErr *ToolExecutionError
	if errors.As(err, &execErr) {
		return shared.ToolExecutionFailed, execErr.Error()
	}

	return shared.InternalError, fmt.Sprintf("Internal error: %v", err)
}
