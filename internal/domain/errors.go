package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Precondition and lifecycle sentinels. They are wrapped by the typed errors
// below and can be matched with errors.Is.
var (
	ErrBusy               = errors.New("connection attempt already in progress")
	ErrNotConnected       = errors.New("session is not connected")
	ErrNotInitialized     = errors.New("session is not initialized")
	ErrDisconnectRequired = errors.New("session is in error state, disconnect before reconnecting")
	ErrStreamClosed       = errors.New("event stream closed")
	ErrDisconnected       = errors.New("session disconnected")
)

// ConnectionError reports a transport-level failure: unreachable server,
// timeout, or a closed event stream.
type ConnectionError struct {
	Op    string
	Cause error
}

// Error returns the error message.
func (e *ConnectionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("connection error: %s: %v", e.Op, e.Cause)
	}
	return fmt.Sprintf("connection error: %s", e.Op)
}

// Unwrap returns the underlying cause.
func (e *ConnectionError) Unwrap() error {
	return e.Cause
}

// NewConnectionError creates a new ConnectionError.
func NewConnectionError(op string, cause error) *ConnectionError {
	return &ConnectionError{Op: op, Cause: cause}
}

// ProtocolError reports a malformed message, a missing field, or an
// operation invoked out of the required order.
type ProtocolError struct {
	Op     string
	Reason string
	Cause  error
}

// Error returns the error message.
func (e *ProtocolError) Error() string {
	msg := fmt.Sprintf("protocol error: %s", e.Op)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *ProtocolError) Unwrap() error {
	return e.Cause
}

// NewProtocolError creates a new ProtocolError.
func NewProtocolError(op, reason string, cause error) *ProtocolError {
	return &ProtocolError{Op: op, Reason: reason, Cause: cause}
}

// ServerError is a well-formed JSON-RPC error object returned by the server.
type ServerError struct {
	Op      string
	Code    int
	Message string
	Data    json.RawMessage
}

// Error returns the error message.
func (e *ServerError) Error() string {
	return fmt.Sprintf("server error: %s: %s (code: %d)", e.Op, e.Message, e.Code)
}

// NewServerError creates a ServerError from a JSON-RPC error object.
func NewServerError(op string, rpcErr *JSONRPCError) *ServerError {
	return &ServerError{
		Op:      op,
		Code:    rpcErr.Code,
		Message: rpcErr.Message,
		Data:    rpcErr.Data,
	}
}

// UnknownToolError indicates that a tool name is absent from the cached catalog.
type UnknownToolError struct {
	Name string
}

// Error returns the error message.
func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool: %s", e.Name)
}

// NewUnknownToolError creates a new UnknownToolError.
func NewUnknownToolError(name string) *UnknownToolError {
	return &UnknownToolError{Name: name}
}

// IsConnectionError checks if an error is a ConnectionError.
func IsConnectionError(err error) bool {
	var target *ConnectionError
	return errors.As(err, &target)
}

// IsProtocolError checks if an error is a ProtocolError.
func IsProtocolError(err error) bool {
	var target *ProtocolError
	return errors.As(err, &target)
}

// IsServerError checks if an error is a ServerError.
func IsServerError(err error) bool {
	var target *ServerError
	return errors.As(err, &target)
}

// IsUnknownToolError checks if an error is an UnknownToolError.
func IsUnknownToolError(err error) bool {
	var target *UnknownToolError
	return errors.As(err, &target)
}
