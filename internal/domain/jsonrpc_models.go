package domain

import (
	"encoding/json"
	"fmt"
)

// JSONRPCVersion is the protocol version carried by every envelope.
const JSONRPCVersion = "2.0"

// JSONRPCRequest is an outgoing request. A request without an ID is a notification.
type JSONRPCRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      string      `json:"id,omitempty"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

// JSONRPCResponse is a response correlated to a request by ID.
type JSONRPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *JSONRPCError   `json:"error,omitempty"`
}

// IDKey returns the response ID in the string form used for correlation.
func (r *JSONRPCResponse) IDKey() string {
	return IDKey(r.ID)
}

// JSONRPCError is the error object of a JSON-RPC response.
type JSONRPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// IncomingMessage is any JSON-RPC message read off the event stream.
// Exactly one of IsResponse, IsNotification or IsRequest holds for a
// well-formed message.
type IncomingMessage struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *JSONRPCError   `json:"error,omitempty"`
}

// IsResponse returns true for messages answering a request.
func (m *IncomingMessage) IsResponse() bool {
	return m.Method == "" && m.ID != nil
}

// IsNotification returns true for messages with a method and no ID.
func (m *IncomingMessage) IsNotification() bool {
	return m.Method != "" && m.ID == nil
}

// IsRequest returns true for server-initiated requests.
func (m *IncomingMessage) IsRequest() bool {
	return m.Method != "" && m.ID != nil
}

// Response converts the message into a JSONRPCResponse.
func (m *IncomingMessage) Response() *JSONRPCResponse {
	return &JSONRPCResponse{
		JSONRPC: m.JSONRPC,
		ID:      m.ID,
		Result:  m.Result,
		Error:   m.Error,
	}
}

// IDKey normalizes a decoded JSON-RPC ID. Numbers decode as float64 and are
// printed without a fractional part when they have none.
func IDKey(id interface{}) string {
	switch v := id.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%g", v)
	default:
		return fmt.Sprint(v)
	}
}
