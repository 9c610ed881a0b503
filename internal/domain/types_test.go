package domain

import (
	"encoding/json"
	"testing"
)

func TestIncomingMessageKinds(t *testing.T) {
	tests := []struct {
		name         string
		raw          string
		response     bool
		notification bool
		request      bool
	}{
		{
			name:     "Result response",
			raw:      `{"jsonrpc":"2.0","id":"abc","result":{}}`,
			response: true,
		},
		{
			name:     "Error response",
			raw:      `{"jsonrpc":"2.0","id":7,"error":{"code":-32601,"message":"Method not found"}}`,
			response: true,
		},
		{
			name:         "Notification",
			raw:          `{"jsonrpc":"2.0","method":"notifications/message","params":{"level":"info","data":"hi"}}`,
			notification: true,
		},
		{
			name:    "Server request",
			raw:     `{"jsonrpc":"2.0","id":1,"method":"ping"}`,
			request: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var msg IncomingMessage
			if err := json.Unmarshal([]byte(tt.raw), &msg); err != nil {
				t.Fatalf("Failed to unmarshal message: %v", err)
			}
			if msg.IsResponse() != tt.response {
				t.Errorf("IsResponse() = %v, want %v", msg.IsResponse(), tt.response)
			}
			if msg.IsNotification() != tt.notification {
				t.Errorf("IsNotification() = %v, want %v", msg.IsNotification(), tt.notification)
			}
			if msg.IsRequest() != tt.request {
				t.Errorf("IsRequest() = %v, want %v", msg.IsRequest(), tt.request)
			}
		})
	}
}

func TestIDKey(t *testing.T) {
	tests := []struct {
		id   interface{}
		want string
	}{
		{id: nil, want: ""},
		{id: "c0ffee", want: "c0ffee"},
		{id: float64(42), want: "42"},
		{id: 1.5, want: "1.5"},
	}

	for _, tt := range tests {
		if got := IDKey(tt.id); got != tt.want {
			t.Errorf("IDKey(%v) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestNotificationFromMessage(t *testing.T) {
	msg := &IncomingMessage{
		Method: "notifications/message",
		Params: json.RawMessage(`{"level":"warning","data":"disk almost full"}`),
	}

	n := NotificationFromMessage(msg)
	if n.Method != "notifications/message" {
		t.Errorf("Method = %q, want notifications/message", n.Method)
	}
	if n.Level != "warning" {
		t.Errorf("Level = %q, want warning", n.Level)
	}
	if string(n.Data) != `"disk almost full"` {
		t.Errorf("Data = %s", n.Data)
	}

	bare := NotificationFromMessage(&IncomingMessage{Method: "notifications/tools/list_changed"})
	if bare.Level != DefaultNotificationLevel {
		t.Errorf("Level = %q, want %q", bare.Level, DefaultNotificationLevel)
	}
	if bare.Data != nil {
		t.Errorf("Data = %s, want nil", bare.Data)
	}
}

func TestToolResultHelpers(t *testing.T) {
	result := ToolResult{Raw: json.RawMessage(`{"content":[{"type":"text","text":"8"}],"isError":false}`)}

	content, err := result.Content()
	if err != nil {
		t.Fatalf("Content() error = %v", err)
	}
	if len(content) != 1 || content[0].Text != "8" {
		t.Errorf("Content() = %+v", content)
	}
	if result.Text() != "8" {
		t.Errorf("Text() = %q, want 8", result.Text())
	}
	if result.IsError() {
		t.Error("IsError() = true, want false")
	}

	failed := ToolResult{Raw: json.RawMessage(`{"content":[{"type":"text","text":"boom"}],"isError":true}`)}
	if !failed.IsError() {
		t.Error("IsError() = false, want true")
	}

	if _, err := (ToolResult{Raw: json.RawMessage(`[1,2]`)}).Content(); !IsProtocolError(err) {
		t.Errorf("Content() on array error = %v, want ProtocolError", err)
	}
}
