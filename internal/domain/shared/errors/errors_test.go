package errors

import (
	"fmt"
	"testing"

	"github.com/FreePeak/golang-mcp-sse-client/internal/domain/shared"
)

func TestNewNotFoundError(t *testing.T) {
	msg := "tool not registered"
	cause := fmt.Errorf("original error")
	err := NewNotFoundError(msg, cause)

	if err.Type != ErrorTypeNotFound {
		t.Errorf("Expected Type to be '%s', got '%s'", ErrorTypeNotFound, err.Type)
	}

	if err.Message != msg {
		t.Errorf("Expected Message to be '%s', got '%s'", msg, err.Message)
	}

	if err.Cause != cause {
		t.Errorf("Expected Cause to be '%v', got '%v'", cause, err.Cause)
	}

	if !IsNotFound(err) {
		t.Error("IsNotFound should return true for not found errors")
	}

	if IsInvalidInput(err) {
		t.Error("IsInvalidInput should return false for not found errors")
	}
}

func TestErrorWithoutCause(t *testing.T) {
	err := NewInternalError("error without cause", nil)

	expected := fmt.Sprintf("%s: %s", ErrorTypeInternal, "error without cause")
	if err.Error() != expected {
		t.Errorf("Expected error message to be '%s', got '%s'", expected, err.Error())
	}
}

func TestErrorWithCause(t *testing.T) {
	cause := fmt.Errorf("original error")
	err := NewInternalError("error with cause", cause)

	expected := fmt.Sprintf("%s: %s: %v", ErrorTypeInternal, "error with cause", cause)
	if err.Error() != expected {
		t.Errorf("Expected error message to be '%s', got '%s'", expected, err.Error())
	}
}

func TestToJSONRPC(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want shared.ErrorCode
	}{
		{name: "invalid input", err: NewInvalidInputError("parameter 'a' must be a number", nil), want: shared.InvalidParams},
		{name: "not found", err: NewNotFoundError("nothing here", nil), want: shared.MethodNotFound},
		{name: "internal", err: NewInternalError("boom", nil), want: shared.InternalError},
		{name: "unknown tool", err: &ToolNotFoundError{Name: "nope"}, want: shared.ToolNotFound},
		{name: "execution failure", err: &ToolExecutionError{Name: "add_numbers", Cause: fmt.Errorf("overflow")}, want: shared.ToolExecutionFailed},
		{name: "plain error", err: fmt.Errorf("regular error"), want: shared.InternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, message := ToJSONRPC(tt.err)
			if code != tt.want {
				t.Errorf("ToJSONRPC() code = %d, want %d", code, tt.want)
			}
			if message == "" {
				t.Error("ToJSONRPC() message should not be empty")
			}
		})
	}
}
