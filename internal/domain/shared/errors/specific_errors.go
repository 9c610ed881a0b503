package errors

import "fmt"

// ToolNotFoundError indicates a tool was not found
type ToolNotFoundError struct {
	Name string
}

// Error returns the error message
func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("tool not found: %s", e.Name)
}

// ToolExecutionError indicates a tool execution failed
type ToolExecutionError struct {
	Name  string
	Cause error
}

// Error returns the error message
func (e *ToolExecutionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("tool execution failed: %s: %v", e.Name, e.Cause)
	}
	return fmt.Sprintf("tool execution failed: %s", e.Name)
}

// Unwrap returns the underlying cause
func (e *ToolExecutionError) Unwrap() error {
	return e.Cause
}
