// Package calculator implements the tools served by the demo server.
package calculator

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/FreePeak/golang-mcp-sse-client/internal/domain/shared"
	mcperrors "github.com/FreePeak/golang-mcp-sse-client/internal/domain/shared/errors"
	"github.com/FreePeak/golang-mcp-sse-client/pkg/tools"
)

// Tool names.
const (
	AddNumbers = "add_numbers"
	FindMax    = "find_max"
)

// CalculatorHandler serves add_numbers and find_max.
type CalculatorHandler struct {
	tools []*tools.Tool
}

// NewCalculatorHandler creates a new calculator handler
func NewCalculatorHandler() *CalculatorHandler {
	return &CalculatorHandler{
		tools: []*tools.Tool{
			tools.NewTool(AddNumbers,
				tools.WithDescription("Add two numbers together"),
				tools.WithNumber("a", tools.Description("First number"), tools.Required()),
				tools.WithNumber("b", tools.Description("Second number"), tools.Required()),
			),
			tools.NewTool(FindMax,
				tools.WithDescription("Find the maximum of two numbers"),
				tools.WithNumber("a", tools.Description("First number"), tools.Required()),
				tools.WithNumber("b", tools.Description("Second number"), tools.Required()),
			),
		},
	}
}

// ListTools returns the calculator tools in a fixed order.
func (h *CalculatorHandler) ListTools(ctx context.Context) ([]shared.Tool, error) {
	out := make([]shared.Tool, 0, len(h.tools))
	for _, tool := range h.tools {
		out = append(out, shared.Tool{
			Name:        tool.Name,
			Description: tool.Description,
			InputSchema: tool.InputSchema(),
		})
	}
	return out, nil
}

// CallTool executes a calculator tool with the given arguments
func (h *CalculatorHandler) CallTool(ctx context.Context, name string, arguments interface{}) ([]shared.Content, error) {
	var op func(a, b float64) float64
	switch name {
	case AddNumbers:
		op = func(a, b float64) float64 { return a + b }
	case FindMax:
		op = math.Max
	default:
		return nil, &mcperrors.ToolNotFoundError{Name: name}
	}

	args, ok := arguments.(map[string]interface{})
	if !ok {
		return nil, mcperrors.NewInvalidInputError("invalid arguments", nil)
	}

	a, err := number(args, "a")
	if err != nil {
		return nil, err
	}
	b, err := number(args, "b")
	if err != nil {
		return nil, err
	}

	return []shared.Content{
		shared.NewTextContent(FormatNumber(op(a, b))),
	}, nil
}

func number(args map[string]interface{}, key string) (float64, error) {
	v, ok := args[key]
	if !ok {
		return 0, mcperrors.NewInvalidInputError(fmt.Sprintf("parameter '%s' is required", key), nil)
	}
	f, ok := v.(float64)
	if !ok {
		return 0, mcperrors.NewInvalidInputError(fmt.Sprintf("parameter '%s' must be a number", key), nil)
	}
	return f, nil
}

// FormatNumber prints integral values without a fractional part.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
