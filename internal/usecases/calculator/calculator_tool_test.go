package calculator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FreePeak/golang-mcp-sse-client/internal/domain/shared"
	mcperrors "github.com/FreePeak/golang-mcp-sse-client/internal/domain/shared/errors"
)

func TestCalculatorHandlerListTools(t *testing.T) {
	handler := NewCalculatorHandler()

	tools, err := handler.ListTools(context.Background())
	require.NoError(t, err)
	require.Len(t, tools, 2)

	assert.Equal(t, AddNumbers, tools[0].Name)
	assert.Equal(t, FindMax, tools[1].Name)

	schema, ok := tools[0].InputSchema.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, []string{"a", "b"}, schema["required"])
}

func TestCalculatorHandlerCallTool(t *testing.T) {
	handler := NewCalculatorHandler()
	ctx := context.Background()

	tests := []struct {
		name      string
		toolName  string
		args      interface{}
		wantValue string
		wantErr   func(error) bool
	}{
		{
			name:      "add_numbers",
			toolName:  AddNumbers,
			args:      map[string]interface{}{"a": float64(5), "b": float64(3)},
			wantValue: "8",
		},
		{
			name:      "add_numbers with fractions",
			toolName:  AddNumbers,
			args:      map[string]interface{}{"a": 1.5, "b": 0.25},
			wantValue: "1.75",
		},
		{
			name:      "find_max",
			toolName:  FindMax,
			args:      map[string]interface{}{"a": float64(42), "b": float64(17)},
			wantValue: "42",
		},
		{
			name:      "find_max negative",
			toolName:  FindMax,
			args:      map[string]interface{}{"a": float64(-3), "b": float64(-7)},
			wantValue: "-3",
		},
		{
			name:     "missing argument",
			toolName: AddNumbers,
			args:     map[string]interface{}{"a": float64(1)},
			wantErr:  mcperrors.IsInvalidInput,
		},
		{
			name:     "string argument",
			toolName: FindMax,
			args:     map[string]interface{}{"a": "1", "b": float64(2)},
			wantErr:  mcperrors.IsInvalidInput,
		},
		{
			name:     "arguments not an object",
			toolName: AddNumbers,
			args:     []interface{}{1, 2},
			wantErr:  mcperrors.IsInvalidInput,
		},
		{
			name:     "unknown tool",
			toolName: "divide",
			args:     map[string]interface{}{"a": float64(1), "b": float64(2)},
			wantErr: func(err error) bool {
				var notFound *mcperrors.ToolNotFoundError
				return assert.ErrorAs(t, err, &notFound)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content, err := handler.CallTool(ctx, tt.toolName, tt.args)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, tt.wantErr(err), "unexpected error: %v", err)
				return
			}
			require.NoError(t, err)
			require.Len(t, content, 1)

			text, ok := content[0].(shared.TextContent)
			require.True(t, ok)
			assert.Equal(t, "text", text.Type)
			assert.Equal(t, tt.wantValue, text.Text)
		})
	}
}
