package tools

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTool(t *testing.T) {
	tool := NewTool("add_numbers",
		WithDescription("Add two numbers together"),
		WithNumber("a", Description("First number"), Required()),
		WithNumber("b", Description("Second number"), Required()),
		WithBoolean("round"),
	)

	assert.Equal(t, "add_numbers", tool.Name)
	assert.Equal(t, "Add two numbers together", tool.Description)
	require.Len(t, tool.Parameters, 3)
	assert.Equal(t, Parameter{Name: "a", Description: "First number", Type: "number", Required: true}, tool.Parameters[0])
	assert.False(t, tool.Parameters[2].Required)
}

func TestInputSchema(t *testing.T) {
	tool := NewTool("search",
		WithString("query", Required()),
		WithArray("tags", Items("string")),
		WithObject("filters"),
	)

	data, err := json.Marshal(tool.InputSchema())
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"type": "object",
		"properties": {
			"query": {"type": "string"},
			"tags": {"type": "array", "items": {"type": "string"}},
			"filters": {"type": "object"}
		},
		"required": ["query"]
	}`, string(data))
}

func TestInputSchemaWithoutParameters(t *testing.T) {
	schema := NewTool("ping").InputSchema()

	assert.Equal(t, "object", schema["type"])
	assert.Empty(t, schema["properties"])
	assert.NotContains(t, schema, "required")
}
