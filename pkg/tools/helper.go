// Package tools builds tool descriptors for an MCP server.
package tools

// ToolOption configures a tool.
type ToolOption func(*Tool)

// NewTool creates a tool with the given name and options.
func NewTool(name string, options ...ToolOption) *Tool {
	tool := &Tool{
		Name:       name,
		Parameters: []Parameter{},
	}
	for _, option := range options {
		option(tool)
	}
	return tool
}

// WithDescription sets the description of a tool.
func WithDescription(description string) ToolOption {
	return func(t *Tool) {
		t.Description = description
	}
}

// ParameterOption configures a parameter.
type ParameterOption func(*Parameter)

// Description sets the description of a parameter.
func Description(description string) ParameterOption {
	return func(p *Parameter) {
		p.Description = description
	}
}

// Required marks a parameter as required.
func Required() ParameterOption {
	return func(p *Parameter) {
		p.Required = true
	}
}

// Items sets the element type of an array parameter.
func Items(itemType string) ParameterOption {
	return func(p *Parameter) {
		p.Items = itemType
	}
}

func withParameter(name, paramType string, options []ParameterOption) ToolOption {
	return func(t *Tool) {
		param := Parameter{Name: name, Type: paramType}
		for _, option := range options {
			option(&param)
		}
		t.Parameters = append(t.Parameters, param)
	}
}

// WithString adds a string parameter.
func WithString(name string, options ...ParameterOption) ToolOption {
	return withParameter(name, "string", options)
}

// WithNumber adds a number parameter.
func WithNumber(name string, options ...ParameterOption) ToolOption {
	return withParameter(name, "number", options)
}

// WithBoolean adds a boolean parameter.
func WithBoolean(name string, options ...ParameterOption) ToolOption {
	return withParameter(name, "boolean", options)
}

// WithArray adds an array parameter.
func WithArray(name string, options ...ParameterOption) ToolOption {
	return withParameter(name, "array", options)
}

// WithObject adds an object parameter.
func WithObject(name string, options ...ParameterOption) ToolOption {
	return withParameter(name, "object", options)
}
