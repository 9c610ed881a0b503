package tools

// Tool describes a server tool and its parameters.
type Tool struct {
	Name        string
	Description string
	Parameters  []Parameter
}

// Parameter defines one named argument of a tool.
type Parameter struct {
	Name        string
	Description string
	Type        string
	Required    bool
	Items       string
}

// InputSchema renders the parameters as the JSON Schema object advertised in
// tools/list. Properties keep their declaration order in "required".
func (t *Tool) InputSchema() map[string]interface{} {
	properties := make(map[string]interface{}, len(t.Parameters))
	required := []string{}

	for _, param := range t.Parameters {
		prop := map[string]interface{}{
			"type": param.Type,
		}
		if param.Description != "" {
			prop["description"] = param.Description
		}
		if param.Type == "array" && param.Items != "" {
			prop["items"] = map[string]interface{}{"type": param.Items}
		}
		properties[param.Name] = prop

		if param.Required {
			required = append(required, param.Name)
		}
	}

	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}
