package translator

import (
	"encoding/json"

	"github.com/tidwall/sjson"
)

// BuildToolDeclarations converts client tool declarations into the upstream
// wrapper shape. The "$schema" hint some clients attach to parameter schemas
// is stripped because the upstream rejects it. An empty tool list maps to
// nil, not an error.
func BuildToolDeclarations(tools []Tool) []ToolDeclaration {
	if len(tools) == 0 {
		return nil
	}
	decls := make([]FunctionDeclaration, 0, len(tools))
	for _, t := range tools {
		if t.Function.Name == "" {
			continue
		}
		decls = append(decls, FunctionDeclaration{
			Name:        t.Function.Name,
			Description: t.Function.Description,
			Parameters:  cleanParameters(t.Function.Parameters),
		})
	}
	if len(decls) == 0 {
		return nil
	}
	return []ToolDeclaration{{FunctionDeclarations: decls}}
}

func cleanParameters(params json.RawMessage) json.RawMessage {
	if len(params) == 0 {
		return json.RawMessage(`{"type":"object","properties":{}}`)
	}
	cleaned, err := sjson.DeleteBytes(params, "$schema")
	if err != nil {
		return params
	}
	return cleaned
}
