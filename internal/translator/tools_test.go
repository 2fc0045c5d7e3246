package translator

import (
	"encoding/json"
	"testing"

	"github.com/tidwall/gjson"
)

func TestBuildToolDeclarations(t *testing.T) {
	tools := []Tool{
		{Type: "function", Function: FunctionDef{
			Name:        "get_weather",
			Description: "looks up weather",
			Parameters:  json.RawMessage(`{"$schema":"http://json-schema.org/draft-07/schema#","type":"object","properties":{"city":{"type":"string"}}}`),
		}},
		{Type: "function", Function: FunctionDef{Name: ""}},
		{Type: "function", Function: FunctionDef{Name: "noop"}},
	}
	decls := BuildToolDeclarations(tools)
	if len(decls) != 1 {
		t.Fatalf("expected a single declaration wrapper, got %d", len(decls))
	}
	fns := decls[0].FunctionDeclarations
	if len(fns) != 2 {
		t.Fatalf("expected 2 function declarations (unnamed skipped), got %d", len(fns))
	}

	params := gjson.ParseBytes(fns[0].Parameters)
	if params.Get(`\$schema`).Exists() {
		t.Errorf("$schema not stripped: %s", fns[0].Parameters)
	}
	if params.Get("properties.city.type").String() != "string" {
		t.Errorf("schema body damaged: %s", fns[0].Parameters)
	}

	empty := gjson.ParseBytes(fns[1].Parameters)
	if empty.Get("type").String() != "object" {
		t.Errorf("empty parameters not normalized: %s", fns[1].Parameters)
	}
}

func TestBuildToolDeclarationsEmpty(t *testing.T) {
	if got := BuildToolDeclarations(nil); got != nil {
		t.Errorf("nil tools should map to nil, got %v", got)
	}
	unnamed := []Tool{{Type: "function", Function: FunctionDef{Name: ""}}}
	if got := BuildToolDeclarations(unnamed); got != nil {
		t.Errorf("all-unnamed tools should map to nil, got %v", got)
	}
}
