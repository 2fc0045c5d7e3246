package translator

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestAssembleRequestBasic(t *testing.T) {
	req := &ChatRequest{
		Model: "claude-sonnet-4-5-thinking",
		Messages: []Message{
			textMessage("system", "be terse"),
			textMessage("user", "hi"),
		},
		Tools: []Tool{{Type: "function", Function: FunctionDef{Name: "lookup"}}},
	}
	sec := SecurityContext{ProjectID: "proj-1", SessionID: "sess-1"}
	env := AssembleRequest(req, sec, AssembleOptions{UserAgent: "antigravity/test"})

	if env.Model != "claude-sonnet-4-5" {
		t.Errorf("Model = %q, thinking alias not resolved", env.Model)
	}
	if env.Project != "proj-1" || env.Request.SessionID != "sess-1" {
		t.Errorf("security context lost: project=%q session=%q", env.Project, env.Request.SessionID)
	}
	if !strings.HasPrefix(env.RequestID, "agent-") {
		t.Errorf("RequestID = %q, want agent- prefix", env.RequestID)
	}
	if env.RequestType != "agent" {
		t.Errorf("RequestType = %q", env.RequestType)
	}
	if env.UserAgent != "antigravity/test" {
		t.Errorf("UserAgent = %q", env.UserAgent)
	}
	if env.Request.SystemInstruction == nil || env.Request.SystemInstruction.Parts[0].Text != "be terse" {
		t.Error("client system message not installed")
	}
	if env.Request.GenerationConfig.ThinkingConfig == nil {
		t.Error("thinking alias must enable the reasoning channel")
	}
	if env.Request.ToolConfig == nil || env.Request.ToolConfig.FunctionCallingConfig.Mode != "VALIDATED" {
		t.Errorf("ToolConfig = %+v, want VALIDATED mode for Claude", env.Request.ToolConfig)
	}
}

func TestAssembleRequestMintsFreshIDs(t *testing.T) {
	req := &ChatRequest{Model: "gemini-2.5-flash", Messages: []Message{textMessage("user", "hi")}}
	a := AssembleRequest(req, SecurityContext{}, AssembleOptions{})
	b := AssembleRequest(req, SecurityContext{}, AssembleOptions{})
	if a.RequestID == b.RequestID {
		t.Errorf("request ids must be unique per call, both %q", a.RequestID)
	}
}

func TestAssembleRequestToolConfigMode(t *testing.T) {
	req := &ChatRequest{
		Model:    "gemini-2.5-flash",
		Messages: []Message{textMessage("user", "hi")},
		Tools:    []Tool{{Type: "function", Function: FunctionDef{Name: "lookup"}}},
	}
	env := AssembleRequest(req, SecurityContext{}, AssembleOptions{})
	if env.Request.ToolConfig.FunctionCallingConfig.Mode != "AUTO" {
		t.Errorf("Mode = %q, want AUTO", env.Request.ToolConfig.FunctionCallingConfig.Mode)
	}

	req.Tools = nil
	env = AssembleRequest(req, SecurityContext{}, AssembleOptions{})
	if env.Request.ToolConfig != nil {
		t.Error("ToolConfig must be omitted without tools")
	}
}

func TestAssembleRequestImageGeneration(t *testing.T) {
	req := &ChatRequest{
		Model: "gemini-2.5-flash-image",
		Messages: []Message{
			textMessage("system", "ignored"),
			textMessage("user", "a lighthouse at dusk"),
		},
		Tools: []Tool{{Type: "function", Function: FunctionDef{Name: "lookup"}}},
	}
	env := AssembleRequest(req, SecurityContext{}, AssembleOptions{DefaultSystemInstruction: "fallback"})

	if env.RequestType != "image_gen" {
		t.Errorf("RequestType = %q", env.RequestType)
	}
	if env.Request.SystemInstruction != nil {
		t.Error("image generation must not carry a system instruction")
	}
	if env.Request.Tools != nil || env.Request.ToolConfig != nil {
		t.Error("image generation must not carry tools")
	}
	if env.Request.GenerationConfig.ThinkingConfig != nil {
		t.Error("image generation must not carry a thinking config")
	}
}

func TestAssembleRequestDefaultSystemInstruction(t *testing.T) {
	req := &ChatRequest{Model: "gemini-2.5-flash", Messages: []Message{textMessage("user", "hi")}}
	env := AssembleRequest(req, SecurityContext{}, AssembleOptions{DefaultSystemInstruction: "house rules"})
	if env.Request.SystemInstruction == nil || env.Request.SystemInstruction.Parts[0].Text != "house rules" {
		t.Error("configured default system instruction not applied")
	}

	env = AssembleRequest(req, SecurityContext{}, AssembleOptions{})
	if env.Request.SystemInstruction != nil {
		t.Error("system instruction must be omitted when neither side provides one")
	}
}

func TestEnvelopeWireShape(t *testing.T) {
	req := &ChatRequest{Model: "gemini-3-pro", Messages: []Message{textMessage("user", "hi")}}
	env := AssembleRequest(req, SecurityContext{ProjectID: "p"}, AssembleOptions{UserAgent: "ua"})
	raw, err := json.Marshal(env)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"project", "requestId", "request", "model", "userAgent", "requestType"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("envelope missing %q key", key)
		}
	}
	if string(decoded["model"]) != `"gemini-3-pro-preview"` {
		t.Errorf("model = %s, alias not applied", decoded["model"])
	}
}
