package translator

import (
	"github.com/google/uuid"

	"github.com/Catfish872/catfishAntigravity2API/internal/config"
	"github.com/Catfish872/catfishAntigravity2API/internal/registry"
)

// SecurityContext carries the identifiers the credential provider resolved
// for this request.
type SecurityContext struct {
	ProjectID string
	SessionID string
}

// AssembleOptions bundles the configuration the assembler needs, passed in
// explicitly so translation stays reproducible in tests.
type AssembleOptions struct {
	Defaults                 config.GenerationDefaults
	DefaultSystemInstruction string
	UserAgent                string
}

// AssembleRequest composes the complete upstream envelope for one client
// request: resolved model, translated conversation, tool declarations,
// generation config, system instruction and security context. A fresh
// request id is minted on every call.
func AssembleRequest(req *ChatRequest, sec SecurityContext, opts AssembleOptions) *Envelope {
	resolved := registry.ResolveModel(req.Model)
	thinking := registry.ThinkingEnabled(req.Model)

	inner := InnerRequest{
		Contents:         TranslateConversation(req.Messages),
		GenerationConfig: BuildGenerationConfig(req, resolved, thinking, opts.Defaults),
		SessionID:        sec.SessionID,
	}

	requestType := "agent"
	if registry.IsImageModel(req.Model) {
		// Image generation rejects system instructions and tools.
		requestType = "image_gen"
		inner.GenerationConfig.ThinkingConfig = nil
	} else {
		inner.SystemInstruction = systemInstructionTurn(req.Messages, opts.DefaultSystemInstruction)
		inner.Tools = BuildToolDeclarations(req.Tools)
		if len(inner.Tools) > 0 {
			mode := "AUTO"
			if registry.IsClaudeModel(resolved) {
				mode = "VALIDATED"
			}
			inner.ToolConfig = &ToolConfig{FunctionCallingConfig: FunctionCallingConfig{Mode: mode}}
		}
	}

	return &Envelope{
		Project:     sec.ProjectID,
		RequestID:   "agent-" + uuid.NewString(),
		Request:     inner,
		Model:       resolved,
		UserAgent:   opts.UserAgent,
		RequestType: requestType,
	}
}

// systemInstructionTurn prefers the client's explicit system message over
// the configured default.
func systemInstructionTurn(messages []Message, fallback string) *Turn {
	text := SystemInstruction(messages)
	if text == "" {
		text = fallback
	}
	if text == "" {
		return nil
	}
	return &Turn{Role: "user", Parts: []Part{{Text: text}}}
}
