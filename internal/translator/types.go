// Package translator converts OpenAI-style chat completion requests into the
// Antigravity v1internal request envelope. The conversation model differs on
// both sides: OpenAI carries four roles and structured tool calls, the
// upstream carries two turn roles with typed parts. The translation rules
// here preserve turn order and tool-call pairing exactly.
package translator

import "encoding/json"

// ChatRequest is the OpenAI-compatible request body.
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Stream      bool      `json:"stream"`
	Tools       []Tool    `json:"tools"`
	Temperature *float64  `json:"temperature"`
	TopP        *float64  `json:"top_p"`
	TopK        *int      `json:"top_k"`
	MaxTokens   *int      `json:"max_tokens"`
}

// Message is one entry of the client conversation. Content is kept raw
// because OpenAI allows both a plain string and an array of typed parts.
type Message struct {
	Role       string          `json:"role"`
	Content    json.RawMessage `json:"content"`
	ToolCalls  []ToolCall      `json:"tool_calls,omitempty"`
	ToolCallID string          `json:"tool_call_id,omitempty"`
	Name       string          `json:"name,omitempty"`
}

// ToolCall is an assistant-issued function call.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type,omitempty"`
	Function FunctionCall `json:"function"`
}

// FunctionCall carries the function name and its JSON-encoded arguments.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Tool is a client-declared callable tool.
type Tool struct {
	Type     string      `json:"type"`
	Function FunctionDef `json:"function"`
}

// FunctionDef declares a callable function. Parameters stays raw JSON so the
// schema can be adjusted without a full decode.
type FunctionDef struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

// Turn is one entry of the upstream conversation, role "user" or "model".
type Turn struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

// Part is a single typed payload inside a turn. Exactly one field is set.
type Part struct {
	Text             string                `json:"text,omitempty"`
	InlineData       *Blob                 `json:"inlineData,omitempty"`
	FunctionCall     *FunctionCallPart     `json:"functionCall,omitempty"`
	FunctionResponse *FunctionResponsePart `json:"functionResponse,omitempty"`
}

// Blob is inline binary content, base64-encoded.
type Blob struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

// FunctionCallPart is an upstream-native function call.
type FunctionCallPart struct {
	ID   string          `json:"id,omitempty"`
	Name string          `json:"name"`
	Args json.RawMessage `json:"args"`
}

// FunctionResponsePart carries a tool result back to the upstream.
type FunctionResponsePart struct {
	ID       string          `json:"id,omitempty"`
	Name     string          `json:"name"`
	Response json.RawMessage `json:"response"`
}

// ToolDeclaration wraps function declarations the way the upstream expects.
type ToolDeclaration struct {
	FunctionDeclarations []FunctionDeclaration `json:"functionDeclarations"`
}

// FunctionDeclaration is one upstream tool declaration.
type FunctionDeclaration struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

// ToolConfig selects the upstream function-calling mode.
type ToolConfig struct {
	FunctionCallingConfig FunctionCallingConfig `json:"functionCallingConfig"`
}

// FunctionCallingConfig holds the mode string ("AUTO", "VALIDATED", ...).
type FunctionCallingConfig struct {
	Mode string `json:"mode"`
}

// GenerationConfig is the upstream sampling and control block.
type GenerationConfig struct {
	Temperature     *float64        `json:"temperature,omitempty"`
	TopP            *float64        `json:"topP,omitempty"`
	TopK            *int            `json:"topK,omitempty"`
	MaxOutputTokens *int            `json:"maxOutputTokens,omitempty"`
	CandidateCount  int             `json:"candidateCount"`
	StopSequences   []string        `json:"stopSequences,omitempty"`
	ThinkingConfig  *ThinkingConfig `json:"thinkingConfig,omitempty"`
}

// ThinkingConfig toggles the upstream reasoning channel.
type ThinkingConfig struct {
	IncludeThoughts bool `json:"includeThoughts"`
	ThinkingBudget  int  `json:"thinkingBudget,omitempty"`
}

// InnerRequest is the provider-native request inside the envelope.
type InnerRequest struct {
	Contents          []Turn            `json:"contents"`
	SystemInstruction *Turn             `json:"systemInstruction,omitempty"`
	Tools             []ToolDeclaration `json:"tools,omitempty"`
	ToolConfig        *ToolConfig       `json:"toolConfig,omitempty"`
	GenerationConfig  GenerationConfig  `json:"generationConfig"`
	SessionID         string            `json:"sessionId,omitempty"`
}

// Envelope is the fully assembled upstream payload, created fresh per
// request and never reused.
type Envelope struct {
	Project     string       `json:"project"`
	RequestID   string       `json:"requestId"`
	Request     InnerRequest `json:"request"`
	Model       string       `json:"model"`
	UserAgent   string       `json:"userAgent"`
	RequestType string       `json:"requestType"`
}
