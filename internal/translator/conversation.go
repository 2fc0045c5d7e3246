package translator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

const (
	// emptyTurnPlaceholder keeps model turns non-empty; the upstream
	// rejects turns without parts.
	emptyTurnPlaceholder = "(empty)"

	// unknownFunctionName is used when a tool result references a call id
	// that never appeared in the conversation.
	unknownFunctionName = "unknown_function"
)

// conversation accumulates translated turns plus the call-id index used to
// resolve tool result names without rescanning prior turns.
type conversation struct {
	turns     []Turn
	callNames map[string]string
}

// TranslateConversation folds the client message history into the upstream
// turn sequence. Turn order mirrors message order exactly; no turn is
// reordered or dropped.
func TranslateConversation(messages []Message) []Turn {
	conv := &conversation{callNames: make(map[string]string)}
	for _, msg := range messages {
		conv.translate(msg)
	}
	return conv.turns
}

func (c *conversation) translate(msg Message) {
	switch msg.Role {
	case "user":
		c.translateUser(msg)
	case "assistant":
		c.translateAssistant(msg)
	case "tool":
		c.translateTool(msg)
	}
	// System messages become the envelope's systemInstruction, not a turn.
}

func (c *conversation) translateUser(msg Message) {
	extracted := ExtractContent(msg.Content)
	var parts []Part
	if extracted.Text != "" {
		parts = append(parts, Part{Text: extracted.Text})
	}
	for i := range extracted.Images {
		parts = append(parts, Part{InlineData: &extracted.Images[i]})
	}
	if len(parts) == 0 {
		parts = append(parts, Part{Text: emptyTurnPlaceholder})
	}
	c.append(Turn{Role: "user", Parts: parts})
}

// translateAssistant renders tool calls as a textual trace rather than
// upstream functionCall parts; the upstream does not accept replayed call
// objects in history, but a natural-language note keeps the model aware of
// what it previously requested.
func (c *conversation) translateAssistant(msg Message) {
	var lines []string
	for _, tc := range msg.ToolCalls {
		name := tc.Function.Name
		if tc.ID != "" && name != "" {
			c.callNames[tc.ID] = name
		}
		args := tc.Function.Arguments
		if args == "" {
			args = "{}"
		}
		lines = append(lines, fmt.Sprintf("[Tool call: %s with arguments: %s]", name, args))
	}
	if text := ExtractContent(msg.Content).Text; text != "" {
		lines = append(lines, text)
	}
	text := strings.Join(lines, "\n")
	if text == "" {
		text = emptyTurnPlaceholder
	}
	c.append(Turn{Role: "model", Parts: []Part{{Text: text}}})
}

// translateTool disguises a tool result as a user turn carrying a
// functionResponse part. This encoding is what the upstream requires for
// tool results; the turn is never merged with a preceding one.
func (c *conversation) translateTool(msg Message) {
	name := msg.Name
	if name == "" {
		name = c.callNames[msg.ToolCallID]
	}
	if name == "" {
		name = unknownFunctionName
	}

	result := ExtractContent(msg.Content).Text
	c.appendRaw(Turn{Role: "user", Parts: []Part{{
		FunctionResponse: &FunctionResponsePart{
			ID:       msg.ToolCallID,
			Name:     name,
			Response: encodeFunctionResult(result),
		},
	}}})
}

// append adds a turn, merging it into the previous turn when both consist
// only of function responses and share a role. Turns produced from the tool
// role bypass this path via appendRaw.
func (c *conversation) append(turn Turn) {
	if n := len(c.turns); n > 0 {
		prev := &c.turns[n-1]
		if prev.Role == turn.Role && functionResponseOnly(*prev) && functionResponseOnly(turn) {
			prev.Parts = append(prev.Parts, turn.Parts...)
			return
		}
	}
	c.appendRaw(turn)
}

func (c *conversation) appendRaw(turn Turn) {
	c.turns = append(c.turns, turn)
}

func functionResponseOnly(turn Turn) bool {
	if len(turn.Parts) == 0 {
		return false
	}
	for _, p := range turn.Parts {
		if p.FunctionResponse == nil {
			return false
		}
	}
	return true
}

// encodeFunctionResult wraps a tool result for the functionResponse part.
// Valid JSON objects pass through as-is; everything else is wrapped so the
// upstream always receives an object.
func encodeFunctionResult(result string) json.RawMessage {
	if parsed := gjson.Parse(result); parsed.IsObject() && json.Valid([]byte(result)) {
		return json.RawMessage(result)
	}
	wrapped, _ := json.Marshal(map[string]string{"content": result})
	return wrapped
}

// SystemInstruction returns the explicit system message text, if any.
// Later system messages win over earlier ones, matching OpenAI clients that
// send a single trailing override.
func SystemInstruction(messages []Message) string {
	text := ""
	for _, msg := range messages {
		if msg.Role != "system" {
			continue
		}
		if t := ExtractContent(msg.Content).Text; t != "" {
			text = t
		}
	}
	return text
}
